package game

import "fmt"

// Resolve computes every die-pair outcome of a battle between allied and
// japan under p. The caller's rosters are never modified: each row, and each
// re-resolution within a row, works on its own copy.
func Resolve(allied, japan []Unit, p Params) ([]Row, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := validateRoster(allied); err != nil {
		return nil, fmt.Errorf("allied roster: %w", err)
	}
	if err := validateRoster(japan); err != nil {
		return nil, fmt.Errorf("japan roster: %w", err)
	}

	b := newBattle(allied, japan, p)
	rows := Enumerate(b.allied, b.japan, b.alliedDRM, b.japanDRM)
	for i := range rows {
		b.resolveRow(&rows[i])
	}
	return rows, nil
}

// ResolveRow resolves the single row for the given pair of raw die faces.
func ResolveRow(allied, japan []Unit, p Params, alliedDie, japanDie int) (Row, error) {
	if err := p.Validate(); err != nil {
		return Row{}, err
	}
	if err := validateRoster(allied); err != nil {
		return Row{}, fmt.Errorf("allied roster: %w", err)
	}
	if err := validateRoster(japan); err != nil {
		return Row{}, fmt.Errorf("japan roster: %w", err)
	}
	if alliedDie < Die.Low || alliedDie > Die.High || japanDie < Die.Low || japanDie > Die.High {
		return Row{}, fmt.Errorf("%w: die faces must be %d..%d", ErrInvalidParams, Die.Low, Die.High)
	}

	b := newBattle(allied, japan, p)
	ar := CombatResult(alliedDie, b.alliedDRM)
	jr := CombatResult(japanDie, b.japanDRM)
	row := Row{
		AlliedDie:        alliedDie,
		JapanDie:         japanDie,
		AlliedResult:     ar,
		JapanResult:      jr,
		JapanLossPrelim:  lossFor(TotalCombatFactor(b.allied), ar),
		AlliedLossPrelim: lossFor(TotalCombatFactor(b.japan), jr),
	}
	b.resolveRow(&row)
	return row, nil
}

func validateRoster(units []Unit) error {
	for _, u := range units {
		if u.Defense <= 0 {
			return fmt.Errorf("%w: unit %d (%s) has defense %d", ErrInvalidDefense, u.ID, u.Name, u.Defense)
		}
	}
	return nil
}

// battle holds the per-call inputs shared by every row.
type battle struct {
	params    Params
	allied    []Unit
	japan     []Unit
	alliedDRM int
	japanDRM  int
	alliedAir int
	japanAir  int
}

func newBattle(allied, japan []Unit, p Params) *battle {
	b := &battle{
		params:    p,
		allied:    cloneRoster(allied),
		japan:     cloneRoster(japan),
		alliedDRM: ModifierFor(SideAllied, p),
		japanDRM:  ModifierFor(SideJapan, p),
	}
	b.alliedAir = AirCount(b.allied)
	b.japanAir = AirCount(b.japan)
	return b
}

func (b *battle) resolveRow(row *Row) {
	alliedCrit := Die.Critical(row.AlliedDie)
	japanCrit := Die.Critical(row.JapanDie)

	row.JapanLoss = row.JapanLossPrelim
	row.AlliedLoss = row.AlliedLossPrelim

	japan := cloneRoster(b.japan)
	Allocate(row.JapanLoss, alliedCrit, japan, b.alliedAir)
	allied := cloneRoster(b.allied)
	Allocate(row.AlliedLoss, japanCrit, allied, b.japanAir)

	switch b.params.Intel {
	case Intercept:
	case Surprise:
		// The offensive player strikes first; allied reaction forces fire back
		// with what survived.
		if b.params.Reaction == SideAllied {
			row.JapanLoss = lossFor(TotalCombatFactor(allied), row.AlliedResult)
			japan = cloneRoster(b.japan)
			Allocate(row.JapanLoss, alliedCrit, japan, AirCount(allied))
		}
	case Ambush:
		row.AlliedLoss = lossFor(TotalCombatFactor(japan), row.JapanResult)
		allied = cloneRoster(b.allied)
		Allocate(row.AlliedLoss, japanCrit, allied, AirCount(japan))
	}

	row.AlliedDamage = TotalDamageApplied(allied)
	row.JapanDamage = TotalDamageApplied(japan)
	row.AlliedCF = TotalCombatFactor(allied)
	row.JapanCF = TotalCombatFactor(japan)
	row.AlliedSurvivors = SurvivorCount(allied)
	row.JapanSurvivors = SurvivorCount(japan)
	row.Winner = decideWinner(allied, japan, b.params.Reaction)
}

// decideWinner applies the winner rules in priority order: mutual
// annihilation goes to the offensive player, a side left with the only air
// units wins, equal combat factors go to the reaction player, otherwise the
// larger remaining combat factor wins.
func decideWinner(allied, japan []Unit, reaction Side) Side {
	offense := reaction.Opponent()
	survivors := map[Side]int{
		SideAllied: SurvivorCount(allied),
		SideJapan:  SurvivorCount(japan),
	}
	air := map[Side]int{
		SideAllied: AirCount(allied),
		SideJapan:  AirCount(japan),
	}
	cf := map[Side]int{
		SideAllied: TotalCombatFactor(allied),
		SideJapan:  TotalCombatFactor(japan),
	}

	switch {
	case survivors[SideAllied] == 0 && survivors[SideJapan] == 0:
		return offense
	case air[reaction] > 0 && air[offense] == 0:
		return reaction
	case air[offense] > 0 && air[reaction] == 0:
		return offense
	case cf[reaction] == cf[offense]:
		return reaction
	case cf[reaction] > cf[offense]:
		return reaction
	default:
		return offense
	}
}
