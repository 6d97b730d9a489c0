package game

// Unit captures one air or naval unit as the engine sees it. Units are plain
// values: the resolver copies rosters before touching any damage state.
type Unit struct {
	ID          int
	Name        string
	Nationality string
	Side        Side
	Category    Category
	Branch      Branch

	AttackFront int
	AttackBack  int
	Defense     int // step size removed from the loss pool per damage step

	MoveRange         *float64 // nil: no independent movement
	MoveRangeExtended *float64 // nil: extended range not available

	IsFlipped       bool
	InBattleHex     bool
	IsExtendedRange bool
	AttackModifier  int

	// Battle-scoped damage state.
	DamageFlipped    bool
	DamageEliminated bool
}

// HasMovement reports whether the unit has a movement range of its own.
func (u Unit) HasMovement() bool { return u.MoveRange != nil }

// IsAir reports whether the unit is air-capable (positive movement range).
func (u Unit) IsAir() bool { return u.MoveRange != nil && *u.MoveRange > 0 }

// Reduced reports whether the unit shows its back side, either from before the
// battle or because it took a step in this one.
func (u Unit) Reduced() bool { return u.IsFlipped || u.DamageFlipped }

// Damaged reports whether the unit absorbed at least one step this battle.
func (u Unit) Damaged() bool { return u.DamageFlipped || u.DamageEliminated }

// Survives reports whether the unit is still on the map.
func (u Unit) Survives() bool { return !u.DamageEliminated }

// CombatFactor returns the unit's current attack strength. It is never negative.
func (u Unit) CombatFactor() int {
	if u.DamageEliminated {
		return 0
	}
	if !u.InBattleHex && !u.HasMovement() {
		return 0
	}
	cf := u.AttackFront
	if u.Reduced() {
		cf = u.AttackBack
	}
	cf += u.AttackModifier
	if cf <= 0 {
		return 0
	}
	if u.IsExtendedRange {
		cf = (cf + 1) / 2
	}
	return cf
}

// LossDelta is the allocation priority score: the back value for an already
// flipped unit, otherwise the strength lost by flipping it.
func (u Unit) LossDelta() int {
	if u.IsFlipped {
		return u.AttackBack
	}
	return u.AttackFront - u.AttackBack
}

// DamageApplied is the loss pool absorbed by this unit in the current battle.
func (u Unit) DamageApplied() int {
	steps := 0
	if u.DamageFlipped {
		steps++
	}
	if u.DamageEliminated {
		steps++
	}
	return steps * u.Defense
}

// ApplyStep absorbs one damage step: a full-strength unit flips, a reduced
// unit is eliminated.
func (u *Unit) ApplyStep() {
	if u.DamageEliminated {
		return
	}
	if u.Reduced() {
		u.DamageEliminated = true
		return
	}
	u.DamageFlipped = true
}

// ResetDamage clears battle-scoped damage state.
func (u *Unit) ResetDamage() {
	u.DamageFlipped = false
	u.DamageEliminated = false
}

func cloneRoster(units []Unit) []Unit {
	out := make([]Unit, len(units))
	copy(out, units)
	for i := range out {
		out[i].ResetDamage()
	}
	return out
}

// TotalCombatFactor sums CombatFactor over a roster.
func TotalCombatFactor(units []Unit) int {
	total := 0
	for _, u := range units {
		total += u.CombatFactor()
	}
	return total
}

// AirCount counts air-capable units that have not been eliminated.
func AirCount(units []Unit) int {
	n := 0
	for _, u := range units {
		if u.IsAir() && u.Survives() {
			n++
		}
	}
	return n
}

// SurvivorCount counts units that have not been eliminated.
func SurvivorCount(units []Unit) int {
	n := 0
	for _, u := range units {
		if u.Survives() {
			n++
		}
	}
	return n
}

// TotalDamageApplied sums DamageApplied over a roster.
func TotalDamageApplied(units []Unit) int {
	total := 0
	for _, u := range units {
		total += u.DamageApplied()
	}
	return total
}

// TotalDefense sums the defense of every step a roster can still absorb.
func TotalDefense(units []Unit) int {
	total := 0
	for _, u := range units {
		steps := 2
		if u.IsFlipped {
			steps = 1
		}
		total += steps * u.Defense
	}
	return total
}
