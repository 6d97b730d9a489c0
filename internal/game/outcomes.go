package game

import (
	"math"

	"github.com/pefman/eots-battle/internal/engine"
)

// Die is the die both players roll.
var Die = engine.D10

// CombatResult bands a modified die roll into the fraction of the roller's
// combat factor inflicted as losses.
func CombatResult(die, drm int) float64 {
	switch v := die + drm; {
	case v <= 2:
		return 0.25
	case v <= 5:
		return 0.50
	default:
		return 1.00
	}
}

// lossFor converts a combat factor total and a result multiplier into a loss
// total, rounding up.
func lossFor(cf int, result float64) int {
	return int(math.Ceil(float64(cf) * result))
}

// Enumerate builds one row per ordered die pair with the preliminary loss
// totals computed from the undamaged rosters. Rows are ordered by allied die,
// then japan die. Rosters are not modified.
func Enumerate(allied, japan []Unit, alliedDRM, japanDRM int) []Row {
	alliedCF := TotalCombatFactor(allied)
	japanCF := TotalCombatFactor(japan)

	pairs := Die.Pairs()
	rows := make([]Row, 0, len(pairs))
	for _, p := range pairs {
		ar := CombatResult(p[0], alliedDRM)
		jr := CombatResult(p[1], japanDRM)
		rows = append(rows, Row{
			AlliedDie:        p[0],
			JapanDie:         p[1],
			AlliedResult:     ar,
			JapanResult:      jr,
			JapanLossPrelim:  lossFor(alliedCF, ar),
			AlliedLossPrelim: lossFor(japanCF, jr),
		})
	}
	return rows
}
