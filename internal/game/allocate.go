package game

import "sort"

// Allocate spreads totalLoss over roster one damage step at a time until the
// absorbed defense meets the loss or no unit can take another step.
//
// Candidates are ordered by ascending defense, then descending loss delta,
// then roster order. A candidate is passed over when it is eliminated, when
// the air protection rule shields it, when its defense exceeds what is left of
// the loss, or, on a non-critical hit, when it is already reduced while a
// full-strength unit could still take the step.
//
// opposingAir is the number of air units the other side fields. Once as many
// of our own air units have been hit as the opponent has air units, the
// remaining undamaged air units are left alone.
//
// A critical hit that could not be applied at all, including one whose loss
// rounded to zero, still lands one step on the cheapest unit. An unsatisfied
// loss is not an error.
func Allocate(totalLoss int, critical bool, roster []Unit, opposingAir int) {
	applied := 0
	for applied < totalLoss {
		i := selectCandidate(roster, totalLoss-applied, critical, opposingAir)
		if i < 0 {
			break
		}
		roster[i].ApplyStep()
		applied += roster[i].Defense
	}

	if critical && applied == 0 {
		if i := cheapestUnit(roster); i >= 0 {
			roster[i].ApplyStep()
		}
	}
}

// selectCandidate returns the index of the unit that absorbs the next step,
// or -1 when none qualifies.
func selectCandidate(roster []Unit, remaining int, critical bool, opposingAir int) int {
	order := allocationOrder(roster)
	shieldAir := damagedAirCount(roster) == opposingAir

	eligible := func(u Unit) bool {
		if u.DamageEliminated {
			return false
		}
		if shieldAir && u.IsAir() && !u.Damaged() {
			return false
		}
		return u.Defense <= remaining
	}

	freshLeft := false
	for _, i := range order {
		if u := roster[i]; eligible(u) && !u.Reduced() {
			freshLeft = true
			break
		}
	}

	for _, i := range order {
		u := roster[i]
		if !eligible(u) {
			continue
		}
		if !critical && u.Reduced() && freshLeft {
			continue
		}
		return i
	}
	return -1
}

func allocationOrder(roster []Unit) []int {
	order := make([]int, len(roster))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ua, ub := roster[order[a]], roster[order[b]]
		if ua.Defense != ub.Defense {
			return ua.Defense < ub.Defense
		}
		return ua.LossDelta() > ub.LossDelta()
	})
	return order
}

func damagedAirCount(roster []Unit) int {
	n := 0
	for _, u := range roster {
		if u.IsAir() && u.Damaged() {
			n++
		}
	}
	return n
}

// cheapestUnit returns the first surviving unit in allocation order.
func cheapestUnit(roster []Unit) int {
	for _, i := range allocationOrder(roster) {
		if !roster[i].DamageEliminated {
			return i
		}
	}
	return -1
}
