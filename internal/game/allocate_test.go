package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestAllocate_FullStrengthUnitsFirst(t *testing.T) {
	fresh := naval(1, 3, 1, 1)
	reduced := naval(2, 5, 3, 1)
	reduced.IsFlipped = true // loss delta 3 sorts it ahead of the fresh unit

	roster := []Unit{fresh, reduced}
	Allocate(1, false, roster, 0)
	assert.True(t, roster[0].DamageFlipped)
	assert.False(t, roster[1].Damaged())
}

func TestAllocate_CriticalHitIgnoresOrdering(t *testing.T) {
	fresh := naval(1, 3, 1, 1)
	reduced := naval(2, 5, 3, 1)
	reduced.IsFlipped = true

	roster := []Unit{fresh, reduced}
	Allocate(1, true, roster, 0)
	assert.False(t, roster[0].Damaged())
	assert.True(t, roster[1].DamageEliminated)
	assert.False(t, roster[1].DamageFlipped)
}

func TestAllocate_PrefersCheapDefense(t *testing.T) {
	roster := []Unit{naval(1, 9, 1, 3), naval(2, 2, 1, 1)}
	Allocate(1, false, roster, 0)
	assert.False(t, roster[0].Damaged())
	assert.True(t, roster[1].DamageFlipped)
}

func TestAllocate_TieBreaksOnLossDelta(t *testing.T) {
	roster := []Unit{naval(1, 2, 1, 2), naval(2, 6, 1, 2)}
	Allocate(2, false, roster, 0)
	assert.False(t, roster[0].Damaged())
	assert.True(t, roster[1].DamageFlipped)
}

func TestAllocate_SkipsDefenseAboveRemaining(t *testing.T) {
	roster := []Unit{naval(1, 4, 2, 3)}
	Allocate(2, false, roster, 0)
	assert.False(t, roster[0].Damaged())
}

func TestAllocate_CriticalHitAlwaysLands(t *testing.T) {
	roster := []Unit{naval(1, 4, 2, 3), naval(2, 6, 2, 4)}
	Allocate(2, true, roster, 0)
	assert.True(t, roster[0].DamageFlipped)
	assert.False(t, roster[1].Damaged())
	assert.Equal(t, 3, TotalDamageApplied(roster))
}

func TestAllocate_ZeroLossIsNoop(t *testing.T) {
	roster := []Unit{naval(1, 4, 2, 1)}
	Allocate(0, false, roster, 0)
	assert.False(t, roster[0].Damaged())
}

func TestAllocate_CriticalHitLandsOnZeroLoss(t *testing.T) {
	roster := []Unit{naval(1, 4, 2, 1)}
	Allocate(0, true, roster, 0)
	assert.True(t, roster[0].DamageFlipped)
	assert.Equal(t, 1, TotalDamageApplied(roster))
}

func TestAllocate_ForcedCriticalStepFollowsAllocationOrder(t *testing.T) {
	// equal defense: the larger loss delta takes the forced step
	roster := []Unit{naval(1, 2, 1, 3), naval(2, 6, 1, 3), naval(3, 9, 1, 5)}
	Allocate(2, true, roster, 0)
	assert.False(t, roster[0].Damaged())
	assert.True(t, roster[1].DamageFlipped)
	assert.False(t, roster[2].Damaged())

	roster[1].DamageEliminated = true
	roster[1].DamageFlipped = false
	Allocate(0, true, roster, 0)
	assert.True(t, roster[0].DamageFlipped, "eliminated units are passed over")
}

func TestAllocate_PoolExhaustion(t *testing.T) {
	roster := []Unit{naval(1, 4, 2, 1), naval(2, 3, 1, 1)}
	Allocate(10, false, roster, 0)
	assert.True(t, roster[0].DamageEliminated)
	assert.True(t, roster[1].DamageEliminated)
	assert.Equal(t, 4, TotalDamageApplied(roster))
}

func TestAllocate_ReducedUnitsTakeHitsOnceFreshOnesAreSpent(t *testing.T) {
	roster := []Unit{naval(1, 4, 2, 1), naval(2, 3, 1, 1)}
	Allocate(3, false, roster, 0)
	// both flip before either is eliminated
	assert.True(t, roster[0].DamageFlipped)
	assert.True(t, roster[1].DamageFlipped)
	assert.Equal(t, 1, SurvivorCount(roster))
	assert.Equal(t, 3, TotalDamageApplied(roster))
}

func TestAllocate_AirProtection(t *testing.T) {
	roster := []Unit{air(1, 2, 1, 1), air(2, 2, 1, 1), naval(3, 4, 2, 2)}
	Allocate(2, false, roster, 1)

	// one air unit hit matches the single enemy air unit, so the second air
	// unit is shielded and the first one absorbs the rest
	assert.True(t, roster[0].DamageEliminated)
	assert.False(t, roster[1].Damaged())
	assert.False(t, roster[2].Damaged())
}

func TestAllocate_NoEnemyAirShieldsAllAir(t *testing.T) {
	roster := []Unit{air(1, 2, 1, 1), air(2, 2, 1, 1), naval(3, 4, 2, 2)}
	Allocate(2, false, roster, 0)
	assert.False(t, roster[0].Damaged())
	assert.False(t, roster[1].Damaged())
	assert.True(t, roster[2].DamageFlipped)
}

func TestAllocate_Property_BoundedByLossAndDefense(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 8).Draw(rt, "units")
		roster := make([]Unit, n)
		for i := range roster {
			roster[i] = naval(i,
				rapid.IntRange(0, 10).Draw(rt, "front"),
				rapid.IntRange(0, 5).Draw(rt, "back"),
				rapid.IntRange(1, 4).Draw(rt, "defense"))
			roster[i].IsFlipped = rapid.Bool().Draw(rt, "flipped")
		}
		loss := rapid.IntRange(0, 40).Draw(rt, "loss")
		Allocate(loss, false, roster, 0)

		damage := TotalDamageApplied(roster)
		assert.LessOrEqual(rt, damage, loss)
		assert.LessOrEqual(rt, damage, TotalDefense(roster))
		for _, u := range roster {
			if u.IsFlipped {
				assert.False(rt, u.DamageFlipped, "stored flip never flips again")
			}
		}
	})
}

func TestAllocate_Property_UnitStepsFillThePool(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 8).Draw(rt, "units")
		roster := make([]Unit, n)
		for i := range roster {
			roster[i] = naval(i, rapid.IntRange(0, 10).Draw(rt, "front"), 0, 1)
			roster[i].IsFlipped = rapid.Bool().Draw(rt, "flipped")
		}
		loss := rapid.IntRange(0, 20).Draw(rt, "loss")
		Allocate(loss, false, roster, 0)

		assert.Equal(rt, min(loss, TotalDefense(roster)), TotalDamageApplied(roster))
	})
}
