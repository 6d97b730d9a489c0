package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func ptr(f float64) *float64 { return &f }

func naval(id, front, back, defense int) Unit {
	return Unit{ID: id, Category: CategoryNaval, AttackFront: front, AttackBack: back, Defense: defense, InBattleHex: true}
}

func air(id, front, back, defense int) Unit {
	return Unit{ID: id, Category: CategoryAir, AttackFront: front, AttackBack: back, Defense: defense, MoveRange: ptr(4)}
}

func TestUnit_CombatFactor(t *testing.T) {
	tests := []struct {
		name string
		unit Unit
		want int
	}{
		{"front", naval(1, 4, 2, 2), 4},
		{"stored flip uses back", Unit{AttackFront: 4, AttackBack: 2, Defense: 1, IsFlipped: true, InBattleHex: true}, 2},
		{"battle flip uses back", Unit{AttackFront: 4, AttackBack: 2, Defense: 1, DamageFlipped: true, InBattleHex: true}, 2},
		{"eliminated", Unit{AttackFront: 4, AttackBack: 2, Defense: 1, DamageFlipped: true, DamageEliminated: true, InBattleHex: true}, 0},
		{"modifier", Unit{AttackFront: 4, AttackBack: 2, Defense: 1, AttackModifier: 2, InBattleHex: true}, 6},
		{"extended range rounds up", Unit{AttackFront: 5, Defense: 1, IsExtendedRange: true, MoveRange: ptr(3), MoveRangeExtended: ptr(5)}, 3},
		{"modifier before halving", Unit{AttackFront: 4, Defense: 1, AttackModifier: -1, IsExtendedRange: true, MoveRange: ptr(3), MoveRangeExtended: ptr(5)}, 2},
		{"negative floors at zero", Unit{AttackFront: 1, Defense: 1, AttackModifier: -2, InBattleHex: true}, 0},
		{"mobile unit outside hex", Unit{AttackFront: 3, Defense: 1, MoveRange: ptr(2)}, 3},
		{"immobile unit outside hex", Unit{AttackFront: 3, Defense: 1}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.unit.CombatFactor())
		})
	}
}

func TestUnit_CombatFactor_Property_NonNegative(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		u := Unit{
			AttackFront:      rapid.IntRange(0, 20).Draw(rt, "front"),
			AttackBack:       rapid.IntRange(0, 20).Draw(rt, "back"),
			Defense:          rapid.IntRange(1, 6).Draw(rt, "defense"),
			AttackModifier:   rapid.IntRange(-4, 4).Draw(rt, "mod"),
			IsFlipped:        rapid.Bool().Draw(rt, "flipped"),
			IsExtendedRange:  rapid.Bool().Draw(rt, "extended"),
			InBattleHex:      rapid.Bool().Draw(rt, "hex"),
			DamageEliminated: rapid.Bool().Draw(rt, "eliminated"),
		}
		cf := u.CombatFactor()
		assert.GreaterOrEqual(rt, cf, 0)
		if u.DamageEliminated {
			assert.Equal(rt, 0, cf)
		}
	})
}

func TestUnit_LossDelta(t *testing.T) {
	u := naval(1, 5, 2, 1)
	assert.Equal(t, 3, u.LossDelta())
	u.IsFlipped = true
	assert.Equal(t, 2, u.LossDelta())
}

func TestUnit_ApplyStep(t *testing.T) {
	u := naval(1, 5, 2, 3)
	u.ApplyStep()
	assert.True(t, u.DamageFlipped)
	assert.False(t, u.DamageEliminated)
	assert.Equal(t, 3, u.DamageApplied())

	u.ApplyStep()
	assert.True(t, u.DamageEliminated)
	assert.Equal(t, 6, u.DamageApplied())

	// no further steps once eliminated
	u.ApplyStep()
	assert.Equal(t, 6, u.DamageApplied())
}

func TestUnit_ApplyStep_StoredFlipEliminates(t *testing.T) {
	u := naval(1, 5, 2, 2)
	u.IsFlipped = true
	u.ApplyStep()
	assert.False(t, u.DamageFlipped)
	assert.True(t, u.DamageEliminated)
	assert.Equal(t, 2, u.DamageApplied())
}

func TestUnit_IsAir(t *testing.T) {
	assert.True(t, air(1, 2, 1, 1).IsAir())
	assert.False(t, naval(1, 2, 1, 1).IsAir())
	assert.False(t, Unit{MoveRange: ptr(0)}.IsAir())
}

func TestCloneRoster_ResetsDamage(t *testing.T) {
	in := []Unit{{ID: 1, Defense: 1, DamageFlipped: true}}
	out := cloneRoster(in)
	assert.False(t, out[0].DamageFlipped)
	assert.True(t, in[0].DamageFlipped)
}
