package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pefman/eots-battle/internal/game"
)

func ptr[T any](v T) *T { return &v }

func TestUnitRecord_ToUnit(t *testing.T) {
	rec := UnitRecord{ID: 7, Nationality: "US", UnitType: "Air", Branch: "Navy", AttackFront: 4, AttackBack: 2, Defense: 1, MoveRange: ptr(6.0), UnitName: "CV Enterprise"}
	u, err := rec.ToUnit()
	require.NoError(t, err)
	assert.Equal(t, game.SideAllied, u.Side)
	assert.Equal(t, game.CategoryAir, u.Category)
	assert.Equal(t, game.BranchNavy, u.Branch)
	assert.False(t, u.InBattleHex)
	assert.True(t, u.IsAir())

	rec.IsInBattleHex = ptr(true)
	u, err = rec.ToUnit()
	require.NoError(t, err)
	assert.True(t, u.InBattleHex)
}

func TestUnitRecord_ToUnit_NoMovementIsInHex(t *testing.T) {
	rec := UnitRecord{ID: 3, Nationality: "Japan", UnitType: "Naval", AttackFront: 3, AttackBack: 1, Defense: 2, IsInBattleHex: ptr(false)}
	u, err := rec.ToUnit()
	require.NoError(t, err)
	assert.Equal(t, game.SideJapan, u.Side)
	assert.True(t, u.InBattleHex)
	assert.Equal(t, 3, u.CombatFactor())
}

func TestUnitRecord_ToUnit_Rejects(t *testing.T) {
	tests := map[string]UnitRecord{
		"ground":           {UnitType: "Ground", Defense: 1},
		"zero defense":     {UnitType: "Naval"},
		"negative attack":  {UnitType: "Naval", Defense: 1, AttackFront: -1},
		"no extended move": {UnitType: "Air", Defense: 1, MoveRange: ptr(3.0), IsExtendedRange: true},
		"unknown type":     {UnitType: "Space", Defense: 1},
	}
	for name, rec := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := rec.ToUnit()
			assert.ErrorIs(t, err, ErrInvalidUnit)
		})
	}
}

func TestToRoster(t *testing.T) {
	_, err := ToRoster(game.SideAllied, nil)
	assert.ErrorIs(t, err, ErrEmptyRoster)

	_, err = ToRoster(game.SideAllied, []UnitRecord{{Nationality: "Japan", UnitType: "Naval", Defense: 1}})
	assert.ErrorIs(t, err, ErrInvalidUnit)
}

func TestAnalyzeRequest_DecodesNamesAndNumbers(t *testing.T) {
	body := `{
		"allied": [{"id": 1, "nationality": "US", "unit_type": "Naval", "attack_front": 4, "attack_back": 2, "defense": 2, "move_range": null}],
		"japan": [{"id": 2, "nationality": "Japan", "unit_type": "Air", "attack_front": 3, "attack_back": 1, "defense": 1, "move_range": 5, "move_range_extended": 8}],
		"overrides": {"2": {"is_extended_range": true, "attack_modifier": 1}},
		"intel_condition": 3,
		"reaction_player": "Allies",
		"air_power": "1943",
		"japan_adjust": -1
	}`
	var req AnalyzeRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	allied, japan, p, err := req.Battle()
	require.NoError(t, err)
	assert.Equal(t, game.Params{Intel: game.Surprise, Reaction: game.SideAllied, AirPower: game.AirPower1943, JapanAdjust: -1}, p)
	require.Len(t, allied, 1)
	require.Len(t, japan, 1)
	assert.True(t, japan[0].IsExtendedRange)
	assert.Equal(t, 2, japan[0].CombatFactor()) // (3+1)/2
	assert.True(t, allied[0].InBattleHex)
}

func TestAnalyzeRequest_Params_Invalid(t *testing.T) {
	_, err := AnalyzeRequest{IntelCondition: "ambuscade"}.Params()
	assert.ErrorIs(t, err, game.ErrInvalidParams)
	_, err = AnalyzeRequest{AirPower: "7"}.Params()
	assert.ErrorIs(t, err, game.ErrInvalidParams)
}

func TestAnalyzeRequest_Params_DefaultReaction(t *testing.T) {
	p, err := AnalyzeRequest{}.Params()
	require.NoError(t, err)
	assert.Equal(t, game.SideAllied, p.Reaction)
	assert.Equal(t, game.Intercept, p.Intel)
}
