package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/pefman/eots-battle/internal/game"
)

// ========================= Roster records =========================
// Wire shapes for units and battle requests. The engine only ever sees the
// game types these convert into.

var (
	ErrEmptyRoster = errors.New("roster must contain at least one unit")
	ErrInvalidUnit = errors.New("invalid unit record")
)

type UnitRecord struct {
	ID                int      `json:"id" yaml:"id"`
	Nationality       string   `json:"nationality" yaml:"nationality"`
	UnitType          string   `json:"unit_type" yaml:"unit_type"`
	Branch            string   `json:"branch,omitempty" yaml:"branch,omitempty"`
	AttackFront       int      `json:"attack_front" yaml:"attack_front"`
	Defense           int      `json:"defense" yaml:"defense"`
	AttackBack        int      `json:"attack_back" yaml:"attack_back"`
	MoveRange         *float64 `json:"move_range" yaml:"move_range"`
	MoveRangeExtended *float64 `json:"move_range_extended" yaml:"move_range_extended"`
	ExtendedLimit     bool     `json:"extended_limit,omitempty" yaml:"extended_limit,omitempty"`
	UnitName          string   `json:"unit_name" yaml:"unit_name"`
	// Image references are passed through untouched.
	ImageNameFront string `json:"image_name_front,omitempty" yaml:"image_name_front,omitempty"`
	ImageNameBack  string `json:"image_name_back,omitempty" yaml:"image_name_back,omitempty"`

	// Battle-scoped overrides
	IsFlipped       bool  `json:"is_flipped,omitempty" yaml:"is_flipped,omitempty"`
	IsInBattleHex   *bool `json:"is_in_battle_hex,omitempty" yaml:"is_in_battle_hex,omitempty"`
	IsExtendedRange bool  `json:"is_extended_range,omitempty" yaml:"is_extended_range,omitempty"`
	AttackModifier  int   `json:"attack_modifier,omitempty" yaml:"attack_modifier,omitempty"`
}

// Overrides are the per-battle flags a caller may set on a catalog unit.
type Overrides struct {
	IsFlipped       bool  `json:"is_flipped,omitempty" yaml:"is_flipped,omitempty"`
	IsInBattleHex   *bool `json:"is_in_battle_hex,omitempty" yaml:"is_in_battle_hex,omitempty"`
	IsExtendedRange bool  `json:"is_extended_range,omitempty" yaml:"is_extended_range,omitempty"`
	AttackModifier  int   `json:"attack_modifier,omitempty" yaml:"attack_modifier,omitempty"`
}

// Apply returns a copy of r with the overrides set.
func (o Overrides) Apply(r UnitRecord) UnitRecord {
	r.IsFlipped = o.IsFlipped
	if o.IsInBattleHex != nil {
		v := *o.IsInBattleHex
		r.IsInBattleHex = &v
	}
	r.IsExtendedRange = o.IsExtendedRange
	r.AttackModifier = o.AttackModifier
	return r
}

// Side derives the player from the nationality column.
func (r UnitRecord) Side() game.Side {
	if strings.EqualFold(strings.TrimSpace(r.Nationality), "Japan") {
		return game.SideJapan
	}
	return game.SideAllied
}

// Category parses the unit_type column.
func (r UnitRecord) Category() (game.Category, error) {
	switch strings.ToLower(strings.TrimSpace(r.UnitType)) {
	case "air":
		return game.CategoryAir, nil
	case "naval":
		return game.CategoryNaval, nil
	case "ground":
		return game.CategoryGround, nil
	}
	return 0, fmt.Errorf("%w: unit %d has unit_type %q", ErrInvalidUnit, r.ID, r.UnitType)
}

func parseBranch(s string) game.Branch {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "army":
		return game.BranchArmy
	case "navy":
		return game.BranchNavy
	}
	return 0
}

// ToUnit validates the record and converts it into an engine unit. A unit
// without a movement range is always in the battle hex.
func (r UnitRecord) ToUnit() (game.Unit, error) {
	cat, err := r.Category()
	if err != nil {
		return game.Unit{}, err
	}
	switch {
	case cat == game.CategoryGround:
		return game.Unit{}, fmt.Errorf("%w: ground unit %d (%s) cannot fight air/naval battles", ErrInvalidUnit, r.ID, r.UnitName)
	case r.Defense <= 0:
		return game.Unit{}, fmt.Errorf("%w: unit %d (%s) defense must be positive", ErrInvalidUnit, r.ID, r.UnitName)
	case r.AttackFront < 0 || r.AttackBack < 0:
		return game.Unit{}, fmt.Errorf("%w: unit %d (%s) attack values must not be negative", ErrInvalidUnit, r.ID, r.UnitName)
	case r.IsExtendedRange && r.MoveRangeExtended == nil:
		return game.Unit{}, fmt.Errorf("%w: unit %d (%s) has no extended range", ErrInvalidUnit, r.ID, r.UnitName)
	}

	inHex := r.MoveRange == nil
	if !inHex && r.IsInBattleHex != nil {
		inHex = *r.IsInBattleHex
	}
	return game.Unit{
		ID:                r.ID,
		Name:              r.UnitName,
		Nationality:       r.Nationality,
		Side:              r.Side(),
		Category:          cat,
		Branch:            parseBranch(r.Branch),
		AttackFront:       r.AttackFront,
		AttackBack:        r.AttackBack,
		Defense:           r.Defense,
		MoveRange:         r.MoveRange,
		MoveRangeExtended: r.MoveRangeExtended,
		IsFlipped:         r.IsFlipped,
		InBattleHex:       inHex,
		IsExtendedRange:   r.IsExtendedRange,
		AttackModifier:    r.AttackModifier,
	}, nil
}

// ToRoster converts a list of records, checking that every unit belongs to side.
func ToRoster(side game.Side, records []UnitRecord) ([]game.Unit, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: %w", side, ErrEmptyRoster)
	}
	out := make([]game.Unit, 0, len(records))
	for _, r := range records {
		u, err := r.ToUnit()
		if err != nil {
			return nil, err
		}
		if u.Side != side {
			return nil, fmt.Errorf("%w: unit %d (%s) is %s, not %s", ErrInvalidUnit, r.ID, r.UnitName, u.Side, side)
		}
		out = append(out, u)
	}
	return out, nil
}

// ========================= Analyze request =========================

// Enum accepts a JSON string or number, so both "surprise" and 3 decode.
type Enum string

func (e *Enum) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*e = Enum(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", string(b))
	}
	*e = Enum(n.String())
	return nil
}

func (e *Enum) UnmarshalYAML(unmarshal func(any) error) error {
	var v any
	if err := unmarshal(&v); err != nil {
		return err
	}
	switch t := v.(type) {
	case string:
		*e = Enum(t)
	case int:
		*e = Enum(strconv.Itoa(t))
	case nil:
		*e = ""
	default:
		return fmt.Errorf("expected string or number, got %v", v)
	}
	return nil
}

type AnalyzeRequest struct {
	Allied []UnitRecord `json:"allied,omitempty" yaml:"allied,omitempty"`
	Japan  []UnitRecord `json:"japan,omitempty" yaml:"japan,omitempty"`
	// Catalog references, resolved by the server or CLI before conversion.
	AlliedIDs []int             `json:"allied_ids,omitempty" yaml:"allied_ids,omitempty"`
	JapanIDs  []int             `json:"japan_ids,omitempty" yaml:"japan_ids,omitempty"`
	Overrides map[int]Overrides `json:"overrides,omitempty" yaml:"overrides,omitempty"`

	IntelCondition Enum `json:"intel_condition" yaml:"intel_condition"`
	ReactionPlayer Enum `json:"reaction_player" yaml:"reaction_player"`
	AirPower       Enum `json:"air_power" yaml:"air_power"`
	AlliedAdjust   int  `json:"allied_adjust" yaml:"allied_adjust"`
	JapanAdjust    int  `json:"japan_adjust" yaml:"japan_adjust"`

	Seed int64 `json:"seed,omitempty" yaml:"seed,omitempty"`
}

// Params parses and validates the situational parameters.
func (r AnalyzeRequest) Params() (game.Params, error) {
	intel, err := game.ParseIntelCondition(string(r.IntelCondition))
	if err != nil {
		return game.Params{}, err
	}
	reaction, err := game.ParseSide(string(r.ReactionPlayer))
	if err != nil {
		return game.Params{}, err
	}
	if reaction == game.SideUnknown {
		reaction = game.SideAllied
	}
	air, err := game.ParseAirPower(string(r.AirPower))
	if err != nil {
		return game.Params{}, err
	}
	p := game.Params{
		Intel:        intel,
		Reaction:     reaction,
		AirPower:     air,
		AlliedAdjust: r.AlliedAdjust,
		JapanAdjust:  r.JapanAdjust,
	}
	return p, p.Validate()
}

// Battle converts the request's inline rosters and parameters.
func (r AnalyzeRequest) Battle() (allied, japan []game.Unit, p game.Params, err error) {
	if p, err = r.Params(); err != nil {
		return nil, nil, game.Params{}, err
	}
	alliedRecs, japanRecs := r.Records()
	if allied, err = ToRoster(game.SideAllied, alliedRecs); err != nil {
		return nil, nil, game.Params{}, err
	}
	if japan, err = ToRoster(game.SideJapan, japanRecs); err != nil {
		return nil, nil, game.Params{}, err
	}
	return allied, japan, p, nil
}

// Records returns the inline rosters with the per-unit overrides applied.
func (r AnalyzeRequest) Records() (allied, japan []UnitRecord) {
	return r.applyOverrides(r.Allied), r.applyOverrides(r.Japan)
}

func (r AnalyzeRequest) applyOverrides(records []UnitRecord) []UnitRecord {
	if len(r.Overrides) == 0 {
		return records
	}
	out := make([]UnitRecord, len(records))
	for i, rec := range records {
		if o, ok := r.Overrides[rec.ID]; ok {
			rec = o.Apply(rec)
		}
		out[i] = rec
	}
	return out
}
