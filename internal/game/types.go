package game

import (
	"errors"
	"fmt"
	"strings"
)

// Side identifies one of the two players.
type Side int

const (
	SideUnknown Side = iota
	SideAllied
	SideJapan
)

func (s Side) String() string {
	switch s {
	case SideAllied:
		return "allied"
	case SideJapan:
		return "japan"
	default:
		return "unknown"
	}
}

// Opponent returns the other side. SideUnknown has no opponent.
func (s Side) Opponent() Side {
	switch s {
	case SideAllied:
		return SideJapan
	case SideJapan:
		return SideAllied
	default:
		return SideUnknown
	}
}

func (s Side) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Side) UnmarshalText(b []byte) error {
	v, err := ParseSide(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseSide accepts "allied"/"allies"/"japan" (any case) and the original
// numeric values 1 and 2.
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "allied", "allies", "ally", "1":
		return SideAllied, nil
	case "japan", "japanese", "2":
		return SideJapan, nil
	case "unknown", "":
		return SideUnknown, nil
	}
	return SideUnknown, fmt.Errorf("%w: side %q", ErrInvalidParams, s)
}

// IntelCondition is the intelligence condition of a battle.
type IntelCondition int

const (
	Intercept IntelCondition = iota
	Surprise
	Ambush
)

func (c IntelCondition) String() string {
	switch c {
	case Intercept:
		return "intercept"
	case Surprise:
		return "surprise"
	case Ambush:
		return "ambush"
	default:
		return "invalid"
	}
}

func (c IntelCondition) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *IntelCondition) UnmarshalText(b []byte) error {
	v, err := ParseIntelCondition(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// ParseIntelCondition accepts the condition name or its printed DRM (0, 3, 4).
func ParseIntelCondition(s string) (IntelCondition, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "intercept", "0", "":
		return Intercept, nil
	case "surprise", "3":
		return Surprise, nil
	case "ambush", "4":
		return Ambush, nil
	}
	return Intercept, fmt.Errorf("%w: intel condition %q", ErrInvalidParams, s)
}

// AirPower is the Allied air power DRM for the current year.
type AirPower int

const (
	AirPower1942 AirPower = 0
	AirPower1943 AirPower = 1
	AirPower1944 AirPower = 3
)

// Modifier returns the DRM granted to the Allied player.
func (a AirPower) Modifier() int { return int(a) }

func (a AirPower) String() string {
	switch a {
	case AirPower1942:
		return "1942"
	case AirPower1943:
		return "1943"
	case AirPower1944:
		return "1944"
	default:
		return "invalid"
	}
}

func (a AirPower) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

func (a *AirPower) UnmarshalText(b []byte) error {
	v, err := ParseAirPower(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// ParseAirPower accepts a year (1942..1945) or the DRM value itself.
func ParseAirPower(s string) (AirPower, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "+")
	switch s {
	case "", "0", "1942":
		return AirPower1942, nil
	case "1", "1943":
		return AirPower1943, nil
	case "3", "1944", "1945":
		return AirPower1944, nil
	}
	return AirPower1942, fmt.Errorf("%w: air power %q", ErrInvalidParams, s)
}

// Category is the unit type. Ground units never reach the engine.
type Category int

const (
	CategoryAir Category = iota + 1
	CategoryNaval
	CategoryGround
)

func (c Category) String() string {
	switch c {
	case CategoryAir:
		return "Air"
	case CategoryNaval:
		return "Naval"
	case CategoryGround:
		return "Ground"
	default:
		return ""
	}
}

// Branch is descriptive only.
type Branch int

const (
	BranchArmy Branch = iota + 1
	BranchNavy
)

func (b Branch) String() string {
	switch b {
	case BranchArmy:
		return "Army"
	case BranchNavy:
		return "Navy"
	default:
		return ""
	}
}

var (
	ErrInvalidParams  = errors.New("invalid battle parameters")
	ErrInvalidDefense = errors.New("unit defense must be positive")
)

// Params are the situational inputs of one battle.
type Params struct {
	Intel        IntelCondition `json:"intel_condition"`
	Reaction     Side           `json:"reaction_player"`
	AirPower     AirPower       `json:"air_power"`
	AlliedAdjust int            `json:"allied_adjust"`
	JapanAdjust  int            `json:"japan_adjust"`
}

// Validate rejects enum values outside their closed sets.
func (p Params) Validate() error {
	switch p.Intel {
	case Intercept, Surprise, Ambush:
	default:
		return fmt.Errorf("%w: intel condition %d", ErrInvalidParams, int(p.Intel))
	}
	switch p.Reaction {
	case SideAllied, SideJapan:
	default:
		return fmt.Errorf("%w: reaction player must be allied or japan", ErrInvalidParams)
	}
	switch p.AirPower {
	case AirPower1942, AirPower1943, AirPower1944:
	default:
		return fmt.Errorf("%w: air power %d", ErrInvalidParams, int(p.AirPower))
	}
	return nil
}

// Row is the outcome of one (allied die, japan die) pair. Each row carries a
// probability mass of 1/100.
type Row struct {
	AlliedDie        int     `json:"allied_die"`
	JapanDie         int     `json:"japan_die"`
	AlliedResult     float64 `json:"allied_result"`
	JapanResult      float64 `json:"japan_result"`
	AlliedLossPrelim int     `json:"allied_loss_prelim"`
	JapanLossPrelim  int     `json:"japan_loss_prelim"`
	AlliedLoss       int     `json:"allied_losses"`
	JapanLoss        int     `json:"japan_losses"`
	AlliedDamage     int     `json:"allied_damage"`
	JapanDamage      int     `json:"japan_damage"`
	AlliedCF         int     `json:"allied_cf"`
	JapanCF          int     `json:"japan_cf"`
	AlliedSurvivors  int     `json:"allied_survivors"`
	JapanSurvivors   int     `json:"japan_survivors"`
	Winner           Side    `json:"winner"`
}
