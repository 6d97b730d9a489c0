// Package deck answers card-deck questions: how many cards with a given
// attribute remain, and how likely a hand is to contain one.
package deck

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidCounts = errors.New("invalid deck counts")

// Type selects which cards make up a deck.
type Type int

const (
	FullDeck Type = iota + 1
	SouthPacific
)

func (t Type) String() string {
	switch t {
	case FullDeck:
		return "full"
	case SouthPacific:
		return "south_pacific"
	default:
		return "invalid"
	}
}

// ParseType accepts "full" or "south_pacific" (also "south-pacific", "sp").
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "full", "full_deck":
		return FullDeck, nil
	case "south_pacific", "south-pacific", "sp":
		return SouthPacific, nil
	}
	return 0, fmt.Errorf("%w: deck type %q", ErrInvalidCounts, s)
}

// Card is one strategy card with the attributes the analyzer counts.
type Card struct {
	ID             int    `json:"card_id"`
	OpsValue       int    `json:"ops_value"`
	DrawCard       bool   `json:"draw_card"`
	PWChange       int    `json:"pw_change"`
	ISREnd         bool   `json:"isr_end"`
	ISRStart       bool   `json:"isr_start"`
	IntelStatus    string `json:"intel_status,omitempty"`
	LogisticsValue int    `json:"logistics_value"`
	WIELevel       string `json:"wie_level,omitempty"`
	Sub            int    `json:"sub"`
	Weather        bool   `json:"weather"`
	Kamikaze       bool   `json:"kamikaze"`
	SouthPacific   bool   `json:"south_pacific"`
}

// AttributeCount is the number of remaining cards carrying one attribute.
type AttributeCount struct {
	Attribute string `json:"attribute"`
	Count     int    `json:"count"`
}

type attribute struct {
	name string
	has  func(Card) bool
}

var attributes = []attribute{
	{"1 OP", func(c Card) bool { return c.OpsValue == 1 }},
	{"2 OP", func(c Card) bool { return c.OpsValue == 2 }},
	{"3 OP", func(c Card) bool { return c.OpsValue == 3 }},
	{"Card Draw", func(c Card) bool { return c.DrawCard }},
	{"PW", func(c Card) bool { return c.PWChange > 0 }},
	{"ISR Ender", func(c Card) bool { return c.ISREnd }},
	{"ISR Starter", func(c Card) bool { return c.ISRStart }},
	{"Intel Change", func(c Card) bool { return c.IntelStatus != "" }},
	{"Logistics 4+", func(c Card) bool { return c.LogisticsValue > 3 }},
	{"WIE", func(c Card) bool { return c.WIELevel != "" }},
	{"Sub", func(c Card) bool { return c.Sub > 0 }},
	{"Weather", func(c Card) bool { return c.Weather }},
	{"Kamikaze", func(c Card) bool { return c.Kamikaze }},
}

// Remaining returns the cards of the deck type that have not been discarded.
func Remaining(cards []Card, t Type, discards []int) []Card {
	gone := make(map[int]struct{}, len(discards))
	for _, id := range discards {
		gone[id] = struct{}{}
	}
	out := make([]Card, 0, len(cards))
	for _, c := range cards {
		if t == SouthPacific && !c.SouthPacific {
			continue
		}
		if _, ok := gone[c.ID]; ok {
			continue
		}
		out = append(out, c)
	}
	return out
}

// AttributeCounts counts every tracked attribute over cards, in a fixed order.
func AttributeCounts(cards []Card) []AttributeCount {
	out := make([]AttributeCount, 0, len(attributes))
	for _, a := range attributes {
		n := 0
		for _, c := range cards {
			if a.has(c) {
				n++
			}
		}
		out = append(out, AttributeCount{Attribute: a.name, Count: n})
	}
	return out
}

// CalculateProbability returns the chance that drawing drawCount cards without
// replacement from a deck of deckCount cards yields at least one of the
// attributeCount cards carrying an attribute.
func CalculateProbability(deckCount, attributeCount, drawCount int) (float64, error) {
	switch {
	case deckCount <= 0:
		return 0, fmt.Errorf("%w: deck must contain cards", ErrInvalidCounts)
	case attributeCount < 0 || attributeCount > deckCount:
		return 0, fmt.Errorf("%w: attribute count %d outside 0..%d", ErrInvalidCounts, attributeCount, deckCount)
	case drawCount < 0 || drawCount > deckCount:
		return 0, fmt.Errorf("%w: draw count %d outside 0..%d", ErrInvalidCounts, drawCount, deckCount)
	}
	miss := 1.0
	for i := 0; i < drawCount; i++ {
		miss *= float64(deckCount-attributeCount-i) / float64(deckCount-i)
		if miss <= 0 {
			return 1, nil
		}
	}
	return 1 - miss, nil
}
