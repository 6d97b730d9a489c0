// Package scenario reads battle set-ups from YAML files.
package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pefman/eots-battle/internal/models"
)

var ErrNoUnits = errors.New("scenario has no units")

// Scenario is one battle: the request fields plus a name for display.
//
//	name: Coral Sea
//	intel_condition: surprise
//	reaction_player: allied
//	air_power: 1943
//	allied_ids: [3, 7]
//	japan:
//	  - unit_name: CV Shokaku
//	    nationality: Japan
//	    unit_type: Air
//	    ...
type Scenario struct {
	Name                  string `yaml:"name"`
	Description           string `yaml:"description,omitempty"`
	models.AnalyzeRequest `yaml:",inline"`
}

// Load reads and parses the file at path.
func Load(path string) (Scenario, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("read scenario: %w", err)
	}
	s, err := Parse(b)
	if err != nil {
		return Scenario{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes a scenario, rejecting unknown keys.
func Parse(b []byte) (Scenario, error) {
	var s Scenario
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return Scenario{}, fmt.Errorf("parse scenario: %w", err)
	}
	if len(s.Allied)+len(s.AlliedIDs) == 0 || len(s.Japan)+len(s.JapanIDs) == 0 {
		return Scenario{}, ErrNoUnits
	}
	if _, err := s.Params(); err != nil {
		return Scenario{}, err
	}
	return s, nil
}

// Title is the scenario name, or a description of its parameters.
func (s Scenario) Title() string {
	if s.Name != "" {
		return s.Name
	}
	p, err := s.Params()
	if err != nil {
		return "battle"
	}
	return fmt.Sprintf("%s, %s reacting, air power %s", p.Intel, p.Reaction, p.AirPower)
}
