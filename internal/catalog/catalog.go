// Package catalog loads the unit and card tables the analyzer draws rosters
// and decks from.
package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/pefman/eots-battle/internal/deck"
	"github.com/pefman/eots-battle/internal/game"
	"github.com/pefman/eots-battle/internal/models"
)

var ErrUnknownUnit = errors.New("unknown unit")

// Store holds the air and naval units of both sides plus the strategy decks.
// It is read-only after loading.
type Store struct {
	UnitsByID map[int]models.UnitRecord
	Allied    []models.UnitRecord
	Japan     []models.UnitRecord
	Decks     map[game.Side][]deck.Card
}

// Paths names the files a Store is loaded from. Deck paths are optional.
type Paths struct {
	Units      string
	AlliedDeck string
	JapanDeck  string
}

// Load reads every configured table.
func Load(p Paths) (*Store, error) {
	units, err := LoadUnits(p.Units)
	if err != nil {
		return nil, err
	}
	s := NewStore(units)
	for side, path := range map[game.Side]string{game.SideAllied: p.AlliedDeck, game.SideJapan: p.JapanDeck} {
		if path == "" {
			continue
		}
		cards, err := LoadCards(path)
		if err != nil {
			return nil, err
		}
		s.Decks[side] = cards
	}
	return s, nil
}

// NewStore indexes units, dropping ground units and splitting by side.
func NewStore(units []models.UnitRecord) *Store {
	s := &Store{
		UnitsByID: make(map[int]models.UnitRecord, len(units)),
		Decks:     map[game.Side][]deck.Card{},
	}
	for _, u := range units {
		if cat, err := u.Category(); err == nil && cat == game.CategoryGround {
			continue
		}
		s.UnitsByID[u.ID] = u
		if u.Side() == game.SideJapan {
			s.Japan = append(s.Japan, u)
		} else {
			s.Allied = append(s.Allied, u)
		}
	}
	for _, list := range [][]models.UnitRecord{s.Allied, s.Japan} {
		sort.SliceStable(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	}
	return s
}

// Units lists the catalog units of side; SideUnknown lists both.
func (s *Store) Units(side game.Side) []models.UnitRecord {
	switch side {
	case game.SideAllied:
		return s.Allied
	case game.SideJapan:
		return s.Japan
	default:
		out := make([]models.UnitRecord, 0, len(s.Allied)+len(s.Japan))
		out = append(out, s.Allied...)
		return append(out, s.Japan...)
	}
}

// Unit looks up one unit by id.
func (s *Store) Unit(id int) (models.UnitRecord, error) {
	u, ok := s.UnitsByID[id]
	if !ok {
		return models.UnitRecord{}, fmt.Errorf("%w: id %d", ErrUnknownUnit, id)
	}
	return u, nil
}

// Lookup returns the records for ids in order. Repeated ids are kept: a roster
// may field two copies of a unit type.
func (s *Store) Lookup(ids []int) ([]models.UnitRecord, error) {
	out := make([]models.UnitRecord, 0, len(ids))
	for _, id := range ids {
		u, err := s.Unit(id)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}

// Expand fills a request's inline rosters from its catalog references.
// Inline units come first, referenced units follow.
func (s *Store) Expand(req models.AnalyzeRequest) (models.AnalyzeRequest, error) {
	allied, err := s.Lookup(req.AlliedIDs)
	if err != nil {
		return req, err
	}
	japan, err := s.Lookup(req.JapanIDs)
	if err != nil {
		return req, err
	}
	req.Allied = append(append([]models.UnitRecord(nil), req.Allied...), allied...)
	req.Japan = append(append([]models.UnitRecord(nil), req.Japan...), japan...)
	req.AlliedIDs, req.JapanIDs = nil, nil
	return req, nil
}

// ========================= CSV loading =========================

func readCSV(path string) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	rows, err := parseCSV(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return rows, nil
}

// parseCSV reads a header row and returns one column->value map per record.
// Both comma and pipe separated files are accepted.
func parseCSV(r io.Reader) ([]map[string]string, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	text := string(raw)
	csvr := csv.NewReader(strings.NewReader(text))
	if first, _, _ := strings.Cut(text, "\n"); strings.Count(first, "|") > strings.Count(first, ",") {
		csvr.Comma = '|'
	}
	csvr.LazyQuotes = true
	csvr.FieldsPerRecord = -1
	records, err := csvr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	header := records[0]
	for i := range header {
		header[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff")))
	}
	out := make([]map[string]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		row := make(map[string]string, len(header))
		for i, h := range header {
			if i < len(rec) {
				row[h] = strings.TrimSpace(rec[i])
			}
		}
		out = append(out, row)
	}
	return out, nil
}

// LoadUnits reads the unit table. A unit's id is its data row index unless
// the file has an id column.
func LoadUnits(path string) ([]models.UnitRecord, error) {
	rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	return unitsFromRows(rows)
}

func unitsFromRows(rows []map[string]string) ([]models.UnitRecord, error) {
	out := make([]models.UnitRecord, 0, len(rows))
	for i, r := range rows {
		u := models.UnitRecord{
			ID:             i,
			Nationality:    r["nationality"],
			UnitType:       r["unit_type"],
			Branch:         r["branch"],
			UnitName:       r["unit_name"],
			ImageNameFront: r["image_name_front"],
			ImageNameBack:  r["image_name_back"],
			ExtendedLimit:  parseBool(r["extended_limit"]),
		}
		var err error
		if v := r["id"]; v != "" {
			if u.ID, err = strconv.Atoi(v); err != nil {
				return nil, fmt.Errorf("row %d: id %q: %w", i+1, v, err)
			}
		}
		if u.AttackFront, err = atoi(r["attack_front"]); err != nil {
			return nil, fmt.Errorf("row %d: attack_front: %w", i+1, err)
		}
		if u.AttackBack, err = atoi(r["attack_back"]); err != nil {
			return nil, fmt.Errorf("row %d: attack_back: %w", i+1, err)
		}
		if u.Defense, err = atoi(r["defense"]); err != nil {
			return nil, fmt.Errorf("row %d: defense: %w", i+1, err)
		}
		if u.MoveRange, err = parseRange(r["move_range"]); err != nil {
			return nil, fmt.Errorf("row %d: move_range: %w", i+1, err)
		}
		if u.MoveRangeExtended, err = parseRange(r["move_range_extended"]); err != nil {
			return nil, fmt.Errorf("row %d: move_range_extended: %w", i+1, err)
		}
		out = append(out, u)
	}
	return out, nil
}

// LoadCards reads a strategy deck table.
func LoadCards(path string) ([]deck.Card, error) {
	rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	return cardsFromRows(rows)
}

func cardsFromRows(rows []map[string]string) ([]deck.Card, error) {
	out := make([]deck.Card, 0, len(rows))
	for i, r := range rows {
		c := deck.Card{
			DrawCard:     parseBool(r["draw_card"]),
			ISREnd:       parseBool(r["isr_end"]),
			ISRStart:     parseBool(r["isr_start"]),
			IntelStatus:  missing(r["intel_status"]),
			WIELevel:     missing(r["wie_level"]),
			Weather:      parseBool(r["weather"]),
			Kamikaze:     parseBool(r["kamikaze"]),
			SouthPacific: parseBool(r["south_pacific"]),
		}
		var err error
		for _, f := range []struct {
			col string
			dst *int
		}{
			{"card_id", &c.ID},
			{"ops_value", &c.OpsValue},
			{"pw_change", &c.PWChange},
			{"logistics_value", &c.LogisticsValue},
			{"sub", &c.Sub},
		} {
			if *f.dst, err = atoi(r[f.col]); err != nil {
				return nil, fmt.Errorf("row %d: %s: %w", i+1, f.col, err)
			}
		}
		out = append(out, c)
	}
	return out, nil
}

func isMissing(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "nan", "na", "null", "none":
		return true
	}
	return false
}

func missing(s string) string {
	if isMissing(s) {
		return ""
	}
	return s
}

// atoi reads an integer column; blank cells are zero and "3.0" style floats
// written by spreadsheet exports are accepted.
func atoi(s string) (int, error) {
	if isMissing(s) {
		return 0, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, fmt.Errorf("not an integer: %q", s)
	}
	return int(f), nil
}

func parseRange(s string) (*float64, error) {
	if isMissing(s) {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("not a number: %q", s)
	}
	if math.IsNaN(f) {
		return nil, nil
	}
	return &f, nil
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes", "true", "t", "1":
		return true
	}
	return false
}
