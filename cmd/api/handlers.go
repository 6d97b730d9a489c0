package main

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/pefman/eots-battle/internal/api"
	"github.com/pefman/eots-battle/internal/deck"
	"github.com/pefman/eots-battle/internal/engine"
	"github.com/pefman/eots-battle/internal/game"
	"github.com/pefman/eots-battle/internal/models"
)

// GET /api/units?side=allied|japan
func (s *server) handleUnits(w http.ResponseWriter, r *http.Request) {
	side, err := game.ParseSide(r.URL.Query().Get("side"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	list := s.catalog.Units(side)
	if list == nil {
		list = []models.UnitRecord{}
	}
	writeJSON(w, list)
}

// GET /api/units/{id}
func (s *server) handleUnit(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid unit id")
		return
	}
	u, err := s.catalog.Unit(id)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, u)
}

// decodeBattle reads an analyze request and resolves its catalog references.
func (s *server) decodeBattle(w http.ResponseWriter, r *http.Request) (models.AnalyzeRequest, bool) {
	var req models.AnalyzeRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return req, false
	}
	req, err := s.catalog.Expand(req)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return req, false
	}
	return req, true
}

// POST /api/battle/analyze
func (s *server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeBattle(w, r)
	if !ok {
		return
	}
	report, err := s.analyze(r.Context(), req)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, api.AnalyzeResponse{ID: report.ID, Summary: report.Summary, Rows: report.Rows})
}

// POST /api/battle/roll
func (s *server) handleRoll(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeBattle(w, r)
	if !ok {
		return
	}
	allied, japan, p, err := req.Battle()
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	rng := engine.NewRNG(req.Seed)
	ad, jd := game.Die.Roll(rng), game.Die.Roll(rng)
	row, err := game.ResolveRow(allied, japan, p, ad, jd)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	s.log.Debug("battle: roll",
		zap.Int("allied_die", ad),
		zap.Int("japan_die", jd),
		zap.Stringer("winner", row.Winner))
	writeJSON(w, row)
}

// GET /api/deck/{side}?deck=full|south_pacific&discards=1,2,3
func (s *server) handleDeck(w http.ResponseWriter, r *http.Request) {
	side, err := game.ParseSide(mux.Vars(r)["side"])
	if err != nil || side == game.SideUnknown {
		writeError(w, http.StatusBadRequest, "side must be allied or japan")
		return
	}
	t, err := deck.ParseType(r.URL.Query().Get("deck"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	discards, err := parseIDs(r.URL.Query().Get("discards"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid discards: "+err.Error())
		return
	}
	cards, ok := s.catalog.Decks[side]
	if !ok {
		writeError(w, http.StatusNotFound, "no deck loaded for "+side.String())
		return
	}
	remaining := deck.Remaining(cards, t, discards)
	writeJSON(w, api.DeckResponse{
		Side:       side,
		Deck:       t.String(),
		Discards:   discards,
		Remaining:  len(remaining),
		Attributes: deck.AttributeCounts(remaining),
	})
}

// GET /api/deck/probability?deck=52&attribute=4&draw=7
func (s *server) handleProbability(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var counts [3]int
	for i, key := range []string{"deck", "attribute", "draw"} {
		n, err := strconv.Atoi(strings.TrimSpace(q.Get(key)))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid "+key)
			return
		}
		counts[i] = n
	}
	p, err := deck.CalculateProbability(counts[0], counts[1], counts[2])
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, api.ProbabilityResponse{Deck: counts[0], Attribute: counts[1], Draw: counts[2], Probability: p})
}

func parseIDs(s string) ([]int, error) {
	out := []int{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}
