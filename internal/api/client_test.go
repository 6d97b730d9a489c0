package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pefman/eots-battle/internal/deck"
	"github.com/pefman/eots-battle/internal/game"
	"github.com/pefman/eots-battle/internal/models"
	"github.com/pefman/eots-battle/internal/stats"
)

func TestClient_Analyze(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/battle/analyze", r.URL.Path)
		var req models.AnalyzeRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []int{1, 2}, req.AlliedIDs)
		assert.Equal(t, models.Enum("surprise"), req.IntelCondition)
		_ = json.NewEncoder(w).Encode(AnalyzeResponse{
			ID:   "r1",
			Rows: []game.Row{{AlliedDie: 9, JapanDie: 0, Winner: game.SideAllied}},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL + "/")
	res, err := c.Analyze(context.Background(), models.AnalyzeRequest{
		AlliedIDs:      []int{1, 2},
		JapanIDs:       []int{3},
		IntelCondition: "surprise",
	})
	require.NoError(t, err)
	assert.Equal(t, "r1", res.ID)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, game.SideAllied, res.Rows[0].Winner)
}

func TestClient_ErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": "Bad Request", "message": "allied: roster must contain at least one unit", "status": 400,
		})
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Analyze(context.Background(), models.AnalyzeRequest{})
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Contains(t, apiErr.Error(), "at least one unit")
}

func TestClient_UnitsCached(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "japan", r.URL.Query().Get("side"))
		_ = json.NewEncoder(w).Encode([]models.UnitRecord{{ID: 4, UnitName: "CV Akagi", Nationality: "Japan"}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	for i := 0; i < 3; i++ {
		units, err := c.Units(context.Background(), game.SideJapan)
		require.NoError(t, err)
		require.Len(t, units, 1)
		assert.Equal(t, "CV Akagi", units[0].UnitName)
	}
	assert.Equal(t, int32(1), hits.Load())
}

func TestClient_DeckQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/deck/allied", r.URL.Path)
		assert.Equal(t, "south_pacific", r.URL.Query().Get("deck"))
		assert.Equal(t, "1,5", r.URL.Query().Get("discards"))
		_ = json.NewEncoder(w).Encode(DeckResponse{Side: game.SideAllied, Remaining: 30})
	}))
	defer srv.Close()

	res, err := NewClient(srv.URL).Deck(context.Background(), game.SideAllied, deck.SouthPacific, []int{1, 5})
	require.NoError(t, err)
	assert.Equal(t, 30, res.Remaining)
	assert.Equal(t, game.SideAllied, res.Side)
}

func TestClient_Health(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer srv.Close()
	assert.NoError(t, NewClient(srv.URL).Health(context.Background()))
}

func TestClient_Reports(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/reports":
			assert.Equal(t, "3", r.URL.Query().Get("limit"))
			_ = json.NewEncoder(w).Encode([]stats.Report{{ID: "b"}, {ID: "a"}})
		case "/api/reports/a":
			_ = json.NewEncoder(w).Encode(stats.Report{ID: "a", Rows: []game.Row{{AlliedDie: 1}}})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()
	c := NewClient(srv.URL)

	list, err := c.Reports(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].ID)

	r, err := c.Report(context.Background(), "a")
	require.NoError(t, err)
	require.Len(t, r.Rows, 1)

	_, err = c.Report(context.Background(), "zz")
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}

func TestClient_Roll(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/battle/roll", r.URL.Path)
		var req models.AnalyzeRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(42), req.Seed)
		_ = json.NewEncoder(w).Encode(game.Row{AlliedDie: 4, JapanDie: 2, Winner: game.SideJapan})
	}))
	defer srv.Close()

	row, err := NewClient(srv.URL).Roll(context.Background(), models.AnalyzeRequest{Seed: 42})
	require.NoError(t, err)
	assert.Equal(t, 4, row.AlliedDie)
	assert.Equal(t, game.SideJapan, row.Winner)
}
