package stats

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pefman/eots-battle/internal/game"
	"github.com/pefman/eots-battle/internal/models"
)

var ErrNotFound = errors.New("report not found")

// Report is an immutable record of one analysis.
type Report struct {
	ID      string              `json:"id"`
	Created int64               `json:"created"`
	Params  game.Params         `json:"params"`
	Allied  []models.UnitRecord `json:"allied"`
	Japan   []models.UnitRecord `json:"japan"`
	Summary Summary             `json:"summary"`
	Rows    []game.Row          `json:"rows,omitempty"`
}

// NewReport stamps a fresh id and creation time on an analysis.
func NewReport(p game.Params, allied, japan []models.UnitRecord, rows []game.Row) Report {
	return Report{
		ID:      uuid.NewString(),
		Created: time.Now().Unix(),
		Params:  p,
		Allied:  allied,
		Japan:   japan,
		Summary: Summarize(rows),
		Rows:    rows,
	}
}

// ReportStore keeps analysis reports.
type ReportStore interface {
	Save(ctx context.Context, r Report) error
	Get(ctx context.Context, id string) (Report, error)
	List(ctx context.Context, limit int) ([]Report, error)
	Close() error
}

// History is an in-memory ReportStore that keeps the newest reports up to a
// fixed capacity.
type History struct {
	mu    sync.Mutex
	max   int
	order []string
	byID  map[string]Report
}

func NewHistory(max int) *History {
	if max <= 0 {
		max = 100
	}
	return &History{max: max, byID: map[string]Report{}}
}

func (h *History) Save(ctx context.Context, r Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.byID[r.ID]; !ok {
		h.order = append(h.order, r.ID)
	}
	h.byID[r.ID] = r
	for len(h.order) > h.max {
		delete(h.byID, h.order[0])
		h.order = h.order[1:]
	}
	return nil
}

func (h *History) Get(ctx context.Context, id string) (Report, error) {
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	r, ok := h.byID[id]
	if !ok {
		return Report{}, ErrNotFound
	}
	return r, nil
}

// List returns up to limit reports, newest first, without their rows.
func (h *History) List(ctx context.Context, limit int) ([]Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if limit <= 0 || limit > len(h.order) {
		limit = len(h.order)
	}
	out := make([]Report, 0, limit)
	for i := len(h.order) - 1; i >= 0 && len(out) < limit; i-- {
		r := h.byID[h.order[i]]
		r.Rows = nil
		out = append(out, r)
	}
	return out, nil
}

// Reset clears the history. Intended for tests and dev convenience.
func (h *History) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.order = nil
	h.byID = map[string]Report{}
}

func (h *History) Close() error { return nil }
