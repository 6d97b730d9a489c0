package main

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/pefman/eots-battle/internal/game"
	"github.com/pefman/eots-battle/internal/models"
	"github.com/pefman/eots-battle/internal/stats"
)

const defaultReportLimit = 20

// analyze resolves an expanded request and stores the report.
func (s *server) analyze(ctx context.Context, req models.AnalyzeRequest) (stats.Report, error) {
	allied, japan, p, err := req.Battle()
	if err != nil {
		return stats.Report{}, err
	}
	rows, err := game.Resolve(allied, japan, p)
	if err != nil {
		return stats.Report{}, err
	}
	alliedRecs, japanRecs := req.Records()
	report := stats.NewReport(p, alliedRecs, japanRecs, rows)
	if err := s.reports.Save(ctx, report); err != nil {
		s.log.Error("reports: save", zap.String("id", report.ID), zap.Error(err))
		return stats.Report{}, err
	}
	s.log.Info("battle: analyzed",
		zap.String("id", report.ID),
		zap.Stringer("intel", p.Intel),
		zap.Stringer("reaction", p.Reaction),
		zap.Int("allied_units", len(allied)),
		zap.Int("japan_units", len(japan)),
		zap.Float64("allied_win", report.Summary.AlliedWin))
	return report, nil
}

// GET /api/reports?limit=N
func (s *server) handleReports(w http.ResponseWriter, r *http.Request) {
	limit := defaultReportLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	list, err := s.reports.List(r.Context(), limit)
	if err != nil {
		s.log.Error("reports: list", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if list == nil {
		list = []stats.Report{}
	}
	writeJSON(w, list)
}

// GET /api/reports/{id}
func (s *server) handleReport(w http.ResponseWriter, r *http.Request) {
	report, err := s.reports.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, report)
}
