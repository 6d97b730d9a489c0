package main

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/pefman/eots-battle/internal/models"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

const wsReadTimeout = 30 * time.Second

type wsMsg struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// GET /ws/analyze
//
// The client sends one analyze request. The server stores the report like
// POST /api/battle/analyze, answers with a "row" message per die pair, then a
// "summary" message, then closes.
func (s *server) handleAnalyzeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("ws: upgrade", zap.Error(err))
		return
	}
	defer func() {
		_ = conn.Close()
		s.log.Debug("ws: closed", zap.String("remote", r.RemoteAddr))
	}()
	conn.SetReadLimit(maxBodyBytes)
	_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))

	var req models.AnalyzeRequest
	if err := conn.ReadJSON(&req); err != nil {
		s.log.Warn("ws: read", zap.Error(err))
		s.wsError(conn, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	req, err = s.catalog.Expand(req)
	if err != nil {
		s.wsError(conn, statusFor(err), err.Error())
		return
	}
	report, err := s.analyze(r.Context(), req)
	if err != nil {
		s.wsError(conn, statusFor(err), err.Error())
		return
	}

	for _, row := range report.Rows {
		if err := conn.WriteJSON(wsMsg{Type: "row", Data: row}); err != nil {
			s.log.Warn("ws: write", zap.Error(err))
			return
		}
	}
	if err := conn.WriteJSON(wsMsg{Type: "summary", Data: report.Summary}); err != nil {
		s.log.Warn("ws: write", zap.Error(err))
		return
	}
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (s *server) wsError(conn *websocket.Conn, code int, msg string) {
	_ = conn.WriteJSON(wsMsg{Type: "error", Data: apiError(code, msg)})
}
