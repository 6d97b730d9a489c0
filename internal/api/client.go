// Package api holds the analyzer's HTTP wire types and a client for them.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pefman/eots-battle/internal/deck"
	"github.com/pefman/eots-battle/internal/game"
	"github.com/pefman/eots-battle/internal/models"
	"github.com/pefman/eots-battle/internal/stats"
)

var httpClient = &http.Client{Timeout: 8 * time.Second}

// ========================= Wire types =========================

// AnalyzeResponse is the body of POST /api/battle/analyze.
type AnalyzeResponse struct {
	ID      string        `json:"id"`
	Summary stats.Summary `json:"summary"`
	Rows    []game.Row    `json:"rows"`
}

// DeckResponse is the body of GET /api/deck/{side}.
type DeckResponse struct {
	Side       game.Side             `json:"side"`
	Deck       string                `json:"deck"`
	Discards   []int                 `json:"discards"`
	Remaining  int                   `json:"remaining"`
	Attributes []deck.AttributeCount `json:"attributes"`
}

// ProbabilityResponse is the body of GET /api/deck/probability.
type ProbabilityResponse struct {
	Deck        int     `json:"deck"`
	Attribute   int     `json:"attribute"`
	Draw        int     `json:"draw"`
	Probability float64 `json:"probability"`
}

// StreamMessage is one websocket frame of /ws/analyze. Type is "row",
// "summary" or "error"; Data holds a game.Row, a stats.Summary or an Error.
type StreamMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Error is the JSON error body every endpoint returns.
type Error struct {
	Code    string `json:"error"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api status %d", e.Status)
	}
	return fmt.Sprintf("api status %d: %s", e.Status, e.Message)
}

// ========================= Client =========================

// Config holds API configuration
type Config struct {
	BaseURL  string
	CacheTTL time.Duration
}

type Client struct {
	config Config

	// catalog units change only on redeploy
	unitsMu   sync.RWMutex
	units     map[game.Side][]models.UnitRecord
	unitsTime map[game.Side]time.Time
}

func NewClient(baseURL string) *Client {
	return &Client{
		config:    Config{BaseURL: baseURL, CacheTTL: 5 * time.Minute},
		units:     map[game.Side][]models.UnitRecord{},
		unitsTime: map[game.Side]time.Time{},
	}
}

func (c *Client) url(path string) string {
	return strings.TrimRight(c.config.BaseURL, "/") + path
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		apiErr := &Error{Status: resp.StatusCode}
		_ = json.NewDecoder(resp.Body).Decode(apiErr)
		apiErr.Status = resp.StatusCode
		return apiErr
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) apiGet(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(path), nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) apiPost(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(path), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

// Health checks that the server is up.
func (c *Client) Health(ctx context.Context) error {
	var res map[string]string
	if err := c.apiGet(ctx, "/api/healthz", &res); err != nil {
		return err
	}
	if res["status"] != "ok" {
		return fmt.Errorf("api unhealthy: %q", res["status"])
	}
	return nil
}

// Units lists the catalog units of side, cached for CacheTTL.
func (c *Client) Units(ctx context.Context, side game.Side) ([]models.UnitRecord, error) {
	c.unitsMu.RLock()
	if cached, ok := c.units[side]; ok && time.Since(c.unitsTime[side]) < c.config.CacheTTL {
		result := make([]models.UnitRecord, len(cached))
		copy(result, cached)
		c.unitsMu.RUnlock()
		return result, nil
	}
	c.unitsMu.RUnlock()

	path := "/api/units"
	if side != game.SideUnknown {
		path += "?side=" + url.QueryEscape(side.String())
	}
	var res []models.UnitRecord
	if err := c.apiGet(ctx, path, &res); err != nil {
		return nil, err
	}

	c.unitsMu.Lock()
	c.units[side] = append([]models.UnitRecord(nil), res...)
	c.unitsTime[side] = time.Now()
	c.unitsMu.Unlock()
	return res, nil
}

// Unit fetches one catalog unit.
func (c *Client) Unit(ctx context.Context, id int) (models.UnitRecord, error) {
	var res models.UnitRecord
	err := c.apiGet(ctx, "/api/units/"+strconv.Itoa(id), &res)
	return res, err
}

// Analyze resolves a battle on the server. The server stores a report.
func (c *Client) Analyze(ctx context.Context, req models.AnalyzeRequest) (AnalyzeResponse, error) {
	var res AnalyzeResponse
	err := c.apiPost(ctx, "/api/battle/analyze", req, &res)
	return res, err
}

// Roll resolves one randomly rolled die pair on the server.
func (c *Client) Roll(ctx context.Context, req models.AnalyzeRequest) (game.Row, error) {
	var res game.Row
	err := c.apiPost(ctx, "/api/battle/roll", req, &res)
	return res, err
}

// Report fetches a stored report with its rows.
func (c *Client) Report(ctx context.Context, id string) (stats.Report, error) {
	var res stats.Report
	err := c.apiGet(ctx, "/api/reports/"+url.PathEscape(id), &res)
	return res, err
}

// Reports lists recent reports, newest first.
func (c *Client) Reports(ctx context.Context, limit int) ([]stats.Report, error) {
	path := "/api/reports"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var res []stats.Report
	err := c.apiGet(ctx, path, &res)
	return res, err
}

// Deck counts the attributes left in side's deck after discards.
func (c *Client) Deck(ctx context.Context, side game.Side, t deck.Type, discards []int) (DeckResponse, error) {
	q := url.Values{}
	q.Set("deck", t.String())
	if len(discards) > 0 {
		ids := make([]string, len(discards))
		for i, d := range discards {
			ids[i] = strconv.Itoa(d)
		}
		q.Set("discards", strings.Join(ids, ","))
	}
	var res DeckResponse
	err := c.apiGet(ctx, "/api/deck/"+side.String()+"?"+q.Encode(), &res)
	return res, err
}

// Stream resolves a battle over the websocket endpoint, calling onRow for
// each row as it arrives. It returns the closing summary.
func (c *Client) Stream(ctx context.Context, req models.AnalyzeRequest, onRow func(game.Row)) (stats.Summary, error) {
	wsURL := c.url("/ws/analyze")
	switch {
	case strings.HasPrefix(wsURL, "https://"):
		wsURL = "wss://" + strings.TrimPrefix(wsURL, "https://")
	case strings.HasPrefix(wsURL, "http://"):
		wsURL = "ws://" + strings.TrimPrefix(wsURL, "http://")
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return stats.Summary{}, fmt.Errorf("ws dial: %w", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(req); err != nil {
		return stats.Summary{}, fmt.Errorf("ws send: %w", err)
	}
	for {
		var msg StreamMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return stats.Summary{}, fmt.Errorf("ws read: %w", err)
		}
		switch msg.Type {
		case "row":
			var row game.Row
			if err := json.Unmarshal(msg.Data, &row); err != nil {
				return stats.Summary{}, fmt.Errorf("ws row: %w", err)
			}
			if onRow != nil {
				onRow(row)
			}
		case "summary":
			var sum stats.Summary
			if err := json.Unmarshal(msg.Data, &sum); err != nil {
				return stats.Summary{}, fmt.Errorf("ws summary: %w", err)
			}
			return sum, nil
		case "error":
			apiErr := &Error{}
			if err := json.Unmarshal(msg.Data, apiErr); err != nil {
				return stats.Summary{}, fmt.Errorf("ws error: %w", err)
			}
			return stats.Summary{}, apiErr
		default:
			return stats.Summary{}, fmt.Errorf("ws: unexpected message type %q", msg.Type)
		}
	}
}
