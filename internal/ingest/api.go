package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/copydash/client/internal/store"
)

// StatusResponse is the body of GET /api/status.
type StatusResponse struct {
	Mode      string              `json:"mode"`
	Trading   store.TradingStatus `json:"trading"`
	Whales    store.WhaleSummary  `json:"whales"`
	Timestamp string              `json:"timestamp"`
}

// WhalesResponse is the body of GET /api/whales.
type WhalesResponse struct {
	Whales  []store.WhaleEntry `json:"whales"`
	Summary store.WhaleSummary `json:"summary"`
}

// TradesResponse is the body of GET /api/trades.
type TradesResponse struct {
	OpenPositions []store.Position    `json:"open_positions"`
	History       []store.TradeRecord `json:"history"`
	Stats         store.TradingStatus `json:"stats"`
}

// MarketsResponse is the body of GET /api/markets. Category order as
// listed by the server is preserved for the combined "all" view.
type MarketsResponse struct {
	ByCategory    map[string][]store.MarketInfo
	CategoryOrder []string
	Total         int
}

// UnmarshalJSON decodes the response while keeping the order in which
// the server listed the categories.
func (r *MarketsResponse) UnmarshalJSON(data []byte) error {
	var raw struct {
		ByCategory map[string][]store.MarketInfo `json:"by_category"`
		Total      int                           `json:"total"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var keyed struct {
		ByCategory json.RawMessage `json:"by_category"`
	}
	if err := json.Unmarshal(data, &keyed); err != nil {
		return err
	}

	order, err := objectKeyOrder(keyed.ByCategory)
	if err != nil {
		return err
	}

	r.ByCategory = raw.ByCategory
	r.CategoryOrder = order
	r.Total = raw.Total
	return nil
}

// objectKeyOrder walks a JSON object and returns its keys in document
// order.
func objectKeyOrder(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, nil
	}

	var keys []string
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", keyTok)
		}
		keys = append(keys, key)

		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
	}
	return keys, nil
}

// BalanceHistoryResponse is the body of GET /api/balance-history.
type BalanceHistoryResponse struct {
	History []store.BalancePoint `json:"history"`
}

// ActionResult is the body returned by the fire-and-confirm POST
// endpoints (refresh-whales, reset, simulate).
type ActionResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// OK reports whether the server accepted the action.
func (r ActionResult) OK() bool {
	return r.Status != "error"
}

// APIClient fetches domain snapshots from the server's pull endpoints.
type APIClient struct {
	baseURL string
	client  *http.Client
}

// FetchTimeout bounds every pull request.
const FetchTimeout = 10 * time.Second

// NewAPIClient creates a client for the given server origin.
func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: FetchTimeout},
	}
}

// Status fetches the trading summary and whale tier counts.
func (c *APIClient) Status(ctx context.Context) (StatusResponse, error) {
	var out StatusResponse
	err := c.get(ctx, "/api/status", &out)
	return out, err
}

// Whales fetches the leaderboard and tier summary.
func (c *APIClient) Whales(ctx context.Context) (WhalesResponse, error) {
	var out WhalesResponse
	err := c.get(ctx, "/api/whales", &out)
	return out, err
}

// Trades fetches open positions and settled history in one call.
func (c *APIClient) Trades(ctx context.Context) (TradesResponse, error) {
	var out TradesResponse
	err := c.get(ctx, "/api/trades", &out)
	return out, err
}

// Markets fetches the category mapping. An empty or "all" category
// requests the full mapping.
func (c *APIClient) Markets(ctx context.Context, category string) (MarketsResponse, error) {
	path := "/api/markets"
	if category != "" && category != "all" {
		path += "?category=" + url.QueryEscape(category)
	}
	var out MarketsResponse
	err := c.get(ctx, path, &out)
	return out, err
}

// BalanceHistory fetches the balance series for charting.
func (c *APIClient) BalanceHistory(ctx context.Context) (BalanceHistoryResponse, error) {
	var out BalanceHistoryResponse
	err := c.get(ctx, "/api/balance-history", &out)
	return out, err
}

// RefreshWhales asks the server to reload whale data from upstream.
func (c *APIClient) RefreshWhales(ctx context.Context) (ActionResult, error) {
	return c.post(ctx, "/api/refresh-whales")
}

// Reset asks the server to reset paper trading to its initial state.
func (c *APIClient) Reset(ctx context.Context) (ActionResult, error) {
	return c.post(ctx, "/api/reset")
}

// Simulate asks the server to execute a synthetic test trade.
func (c *APIClient) Simulate(ctx context.Context) (ActionResult, error) {
	return c.post(ctx, "/api/simulate")
}

// get fetches path and decodes the JSON body into out.
func (c *APIClient) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request failed: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode failed: %w", err)
	}

	return nil
}

// post issues a fire-and-confirm action with no request body.
func (c *APIClient) post(ctx context.Context, path string) (ActionResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, nil)
	if err != nil {
		return ActionResult{}, fmt.Errorf("create request failed: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return ActionResult{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ActionResult{}, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var out ActionResult
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return ActionResult{}, fmt.Errorf("decode failed: %w", err)
	}

	return out, nil
}
