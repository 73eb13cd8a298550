// Package ingest maintains the push connection to the dashboard server
// and merges push events with pull-based refreshes into the store.
package ingest

import (
	"encoding/json"

	"github.com/copydash/client/internal/store"
)

// Inbound message type tags as sent by the server.
const (
	TypeConnected    = "connected"
	TypeStatusUpdate = "status_update"
	TypeNewTrade     = "new_trade"
	TypeTradeClosed  = "trade_closed"
	TypePong         = "pong"
	TypeScanning     = "scanning"
)

// Envelope is the JSON wrapper of every inbound push frame. The
// scanning message is the odd one out: its count rides at the top
// level of the envelope instead of inside data.
type Envelope struct {
	Type  string          `json:"type"`
	Data  json.RawMessage `json:"data,omitempty"`
	Count int             `json:"count,omitempty"`
}

// ConnectedPayload is the initial full snapshot sent on handshake.
type ConnectedPayload struct {
	Status store.TradingStatus `json:"status"`
	Whales store.WhaleSummary  `json:"whales"`
}

// NewTradePayload describes a copy action the server just executed.
type NewTradePayload struct {
	TradeID    string  `json:"trade_id"`
	Market     string  `json:"market"`
	Side       string  `json:"side"`
	Amount     float64 `json:"amount"`
	Whale      string  `json:"whale"`
	WhaleScore float64 `json:"whale_score"`
	Reason     string  `json:"reason"`
}

// TradeClosedPayload reports a settled position. The sign of Profit
// classifies the trade as a win or a loss.
type TradeClosedPayload struct {
	Profit float64 `json:"profit"`
}
