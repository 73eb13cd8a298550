package ingest

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/copydash/client/internal/store"
)

// ScanPulseWindow is how long the transient scanning indicator stays lit.
const ScanPulseWindow = 2 * time.Second

// Refresher schedules on-demand refreshes for the named domains.
// Implemented by the Poller.
type Refresher interface {
	Kick(domains ...store.Domain)
}

// Router classifies inbound push frames by their type tag and applies
// the matching store update. Unknown or malformed frames are dropped;
// the server is trusted but may add message types we do not know yet.
type Router struct {
	store   *store.Store
	refresh Refresher
}

// NewRouter creates a router writing into st and delegating targeted
// refreshes to r.
func NewRouter(st *store.Store, r Refresher) *Router {
	return &Router{store: st, refresh: r}
}

// Dispatch consumes one raw inbound frame.
func (rt *Router) Dispatch(raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		slog.Debug("ws_decode_failed", "error", err, "raw", truncate(string(raw), 120))
		return
	}

	switch env.Type {
	case TypeConnected:
		rt.handleConnected(env.Data)
	case TypeStatusUpdate:
		rt.handleStatusUpdate(env.Data)
	case TypeNewTrade:
		rt.handleNewTrade(env.Data)
	case TypeTradeClosed:
		rt.handleTradeClosed(env.Data)
	case TypePong:
		// Keepalive acknowledgment, nothing to update.
	case TypeScanning:
		rt.handleScanning(env.Count)
	default:
		slog.Debug("ws_unknown_type", "type", env.Type)
	}
}

// handleConnected applies the initial full snapshot from the handshake.
func (rt *Router) handleConnected(data json.RawMessage) {
	var p ConnectedPayload
	if err := json.Unmarshal(data, &p); err != nil {
		slog.Debug("ws_bad_payload", "type", TypeConnected, "error", err)
		return
	}

	rt.store.SetStatus(p.Status)
	rt.store.SetWhaleSummary(p.Whales)

	slog.Info("ws_handshake",
		"balance", p.Status.CurrentBalance,
		"hot", p.Whales.HotCount,
		"warm", p.Whales.WarmCount,
		"cold", p.Whales.ColdCount,
	)
}

func (rt *Router) handleStatusUpdate(data json.RawMessage) {
	var status store.TradingStatus
	if err := json.Unmarshal(data, &status); err != nil {
		slog.Debug("ws_bad_payload", "type", TypeStatusUpdate, "error", err)
		return
	}
	rt.store.SetStatus(status)
}

// handleNewTrade logs the copy action and schedules refreshes of the
// position and history domains. The authoritative post-trade state
// comes from the server, not from the push payload.
func (rt *Router) handleNewTrade(data json.RawMessage) {
	var p NewTradePayload
	if err := json.Unmarshal(data, &p); err != nil {
		slog.Debug("ws_bad_payload", "type", TypeNewTrade, "error", err)
		return
	}

	rt.store.AppendActivity(store.ActivityEntry{
		ID:      uuid.NewString(),
		Kind:    "trade",
		Message: fmt.Sprintf("Copied %s $%.2f on %s (whale %s)", p.Side, p.Amount, p.Market, p.Whale),
		At:      time.Now(),
	})

	rt.refresh.Kick(store.DomainPositions, store.DomainHistory)
}

// handleTradeClosed logs the realized profit or loss and schedules the
// same targeted refreshes as a new trade.
func (rt *Router) handleTradeClosed(data json.RawMessage) {
	var p TradeClosedPayload
	if err := json.Unmarshal(data, &p); err != nil {
		slog.Debug("ws_bad_payload", "type", TypeTradeClosed, "error", err)
		return
	}

	kind := "win"
	verdict := "profit"
	if p.Profit < 0 {
		kind = "loss"
		verdict = "loss"
	}

	rt.store.AppendActivity(store.ActivityEntry{
		ID:      uuid.NewString(),
		Kind:    kind,
		Message: fmt.Sprintf("Closed position: %s %s", signedUSD(p.Profit), verdict),
		At:      time.Now(),
	})

	rt.refresh.Kick(store.DomainPositions, store.DomainHistory)
}

// handleScanning lights the scan pulse and arms its expiry. The expiry
// only clears the pulse it armed, so a newer pulse outlives an older
// timer firing.
func (rt *Router) handleScanning(count int) {
	seq := rt.store.SetScanPulse(count)

	time.AfterFunc(ScanPulseWindow, func() {
		rt.store.ClearScanPulse(seq)
	})
}

// signedUSD renders a signed dollar amount: "+$12.50" or "$-12.50".
func signedUSD(v float64) string {
	if v < 0 {
		return fmt.Sprintf("$-%.2f", -v)
	}
	return fmt.Sprintf("+$%.2f", v)
}

// truncate shortens a string for logging.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
