// Package store provides the view model domains and their container.
package store

import "time"

// TradingStatus summarizes the bot's paper-trading account.
type TradingStatus struct {
	// Mode is "paper" or "real".
	Mode string `json:"mode"`

	// InitialBalance is the starting account balance in USD.
	InitialBalance float64 `json:"initial_balance"`

	// CurrentBalance is the available balance in USD.
	CurrentBalance float64 `json:"current_balance"`

	// TotalValue includes the estimated value of open positions.
	TotalValue float64 `json:"total_value"`

	// PnL is total profit or loss in USD.
	PnL float64 `json:"pnl"`

	// PnLPercent is PnL relative to the initial balance.
	PnLPercent float64 `json:"pnl_percent"`

	// TotalTrades counts every trade ever opened.
	TotalTrades int `json:"total_trades"`

	// OpenTrades counts currently open positions.
	OpenTrades int `json:"open_trades"`

	// ClosedTrades counts settled positions.
	ClosedTrades int `json:"closed_trades"`

	// Wins and Losses split the closed trades by outcome.
	Wins   int `json:"wins"`
	Losses int `json:"losses"`

	// WinRate is already expressed as a percentage by the server.
	WinRate float64 `json:"win_rate"`

	// BestTrade and WorstTrade are the extreme realized profits.
	BestTrade  float64 `json:"best_trade"`
	WorstTrade float64 `json:"worst_trade"`

	// AvgProfit is the mean realized profit per closed trade.
	AvgProfit float64 `json:"avg_profit"`
}

// WhaleSummary aggregates tracked whales by heat tier.
type WhaleSummary struct {
	TotalTracked int     `json:"total_tracked"`
	HotCount     int     `json:"hot_count"`
	WarmCount    int     `json:"warm_count"`
	ColdCount    int     `json:"cold_count"`
	TopScore     float64 `json:"top_score"`
	AvgScore     float64 `json:"avg_score"`
}

// WhaleEntry is one row of the whale leaderboard, in server rank order.
type WhaleEntry struct {
	Rank       int     `json:"rank"`
	Address    string  `json:"address"`
	Name       string  `json:"name"`
	Score      float64 `json:"score"`
	HeatLevel  string  `json:"heat_level"`
	WinRate    string  `json:"win_rate"`
	Profit     string  `json:"profit"`
	TradeCount int     `json:"trade_count"`
	IsActive   bool    `json:"is_active"`
}

// WhaleRanking is the ordered leaderboard snapshot.
type WhaleRanking struct {
	Whales []WhaleEntry `json:"whales"`
}

// Position is an open copy-trade position.
type Position struct {
	ID         string  `json:"id"`
	Market     string  `json:"market"`
	Side       string  `json:"side"`
	Amount     float64 `json:"amount"`
	EntryPrice float64 `json:"entry_price"`
	Whale      string  `json:"whale"`
}

// OpenPositions is the full set of currently open positions.
type OpenPositions struct {
	Positions []Position `json:"open_positions"`
}

// TradeRecord is one settled trade as formatted by the server.
type TradeRecord struct {
	ID         string `json:"id"`
	Market     string `json:"market"`
	Side       string `json:"side"`
	Amount     string `json:"amount"`
	EntryPrice string `json:"entry_price"`
	ExitPrice  string `json:"exit_price"`
	Profit     string `json:"profit"`
	Status     string `json:"status"`
	Whale      string `json:"whale"`
	OpenedAt   string `json:"opened_at"`
	IsWinner   bool   `json:"is_winner"`
}

// TradeHistory is the recent settled trades, newest first.
type TradeHistory struct {
	Trades []TradeRecord `json:"history"`
}

// MarketInfo is one tradable market.
type MarketInfo struct {
	ID        string  `json:"id"`
	Question  string  `json:"question"`
	Category  string  `json:"category"`
	YesPrice  float64 `json:"yes_price"`
	NoPrice   float64 `json:"no_price"`
	Volume24h float64 `json:"volume_24h"`
	Liquidity float64 `json:"liquidity"`
}

// MarketsByCategory maps category name to that category's markets in
// server-provided order. CategoryOrder preserves the order the server
// listed the categories in, which Go maps would otherwise lose.
type MarketsByCategory struct {
	ByCategory    map[string][]MarketInfo `json:"by_category"`
	CategoryOrder []string                `json:"category_order,omitempty"`
}

// BalancePoint is one sample of the account balance over time.
type BalancePoint struct {
	Timestamp string  `json:"timestamp"`
	Balance   float64 `json:"balance"`
	PnL       float64 `json:"pnl"`
}

// BalanceHistory is the ordered balance series for charting.
type BalanceHistory struct {
	Points []BalancePoint `json:"history"`
}

// ActivityEntry is one line of the dashboard activity feed.
type ActivityEntry struct {
	ID      string    `json:"id"`
	Kind    string    `json:"kind"` // trade, win, loss, action, error
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// ActivityLog holds recent activity entries, newest first.
type ActivityLog struct {
	Entries []ActivityEntry `json:"entries"`
}

// MaxActivityEntries bounds the activity feed.
const MaxActivityEntries = 100

// ScanPulse marks a transient "scanning N whales" indicator. It is
// cleared automatically shortly after it is set; Seq ties each pulse
// to its own expiry so a stale expiry cannot clear a newer pulse.
type ScanPulse struct {
	Count  int    `json:"count"`
	Active bool   `json:"active"`
	Seq    uint64 `json:"-"`
}

// ConnState is the push-channel liveness as seen by the rest of the
// client. Written only by the connection manager.
type ConnState int

const (
	StateConnecting ConnState = iota
	StateConnected
	StateDisconnected
)

// String returns the lowercase display name of the state.
func (s ConnState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}
