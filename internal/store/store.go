package store

import (
	"sync"
)

// Domain names one independently replaceable slice of dashboard state.
type Domain string

const (
	DomainStatus     Domain = "status"
	DomainWhales     Domain = "whales"
	DomainRanking    Domain = "ranking"
	DomainPositions  Domain = "positions"
	DomainHistory    Domain = "history"
	DomainMarkets    Domain = "markets"
	DomainBalance    Domain = "balance"
	DomainActivity   Domain = "activity"
	DomainScan       Domain = "scan"
	DomainConnection Domain = "connection"
)

// Store holds the last-known-good snapshot of every domain. Writers
// replace whole domain values; readers always see a complete snapshot.
// The event router and the poll scheduler are the only writers.
type Store struct {
	mu sync.RWMutex

	status    TradingStatus
	hasStatus bool

	whales    WhaleSummary
	hasWhales bool

	ranking    WhaleRanking
	hasRanking bool

	positions    OpenPositions
	hasPositions bool

	history    TradeHistory
	hasHistory bool

	markets    MarketsByCategory
	hasMarkets bool

	balance    BalanceHistory
	hasBalance bool

	activity ActivityLog

	scan    ScanPulse
	scanSeq uint64

	conn ConnState

	subMu sync.Mutex
	subs  []chan<- Domain
}

// New creates an empty store. The connection starts out disconnected.
func New() *Store {
	return &Store{conn: StateDisconnected}
}

// Subscribe registers a channel that receives the domain tag after
// every mutation. Sends are non-blocking; a full channel misses the
// notification and catches up on the next one.
func (s *Store) Subscribe(ch chan<- Domain) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.subs = append(s.subs, ch)
}

// notify is called after the write lock is released.
func (s *Store) notify(d Domain) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- d:
		default:
		}
	}
}

// SetStatus replaces the trading status snapshot.
func (s *Store) SetStatus(v TradingStatus) {
	s.mu.Lock()
	s.status = v
	s.hasStatus = true
	s.mu.Unlock()
	s.notify(DomainStatus)
}

// Status returns the trading status and whether one has been loaded.
func (s *Store) Status() (TradingStatus, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status, s.hasStatus
}

// SetWhaleSummary replaces the whale tier summary.
func (s *Store) SetWhaleSummary(v WhaleSummary) {
	s.mu.Lock()
	s.whales = v
	s.hasWhales = true
	s.mu.Unlock()
	s.notify(DomainWhales)
}

// WhaleSummary returns the tier summary and whether one has been loaded.
func (s *Store) WhaleSummary() (WhaleSummary, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.whales, s.hasWhales
}

// SetRanking replaces the whale leaderboard.
func (s *Store) SetRanking(v WhaleRanking) {
	s.mu.Lock()
	s.ranking = v
	s.hasRanking = true
	s.mu.Unlock()
	s.notify(DomainRanking)
}

// Ranking returns the leaderboard and whether one has been loaded.
func (s *Store) Ranking() (WhaleRanking, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ranking, s.hasRanking
}

// SetPositions replaces the open position list.
func (s *Store) SetPositions(v OpenPositions) {
	s.mu.Lock()
	s.positions = v
	s.hasPositions = true
	s.mu.Unlock()
	s.notify(DomainPositions)
}

// Positions returns the open positions and whether they have been loaded.
func (s *Store) Positions() (OpenPositions, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.positions, s.hasPositions
}

// SetHistory replaces the settled trade list.
func (s *Store) SetHistory(v TradeHistory) {
	s.mu.Lock()
	s.history = v
	s.hasHistory = true
	s.mu.Unlock()
	s.notify(DomainHistory)
}

// History returns the trade history and whether it has been loaded.
func (s *Store) History() (TradeHistory, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history, s.hasHistory
}

// SetMarkets replaces the category-to-markets mapping.
func (s *Store) SetMarkets(v MarketsByCategory) {
	s.mu.Lock()
	s.markets = v
	s.hasMarkets = true
	s.mu.Unlock()
	s.notify(DomainMarkets)
}

// Markets returns the market mapping and whether it has been loaded.
func (s *Store) Markets() (MarketsByCategory, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.markets, s.hasMarkets
}

// SetBalanceHistory replaces the balance series.
func (s *Store) SetBalanceHistory(v BalanceHistory) {
	s.mu.Lock()
	s.balance = v
	s.hasBalance = true
	s.mu.Unlock()
	s.notify(DomainBalance)
}

// BalanceHistory returns the balance series and whether it has been loaded.
func (s *Store) BalanceHistory() (BalanceHistory, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.balance, s.hasBalance
}

// AppendActivity prepends an entry to the activity feed, trimming the
// feed to MaxActivityEntries.
func (s *Store) AppendActivity(e ActivityEntry) {
	s.mu.Lock()
	entries := make([]ActivityEntry, 0, len(s.activity.Entries)+1)
	entries = append(entries, e)
	entries = append(entries, s.activity.Entries...)
	if len(entries) > MaxActivityEntries {
		entries = entries[:MaxActivityEntries]
	}
	s.activity = ActivityLog{Entries: entries}
	s.mu.Unlock()
	s.notify(DomainActivity)
}

// SetActivity replaces the whole activity feed. Used when restoring a
// cached feed at startup.
func (s *Store) SetActivity(v ActivityLog) {
	s.mu.Lock()
	if len(v.Entries) > MaxActivityEntries {
		v.Entries = v.Entries[:MaxActivityEntries]
	}
	s.activity = v
	s.mu.Unlock()
	s.notify(DomainActivity)
}

// Activity returns the activity feed.
func (s *Store) Activity() ActivityLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activity
}

// SetScanPulse lights the transient scanning indicator and returns its
// sequence number for use with ClearScanPulse.
func (s *Store) SetScanPulse(count int) uint64 {
	s.mu.Lock()
	s.scanSeq++
	seq := s.scanSeq
	s.scan = ScanPulse{Count: count, Active: true, Seq: seq}
	s.mu.Unlock()
	s.notify(DomainScan)
	return seq
}

// ClearScanPulse extinguishes the indicator, but only while the pulse
// with the given sequence number is still the current one.
func (s *Store) ClearScanPulse(seq uint64) {
	s.mu.Lock()
	if s.scan.Seq != seq {
		s.mu.Unlock()
		return
	}
	s.scan = ScanPulse{}
	s.mu.Unlock()
	s.notify(DomainScan)
}

// ScanPulse returns the current scanning indicator.
func (s *Store) ScanPulse() ScanPulse {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scan
}

// SetConnState records the push-channel liveness.
func (s *Store) SetConnState(v ConnState) {
	s.mu.Lock()
	s.conn = v
	s.mu.Unlock()
	s.notify(DomainConnection)
}

// ConnState returns the push-channel liveness.
func (s *Store) ConnState() ConnState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.conn
}
