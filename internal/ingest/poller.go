package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/copydash/client/internal/store"
)

// KickBuffer is the size of the on-demand refresh queue.
const KickBuffer = 64

// Poller issues pull-based refreshes for each data domain. The status
// and balance domains run on periodic schedules; the rest are loaded
// once at startup and thereafter only on demand. A fetch failure
// leaves the previous snapshot untouched.
type Poller struct {
	api   *APIClient
	store *store.Store

	statusEvery  time.Duration
	balanceEvery time.Duration

	mu       sync.Mutex
	category string

	// limiter throttles user-triggered refresh bursts; push-triggered
	// kicks bypass it.
	limiter *rate.Limiter

	kicks    chan store.Domain
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewPoller creates a poll scheduler.
func NewPoller(api *APIClient, st *store.Store, statusEvery, balanceEvery time.Duration, category string) *Poller {
	return &Poller{
		api:          api,
		store:        st,
		statusEvery:  statusEvery,
		balanceEvery: balanceEvery,
		category:     category,
		limiter:      rate.NewLimiter(rate.Every(time.Second), 3),
		kicks:        make(chan store.Domain, KickBuffer),
		stopChan:     make(chan struct{}),
	}
}

// Start queues the initial load of every domain and launches the
// periodic and on-demand workers. The initial fetches run on the kick
// worker; a slow or unreachable server never holds up startup.
func (p *Poller) Start(ctx context.Context) {
	p.Kick(
		store.DomainStatus,
		store.DomainRanking,
		store.DomainPositions,
		store.DomainMarkets,
		store.DomainBalance,
	)

	p.wg.Add(1)
	go p.tickLoop(ctx, p.statusEvery, store.DomainStatus)

	p.wg.Add(1)
	go p.tickLoop(ctx, p.balanceEvery, store.DomainBalance)

	p.wg.Add(1)
	go p.kickLoop(ctx)
}

// Stop cancels all periodic timers and waits for in-flight workers.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() { close(p.stopChan) })
	p.wg.Wait()
}

// Kick schedules on-demand refreshes. Non-blocking: a full queue drops
// the request, the domain's next scheduled or manual refresh covers it.
func (p *Poller) Kick(domains ...store.Domain) {
	for _, d := range domains {
		select {
		case p.kicks <- d:
		default:
			slog.Warn("refresh_queue_full", "domain", d)
		}
	}
}

// KickManual is Kick for user-triggered refreshes, throttled so a held
// key does not hammer the server. Returns false when throttled.
func (p *Poller) KickManual(domains ...store.Domain) bool {
	if !p.limiter.Allow() {
		slog.Debug("manual_refresh_throttled")
		return false
	}
	p.Kick(domains...)
	return true
}

// SetCategory changes the market category filter and refreshes the
// markets domain.
func (p *Poller) SetCategory(category string) {
	p.mu.Lock()
	p.category = category
	p.mu.Unlock()
	p.Kick(store.DomainMarkets)
}

// Category returns the current market category filter.
func (p *Poller) Category() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.category
}

// tickLoop refreshes one domain on a fixed cadence until stopped.
func (p *Poller) tickLoop(ctx context.Context, every time.Duration, d store.Domain) {
	defer p.wg.Done()

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stopChan:
			return
		case <-ticker.C:
			p.Refresh(ctx, d)
		}
	}
}

// kickLoop serves the on-demand refresh queue.
func (p *Poller) kickLoop(ctx context.Context) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stopChan:
			return
		case d := <-p.kicks:
			p.Refresh(ctx, d)
		}
	}
}

// Refresh fetches the domain's current snapshot and replaces it in the
// store. On failure the existing snapshot is preserved and a warning
// is logged; other domains are never affected.
func (p *Poller) Refresh(ctx context.Context, d store.Domain) {
	var err error

	switch d {
	case store.DomainStatus, store.DomainWhales:
		err = p.fetchStatus(ctx)
	case store.DomainRanking:
		err = p.fetchWhales(ctx)
	case store.DomainPositions, store.DomainHistory:
		err = p.fetchTrades(ctx)
	case store.DomainMarkets:
		err = p.fetchMarkets(ctx)
	case store.DomainBalance:
		err = p.fetchBalance(ctx)
	default:
		slog.Debug("refresh_unknown_domain", "domain", d)
		return
	}

	if err != nil {
		slog.Warn("refresh_failed", "domain", d, "error", err)
	}
}

func (p *Poller) fetchStatus(ctx context.Context) error {
	resp, err := p.api.Status(ctx)
	if err != nil {
		return err
	}
	p.store.SetStatus(resp.Trading)
	p.store.SetWhaleSummary(resp.Whales)
	return nil
}

func (p *Poller) fetchWhales(ctx context.Context) error {
	resp, err := p.api.Whales(ctx)
	if err != nil {
		return err
	}
	p.store.SetRanking(store.WhaleRanking{Whales: resp.Whales})
	p.store.SetWhaleSummary(resp.Summary)
	return nil
}

// fetchTrades covers both the position and history domains; the server
// serves them from one endpoint.
func (p *Poller) fetchTrades(ctx context.Context) error {
	resp, err := p.api.Trades(ctx)
	if err != nil {
		return err
	}
	p.store.SetPositions(store.OpenPositions{Positions: resp.OpenPositions})
	p.store.SetHistory(store.TradeHistory{Trades: resp.History})
	return nil
}

func (p *Poller) fetchMarkets(ctx context.Context) error {
	resp, err := p.api.Markets(ctx, p.Category())
	if err != nil {
		return err
	}
	p.store.SetMarkets(store.MarketsByCategory{
		ByCategory:    resp.ByCategory,
		CategoryOrder: resp.CategoryOrder,
	})
	return nil
}

func (p *Poller) fetchBalance(ctx context.Context) error {
	resp, err := p.api.BalanceHistory(ctx)
	if err != nil {
		return err
	}
	p.store.SetBalanceHistory(store.BalanceHistory{Points: resp.History})
	return nil
}

// Action names accepted by Do.
const (
	ActionRefreshWhales = "refresh-whales"
	ActionReset         = "reset"
	ActionSimulate      = "simulate"
)

// Do executes a user-triggered server action and records the outcome
// in the activity feed. Rejections are surfaced, never retried.
func (p *Poller) Do(ctx context.Context, action string) {
	var (
		result ActionResult
		err    error
	)

	switch action {
	case ActionRefreshWhales:
		result, err = p.api.RefreshWhales(ctx)
	case ActionReset:
		result, err = p.api.Reset(ctx)
	case ActionSimulate:
		result, err = p.api.Simulate(ctx)
	default:
		slog.Debug("unknown_action", "action", action)
		return
	}

	if err != nil || !result.OK() {
		reason := result.Message
		if err != nil {
			reason = err.Error()
		}
		slog.Warn("action_failed", "action", action, "reason", reason)
		p.store.AppendActivity(store.ActivityEntry{
			ID:      uuid.NewString(),
			Kind:    "error",
			Message: fmt.Sprintf("Action %s failed: %s", action, reason),
			At:      time.Now(),
		})
		return
	}

	slog.Info("action_ok", "action", action)
	p.store.AppendActivity(store.ActivityEntry{
		ID:      uuid.NewString(),
		Kind:    "action",
		Message: fmt.Sprintf("Action %s accepted", action),
		At:      time.Now(),
	})

	switch action {
	case ActionRefreshWhales:
		p.Kick(store.DomainRanking)
	case ActionReset:
		p.Kick(store.DomainStatus, store.DomainPositions, store.DomainBalance)
	}
}
