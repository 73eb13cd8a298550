package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/copydash/client/internal/store"
)

// newTestServer serves canned JSON per path, with a switchable failure
// mode.
func newTestServer(t *testing.T, failing map[string]bool) *httptest.Server {
	t.Helper()

	bodies := map[string]string{
		"/api/status": `{"mode":"paper",
			"trading":{"current_balance":1200.5,"pnl":200.5,"wins":4,"losses":1,"total_trades":5},
			"whales":{"hot_count":3,"warm_count":4,"cold_count":5,"total_tracked":12}}`,
		"/api/whales": `{"whales":[{"rank":1,"name":"MobyDick","score":88.5,"heat_level":"hot"}],
			"summary":{"hot_count":1,"warm_count":0,"cold_count":0,"total_tracked":1}}`,
		"/api/trades": `{"open_positions":[{"id":"abc","market":"Will it rain?","side":"YES","amount":100,"entry_price":0.55,"whale":"MobyDick"}],
			"history":[{"id":"def","market":"Old market","side":"NO","profit":"$+5.00","is_winner":true}]}`,
		"/api/markets": `{"by_category":{"sports":[{"id":"m1","question":"Game?","category":"sports"}],
			"politics":[{"id":"m2","question":"Vote?","category":"politics"}]},"total":2}`,
		"/api/balance-history": `{"history":[{"timestamp":"2026-01-01T00:00:00","balance":1000,"pnl":0},
			{"timestamp":"2026-01-02T00:00:00","balance":1200.5,"pnl":200.5}]}`,
		"/api/refresh-whales": `{"status":"ok"}`,
		"/api/reset":          `{"status":"ok","balance":1000}`,
		"/api/simulate":       `{"status":"error","message":"No whales found"}`,
	}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if failing[r.URL.Path] {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		body, ok := bodies[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
}

func newTestPoller(srv *httptest.Server, st *store.Store) *Poller {
	return NewPoller(NewAPIClient(srv.URL), st, time.Hour, time.Hour, "all")
}

func TestRefreshReplacesSnapshots(t *testing.T) {
	srv := newTestServer(t, nil)
	defer srv.Close()

	st := store.New()
	p := newTestPoller(srv, st)
	ctx := context.Background()

	p.Refresh(ctx, store.DomainStatus)

	status, ok := st.Status()
	if !ok || status.CurrentBalance != 1200.5 {
		t.Errorf("expected balance 1200.5, got %+v (loaded=%v)", status, ok)
	}
	whales, ok := st.WhaleSummary()
	if !ok || whales.HotCount != 3 {
		t.Errorf("expected hot count 3, got %+v (loaded=%v)", whales, ok)
	}

	p.Refresh(ctx, store.DomainPositions)

	positions, _ := st.Positions()
	if len(positions.Positions) != 1 || positions.Positions[0].Market != "Will it rain?" {
		t.Errorf("unexpected positions: %+v", positions)
	}
	history, _ := st.History()
	if len(history.Trades) != 1 || !history.Trades[0].IsWinner {
		t.Errorf("unexpected history: %+v", history)
	}

	p.Refresh(ctx, store.DomainBalance)
	balance, _ := st.BalanceHistory()
	if len(balance.Points) != 2 || balance.Points[1].Balance != 1200.5 {
		t.Errorf("unexpected balance history: %+v", balance)
	}
}

func TestRefreshFailureKeepsLastKnownGood(t *testing.T) {
	failing := map[string]bool{}
	srv := newTestServer(t, failing)
	defer srv.Close()

	st := store.New()
	p := newTestPoller(srv, st)
	ctx := context.Background()

	p.Refresh(ctx, store.DomainStatus)
	p.Refresh(ctx, store.DomainBalance)

	before, _ := st.Status()

	// Status endpoint starts failing; the old snapshot must survive
	// and the balance domain must be untouched.
	failing["/api/status"] = true
	p.Refresh(ctx, store.DomainStatus)

	after, ok := st.Status()
	if !ok || after != before {
		t.Errorf("failed refresh must keep the last snapshot: before=%+v after=%+v", before, after)
	}

	balance, ok := st.BalanceHistory()
	if !ok || len(balance.Points) != 2 {
		t.Errorf("other domains must be unaffected by a failing one: %+v", balance)
	}
}

func TestRefreshMarketsKeepsCategoryOrder(t *testing.T) {
	srv := newTestServer(t, nil)
	defer srv.Close()

	st := store.New()
	p := newTestPoller(srv, st)

	p.Refresh(context.Background(), store.DomainMarkets)

	markets, ok := st.Markets()
	if !ok {
		t.Fatal("expected markets to load")
	}
	if len(markets.CategoryOrder) != 2 ||
		markets.CategoryOrder[0] != "sports" || markets.CategoryOrder[1] != "politics" {
		t.Errorf("expected server category order [sports politics], got %v", markets.CategoryOrder)
	}
}

func TestActionRejectionIsSurfaced(t *testing.T) {
	srv := newTestServer(t, nil)
	defer srv.Close()

	st := store.New()
	p := newTestPoller(srv, st)

	p.Do(context.Background(), ActionSimulate)

	activity := st.Activity()
	if len(activity.Entries) != 1 {
		t.Fatalf("expected 1 activity entry, got %d", len(activity.Entries))
	}
	entry := activity.Entries[0]
	if entry.Kind != "error" || !strings.Contains(entry.Message, "No whales found") {
		t.Errorf("expected surfaced rejection, got %+v", entry)
	}
}

func TestActionSuccessKicksDependentDomains(t *testing.T) {
	srv := newTestServer(t, nil)
	defer srv.Close()

	st := store.New()
	p := newTestPoller(srv, st)

	p.Do(context.Background(), ActionReset)

	activity := st.Activity()
	if len(activity.Entries) != 1 || activity.Entries[0].Kind != "action" {
		t.Fatalf("expected action entry, got %+v", activity.Entries)
	}

	// Reset queues refreshes for status, positions and balance.
	if len(p.kicks) != 3 {
		t.Errorf("expected 3 queued refreshes, got %d", len(p.kicks))
	}
}

func TestStartDoesNotBlockOnSlowServer(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		http.NotFound(w, r)
	}))
	defer srv.Close()
	defer close(release)

	st := store.New()
	p := newTestPoller(srv, st)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	started := make(chan struct{})
	go func() {
		p.Start(ctx)
		close(started)
	}()

	// The initial loads run on the kick worker; Start must return while
	// the server is still sitting on the first request.
	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("Start blocked on the initial loads")
	}

	cancel()
	p.Stop()
}

func TestPollerStopCancelsTimers(t *testing.T) {
	srv := newTestServer(t, nil)
	defer srv.Close()

	st := store.New()
	p := NewPoller(NewAPIClient(srv.URL), st, 10*time.Millisecond, 10*time.Millisecond, "all")

	p.Start(context.Background())

	done := make(chan struct{})
	go func() {
		p.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not stop; a timer leaked")
	}
}

func TestKickManualIsThrottled(t *testing.T) {
	srv := newTestServer(t, nil)
	defer srv.Close()

	st := store.New()
	p := newTestPoller(srv, st)

	allowed := 0
	for i := 0; i < 20; i++ {
		if p.KickManual(store.DomainStatus) {
			allowed++
		}
	}

	if allowed == 0 {
		t.Error("expected at least one manual refresh to pass")
	}
	if allowed == 20 {
		t.Error("expected the burst to be throttled")
	}
}
