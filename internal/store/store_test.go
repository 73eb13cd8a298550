package store

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestSnapshotsStartAbsent(t *testing.T) {
	s := New()

	if _, ok := s.Status(); ok {
		t.Error("status must start absent")
	}
	if _, ok := s.Ranking(); ok {
		t.Error("ranking must start absent")
	}
	if s.ConnState() != StateDisconnected {
		t.Errorf("connection must start disconnected, got %v", s.ConnState())
	}
}

func TestSetReplacesWholeSnapshot(t *testing.T) {
	s := New()

	s.SetStatus(TradingStatus{CurrentBalance: 1000, Wins: 5, Losses: 2})
	s.SetStatus(TradingStatus{CurrentBalance: 900})

	status, ok := s.Status()
	if !ok {
		t.Fatal("expected status to be present")
	}
	if status.CurrentBalance != 900 {
		t.Errorf("expected balance 900, got %v", status.CurrentBalance)
	}
	if status.Wins != 0 || status.Losses != 0 {
		t.Errorf("old fields leaked through replacement: %+v", status)
	}
}

// TestReplacementIsAtomic hammers one domain with two distinct full
// snapshots while readers verify they never see a mix of the two.
func TestReplacementIsAtomic(t *testing.T) {
	s := New()

	a := TradingStatus{CurrentBalance: 1, PnL: 1, Wins: 1, Losses: 1, TotalTrades: 1}
	b := TradingStatus{CurrentBalance: 2, PnL: 2, Wins: 2, Losses: 2, TotalTrades: 2}
	s.SetStatus(a)

	stop := make(chan struct{})
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			if i%2 == 0 {
				s.SetStatus(a)
			} else {
				s.SetStatus(b)
			}
		}
	}()

	var torn error
	for i := 0; i < 10000; i++ {
		got, _ := s.Status()
		if got != a && got != b {
			torn = fmt.Errorf("observed torn snapshot: %+v", got)
			break
		}
	}

	close(stop)
	wg.Wait()

	if torn != nil {
		t.Error(torn)
	}
}

func TestAppendActivityPrependsAndTrims(t *testing.T) {
	s := New()

	for i := 0; i < MaxActivityEntries+10; i++ {
		s.AppendActivity(ActivityEntry{
			ID:      fmt.Sprintf("e%d", i),
			Message: fmt.Sprintf("entry %d", i),
			At:      time.Now(),
		})
	}

	activity := s.Activity()
	if len(activity.Entries) != MaxActivityEntries {
		t.Fatalf("expected feed trimmed to %d, got %d", MaxActivityEntries, len(activity.Entries))
	}

	// Newest first.
	want := fmt.Sprintf("e%d", MaxActivityEntries+9)
	if activity.Entries[0].ID != want {
		t.Errorf("expected newest entry %s first, got %s", want, activity.Entries[0].ID)
	}
}

func TestSubscribeReceivesDomainTags(t *testing.T) {
	s := New()

	ch := make(chan Domain, 8)
	s.Subscribe(ch)

	s.SetStatus(TradingStatus{})
	s.SetBalanceHistory(BalanceHistory{})

	got := []Domain{<-ch, <-ch}
	if got[0] != DomainStatus || got[1] != DomainBalance {
		t.Errorf("expected [status balance] notifications, got %v", got)
	}
}

func TestSubscribeFullChannelDoesNotBlock(t *testing.T) {
	s := New()

	ch := make(chan Domain) // unbuffered, never read
	s.Subscribe(ch)

	done := make(chan struct{})
	go func() {
		s.SetStatus(TradingStatus{})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("mutation blocked on a slow subscriber")
	}
}

func TestScanPulseClearIsGenerationAware(t *testing.T) {
	s := New()

	stale := s.SetScanPulse(3)
	current := s.SetScanPulse(9)

	// An expiry armed by the older pulse must not clear the newer one.
	s.ClearScanPulse(stale)
	if pulse := s.ScanPulse(); !pulse.Active || pulse.Count != 9 {
		t.Errorf("stale clear must be a no-op, got %+v", pulse)
	}

	s.ClearScanPulse(current)
	if pulse := s.ScanPulse(); pulse.Active {
		t.Errorf("expected pulse cleared, got %+v", pulse)
	}
}

func TestDomainsAreIndependent(t *testing.T) {
	s := New()

	s.SetStatus(TradingStatus{CurrentBalance: 1000})
	s.SetWhaleSummary(WhaleSummary{HotCount: 2})

	s.SetStatus(TradingStatus{CurrentBalance: 500})

	whales, ok := s.WhaleSummary()
	if !ok || whales.HotCount != 2 {
		t.Errorf("replacing one domain must not touch another: %+v", whales)
	}
}
