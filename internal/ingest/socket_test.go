package ingest

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/copydash/client/internal/store"
)

func TestSendIsNoOpWhileDisconnected(t *testing.T) {
	st := store.New()
	l := NewListener("ws://127.0.0.1:1/ws", st, NewRouter(st, &fakeRefresher{}), time.Second, 30*time.Second)

	if l.Send("ping") {
		t.Error("send must be a no-op without a live connection")
	}
}

// newSocketServer upgrades every request and sends one handshake
// envelope before holding the connection open.
func newSocketServer(t *testing.T) *httptest.Server {
	t.Helper()

	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		err = conn.WriteMessage(websocket.TextMessage, []byte(
			`{"type":"connected","data":{"status":{"current_balance":1000},"whales":{"hot_count":2}}}`))
		if err != nil {
			return
		}

		// Hold until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestListenerConnectsAndRoutesHandshake(t *testing.T) {
	srv := newSocketServer(t)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	st := store.New()
	l := NewListener(wsURL, st, NewRouter(st, &fakeRefresher{}), 10*time.Millisecond, 100*time.Millisecond)

	l.Start(testContext(t))
	defer l.Stop()

	waitFor(t, 2*time.Second, func() bool {
		return st.ConnState() == store.StateConnected
	})

	waitFor(t, 2*time.Second, func() bool {
		status, ok := st.Status()
		return ok && status.CurrentBalance == 1000
	})
}

func TestListenerReconnectsAfterDrop(t *testing.T) {
	srv := newSocketServer(t)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	st := store.New()
	changes := make(chan store.Domain, 256)
	st.Subscribe(changes)

	l := NewListener(wsURL, st, NewRouter(st, &fakeRefresher{}), 10*time.Millisecond, 100*time.Millisecond)

	l.Start(testContext(t))
	defer l.Stop()

	waitFor(t, 2*time.Second, func() bool {
		return st.ConnState() == store.StateConnected
	})

	drain(changes)
	srv.CloseClientConnections()

	// The close must be observed and then recovered from: at least one
	// connection-state transition fires before the channel is live again.
	sawTransition := false
	waitFor(t, 2*time.Second, func() bool {
		drainInto(changes, func(d store.Domain) {
			if d == store.DomainConnection {
				sawTransition = true
			}
		})
		return sawTransition && st.ConnState() == store.StateConnected
	})
}

// drain empties a change channel.
func drain(ch chan store.Domain) {
	for {
		select {
		case <-ch:
		default:
			return
		}
	}
}

// drainInto empties a change channel through a callback.
func drainInto(ch chan store.Domain, fn func(store.Domain)) {
	for {
		select {
		case d := <-ch:
			fn(d)
		default:
			return
		}
	}
}

func TestListenerStopDoesNotReconnect(t *testing.T) {
	srv := newSocketServer(t)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	st := store.New()
	l := NewListener(wsURL, st, NewRouter(st, &fakeRefresher{}), 10*time.Millisecond, 100*time.Millisecond)

	l.Start(testContext(t))

	waitFor(t, 2*time.Second, func() bool {
		return st.ConnState() == store.StateConnected
	})

	l.Stop()

	if st.ConnState() != store.StateDisconnected {
		t.Errorf("expected disconnected after stop, got %v", st.ConnState())
	}

	// Give a would-be reconnect time to happen; it must not.
	time.Sleep(100 * time.Millisecond)
	if st.ConnState() == store.StateConnected {
		t.Error("listener reconnected after teardown")
	}
}
