package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/copydash/client/internal/store"
)

const (
	// HandshakeTimeout bounds the websocket dial.
	HandshakeTimeout = 10 * time.Second

	// WriteTimeout bounds outbound frames.
	WriteTimeout = 10 * time.Second
)

// Listener owns the one push connection to the server. It establishes,
// monitors and reconnects it with exponential backoff, publishes the
// connection state to the store and hands every inbound frame to the
// router. Connection loss is never fatal; teardown via Stop is the
// only way out of the retry loop.
type Listener struct {
	url    string
	store  *store.Store
	router *Router
	policy ReconnectPolicy

	conn   *websocket.Conn
	connMu sync.Mutex

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewListener creates a listener for the given ws:// or wss:// endpoint.
func NewListener(url string, st *store.Store, router *Router, base, cap time.Duration) *Listener {
	return &Listener{
		url:      url,
		store:    st,
		router:   router,
		policy:   ReconnectPolicy{Base: base, Cap: cap},
		stopChan: make(chan struct{}),
	}
}

// Start begins the connection loop with automatic reconnection.
func (l *Listener) Start(ctx context.Context) {
	l.wg.Add(1)
	go l.runLoop(ctx)
}

// Stop tears the connection down without triggering a reconnect.
func (l *Listener) Stop() {
	l.stopOnce.Do(func() { close(l.stopChan) })
	l.closeConnection()
	l.wg.Wait()
}

// Connected reports whether the push channel is currently live.
func (l *Listener) Connected() bool {
	return l.store.ConnState() == store.StateConnected
}

// Send writes a text frame. It is a silent no-op unless connected;
// missed sends are not queued or replayed.
func (l *Listener) Send(payload string) bool {
	l.connMu.Lock()
	conn := l.conn
	l.connMu.Unlock()

	if conn == nil || !l.Connected() {
		return false
	}

	conn.SetWriteDeadline(time.Now().Add(WriteTimeout))
	if err := conn.WriteMessage(websocket.TextMessage, []byte(payload)); err != nil {
		slog.Warn("ws_send_failed", "error", err)
		return false
	}
	return true
}

// runLoop handles connection, reading, and reconnection.
func (l *Listener) runLoop(ctx context.Context) {
	defer l.wg.Done()

	for {
		if l.stopping(ctx) {
			return
		}

		l.store.SetConnState(store.StateConnecting)

		if err := l.connect(ctx); err != nil {
			l.store.SetConnState(store.StateDisconnected)
			delay := l.policy.NextDelay()
			slog.Warn("ws_connect_failed", "error", err, "retry_in", delay)
			if !l.waitRetry(ctx, delay) {
				return
			}
			continue
		}

		// Successful open resets the backoff.
		l.policy.Reset()
		l.store.SetConnState(store.StateConnected)
		slog.Info("ws_connected", "endpoint", l.url)

		err := l.readLoop(ctx)
		l.closeConnection()
		l.store.SetConnState(store.StateDisconnected)

		if l.stopping(ctx) {
			slog.Info("ws_closed", "reason", "shutting down")
			return
		}

		delay := l.policy.NextDelay()
		slog.Warn("ws_disconnected", "error", err, "retry_in", delay)
		if !l.waitRetry(ctx, delay) {
			return
		}
	}
}

// connect dials the push endpoint.
func (l *Listener) connect(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: HandshakeTimeout}

	conn, resp, err := dialer.DialContext(ctx, l.url, nil)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("dial failed with status %d: %w", resp.StatusCode, err)
		}
		return fmt.Errorf("dial failed: %w", err)
	}

	l.connMu.Lock()
	l.conn = conn
	l.connMu.Unlock()

	return nil
}

// readLoop reads frames until the connection drops. Transport errors
// are reported; the close itself is what drives the reconnect.
func (l *Listener) readLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.stopChan:
			return nil
		default:
		}

		l.connMu.Lock()
		conn := l.conn
		l.connMu.Unlock()

		if conn == nil {
			return fmt.Errorf("connection is nil")
		}

		_, message, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read error: %w", err)
		}

		l.router.Dispatch(message)
	}
}

// stopping reports whether teardown has been requested.
func (l *Listener) stopping(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	case <-l.stopChan:
		return true
	default:
		return false
	}
}

// waitRetry sleeps out the backoff delay. Returns false when teardown
// interrupts the wait.
func (l *Listener) waitRetry(ctx context.Context, delay time.Duration) bool {
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-l.stopChan:
		return false
	case <-timer.C:
		return true
	}
}

// closeConnection safely closes the websocket connection.
func (l *Listener) closeConnection() {
	l.connMu.Lock()
	defer l.connMu.Unlock()

	if l.conn != nil {
		l.conn.Close()
		l.conn = nil
	}
}
