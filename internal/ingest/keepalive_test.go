package ingest

import (
	"context"
	"testing"
	"time"
)

// testContext mirrors t.Context() (Go 1.24+): a context canceled when the
// test ends.
func testContext(t *testing.T) context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}

// fakeChannel is a scriptable push channel.
type fakeChannel struct {
	connected bool
	sent      []string
}

func (f *fakeChannel) Connected() bool { return f.connected }

func (f *fakeChannel) Send(payload string) bool {
	if !f.connected {
		return false
	}
	f.sent = append(f.sent, payload)
	return true
}

func TestKeepaliveSendsOnlyWhileConnected(t *testing.T) {
	ch := &fakeChannel{connected: true}
	k := NewKeepalive(ch, time.Minute)

	k.tick()
	k.tick()

	if len(ch.sent) != 2 {
		t.Fatalf("expected 2 keepalive frames, got %d", len(ch.sent))
	}
	for _, frame := range ch.sent {
		if frame != KeepaliveFrame {
			t.Errorf("expected literal %q frame, got %q", KeepaliveFrame, frame)
		}
	}
}

func TestKeepaliveSkipsWhileDisconnected(t *testing.T) {
	ch := &fakeChannel{connected: false}
	k := NewKeepalive(ch, time.Minute)

	k.tick()
	k.tick()
	k.tick()

	if len(ch.sent) != 0 {
		t.Fatalf("expected zero frames while disconnected, got %d", len(ch.sent))
	}
}

func TestKeepaliveStopTerminates(t *testing.T) {
	ch := &fakeChannel{connected: true}
	k := NewKeepalive(ch, 10*time.Millisecond)

	k.Start(testContext(t))

	done := make(chan struct{})
	go func() {
		k.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("keepalive did not stop")
	}
}
