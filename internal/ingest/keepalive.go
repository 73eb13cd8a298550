package ingest

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// KeepaliveFrame is the literal outbound probe. It is plain text, not
// JSON; the server replies with a JSON pong envelope. The asymmetry is
// part of the wire contract.
const KeepaliveFrame = "ping"

// Channel is the slice of the connection manager the keepalive needs.
type Channel interface {
	Connected() bool
	Send(payload string) bool
}

// Keepalive periodically proves the push channel is alive so idle
// intermediaries do not close it. Ticks while disconnected are skipped
// silently; nothing is queued.
type Keepalive struct {
	target Channel
	every  time.Duration

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewKeepalive creates a keepalive driver for the given channel.
func NewKeepalive(target Channel, every time.Duration) *Keepalive {
	return &Keepalive{
		target:   target,
		every:    every,
		stopChan: make(chan struct{}),
	}
}

// Start launches the keepalive ticker.
func (k *Keepalive) Start(ctx context.Context) {
	k.wg.Add(1)
	go k.run(ctx)
}

// Stop cancels the ticker and waits for it to exit.
func (k *Keepalive) Stop() {
	k.stopOnce.Do(func() { close(k.stopChan) })
	k.wg.Wait()
}

func (k *Keepalive) run(ctx context.Context) {
	defer k.wg.Done()

	ticker := time.NewTicker(k.every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-k.stopChan:
			return
		case <-ticker.C:
			k.tick()
		}
	}
}

// tick sends one probe if the channel is live.
func (k *Keepalive) tick() {
	if !k.target.Connected() {
		return
	}
	if !k.target.Send(KeepaliveFrame) {
		slog.Debug("keepalive_skipped")
	}
}
