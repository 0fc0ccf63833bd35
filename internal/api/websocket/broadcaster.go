package websocket

import (
	"time"

	"go.uber.org/zap"

	"plantsim/internal/simulation"
)

// SnapshotSource provides the latest fleet readings. Satisfied by
// simulation.Fleet.
type SnapshotSource interface {
	GetSnapshot() map[string]simulation.SensorReading
}

// Broadcaster periodically pushes the fleet snapshot to all connected
// clients. Its cadence is independent of the simulation tick: it copies the
// snapshot and never holds the fleet's lock while writing to clients.
type Broadcaster struct {
	hub      *Hub
	source   SnapshotSource
	interval time.Duration
	logger   *zap.Logger
	stopCh   chan struct{}
}

func NewBroadcaster(hub *Hub, source SnapshotSource, interval time.Duration, logger *zap.Logger) *Broadcaster {
	return &Broadcaster{
		hub:      hub,
		source:   source,
		interval: interval,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
}

// Run loops until Stop is called. Intended to run in its own goroutine.
func (b *Broadcaster) Run() {
	b.logger.Info("Snapshot broadcaster started",
		zap.Duration("interval", b.interval))

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopCh:
			b.logger.Info("Snapshot broadcaster stopped")
			return
		case <-ticker.C:
			if b.hub.GetClientCount() == 0 {
				continue
			}
			b.hub.Broadcast(NewSnapshotMessage(b.source.GetSnapshot()))
		}
	}
}

// Stop terminates the broadcast loop.
func (b *Broadcaster) Stop() {
	close(b.stopCh)
}
