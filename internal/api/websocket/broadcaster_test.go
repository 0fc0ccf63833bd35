package websocket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"plantsim/internal/simulation"
)

type staticSource struct {
	snapshot map[string]simulation.SensorReading
}

func (s *staticSource) GetSnapshot() map[string]simulation.SensorReading {
	return s.snapshot
}

func TestSnapshotMessageShape(t *testing.T) {
	snapshot := map[string]simulation.SensorReading{
		"Machine_1": {MachineID: "Machine_1", State: simulation.StateActive},
	}

	msg := NewSnapshotMessage(snapshot)
	assert.Equal(t, MessageTypeSnapshot, msg.Type)
	assert.False(t, msg.Timestamp.IsZero())
	assert.Equal(t, snapshot, msg.Data)
}

func TestMachineStateMessageShape(t *testing.T) {
	msg := NewMachineStateMessage("Machine_3", "maintenance")
	assert.Equal(t, MessageTypeMachineState, msg.Type)

	data, ok := msg.Data.(MachineStateData)
	assert.True(t, ok)
	assert.Equal(t, "Machine_3", data.MachineID)
	assert.Equal(t, "maintenance", data.State)
}

func TestBroadcasterStops(t *testing.T) {
	hub := NewHub(zap.NewNop(), nil)
	source := &staticSource{snapshot: map[string]simulation.SensorReading{}}

	b := NewBroadcaster(hub, source, 10*time.Millisecond, zap.NewNop())

	done := make(chan struct{})
	go func() {
		b.Run()
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	b.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcaster did not stop")
	}
}

func TestBroadcasterSkipsWithoutClients(t *testing.T) {
	hub := NewHub(zap.NewNop(), nil)
	source := &staticSource{snapshot: map[string]simulation.SensorReading{
		"Machine_1": {MachineID: "Machine_1"},
	}}

	b := NewBroadcaster(hub, source, 5*time.Millisecond, zap.NewNop())
	go b.Run()
	defer b.Stop()

	time.Sleep(25 * time.Millisecond)

	// No clients connected, so nothing is queued on the broadcast channel.
	assert.Equal(t, 0, len(hub.broadcast))
}
