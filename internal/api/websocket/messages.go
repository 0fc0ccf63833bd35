package websocket

import (
	"time"

	"plantsim/internal/simulation"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// Periodic fleet snapshot
	MessageTypeSnapshot MessageType = "sensor_snapshot"

	// Machine state change (forced overrides)
	MessageTypeMachineState MessageType = "machine_state"

	// System messages
	MessageTypeSystemStatus MessageType = "system_status"
)

// Message represents a WebSocket message
type Message struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// MachineStateData represents a machine state change event
type MachineStateData struct {
	MachineID string `json:"machine_id"`
	State     string `json:"state"`
}

// NewMessage creates a new message with current timestamp
func NewMessage(msgType MessageType, data interface{}) Message {
	return Message{
		Type:      msgType,
		Timestamp: time.Now(),
		Data:      data,
	}
}

// NewSnapshotMessage wraps the latest fleet readings for broadcast
func NewSnapshotMessage(snapshot map[string]simulation.SensorReading) Message {
	return NewMessage(MessageTypeSnapshot, snapshot)
}

// NewMachineStateMessage announces a machine state change
func NewMachineStateMessage(machineID, state string) Message {
	return NewMessage(MessageTypeMachineState, MachineStateData{
		MachineID: machineID,
		State:     state,
	})
}
