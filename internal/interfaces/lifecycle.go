package interfaces

import (
	"context"

	"plantsim/internal/config"
	"plantsim/internal/simulation"
)

// SystemStatus represents the current system state
type SystemStatus struct {
	State            string  `json:"state"`
	MachineCount     int     `json:"machine_count"`
	SimulationSpeed  float64 `json:"simulation_speed"`
	ConnectedClients int     `json:"connected_clients"`
}

type LifecycleManager interface {
	Config() *config.Config
	Fleet() *simulation.Fleet
	GetCurrentStatus() SystemStatus
	Shutdown(ctx context.Context) error
}
