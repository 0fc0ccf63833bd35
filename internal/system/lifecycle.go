package system

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"plantsim/internal/api/rest"
	"plantsim/internal/api/websocket"
	"plantsim/internal/auth"
	"plantsim/internal/config"
	"plantsim/internal/interfaces"
	"plantsim/internal/simulation"
)

// LifecycleManager wires the simulation core to its transports and owns
// startup and shutdown ordering.
type LifecycleManager struct {
	config      *config.Config
	logger      *zap.Logger
	fleet       *simulation.Fleet
	authService *auth.AuthService
	wsHub       *websocket.Hub
	broadcaster *websocket.Broadcaster
	restServer  *rest.Server

	stateMu      sync.RWMutex
	currentState string

	shutdownOnce sync.Once
}

func NewLifecycleManager(cfg *config.Config, logger *zap.Logger) *LifecycleManager {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	fleet := simulation.NewFleet(
		cfg.Simulation.MachineCount,
		cfg.Simulation.UpdateInterval,
		cfg.Simulation.Speed,
		logger,
		rng,
	)

	authService := auth.NewAuthService(cfg.Auth)
	wsHub := websocket.NewHub(logger, authService)
	broadcaster := websocket.NewBroadcaster(wsHub, fleet, cfg.WebSocket.BroadcastInterval, logger)

	lm := &LifecycleManager{
		config:       cfg,
		logger:       logger,
		fleet:        fleet,
		authService:  authService,
		wsHub:        wsHub,
		broadcaster:  broadcaster,
		currentState: "created",
	}

	lm.restServer = rest.NewServer(cfg, lm, logger, wsHub, authService)

	return lm
}

// Start brings the system up: hub, broadcaster, simulation driver, then the
// HTTP server.
func (lm *LifecycleManager) Start() error {
	go lm.wsHub.Run()
	go lm.broadcaster.Run()

	lm.fleet.Start()

	if err := lm.restServer.Start(); err != nil {
		return err
	}

	lm.setState("running")
	return nil
}

// Shutdown stops components in reverse start order. Safe to call more than
// once.
func (lm *LifecycleManager) Shutdown(ctx context.Context) error {
	var err error
	lm.shutdownOnce.Do(func() {
		lm.setState("stopping")

		lm.fleet.Stop()
		lm.broadcaster.Stop()
		err = lm.restServer.Shutdown(ctx)

		lm.setState("stopped")
	})
	return err
}

func (lm *LifecycleManager) Config() *config.Config { return lm.config }

func (lm *LifecycleManager) Fleet() *simulation.Fleet { return lm.fleet }

func (lm *LifecycleManager) WSHub() *websocket.Hub { return lm.wsHub }

func (lm *LifecycleManager) AuthService() *auth.AuthService { return lm.authService }

// GetCurrentStatus reports a transport-friendly view of system health.
func (lm *LifecycleManager) GetCurrentStatus() interfaces.SystemStatus {
	lm.stateMu.RLock()
	state := lm.currentState
	lm.stateMu.RUnlock()

	return interfaces.SystemStatus{
		State:            state,
		MachineCount:     lm.fleet.MachineCount(),
		SimulationSpeed:  lm.fleet.Speed(),
		ConnectedClients: lm.wsHub.GetClientCount(),
	}
}

func (lm *LifecycleManager) setState(state string) {
	lm.stateMu.Lock()
	lm.currentState = state
	lm.stateMu.Unlock()

	lm.logger.Info("System state changed", zap.String("state", state))
}
