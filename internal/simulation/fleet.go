package simulation

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	minSpeed = 0.1
	maxSpeed = 10.0
)

// initialStateWeights biases freshly created machines toward a realistic
// factory floor mix: 70% active, 20% idle, 10% in maintenance.
var initialStateWeights = map[MachineState]float64{
	StateActive:      0.7,
	StateIdle:        0.2,
	StateMaintenance: 0.1,
}

// Fleet owns all simulated machines and the latest-readings snapshot, and
// drives the periodic advance-and-sample cycle. All shared state sits behind
// a single mutex; the per-tick critical section is bounded by one pass over
// the fleet.
type Fleet struct {
	logger *zap.Logger

	mu       sync.Mutex
	machines map[string]*Machine
	order    []string
	snapshot map[string]SensorReading
	interval time.Duration
	speed    float64
	running  bool
	stopCh   chan struct{}
	rng      *rand.Rand
}

// NewFleet creates count machines, product types assigned round-robin, each
// desynchronized by staggering its last state change into the past.
func NewFleet(count int, interval time.Duration, speed float64, logger *zap.Logger, rng *rand.Rand) *Fleet {
	f := &Fleet{
		logger:   logger,
		machines: make(map[string]*Machine, count),
		order:    make([]string, 0, count),
		snapshot: make(map[string]SensorReading, count),
		interval: interval,
		speed:    clampSpeed(speed),
		rng:      rng,
	}

	now := time.Now().UTC()
	for i := 0; i < count; i++ {
		product := AllProducts[i%len(AllProducts)]
		id := fmt.Sprintf("Machine_%d", i+1)

		m := NewMachine(id, product, uniform(rng, 0.6, 0.8), now, rng)
		m.state = f.drawInitialState()
		// Stagger start times so the fleet does not transition in lockstep.
		m.lastStateChange = now.Add(-time.Duration(rng.Int63n(int64(5*interval) + 1)))

		f.machines[id] = m
		f.order = append(f.order, id)
	}

	return f
}

func (f *Fleet) drawInitialState() MachineState {
	weights := make([]float64, len(AllStates))
	for i, st := range AllStates {
		weights[i] = initialStateWeights[st]
	}
	if idx := sampleIndex(f.rng, weights); idx >= 0 {
		return AllStates[idx]
	}
	return StateIdle
}

// Start launches the background driver. Calling Start on a running fleet is
// a no-op.
func (f *Fleet) Start() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.running {
		return
	}
	f.running = true
	f.stopCh = make(chan struct{})

	f.logger.Info("Starting fleet simulation",
		zap.Int("machines", len(f.machines)),
		zap.Duration("interval", f.interval),
		zap.Float64("speed", f.speed))

	go f.run(f.stopCh)
}

// Stop signals the driver to exit after its in-flight tick. It does not
// block on shutdown and is safe to call repeatedly.
func (f *Fleet) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.running {
		return
	}
	f.running = false
	close(f.stopCh)

	f.logger.Info("Stopping fleet simulation")
}

func (f *Fleet) run(stop <-chan struct{}) {
	for {
		now := time.Now().UTC()
		f.Tick(now, ShiftForHour(now.Hour()))

		f.mu.Lock()
		delay := time.Duration(float64(f.interval) / f.speed)
		f.mu.Unlock()

		select {
		case <-stop:
			f.logger.Info("Fleet simulation loop ended")
			return
		case <-time.After(delay):
		}
	}
}

// Tick advances and samples every machine in one critical section, so
// readers never observe a half-updated pass. A fault in one machine is
// logged and skipped; the rest of the fleet still ticks.
func (f *Fleet) Tick(now time.Time, shift Shift) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, id := range f.order {
		f.tickMachine(f.machines[id], now, shift)
	}
}

func (f *Fleet) tickMachine(m *Machine, now time.Time, shift Shift) {
	defer func() {
		if r := recover(); r != nil {
			f.logger.Error("Machine tick failed",
				zap.String("machine_id", m.ID()),
				zap.Any("panic", r))
		}
	}()

	m.Advance(now, shift)
	f.snapshot[m.ID()] = m.Sample(now)
}

// GetSnapshot returns a copy of the latest reading per machine.
func (f *Fleet) GetSnapshot() map[string]SensorReading {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make(map[string]SensorReading, len(f.snapshot))
	for id, reading := range f.snapshot {
		out[id] = reading
	}
	return out
}

// GetStateCounts tallies machines by state. Every state is represented,
// zero counts included.
func (f *Fleet) GetStateCounts() map[MachineState]int {
	f.mu.Lock()
	defer f.mu.Unlock()

	counts := make(map[MachineState]int, len(AllStates))
	for _, st := range AllStates {
		counts[st] = 0
	}
	for _, reading := range f.snapshot {
		counts[reading.State]++
	}
	return counts
}

// GetErrorCounts tallies machines currently in error, keyed by fault code.
func (f *Fleet) GetErrorCounts() map[ErrorCode]int {
	f.mu.Lock()
	defer f.mu.Unlock()

	counts := make(map[ErrorCode]int)
	for _, reading := range f.snapshot {
		if reading.State == StateError && reading.ErrorCode != nil {
			counts[ErrorCode(*reading.ErrorCode)]++
		}
	}
	return counts
}

// MachineCount reports the fleet size.
func (f *Fleet) MachineCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.machines)
}

// ForceState overrides a machine's state immediately, bypassing dwell-time
// and probability rules, and republishes its snapshot entry. Returns false
// when the machine id is unknown.
func (f *Fleet) ForceState(machineID string, state MachineState) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	m, ok := f.machines[machineID]
	if !ok {
		f.logger.Warn("Force state on unknown machine",
			zap.String("machine_id", machineID))
		return false
	}

	now := time.Now().UTC()
	m.ForceState(state, now)
	f.snapshot[machineID] = m.Sample(now)

	f.logger.Info("Machine state forced",
		zap.String("machine_id", machineID),
		zap.String("state", string(state)))
	return true
}

// SetSpeed adjusts the simulation speed multiplier, clamped to [0.1, 10].
// Takes effect on the next driver delay.
func (f *Fleet) SetSpeed(speed float64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.speed = clampSpeed(speed)
	f.logger.Info("Simulation speed set", zap.Float64("speed", f.speed))
}

// Speed reports the current (clamped) speed multiplier.
func (f *Fleet) Speed() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.speed
}

func clampSpeed(speed float64) float64 {
	if speed < minSpeed {
		return minSpeed
	}
	if speed > maxSpeed {
		return maxSpeed
	}
	return speed
}
