package simulation

import (
	"math"
	"math/rand"
	"time"
)

// minStateDuration is the dwell time in minutes a machine must spend in a
// state before any transition is considered.
var minStateDuration = map[MachineState]float64{
	StateActive:      15,
	StateIdle:        5,
	StateMaintenance: 60,
	StateError:       10,
}

// transitionMatrix holds base transition probabilities, rows indexed by the
// current state, columns following the AllStates ordering
// (active, idle, error, maintenance). Rows sum to 1 before shift adjustment.
var transitionMatrix = map[MachineState][]float64{
	StateActive:      {0.85, 0.10, 0.03, 0.02},
	StateIdle:        {0.70, 0.25, 0.02, 0.03},
	StateError:       {0.60, 0.20, 0.05, 0.15},
	StateMaintenance: {0.70, 0.25, 0.02, 0.03},
}

// shiftModifiers scale the active and maintenance columns per work shift.
var shiftModifiers = map[Shift]struct{ Active, Maintenance float64 }{
	ShiftDay:     {1.2, 1.5},
	ShiftEvening: {1.0, 0.8},
	ShiftNight:   {0.6, 0.3},
}

// Machine simulates one industrial unit: its operating state, fault
// behavior, and sensor signature. It is not safe for concurrent use; the
// fleet serializes all access.
type Machine struct {
	id          string
	product     ProductType
	tempMin     float64
	tempMax     float64
	pressMin    float64
	pressMax    float64
	energyMult  float64
	maxVibe     float64

	state           MachineState
	lastStateChange time.Time
	lastUpdate      time.Time
	errorCode       ErrorCode
	errorDesc       string

	uptimeHours      float64
	maintenanceCycle float64
	totalRuntime     float64

	rng *rand.Rand
}

// NewMachine builds a machine configured for the given product, starting
// idle. The random source drives all stochastic behavior and may be seeded
// for deterministic tests.
func NewMachine(id string, product ProductType, maxVibration float64, now time.Time, rng *rand.Rand) *Machine {
	tMin, tMax := TempRangeFor(product)
	pMin, pMax := PressureRangeFor(product)

	return &Machine{
		id:               id,
		product:          product,
		tempMin:          tMin,
		tempMax:          tMax,
		pressMin:         pMin,
		pressMax:         pMax,
		energyMult:       EnergyMultiplierFor(product),
		maxVibe:          maxVibration,
		state:            StateIdle,
		lastStateChange:  now,
		lastUpdate:       now,
		maintenanceCycle: uniform(rng, 200, 400),
		rng:              rng,
	}
}

func (m *Machine) ID() string          { return m.id }
func (m *Machine) State() MachineState { return m.state }

// Advance moves the machine through one simulation step: possibly
// transitioning state, then accruing uptime for the elapsed interval.
func (m *Machine) Advance(now time.Time, shift Shift) {
	if m.shouldChangeState(now) {
		next := m.nextState(shift)
		if next != m.state {
			// Leaving maintenance starts a fresh wear cycle.
			if m.state == StateMaintenance {
				m.uptimeHours = 0
				m.maintenanceCycle = uniform(m.rng, 200, 400)
			}

			m.state = next
			m.lastStateChange = now

			if next == StateError {
				m.assignErrorCode()
			} else {
				m.errorCode = ""
				m.errorDesc = ""
			}
		}
	}

	elapsedHours := now.Sub(m.lastUpdate).Seconds() / 3600
	if m.state == StateActive {
		m.uptimeHours += elapsedHours
		m.totalRuntime += elapsedHours
	}
	m.lastUpdate = now
}

// shouldChangeState enforces the per-state dwell time, then applies a soft
// timeout: the longer a machine sits in a state past its minimum, the more
// likely a transition, capped at 10% per step.
func (m *Machine) shouldChangeState(now time.Time) bool {
	minutesInState := now.Sub(m.lastStateChange).Minutes()
	if minutesInState < minStateDuration[m.state] {
		return false
	}

	changeProbability := math.Min(0.1, minutesInState/1000)
	return m.rng.Float64() < changeProbability
}

// nextState draws the successor state from the transition matrix, biased by
// shift and by overdue maintenance.
func (m *Machine) nextState(shift Shift) MachineState {
	if m.uptimeHours > m.maintenanceCycle && m.rng.Float64() < 0.3 {
		return StateMaintenance
	}

	row := transitionMatrix[m.state]
	weights := make([]float64, len(row))
	copy(weights, row)

	if mod, ok := shiftModifiers[shift]; ok {
		for i, st := range AllStates {
			switch st {
			case StateActive:
				weights[i] *= mod.Active
			case StateMaintenance:
				weights[i] *= mod.Maintenance
			}
		}
	}

	idx := sampleIndex(m.rng, weights)
	if idx < 0 {
		return m.state
	}
	return AllStates[idx]
}

// assignErrorCode draws a fault weighted by the product's error profile,
// falling back to the default profile, then to the first catalog entry.
func (m *Machine) assignErrorCode() {
	profile, ok := productErrorWeights[m.product]
	if !ok {
		profile = defaultErrorWeights
	}

	weights := make([]float64, len(errorCodeOrder))
	for i, code := range errorCodeOrder {
		weights[i] = profile[code]
	}

	idx := sampleIndex(m.rng, weights)
	if idx < 0 {
		for i, code := range errorCodeOrder {
			weights[i] = defaultErrorWeights[code]
		}
		idx = sampleIndex(m.rng, weights)
	}
	if idx < 0 {
		idx = 0
	}

	m.errorCode = errorCodeOrder[idx]
	m.errorDesc = ErrorCatalog[m.errorCode]
}

// ForceState overrides the state machine, bypassing dwell-time and
// probability rules. Used by the administrative API.
func (m *Machine) ForceState(state MachineState, now time.Time) {
	m.state = state
	m.lastStateChange = now

	if state == StateError {
		m.assignErrorCode()
	} else {
		m.errorCode = ""
		m.errorDesc = ""
	}
}

// Sample produces a sensor reading for the machine's current state. It does
// not mutate the machine.
func (m *Machine) Sample(now time.Time) SensorReading {
	baseTemp := (m.tempMin + m.tempMax) / 2
	basePressure := (m.pressMin + m.pressMax) / 2

	var (
		tempVariation     float64
		pressureVariation float64
		energy            float64
		vibration         float64
		productionRate    int
	)

	switch m.state {
	case StateActive:
		tempVariation = uniform(m.rng, -5, 10)
		pressureVariation = uniform(m.rng, -0.05, 0.1)
		energy = uniform(m.rng, 0.8, 1.2) * m.energyMult
		vibration = uniform(m.rng, 0.1, 0.4)
		productionRate = uniformInt(m.rng, 15, 25)

	case StateIdle:
		tempVariation = uniform(m.rng, -10, -5)
		pressureVariation = uniform(m.rng, -0.1, -0.05)
		energy = uniform(m.rng, 0.1, 0.3) * m.energyMult
		vibration = uniform(m.rng, 0.01, 0.1)

	case StateMaintenance:
		tempVariation = uniform(m.rng, -15, -10)
		pressureVariation = uniform(m.rng, -0.15, -0.1)
		energy = uniform(m.rng, 0.05, 0.2) * m.energyMult
		vibration = uniform(m.rng, 0, 0.05)

	default: // error state, signature depends on the fault
		switch m.errorCode {
		case ErrOvertemperature:
			tempVariation = uniform(m.rng, 15, 25)
			pressureVariation = uniform(m.rng, -0.05, 0.05)
		case ErrPressureDrop:
			tempVariation = uniform(m.rng, -5, 5)
			pressureVariation = uniform(m.rng, -0.3, -0.15)
		case ErrEnergySpike:
			tempVariation = uniform(m.rng, 5, 15)
			pressureVariation = uniform(m.rng, 0.05, 0.15)
		case ErrVibration:
			tempVariation = uniform(m.rng, -5, 5)
			pressureVariation = uniform(m.rng, -0.05, 0.05)
		default: // cooling failure or unclassified fault
			tempVariation = uniform(m.rng, 10, 20)
			pressureVariation = uniform(m.rng, -0.1, 0.1)
		}

		energy = uniform(m.rng, 0.3, 1.5) * m.energyMult
		if m.errorCode == ErrVibration {
			vibration = uniform(m.rng, 0.5, m.maxVibe)
		} else {
			vibration = uniform(m.rng, 0.1, 0.4)
		}
		productionRate = uniformInt(m.rng, 0, 10)
	}

	coolingStatus := CoolingOK
	if m.errorCode == ErrCoolingFailure {
		coolingStatus = CoolingFail
	}

	reading := SensorReading{
		Timestamp:          now,
		MachineID:          m.id,
		State:              m.state,
		Temperature:        round(math.Max(0, baseTemp+tempVariation), 2),
		Pressure:           round(math.Max(0, basePressure+pressureVariation), 3),
		EnergyConsumption:  round(energy, 3),
		Vibration:          round(vibration, 3),
		Humidity:           round(uniform(m.rng, 45, 65), 2),
		ProductionRate:     productionRate,
		RawMaterialQuality: round(uniform(m.rng, 0.7, 1.0), 2),
		OperatorOverride:   m.rng.Float64() < 0.05,
		CoolingStatus:      coolingStatus,
		ProductType:        m.product,
		UptimeHours:        round(m.uptimeHours, 1),
	}

	if m.state == StateError && m.errorCode != "" {
		code := string(m.errorCode)
		desc := m.errorDesc
		reading.ErrorCode = &code
		reading.ErrorDescription = &desc
	}

	return reading
}
