package simulation

import "fmt"

type MachineState string

const (
	StateIdle        MachineState = "idle"
	StateActive      MachineState = "active"
	StateMaintenance MachineState = "maintenance"
	StateError       MachineState = "error"
)

// AllStates is the canonical ordering used for summaries and weighted draws.
var AllStates = []MachineState{StateActive, StateIdle, StateError, StateMaintenance}

// ParseMachineState maps a request string to a MachineState.
func ParseMachineState(s string) (MachineState, error) {
	switch MachineState(s) {
	case StateIdle, StateActive, StateMaintenance, StateError:
		return MachineState(s), nil
	default:
		return "", fmt.Errorf("invalid machine state: %q", s)
	}
}

type ProductType string

const (
	ProductPolyethylene  ProductType = "Polyethylene"
	ProductPolypropylene ProductType = "Polypropylene"
	ProductPVC           ProductType = "PVC"
	ProductPolystyrene   ProductType = "Polystyrene"
	ProductABS           ProductType = "ABS"
)

// AllProducts in assignment order; fleet initialization cycles through it.
var AllProducts = []ProductType{
	ProductPolyethylene,
	ProductPolypropylene,
	ProductPVC,
	ProductPolystyrene,
	ProductABS,
}

// Shift is the coarse time-of-day bucket biasing state transitions.
type Shift string

const (
	ShiftDay     Shift = "day"
	ShiftEvening Shift = "evening"
	ShiftNight   Shift = "night"
)

// ShiftForHour buckets an hour of day (0-23) into a work shift.
func ShiftForHour(hour int) Shift {
	switch {
	case hour >= 6 && hour < 14:
		return ShiftDay
	case hour >= 14 && hour < 22:
		return ShiftEvening
	default:
		return ShiftNight
	}
}
