package simulation

import (
	"math"
	"time"
)

// SensorReading is the wire contract for one machine sample. Field names and
// rounding are part of the API; error fields are always present and null
// outside the error state.
type SensorReading struct {
	Timestamp          time.Time    `json:"timestamp"`
	MachineID          string       `json:"machine_id"`
	State              MachineState `json:"state"`
	Temperature        float64      `json:"temperature"`
	Pressure           float64      `json:"pressure"`
	EnergyConsumption  float64      `json:"energy_consumption"`
	Vibration          float64      `json:"vibration"`
	Humidity           float64      `json:"humidity"`
	ProductionRate     int          `json:"production_rate"`
	RawMaterialQuality float64      `json:"raw_material_quality"`
	OperatorOverride   bool         `json:"operator_override"`
	CoolingStatus      string       `json:"cooling_status"`
	ProductType        ProductType  `json:"product_type"`
	UptimeHours        float64      `json:"uptime_hours"`
	ErrorCode          *string      `json:"error_code"`
	ErrorDescription   *string      `json:"error_description"`
}

const (
	CoolingOK   = "OK"
	CoolingFail = "FAIL"
)

func round(v float64, decimals int) float64 {
	p := math.Pow10(decimals)
	return math.Round(v*p) / p
}
