package simulation

type ErrorCode string

const (
	ErrOvertemperature ErrorCode = "E101"
	ErrPressureDrop    ErrorCode = "E102"
	ErrEnergySpike     ErrorCode = "E103"
	ErrVibration       ErrorCode = "E104"
	ErrCoolingFailure  ErrorCode = "E105"
)

// errorCodeOrder fixes the draw order so weighted selection is reproducible
// under a seeded random source.
var errorCodeOrder = []ErrorCode{
	ErrOvertemperature,
	ErrPressureDrop,
	ErrEnergySpike,
	ErrVibration,
	ErrCoolingFailure,
}

// ErrorCatalog maps each fault code to its operator-facing description.
var ErrorCatalog = map[ErrorCode]string{
	ErrOvertemperature: "Overtemperature detected",
	ErrPressureDrop:    "Pressure drop detected",
	ErrEnergySpike:     "Energy spike detected",
	ErrVibration:       "Vibration anomaly detected",
	ErrCoolingFailure:  "Cooling failure",
}

// productErrorWeights biases which faults a product line tends to develop.
// These are config data, including the deliberate zero entries.
var productErrorWeights = map[ProductType]map[ErrorCode]float64{
	ProductPolyethylene:  {ErrOvertemperature: 0.4, ErrPressureDrop: 0.3, ErrEnergySpike: 0.2, ErrVibration: 0.1, ErrCoolingFailure: 0.0},
	ProductPVC:           {ErrOvertemperature: 0.5, ErrPressureDrop: 0.2, ErrEnergySpike: 0.2, ErrCoolingFailure: 0.1, ErrVibration: 0.0},
	ProductPolypropylene: {ErrPressureDrop: 0.4, ErrVibration: 0.3, ErrOvertemperature: 0.2, ErrEnergySpike: 0.1, ErrCoolingFailure: 0.0},
	ProductPolystyrene:   {ErrVibration: 0.4, ErrPressureDrop: 0.3, ErrOvertemperature: 0.2, ErrCoolingFailure: 0.1, ErrEnergySpike: 0.0},
	ProductABS:           {ErrEnergySpike: 0.4, ErrVibration: 0.3, ErrOvertemperature: 0.2, ErrPressureDrop: 0.1, ErrCoolingFailure: 0.0},
}

// defaultErrorWeights is the fallback for products without a dedicated row.
var defaultErrorWeights = map[ErrorCode]float64{
	ErrOvertemperature: 0.3,
	ErrPressureDrop:    0.3,
	ErrEnergySpike:     0.2,
	ErrVibration:       0.1,
	ErrCoolingFailure:  0.1,
}

type valueRange struct {
	Min float64
	Max float64
}

// Product-specific operating envelopes. Units: temperature in degrees
// Celsius, pressure in bar.
var (
	productTempRanges = map[ProductType]valueRange{
		ProductPolyethylene:  {85, 125},
		ProductPolypropylene: {80, 120},
		ProductPVC:           {90, 135},
		ProductPolystyrene:   {75, 115},
		ProductABS:           {82, 122},
	}

	productPressureRanges = map[ProductType]valueRange{
		ProductPolyethylene:  {0.4, 0.9},
		ProductPolypropylene: {0.35, 0.85},
		ProductPVC:           {0.45, 0.95},
		ProductPolystyrene:   {0.3, 0.8},
		ProductABS:           {0.38, 0.88},
	}

	defaultTempRange     = valueRange{80, 130}
	defaultPressureRange = valueRange{0.3, 1.0}
)

// energyProfile scales baseline energy consumption by product type.
var energyProfile = map[ProductType]float64{
	ProductPolyethylene:  1.1,
	ProductPolypropylene: 1.0,
	ProductPVC:           1.3,
	ProductPolystyrene:   1.05,
	ProductABS:           0.95,
}

// TempRangeFor returns the operating temperature envelope for a product.
func TempRangeFor(p ProductType) (min, max float64) {
	r, ok := productTempRanges[p]
	if !ok {
		r = defaultTempRange
	}
	return r.Min, r.Max
}

// PressureRangeFor returns the operating pressure envelope for a product.
func PressureRangeFor(p ProductType) (min, max float64) {
	r, ok := productPressureRanges[p]
	if !ok {
		r = defaultPressureRange
	}
	return r.Min, r.Max
}

// EnergyMultiplierFor returns the energy profile multiplier for a product,
// defaulting to 1.0 for unprofiled products.
func EnergyMultiplierFor(p ProductType) float64 {
	if m, ok := energyProfile[p]; ok {
		return m
	}
	return 1.0
}
