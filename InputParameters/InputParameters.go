package InputParameters

import (
	"fmt"
	"os"

	"github.com/ghodss/yaml"
)

// Defaults match the combustor cases this tool was built against: methane
// fuel entering at inletFuel, air at inletAir, one outlet patch.
const (
	DefaultFuelInletFraction = 0.1561
	DefaultInletTemperature  = 300.0
)

// MetricParameters selects the field and patch names the metric evaluators
// operate on, plus the fallback constants used when boundary-condition
// metadata is absent. Loaded from an optional YAML file; passed by value so
// no evaluator can mutate shared state.
type MetricParameters struct {
	FuelField        string  `yaml:"FuelField"`
	TemperatureField string  `yaml:"TemperatureField"`
	FuelInletPatch   string  `yaml:"FuelInletPatch"`
	AirInletPatch    string  `yaml:"AirInletPatch"`
	OutletPatch      string  `yaml:"OutletPatch"`
	FuelInletValue   float64 `yaml:"FuelInletValue"`
	InletTemperature float64 `yaml:"InletTemperature"`
}

// DefaultMetricParameters returns the parameter set matching the original
// combustor cases.
func DefaultMetricParameters() MetricParameters {
	return MetricParameters{
		FuelField:        "CH4",
		TemperatureField: "T",
		FuelInletPatch:   "inletFuel",
		AirInletPatch:    "inletAir",
		OutletPatch:      "outlet",
		FuelInletValue:   DefaultFuelInletFraction,
		InletTemperature: DefaultInletTemperature,
	}
}

func (mp *MetricParameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, mp)
}

// Print dumps the parameter set on stderr; stdout stays reserved for the
// metric value.
func (mp *MetricParameters) Print() {
	w := os.Stderr
	fmt.Fprintf(w, "[%s]\t\t= Fuel Field\n", mp.FuelField)
	fmt.Fprintf(w, "[%s]\t\t= Temperature Field\n", mp.TemperatureField)
	fmt.Fprintf(w, "[%s]\t= Fuel Inlet Patch\n", mp.FuelInletPatch)
	fmt.Fprintf(w, "[%s]\t= Air Inlet Patch\n", mp.AirInletPatch)
	fmt.Fprintf(w, "[%s]\t\t= Outlet Patch\n", mp.OutletPatch)
	fmt.Fprintf(w, "%8.5f\t= Fuel Inlet Fallback\n", mp.FuelInletValue)
	fmt.Fprintf(w, "%8.3f\t= Inlet Temperature Fallback\n", mp.InletTemperature)
}
