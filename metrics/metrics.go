package metrics

import (
	"fmt"
	"sort"

	"github.com/notargets/gofoam/InputParameters"
	"github.com/notargets/gofoam/foam"
	"github.com/notargets/gofoam/mesh"
)

// Penalty sentinels for the "no combustion occurred" outcome. Pattern
// factor is smaller-is-better and unbounded above, so its failure sentinel
// is a large finite value an optimizer searching for a minimum will avoid.
// Temperature rise is larger-is-better on [0,1], so its sentinel is the
// floor. Neither outcome is an error: a candidate geometry that fails to
// ignite is a physically plausible result that must score badly, not crash
// the optimizer.
const (
	PatternFactorPenalty = 999.0
	TemperatureRiseFloor = 0.0
)

// Evaluator computes one named scalar metric from a loaded snapshot plus
// the case directory (for boundary-condition lookups). Pure given its
// inputs.
type Evaluator func(s *mesh.Snapshot, caseDir string, p InputParameters.MetricParameters) (float64, error)

// Registry maps metric names to evaluators.
var Registry = map[string]Evaluator{
	"combustion_efficiency": CombustionEfficiency,
	"ch4_domain_average":    FuelDomainAverage,
	"pattern_factor":        PatternFactor,
	"temperature_rise":      TemperatureRise,
}

// Names returns the valid metric names, sorted.
func Names() []string {
	names := make([]string, 0, len(Registry))
	for k := range Registry {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// CombustionEfficiency computes η = 1 - (C_outlet / C_inlet): the fraction
// of inlet fuel converted before the flow leaves through the outlet.
// C_outlet is the area-weighted average fuel mass fraction on the outlet
// patch; C_inlet comes from the fuel-inlet boundary condition.
func CombustionEfficiency(s *mesh.Snapshot, caseDir string, p InputParameters.MetricParameters) (float64, error) {
	inlet := foam.ReadBoundaryCondition(caseDir, p.FuelField, p.FuelInletPatch, p.FuelInletValue)
	if inlet.Value <= 0 {
		return 0, fmt.Errorf("non-positive inlet fuel fraction %v (%s) at patch %q",
			inlet.Value, inlet.Source, p.FuelInletPatch)
	}
	outlet, err := mesh.FindRegion(s, p.OutletPatch)
	if err != nil {
		return 0, err
	}
	integral, area, err := Integrate(outlet, p.FuelField)
	if err != nil {
		return 0, err
	}
	return 1.0 - (integral/area)/inlet.Value, nil
}

// FuelDomainAverage computes the volume-averaged fuel mass fraction over
// the whole domain. High values mean fuel is accumulating rather than
// burning; an optimizer wants this low at steady state.
func FuelDomainAverage(s *mesh.Snapshot, caseDir string, p InputParameters.MetricParameters) (float64, error) {
	integral, volume, err := IntegrateInterior(s, p.FuelField)
	if err != nil {
		return 0, err
	}
	return integral / volume, nil
}

// PatternFactor computes PF = (T_max - T_avg) / (T_avg - T_inlet), the
// temperature non-uniformity at the domain scale. When the domain shows no
// net rise above the inlet temperature, combustion did not occur and the
// penalty sentinel is returned.
func PatternFactor(s *mesh.Snapshot, caseDir string, p InputParameters.MetricParameters) (float64, error) {
	tMax, tAvg, err := interiorTemperature(s, p)
	if err != nil {
		return 0, err
	}
	tInlet := foam.ReadBoundaryCondition(caseDir, p.TemperatureField, p.AirInletPatch, p.InletTemperature)
	denom := tAvg - tInlet.Value
	if denom <= 0 {
		return PatternFactorPenalty, nil
	}
	return (tMax - tAvg) / denom, nil
}

// TemperatureRise computes η_T = (T_avg - T_inlet) / (T_max - T_inlet),
// the achieved fraction of the peak temperature rise, in [0,1]. When the
// peak never rises above the inlet temperature, the worst-case efficiency
// is returned.
func TemperatureRise(s *mesh.Snapshot, caseDir string, p InputParameters.MetricParameters) (float64, error) {
	tMax, tAvg, err := interiorTemperature(s, p)
	if err != nil {
		return 0, err
	}
	tInlet := foam.ReadBoundaryCondition(caseDir, p.TemperatureField, p.AirInletPatch, p.InletTemperature)
	denom := tMax - tInlet.Value
	if denom <= 0 {
		return TemperatureRiseFloor, nil
	}
	return (tAvg - tInlet.Value) / denom, nil
}

// interiorTemperature returns the peak and volume-averaged temperature of
// the interior, shared by both temperature metrics.
func interiorTemperature(s *mesh.Snapshot, p InputParameters.MetricParameters) (tMax, tAvg float64, err error) {
	interior := s.Interior()
	if interior == nil {
		return 0, 0, &mesh.RegionNotFoundError{Name: "interior", Available: s.BlockNames()}
	}
	_, tMax, err = FieldRange(interior, p.TemperatureField)
	if err != nil {
		return 0, 0, err
	}
	integral, volume, err := Integrate(interior, p.TemperatureField)
	if err != nil {
		return 0, 0, err
	}
	return tMax, integral / volume, nil
}
