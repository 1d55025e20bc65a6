package metrics

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/gofoam/mesh"
)

// lookupField finds a field on a block, cell data first then point data,
// returning the values of component 0 paired with the matching element
// weights (measures for cell data, lumped point weights for point data).
func lookupField(b *mesh.Block, fieldName string) (values, weights []float64, err error) {
	if f, ok := b.CellData[fieldName]; ok {
		return f.Component(0), b.Measures, nil
	}
	if f, ok := b.PointData[fieldName]; ok {
		return f.Component(0), b.PointWeights, nil
	}
	return nil, nil, &FieldNotFoundError{
		Field:       fieldName,
		Region:      b.Name,
		CellArrays:  b.CellArrayNames(),
		PointArrays: b.PointArrayNames(),
	}
}

// Integrate computes the measure-weighted integral of a field over a region
// and the region's total measure (area for a surface, volume for a volume).
// Both come from one pass; integral/measure is the measure-weighted
// average. A non-positive total measure is a data error, never divided by.
func Integrate(b *mesh.Block, fieldName string) (integral, measure float64, err error) {
	values, weights, err := lookupField(b, fieldName)
	if err != nil {
		return 0, 0, err
	}
	if len(values) != len(weights) {
		return 0, 0, fmt.Errorf("region %q: field %q has %d values for %d weights",
			b.Name, fieldName, len(values), len(weights))
	}
	measure = floats.Sum(weights)
	if measure <= 0 {
		return 0, 0, &DegenerateMeasureError{Region: b.Name, Measure: measure}
	}
	integral = mat.Dot(mat.NewVecDense(len(values), values), mat.NewVecDense(len(weights), weights))
	return integral, measure, nil
}

// IntegrateInterior integrates a field over the whole volumetric domain.
// The interior block is always addressed directly; no region search is
// involved.
func IntegrateInterior(s *mesh.Snapshot, fieldName string) (integral, volume float64, err error) {
	interior := s.Interior()
	if interior == nil {
		return 0, 0, &mesh.RegionNotFoundError{Name: "interior", Available: s.BlockNames()}
	}
	return Integrate(interior, fieldName)
}

// FieldRange returns the minimum and maximum of a field over a region,
// independent of any integration.
func FieldRange(b *mesh.Block, fieldName string) (min, max float64, err error) {
	values, _, err := lookupField(b, fieldName)
	if err != nil {
		return 0, 0, err
	}
	if len(values) == 0 {
		return 0, 0, fmt.Errorf("region %q: field %q is empty", b.Name, fieldName)
	}
	return floats.Min(values), floats.Max(values), nil
}
