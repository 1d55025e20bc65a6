package metrics

import "fmt"

// FieldNotFoundError reports a field absent from both the cell and point
// data of a region, listing what is available.
type FieldNotFoundError struct {
	Field       string
	Region      string
	CellArrays  []string
	PointArrays []string
}

func (e *FieldNotFoundError) Error() string {
	return fmt.Sprintf("field %q not found on region %q, cell arrays: %v, point arrays: %v",
		e.Field, e.Region, e.CellArrays, e.PointArrays)
}

// DegenerateMeasureError reports a region whose total area or volume is not
// positive: an empty or malformed region over which no average can be
// formed.
type DegenerateMeasureError struct {
	Region  string
	Measure float64
}

func (e *DegenerateMeasureError) Error() string {
	return fmt.Sprintf("region %q has non-positive measure %v", e.Region, e.Measure)
}
