package mesh

import (
	"sort"

	"gonum.org/v1/gonum/mat"
)

// BlockKind distinguishes what an element measure means for a block.
type BlockKind int

const (
	// VolumeBlock is a 3D region; measures are cell volumes.
	VolumeBlock BlockKind = iota
	// SurfaceBlock is a 2D region; measures are face areas.
	SurfaceBlock
	// ContainerBlock holds named children and no data of its own.
	ContainerBlock
)

func (k BlockKind) String() string {
	return [...]string{"volume", "surface", "container"}[k]
}

// Field is a named data array on a block, scalar or multi-component, stored
// component-major.
type Field struct {
	Components int
	Data       []float64
}

// Len returns the number of elements (not values) in the field.
func (f Field) Len() int {
	if f.Components == 0 {
		return 0
	}
	return len(f.Data) / f.Components
}

// Component returns one component as a slice view.
func (f Field) Component(c int) []float64 {
	n := f.Len()
	return f.Data[c*n : (c+1)*n]
}

// Vec returns one component as a gonum vector view.
func (f Field) Vec(c int) *mat.VecDense {
	return mat.NewVecDense(f.Len(), f.Component(c))
}

// Block is one node of the snapshot tree: a named mesh region carrying
// per-element measures and field arrays, or a pure container of nested
// regions (the boundary group).
type Block struct {
	Name     string
	Kind     BlockKind
	Children []*Block

	// Measures holds the area (surface) or volume (volume) of each element.
	Measures []float64
	// PointWeights holds a lumped measure share per mesh point of the
	// block, used to integrate point-located data.
	PointWeights []float64

	CellData  map[string]Field
	PointData map[string]Field
}

// MeasureVec returns the element measures as a gonum vector view.
func (b *Block) MeasureVec() *mat.VecDense {
	return mat.NewVecDense(len(b.Measures), b.Measures)
}

// CellArrayNames returns the sorted cell data array names.
func (b *Block) CellArrayNames() []string {
	return sortedKeys(b.CellData)
}

// PointArrayNames returns the sorted point data array names.
func (b *Block) PointArrayNames() []string {
	return sortedKeys(b.PointData)
}

func sortedKeys(m map[string]Field) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Snapshot is the mesh and field state at one solver time: a two-level tree
// with the volumetric interior and a boundary container of named patches.
type Snapshot struct {
	Time   float64
	Blocks []*Block
}

// Interior returns the volumetric interior block, or nil when absent.
func (s *Snapshot) Interior() *Block {
	for _, b := range s.Blocks {
		if b.Kind == VolumeBlock {
			return b
		}
	}
	return nil
}

// BlockNames returns the top-level block names in tree order.
func (s *Snapshot) BlockNames() []string {
	names := make([]string, len(s.Blocks))
	for i, b := range s.Blocks {
		names[i] = b.Name
	}
	return names
}
