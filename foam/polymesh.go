package foam

import (
	"fmt"
	"path/filepath"
)

// Patch is one named boundary region of the polyMesh, a contiguous face range.
type Patch struct {
	Name      string
	Type      string
	NFaces    int
	StartFace int
}

// Processor reports whether the patch is an inter-partition boundary of a
// decomposed case rather than a physical surface.
func (p Patch) Processor() bool {
	return p.Type == "processor" || p.Type == "processorCyclic"
}

// PolyMesh holds the face-addressed OpenFOAM mesh: faces are polygons over
// shared points, each owned by one cell and optionally shared with a
// neighbour cell. Boundary faces have no neighbour and are grouped into
// patches.
type PolyMesh struct {
	Points    [][3]float64
	Faces     [][]int
	Owner     []int
	Neighbour []int
	Patches   []Patch
	NCells    int
}

// ReadPolyMesh reads a constant/polyMesh directory.
func ReadPolyMesh(dir string) (*PolyMesh, error) {
	m := &PolyMesh{}

	rd, err := NewFileReader(filepath.Join(dir, "points"))
	if err != nil {
		return nil, err
	}
	if _, err = rd.Header(); err != nil {
		return nil, fmt.Errorf("points: %w", err)
	}
	if m.Points, err = rd.VectorList(); err != nil {
		return nil, fmt.Errorf("points: %w", err)
	}

	if rd, err = NewFileReader(filepath.Join(dir, "faces")); err != nil {
		return nil, err
	}
	if _, err = rd.Header(); err != nil {
		return nil, fmt.Errorf("faces: %w", err)
	}
	if m.Faces, err = rd.FaceList(); err != nil {
		return nil, fmt.Errorf("faces: %w", err)
	}

	if rd, err = NewFileReader(filepath.Join(dir, "owner")); err != nil {
		return nil, err
	}
	if _, err = rd.Header(); err != nil {
		return nil, fmt.Errorf("owner: %w", err)
	}
	if m.Owner, err = rd.LabelList(); err != nil {
		return nil, fmt.Errorf("owner: %w", err)
	}

	if rd, err = NewFileReader(filepath.Join(dir, "neighbour")); err != nil {
		return nil, err
	}
	if _, err = rd.Header(); err != nil {
		return nil, fmt.Errorf("neighbour: %w", err)
	}
	if m.Neighbour, err = rd.LabelList(); err != nil {
		return nil, fmt.Errorf("neighbour: %w", err)
	}

	if rd, err = NewFileReader(filepath.Join(dir, "boundary")); err != nil {
		return nil, err
	}
	if _, err = rd.Header(); err != nil {
		return nil, fmt.Errorf("boundary: %w", err)
	}
	patches, err := rd.NamedDictList()
	if err != nil {
		return nil, fmt.Errorf("boundary: %w", err)
	}
	for _, nd := range patches {
		p := Patch{Name: nd.Name}
		p.Type, _ = nd.Dict.Word("type")
		var ok bool
		if p.NFaces, ok = nd.Dict.Int("nFaces"); !ok {
			return nil, fmt.Errorf("boundary: patch %q missing nFaces", nd.Name)
		}
		if p.StartFace, ok = nd.Dict.Int("startFace"); !ok {
			return nil, fmt.Errorf("boundary: patch %q missing startFace", nd.Name)
		}
		if p.StartFace+p.NFaces > len(m.Faces) {
			return nil, fmt.Errorf("boundary: patch %q faces [%d,%d) exceed face count %d",
				nd.Name, p.StartFace, p.StartFace+p.NFaces, len(m.Faces))
		}
		m.Patches = append(m.Patches, p)
	}

	if len(m.Owner) != len(m.Faces) {
		return nil, fmt.Errorf("owner list length %d does not match face count %d",
			len(m.Owner), len(m.Faces))
	}
	if len(m.Neighbour) > len(m.Faces) {
		return nil, fmt.Errorf("neighbour list length %d exceeds face count %d",
			len(m.Neighbour), len(m.Faces))
	}
	for _, c := range m.Owner {
		if c+1 > m.NCells {
			m.NCells = c + 1
		}
	}
	for _, c := range m.Neighbour {
		if c+1 > m.NCells {
			m.NCells = c + 1
		}
	}
	return m, nil
}
