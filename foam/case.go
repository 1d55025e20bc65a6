package foam

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/notargets/gofoam/mesh"
)

// TimeMatchTolerance is the mismatch above which nearest-time selection is
// reported to the caller as worth a warning.
const TimeMatchTolerance = 1e-6

// InteriorName is the block name of the volumetric domain, matching what
// the OpenFOAM toolchain calls it.
const InteriorName = "internalMesh"

// Case is an opened OpenFOAM case directory with its discovered time series.
type Case struct {
	Dir        string
	Decomposed bool

	parts     []string // partition roots; the case dir itself when reconstructed
	times     []float64
	timeNames []string
}

// OpenCase opens a case directory, detecting decomposed (processor*
// subdirectories) vs reconstructed layout. Reconstructed cases get the
// case.foam marker touched idempotently. The discovered time series is
// strictly increasing and non-empty.
func OpenCase(dir string) (*Case, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, &CaseNotFoundError{Dir: dir}
	}
	c := &Case{Dir: dir}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading case directory %s: %w", dir, err)
	}
	var procs []int
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), "processor") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(e.Name(), "processor"))
		if err != nil {
			continue
		}
		procs = append(procs, n)
	}
	if len(procs) > 0 {
		sort.Ints(procs)
		c.Decomposed = true
		for _, n := range procs {
			c.parts = append(c.parts, filepath.Join(dir, fmt.Sprintf("processor%d", n)))
		}
	} else {
		marker := filepath.Join(dir, "case.foam")
		f, err := os.OpenFile(marker, os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("creating case marker %s: %w", marker, err)
		}
		f.Close()
		c.parts = []string{dir}
	}

	if err := c.scanTimes(); err != nil {
		return nil, err
	}
	return c, nil
}

// scanTimes enumerates solver time directories of the first partition:
// every child directory whose name parses as a float. constant, system and
// 0.orig never parse and are excluded naturally.
func (c *Case) scanTimes() error {
	entries, err := os.ReadDir(c.parts[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", c.parts[0], err)
	}
	type instant struct {
		t    float64
		name string
	}
	var found []instant
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		t, err := strconv.ParseFloat(e.Name(), 64)
		if err != nil {
			continue
		}
		found = append(found, instant{t: t, name: e.Name()})
	}
	if len(found) == 0 {
		return &NoTimeStepsError{Dir: c.Dir}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].t < found[j].t })
	for _, in := range found {
		c.times = append(c.times, in.t)
		c.timeNames = append(c.timeNames, in.name)
	}
	return nil
}

// Times returns the available time instants, strictly increasing.
func (c *Case) Times() []float64 {
	return c.times
}

// SelectTime picks a time instant: the latest when requested is nil,
// otherwise the series entry nearest to the request. The returned mismatch
// is the absolute difference; callers warn when it exceeds
// TimeMatchTolerance.
func (c *Case) SelectTime(requested *float64) (t, mismatch float64) {
	if requested == nil {
		return c.times[len(c.times)-1], 0
	}
	best := c.times[0]
	bestDiff := math.Abs(best - *requested)
	for _, ti := range c.times[1:] {
		if d := math.Abs(ti - *requested); d < bestDiff {
			best, bestDiff = ti, d
		}
	}
	return best, bestDiff
}

// Load materializes the mesh and every solver-written volume field at the
// given time instant (which must be a member of Times). The snapshot holds
// the interior plus all named boundary patches; decomposed partitions are
// concatenated region by region.
func (c *Case) Load(t float64) (*mesh.Snapshot, error) {
	name := ""
	for i, ti := range c.times {
		if ti == t {
			name = c.timeNames[i]
			break
		}
	}
	if name == "" {
		return nil, fmt.Errorf("time %v is not in the case time series %v", t, c.times)
	}

	var (
		interior = &mesh.Block{
			Name:      InteriorName,
			Kind:      mesh.VolumeBlock,
			CellData:  map[string]mesh.Field{},
			PointData: map[string]mesh.Field{},
		}
		boundary = &mesh.Block{Name: "boundary", Kind: mesh.ContainerBlock}
		patches  = map[string]*mesh.Block{}
	)
	for _, part := range c.parts {
		pd, err := c.loadPartition(part, name)
		if err != nil {
			return nil, err
		}
		appendBlock(interior, pd.interior)
		for _, pb := range pd.patches {
			dst, ok := patches[pb.Name]
			if !ok {
				dst = &mesh.Block{
					Name:      pb.Name,
					Kind:      mesh.SurfaceBlock,
					CellData:  map[string]mesh.Field{},
					PointData: map[string]mesh.Field{},
				}
				patches[pb.Name] = dst
				boundary.Children = append(boundary.Children, dst)
			}
			appendBlock(dst, pb)
		}
	}
	checkFieldLengths(interior)
	for _, pb := range boundary.Children {
		checkFieldLengths(pb)
	}
	return &mesh.Snapshot{Time: t, Blocks: []*mesh.Block{interior, boundary}}, nil
}

// appendBlock concatenates src's measures and fields onto dst.
func appendBlock(dst, src *mesh.Block) {
	dst.Measures = append(dst.Measures, src.Measures...)
	dst.PointWeights = append(dst.PointWeights, src.PointWeights...)
	for name, f := range src.CellData {
		prev := dst.CellData[name]
		dst.CellData[name] = appendField(prev, f)
	}
}

// appendField concatenates component-major fields, keeping the storage
// component-major.
func appendField(dst, src mesh.Field) mesh.Field {
	if dst.Components == 0 {
		cp := make([]float64, len(src.Data))
		copy(cp, src.Data)
		return mesh.Field{Components: src.Components, Data: cp}
	}
	n := dst.Len() + src.Len()
	out := make([]float64, 0, dst.Components*n)
	for comp := 0; comp < dst.Components; comp++ {
		out = append(out, dst.Component(comp)...)
		if comp < src.Components {
			out = append(out, src.Component(comp)...)
		}
	}
	return mesh.Field{Components: dst.Components, Data: out}
}

// checkFieldLengths drops fields that did not appear in every partition,
// which would otherwise silently misalign against the measures.
func checkFieldLengths(b *mesh.Block) {
	for name, f := range b.CellData {
		if f.Len() != len(b.Measures) {
			log.Warnf("field %s dropped: %d values for %d elements (missing from a partition?)",
				name, f.Len(), len(b.Measures))
			delete(b.CellData, name)
		}
	}
}

type partitionData struct {
	interior *mesh.Block
	patches  []*mesh.Block
}

// loadPartition reads one partition's polyMesh, computes its geometry and
// attaches every volume field found in the time directory.
func (c *Case) loadPartition(part, timeName string) (*partitionData, error) {
	pm, err := ReadPolyMesh(filepath.Join(part, "constant", "polyMesh"))
	if err != nil {
		return nil, fmt.Errorf("partition %s: %w", part, err)
	}
	centers, areas := mesh.FaceGeometry(pm.Points, pm.Faces)
	vols := mesh.CellVolumes(pm.NCells, centers, areas, pm.Owner, pm.Neighbour)
	areaMags := mesh.FaceAreaMagnitudes(areas)

	fields, err := readTimeFields(filepath.Join(part, timeName))
	if err != nil {
		return nil, err
	}

	interior := &mesh.Block{
		Name:         InteriorName,
		Kind:         mesh.VolumeBlock,
		Measures:     vols,
		PointWeights: interiorPointWeights(pm, vols),
		CellData:     map[string]mesh.Field{},
		PointData:    map[string]mesh.Field{},
	}
	for _, ff := range fields {
		vals, err := ff.Internal.Expand(pm.NCells)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", ff.Name, err)
		}
		interior.CellData[ff.Name] = mesh.Field{Components: ff.Internal.Components, Data: vals}
	}

	pd := &partitionData{interior: interior}
	for _, patch := range pm.Patches {
		if patch.Processor() {
			continue
		}
		pb := &mesh.Block{
			Name:         patch.Name,
			Kind:         mesh.SurfaceBlock,
			Measures:     areaMags[patch.StartFace : patch.StartFace+patch.NFaces],
			PointWeights: patchPointWeights(pm, patch),
			CellData:     map[string]mesh.Field{},
			PointData:    map[string]mesh.Field{},
		}
		for _, ff := range fields {
			vals, ncomp, err := ff.PatchValue(patch.Name, patch.NFaces)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", ff.Name, err)
			}
			if vals == nil {
				// No explicit value list: sample the owner cells, the
				// surface trace a zeroGradient/calculated patch implies.
				vals, ncomp = sampleOwnerCells(ff, pm, patch)
				if vals == nil {
					continue
				}
			}
			pb.CellData[ff.Name] = mesh.Field{Components: ncomp, Data: vals}
		}
		pd.patches = append(pd.patches, pb)
	}
	return pd, nil
}

// readTimeFields parses every regular file of a time directory that holds a
// cell-centered field. All solver-written arrays are loaded; different
// metrics need different fields and the locator filters later.
func readTimeFields(timeDir string) ([]*FieldFile, error) {
	entries, err := os.ReadDir(timeDir)
	if err != nil {
		return nil, fmt.Errorf("reading time directory %s: %w", timeDir, err)
	}
	var out []*FieldFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ".gz")
		ff, err := ReadFieldFile(filepath.Join(timeDir, name), name)
		if err != nil {
			log.Debugf("skipping %s: %v", filepath.Join(timeDir, e.Name()), err)
			continue
		}
		if !ff.VolumeField() {
			log.Debugf("skipping %s: class %s is not cell-centered", name, ff.Class)
			continue
		}
		out = append(out, ff)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// sampleOwnerCells pulls a patch field from the internal values of the
// faces' owner cells.
func sampleOwnerCells(ff *FieldFile, pm *PolyMesh, patch Patch) ([]float64, int) {
	if ff.Internal.Components == 0 {
		return nil, 0
	}
	internal, err := ff.Internal.Expand(pm.NCells)
	if err != nil {
		return nil, 0
	}
	ncomp := ff.Internal.Components
	vals := make([]float64, ncomp*patch.NFaces)
	for comp := 0; comp < ncomp; comp++ {
		cells := internal[comp*pm.NCells : (comp+1)*pm.NCells]
		row := vals[comp*patch.NFaces : (comp+1)*patch.NFaces]
		for i := 0; i < patch.NFaces; i++ {
			row[i] = cells[pm.Owner[patch.StartFace+i]]
		}
	}
	return vals, ncomp
}

// interiorPointWeights lumps cell volumes onto the points of each cell,
// gathered from its faces.
func interiorPointWeights(pm *PolyMesh, vols []float64) []float64 {
	cellPts := make([]map[int]struct{}, pm.NCells)
	addFace := func(cell, face int) {
		if cellPts[cell] == nil {
			cellPts[cell] = map[int]struct{}{}
		}
		for _, p := range pm.Faces[face] {
			cellPts[cell][p] = struct{}{}
		}
	}
	for f, c := range pm.Owner {
		addFace(c, f)
	}
	for f, c := range pm.Neighbour {
		addFace(c, f)
	}
	elements := make([][]int, pm.NCells)
	for ci, set := range cellPts {
		pts := make([]int, 0, len(set))
		for p := range set {
			pts = append(pts, p)
		}
		elements[ci] = pts
	}
	return mesh.LumpPointWeights(len(pm.Points), elements, vols)
}

// patchPointWeights lumps face areas onto a patch-local point numbering.
func patchPointWeights(pm *PolyMesh, patch Patch) []float64 {
	local := map[int]int{}
	var elements [][]int
	for f := patch.StartFace; f < patch.StartFace+patch.NFaces; f++ {
		face := make([]int, len(pm.Faces[f]))
		for i, p := range pm.Faces[f] {
			id, ok := local[p]
			if !ok {
				id = len(local)
				local[p] = id
			}
			face[i] = id
		}
		elements = append(elements, face)
	}
	_, areas := mesh.FaceGeometry(pm.Points, pm.Faces[patch.StartFace:patch.StartFace+patch.NFaces])
	return mesh.LumpPointWeights(len(local), elements, mesh.FaceAreaMagnitudes(areas))
}
