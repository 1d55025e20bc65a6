package foam

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

// The fixture mesh is a single unit-cube cell with its six faces split into
// inletFuel (x=0), inletAir (y=0), outlet (x=1) and walls. All face normals
// point out of the owner cell, as the format requires.
const (
	cubePoints = `FoamFile
{
    version     2.0;
    format      ascii;
    class       vectorField;
    object      points;
}

8
(
(0 0 0)
(1 0 0)
(1 1 0)
(0 1 0)
(0 0 1)
(1 0 1)
(1 1 1)
(0 1 1)
)
`
	cubeFaces = `FoamFile
{
    version     2.0;
    format      ascii;
    class       faceList;
    object      faces;
}

6
(
4(0 4 7 3)
4(0 1 5 4)
4(1 2 6 5)
4(3 7 6 2)
4(0 3 2 1)
4(4 5 6 7)
)
`
	cubeOwner = `FoamFile
{
    version     2.0;
    format      ascii;
    class       labelList;
    object      owner;
}

6
(
0
0
0
0
0
0
)
`
	cubeNeighbour = `FoamFile
{
    version     2.0;
    format      ascii;
    class       labelList;
    object      neighbour;
}

0()
`
	cubeBoundary = `FoamFile
{
    version     2.0;
    format      ascii;
    class       polyBoundaryMesh;
    object      boundary;
}

4
(
    inletFuel
    {
        type            patch;
        nFaces          1;
        startFace       0;
    }
    inletAir
    {
        type            patch;
        nFaces          1;
        startFace       1;
    }
    outlet
    {
        type            patch;
        nFaces          1;
        startFace       2;
    }
    walls
    {
        type            wall;
        nFaces          3;
        startFace       3;
    }
)
`
	cubeT = `FoamFile
{
    version     2.0;
    format      ascii;
    class       volScalarField;
    object      T;
}

dimensions      [0 0 0 1 0 0 0];

internalField   uniform 1000;

boundaryField
{
    inletFuel
    {
        type            fixedValue;
        value           uniform 300;
    }
    inletAir
    {
        type            fixedValue;
        value           uniform 300;
    }
    outlet
    {
        type            zeroGradient;
    }
    walls
    {
        type            zeroGradient;
    }
}
`
	cubeCH4 = `FoamFile
{
    version     2.0;
    format      ascii;
    class       volScalarField;
    object      CH4;
}

dimensions      [0 0 0 0 0 0 0];

internalField   uniform 0.05;

boundaryField
{
    inletFuel
    {
        type            fixedValue;
        value           uniform 0.1561;
    }
    inletAir
    {
        type            fixedValue;
        value           uniform 0;
    }
    outlet
    {
        type            zeroGradient;
    }
    walls
    {
        type            zeroGradient;
    }
}
`
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}

// writeCubeMesh writes the polyMesh files under root/constant/polyMesh.
func writeCubeMesh(t *testing.T, root string) {
	t.Helper()
	pm := filepath.Join(root, "constant", "polyMesh")
	writeFile(t, filepath.Join(pm, "points"), cubePoints)
	writeFile(t, filepath.Join(pm, "faces"), cubeFaces)
	writeFile(t, filepath.Join(pm, "owner"), cubeOwner)
	writeFile(t, filepath.Join(pm, "neighbour"), cubeNeighbour)
	writeFile(t, filepath.Join(pm, "boundary"), cubeBoundary)
}

// writeCubeCase builds a reconstructed single-cell case with times 0 and
// 0.5 and returns its directory.
func writeCubeCase(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeCubeMesh(t, dir)
	if err := os.MkdirAll(filepath.Join(dir, "0"), 0755); err != nil {
		t.Fatalf("Failed to create time directory: %v", err)
	}
	writeFile(t, filepath.Join(dir, "0.5", "T"), cubeT)
	writeFile(t, filepath.Join(dir, "0.5", "CH4"), cubeCH4)
	return dir
}

func TestOpenCaseNotFound(t *testing.T) {
	_, err := OpenCase(filepath.Join(t.TempDir(), "nope"))
	var cnf *CaseNotFoundError
	assert.True(t, errors.As(err, &cnf))
}

func TestOpenCaseNoTimeSteps(t *testing.T) {
	dir := t.TempDir()
	writeCubeMesh(t, dir)
	_, err := OpenCase(dir)
	var nts *NoTimeStepsError
	assert.True(t, errors.As(err, &nts))
}

func TestOpenCaseReconstructed(t *testing.T) {
	dir := writeCubeCase(t)
	c, err := OpenCase(dir)
	assert.NoError(t, err)
	assert.False(t, c.Decomposed)
	assert.Equal(t, []float64{0, 0.5}, c.Times())

	// The case.foam marker is created idempotently.
	_, err = os.Stat(filepath.Join(dir, "case.foam"))
	assert.NoError(t, err)
	_, err = OpenCase(dir)
	assert.NoError(t, err)
}

func TestSelectTime(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"0", "0.1", "0.25", "0.5"} {
		if err := os.MkdirAll(filepath.Join(dir, name), 0755); err != nil {
			t.Fatalf("Failed to create time directory: %v", err)
		}
	}
	c, err := OpenCase(dir)
	assert.NoError(t, err)
	assert.Equal(t, []float64{0, 0.1, 0.25, 0.5}, c.Times())

	// No request: latest.
	sel, mismatch := c.SelectTime(nil)
	assert.Equal(t, 0.5, sel)
	assert.Equal(t, 0.0, mismatch)

	// Nearest match with a reportable mismatch.
	req := 0.2
	sel, mismatch = c.SelectTime(&req)
	assert.Equal(t, 0.25, sel)
	assert.InDelta(t, 0.05, mismatch, 1e-12)
	assert.Greater(t, mismatch, TimeMatchTolerance)

	// Requesting the exact last time matches requesting nothing.
	last := 0.5
	sel, mismatch = c.SelectTime(&last)
	assert.Equal(t, 0.5, sel)
	assert.LessOrEqual(t, mismatch, TimeMatchTolerance)
}

func TestLoadCube(t *testing.T) {
	dir := writeCubeCase(t)
	c, err := OpenCase(dir)
	assert.NoError(t, err)
	snap, err := c.Load(0.5)
	assert.NoError(t, err)
	assert.Equal(t, 0.5, snap.Time)

	interior := snap.Interior()
	assert.NotNil(t, interior)
	assert.Len(t, interior.Measures, 1)
	assert.InDelta(t, 1.0, interior.Measures[0], 1e-12)
	assert.Equal(t, []float64{1000}, interior.CellData["T"].Data)
	assert.Equal(t, []float64{0.05}, interior.CellData["CH4"].Data)

	// All four physical patches come back, each with its face area.
	assert.Len(t, snap.Blocks, 2)
	boundary := snap.Blocks[1]
	assert.Len(t, boundary.Children, 4)
	byName := map[string]int{}
	for i, pb := range boundary.Children {
		byName[pb.Name] = i
	}
	outlet := boundary.Children[byName["outlet"]]
	assert.InDelta(t, 1.0, outlet.Measures[0], 1e-12)
	// zeroGradient outlet: owner-cell sample.
	assert.Equal(t, []float64{0.05}, outlet.CellData["CH4"].Data)
	// fixedValue inlet: explicit boundary value.
	inlet := boundary.Children[byName["inletFuel"]]
	assert.Equal(t, []float64{0.1561}, inlet.CellData["CH4"].Data)
	walls := boundary.Children[byName["walls"]]
	assert.Len(t, walls.Measures, 3)

	// Lumped point weights cover the full measure.
	var sum float64
	for _, w := range interior.PointWeights {
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-12)
}

func TestLoadDecomposed(t *testing.T) {
	dir := t.TempDir()
	// Two identical single-cell partitions; processor patches must not
	// surface as regions.
	procBoundary := `FoamFile
{
    version     2.0;
    format      ascii;
    class       polyBoundaryMesh;
    object      boundary;
}

2
(
    outlet
    {
        type            patch;
        nFaces          1;
        startFace       2;
    }
    procBoundary0to1
    {
        type            processor;
        nFaces          3;
        startFace       3;
    }
)
`
	for _, proc := range []string{"processor0", "processor1"} {
		root := filepath.Join(dir, proc)
		writeCubeMesh(t, root)
		writeFile(t, filepath.Join(root, "constant", "polyMesh", "boundary"), procBoundary)
		writeFile(t, filepath.Join(root, "0.5", "T"), cubeT)
		writeFile(t, filepath.Join(root, "0.5", "CH4"), cubeCH4)
	}

	c, err := OpenCase(dir)
	assert.NoError(t, err)
	assert.True(t, c.Decomposed)
	assert.Equal(t, []float64{0.5}, c.Times())
	// No case.foam marker for decomposed cases.
	_, err = os.Stat(filepath.Join(dir, "case.foam"))
	assert.True(t, os.IsNotExist(err))

	snap, err := c.Load(0.5)
	assert.NoError(t, err)
	interior := snap.Interior()
	assert.Len(t, interior.Measures, 2)
	assert.InDelta(t, 1.0, interior.Measures[0], 1e-12)
	assert.InDelta(t, 1.0, interior.Measures[1], 1e-12)

	boundary := snap.Blocks[1]
	assert.Len(t, boundary.Children, 1)
	assert.Equal(t, "outlet", boundary.Children[0].Name)
	assert.Len(t, boundary.Children[0].Measures, 2)
}

func TestLoadUnknownTime(t *testing.T) {
	dir := writeCubeCase(t)
	c, err := OpenCase(dir)
	assert.NoError(t, err)
	_, err = c.Load(0.31415)
	assert.Error(t, err)
}
