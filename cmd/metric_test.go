package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/notargets/gofoam/foam"
	"github.com/notargets/gofoam/mesh"
)

// A single-cell cube case, just enough for the volume metrics. The parser
// tolerates missing FoamFile headers on polyMesh files; field files need
// one for the class check.
var cubeCaseFiles = map[string]string{
	"constant/polyMesh/points": `8
(
(0 0 0)
(1 0 0)
(1 1 0)
(0 1 0)
(0 0 1)
(1 0 1)
(1 1 1)
(0 1 1)
)`,
	"constant/polyMesh/faces": `6
(
4(1 2 6 5)
4(0 4 7 3)
4(0 1 5 4)
4(3 7 6 2)
4(0 3 2 1)
4(4 5 6 7)
)`,
	"constant/polyMesh/owner":     "6\n(\n0\n0\n0\n0\n0\n0\n)",
	"constant/polyMesh/neighbour": "0()",
	"constant/polyMesh/boundary": `2
(
    outlet
    {
        type            patch;
        nFaces          1;
        startFace       0;
    }
    walls
    {
        type            wall;
        nFaces          5;
        startFace       1;
    }
)`,
	"0.5/T": `FoamFile
{
    class       volScalarField;
    object      T;
}
internalField   uniform 1000;
boundaryField
{
    outlet { type zeroGradient; }
    walls  { type zeroGradient; }
}`,
	"0.5/CH4": `FoamFile
{
    class       volScalarField;
    object      CH4;
}
internalField   uniform 0.05;
boundaryField
{
    outlet { type zeroGradient; }
    walls  { type zeroGradient; }
}`,
}

func writeCubeCase(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range cubeCaseFiles {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("Failed to create %s: %v", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", path, err)
		}
	}
	return dir
}

func TestRunMetricUnknownName(t *testing.T) {
	err := runMetric(t.TempDir(), "enthalpy_flux", nil, "")
	assert.Error(t, err)
	// Usage errors list the valid set.
	assert.Contains(t, err.Error(), "combustion_efficiency")
	assert.Contains(t, err.Error(), "pattern_factor")
}

func TestRunMetricMissingCase(t *testing.T) {
	err := runMetric(filepath.Join(t.TempDir(), "nope"), "pattern_factor", nil, "")
	var cnf *foam.CaseNotFoundError
	assert.True(t, errors.As(err, &cnf))
}

func TestRunMetricOnCase(t *testing.T) {
	dir := writeCubeCase(t)
	// Uniform 1000K domain, inlet fallback 300K: PF = 0, computed cleanly.
	assert.NoError(t, runMetric(dir, "pattern_factor", nil, ""))
	assert.NoError(t, runMetric(dir, "ch4_domain_average", nil, ""))
	assert.NoError(t, runMetric(dir, "combustion_efficiency", nil, ""))

	// Nearest-time selection accepts any requested time.
	req := 0.2
	assert.NoError(t, runMetric(dir, "temperature_rise", &req, ""))
}

func TestRunMetricParametersFile(t *testing.T) {
	dir := writeCubeCase(t)
	params := filepath.Join(t.TempDir(), "params.yaml")
	assert.NoError(t, os.WriteFile(params, []byte("OutletPatch: exhaust\n"), 0644))

	err := runMetric(dir, "combustion_efficiency", nil, params)
	var rnf *mesh.RegionNotFoundError
	assert.True(t, errors.As(err, &rnf))
}
