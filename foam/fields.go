package foam

import (
	"fmt"
	"strconv"
	"strings"
)

// FieldData is one parsed field value entry: either a uniform value or an
// explicit list, scalar or multi-component. List storage is component-major.
type FieldData struct {
	Components int
	Uniform    bool
	Value      []float64 // uniform value, one per component
	List       []float64 // component-major, Components*N values
	N          int       // list length (0 when uniform)
}

// Expand returns component-major values for n elements, replicating a
// uniform value or validating the list length.
func (fd FieldData) Expand(n int) ([]float64, error) {
	if fd.Uniform {
		out := make([]float64, fd.Components*n)
		for c := 0; c < fd.Components; c++ {
			row := out[c*n : (c+1)*n]
			for i := range row {
				row[i] = fd.Value[c]
			}
		}
		return out, nil
	}
	if fd.N != n {
		return nil, fmt.Errorf("field list length %d does not match element count %d", fd.N, n)
	}
	return fd.List, nil
}

// ParseFieldValue interprets the raw tokens of a "uniform ..." or
// "nonuniform List<...> ..." entry.
func ParseFieldValue(toks []string) (FieldData, error) {
	if len(toks) == 0 {
		return FieldData{}, fmt.Errorf("empty field value")
	}
	switch toks[0] {
	case "uniform":
		return parseUniform(toks[1:])
	case "nonuniform":
		return parseNonuniform(toks[1:])
	}
	// Bare value, e.g. "value 300;" written without the uniform keyword.
	return parseUniform(toks)
}

func parseUniform(toks []string) (FieldData, error) {
	if len(toks) == 0 {
		return FieldData{}, fmt.Errorf("missing uniform value")
	}
	if toks[0] == "(" {
		var comps []float64
		for _, t := range toks[1:] {
			if t == ")" {
				break
			}
			v, err := strconv.ParseFloat(t, 64)
			if err != nil {
				return FieldData{}, fmt.Errorf("bad uniform component %q: %w", t, err)
			}
			comps = append(comps, v)
		}
		if len(comps) == 0 {
			return FieldData{}, fmt.Errorf("empty uniform vector")
		}
		return FieldData{Components: len(comps), Uniform: true, Value: comps}, nil
	}
	v, err := strconv.ParseFloat(toks[0], 64)
	if err != nil {
		return FieldData{}, fmt.Errorf("bad uniform value %q: %w", toks[0], err)
	}
	return FieldData{Components: 1, Uniform: true, Value: []float64{v}}, nil
}

func parseNonuniform(toks []string) (FieldData, error) {
	if len(toks) == 0 || !strings.HasPrefix(toks[0], "List<") {
		return FieldData{}, fmt.Errorf("expected List<...> after nonuniform")
	}
	ncomp := 1
	if toks[0] == "List<vector>" {
		ncomp = 3
	}
	toks = toks[1:]
	// Optional count before the '('.
	if len(toks) > 0 && toks[0] != "(" {
		if _, err := strconv.Atoi(toks[0]); err != nil {
			return FieldData{}, fmt.Errorf("expected list count, got %q", toks[0])
		}
		toks = toks[1:]
	}
	if len(toks) == 0 || toks[0] != "(" {
		return FieldData{}, fmt.Errorf("expected '(' opening field list")
	}
	toks = toks[1:]

	var flat []float64
	for _, t := range toks {
		if t == "(" || t == ")" {
			continue
		}
		v, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return FieldData{}, fmt.Errorf("bad field list value %q: %w", t, err)
		}
		flat = append(flat, v)
	}
	if len(flat)%ncomp != 0 {
		return FieldData{}, fmt.Errorf("field list length %d not divisible by %d components", len(flat), ncomp)
	}
	n := len(flat) / ncomp
	// Reorder element-major input to component-major storage.
	list := make([]float64, len(flat))
	for i := 0; i < n; i++ {
		for c := 0; c < ncomp; c++ {
			list[c*n+i] = flat[i*ncomp+c]
		}
	}
	return FieldData{Components: ncomp, N: n, List: list}, nil
}

// FieldFile is one parsed solver field file (e.g. 0.5/T).
type FieldFile struct {
	Name     string
	Class    string
	Internal FieldData
	Boundary map[string]Dict
}

// VolumeField reports whether the file holds cell-centered data the
// integrator can use; flux fields (surfaceScalarField) and point fields are
// not integrable over cells and are skipped by the loader.
func (ff *FieldFile) VolumeField() bool {
	return ff.Class == "volScalarField" || ff.Class == "volVectorField"
}

// ReadFieldFile parses a field file at path, which may be gzipped.
func ReadFieldFile(path, name string) (*FieldFile, error) {
	rd, err := NewFileReader(path)
	if err != nil {
		return nil, err
	}
	hdr, err := rd.Header()
	if err != nil {
		return nil, fmt.Errorf("%s: header: %w", path, err)
	}
	dict, err := rd.Dictionary()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	ff := &FieldFile{Name: name, Boundary: map[string]Dict{}}
	ff.Class, _ = hdr.Word("class")
	if e, ok := dict["internalField"]; ok && e.Dict == nil {
		if ff.Internal, err = ParseFieldValue(e.Tokens); err != nil {
			return nil, fmt.Errorf("%s: internalField: %w", path, err)
		}
	}
	if bf, ok := dict.Sub("boundaryField"); ok {
		for patch, e := range bf {
			if e.Dict != nil {
				ff.Boundary[patch] = e.Dict
			}
		}
	}
	return ff, nil
}

// PatchValue resolves the field's values on one patch: the patch entry's
// explicit value list when present, otherwise nil so the caller can sample
// owner cells (what zeroGradient/calculated patches imply).
func (ff *FieldFile) PatchValue(patch string, nFaces int) ([]float64, int, error) {
	pd, ok := ff.Boundary[patch]
	if !ok {
		return nil, 0, nil
	}
	e, ok := pd["value"]
	if !ok || e.Dict != nil {
		return nil, 0, nil
	}
	fd, err := ParseFieldValue(e.Tokens)
	if err != nil {
		return nil, 0, fmt.Errorf("patch %q value: %w", patch, err)
	}
	vals, err := fd.Expand(nFaces)
	if err != nil {
		return nil, 0, fmt.Errorf("patch %q value: %w", patch, err)
	}
	return vals, fd.Components, nil
}
