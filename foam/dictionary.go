package foam

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Dict is one level of an OpenFOAM dictionary. Primitive entries keep their
// raw token stream so callers can interpret "uniform 300" vs
// "nonuniform List<scalar> ..." themselves; sub-dictionaries are parsed
// recursively.
type Dict map[string]Entry

type Entry struct {
	Tokens []string // primitive entry, tokens up to the terminating ';'
	Dict   Dict     // non-nil for a sub-dictionary entry
}

// Sub returns a sub-dictionary entry by key.
func (d Dict) Sub(key string) (Dict, bool) {
	e, ok := d[key]
	if !ok || e.Dict == nil {
		return nil, false
	}
	return e.Dict, true
}

// Word returns the single-token value of a primitive entry, e.g. the
// "fixedValue" of "type fixedValue;".
func (d Dict) Word(key string) (string, bool) {
	e, ok := d[key]
	if !ok || e.Dict != nil || len(e.Tokens) == 0 {
		return "", false
	}
	return e.Tokens[0], true
}

// Int parses a primitive entry as a single integer.
func (d Dict) Int(key string) (int, bool) {
	w, ok := d.Word(key)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(w)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Reader lexes one OpenFOAM file into tokens and exposes typed parsers for
// the handful of shapes the case format uses: dictionaries, label lists,
// vector lists, face lists and named-dictionary lists.
type Reader struct {
	toks []string
	pos  int
}

// OpenDataFile opens a case file, transparently falling back to a gzipped
// sibling (OpenFOAM writes name.gz when compression is on).
func OpenDataFile(path string) (io.ReadCloser, error) {
	if f, err := os.Open(path); err == nil {
		return f, nil
	}
	f, err := os.Open(path + ".gz")
	if err != nil {
		return nil, fmt.Errorf("unable to open %s (or %s.gz): %w", path, path, err)
	}
	zr, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("bad gzip stream in %s.gz: %w", path, err)
	}
	return gzipFile{zr, f}, nil
}

type gzipFile struct {
	*gzip.Reader
	f *os.File
}

func (g gzipFile) Close() error {
	err := g.Reader.Close()
	if ferr := g.f.Close(); err == nil {
		err = ferr
	}
	return err
}

// NewReader lexes the full stream. Foam files are small relative to the
// meshes they describe, and even multi-million-entry polyMesh files tokenize
// comfortably in one pass.
func NewReader(r io.Reader) (*Reader, error) {
	toks, err := lexFoam(r)
	if err != nil {
		return nil, err
	}
	return &Reader{toks: toks}, nil
}

// NewFileReader opens path (or path.gz) and lexes it.
func NewFileReader(path string) (*Reader, error) {
	f, err := OpenDataFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	rd, err := NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rd, nil
}

func lexFoam(r io.Reader) ([]string, error) {
	var (
		toks    []string
		sb      strings.Builder
		br      = bufio.NewReader(r)
		inLine  bool // inside a // comment
		inBlock bool // inside a /* */ comment
		prev    rune
	)
	flush := func() {
		if sb.Len() > 0 {
			toks = append(toks, sb.String())
			sb.Reset()
		}
	}
	for {
		c, _, err := br.ReadRune()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch {
		case inLine:
			if c == '\n' {
				inLine = false
			}
		case inBlock:
			if prev == '*' && c == '/' {
				inBlock = false
			}
		case c == '/':
			next, _, err := br.ReadRune()
			if err == nil {
				if next == '/' {
					flush()
					inLine = true
					break
				}
				if next == '*' {
					flush()
					inBlock = true
					break
				}
				br.UnreadRune()
			}
			sb.WriteRune(c)
		case c == '"':
			// Quoted string: consumed whole, quotes dropped.
			flush()
			for {
				q, _, err := br.ReadRune()
				if err != nil {
					return nil, fmt.Errorf("unterminated string literal")
				}
				if q == '"' {
					break
				}
				sb.WriteRune(q)
			}
			flush()
		case c == '{' || c == '}' || c == '(' || c == ')' || c == ';' || c == '[' || c == ']':
			flush()
			toks = append(toks, string(c))
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			flush()
		default:
			sb.WriteRune(c)
		}
		prev = c
	}
	flush()
	return toks, nil
}

func (r *Reader) peek() (string, bool) {
	if r.pos >= len(r.toks) {
		return "", false
	}
	return r.toks[r.pos], true
}

func (r *Reader) next() (string, error) {
	t, ok := r.peek()
	if !ok {
		return "", fmt.Errorf("unexpected end of input")
	}
	r.pos++
	return t, nil
}

func (r *Reader) expect(tok string) error {
	t, err := r.next()
	if err != nil {
		return err
	}
	if t != tok {
		return fmt.Errorf("expected %q, got %q", tok, t)
	}
	return nil
}

// Header parses the leading FoamFile dictionary if present and returns it.
// Files without one (hand-written fixtures) get an empty header.
func (r *Reader) Header() (Dict, error) {
	if t, ok := r.peek(); ok && t == "FoamFile" {
		r.pos++
		if err := r.expect("{"); err != nil {
			return nil, err
		}
		return r.dictBody()
	}
	return Dict{}, nil
}

// Dictionary parses the remaining tokens as dictionary entries.
func (r *Reader) Dictionary() (Dict, error) {
	d := Dict{}
	for {
		key, ok := r.peek()
		if !ok {
			return d, nil
		}
		if key == "}" {
			return d, nil
		}
		r.pos++
		e, err := r.entry()
		if err != nil {
			return nil, fmt.Errorf("entry %q: %w", key, err)
		}
		d[key] = e
	}
}

func (r *Reader) dictBody() (Dict, error) {
	d := Dict{}
	for {
		key, err := r.next()
		if err != nil {
			return nil, err
		}
		if key == "}" {
			return d, nil
		}
		e, err := r.entry()
		if err != nil {
			return nil, fmt.Errorf("entry %q: %w", key, err)
		}
		d[key] = e
	}
}

// entry parses the value following a keyword: either a braced
// sub-dictionary or raw tokens up to a ';' at nesting depth zero.
func (r *Reader) entry() (Entry, error) {
	if t, ok := r.peek(); ok && t == "{" {
		r.pos++
		d, err := r.dictBody()
		if err != nil {
			return Entry{}, err
		}
		return Entry{Dict: d}, nil
	}
	var (
		toks  []string
		depth int
	)
	for {
		t, err := r.next()
		if err != nil {
			return Entry{}, err
		}
		switch t {
		case "(", "[":
			depth++
		case ")", "]":
			depth--
		case ";":
			if depth == 0 {
				return Entry{Tokens: toks}, nil
			}
		}
		toks = append(toks, t)
	}
}

// listCount consumes the optional element count preceding '('.
func (r *Reader) listCount() (int, error) {
	t, ok := r.peek()
	if !ok {
		return 0, fmt.Errorf("unexpected end of input before list")
	}
	n := -1
	if t != "(" {
		v, err := strconv.Atoi(t)
		if err != nil {
			return 0, fmt.Errorf("expected list count or '(', got %q", t)
		}
		n = v
		r.pos++
	}
	if err := r.expect("("); err != nil {
		return 0, err
	}
	return n, nil
}

// LabelList parses "N ( i0 i1 ... )" as used by owner/neighbour files.
func (r *Reader) LabelList() ([]int, error) {
	n, err := r.listCount()
	if err != nil {
		return nil, err
	}
	var out []int
	if n > 0 {
		out = make([]int, 0, n)
	}
	for {
		t, err := r.next()
		if err != nil {
			return nil, err
		}
		if t == ")" {
			return out, nil
		}
		v, err := strconv.Atoi(t)
		if err != nil {
			return nil, fmt.Errorf("bad label %q: %w", t, err)
		}
		out = append(out, v)
	}
}

// VectorList parses "N ( (x y z) ... )" as used by the points file.
func (r *Reader) VectorList() ([][3]float64, error) {
	n, err := r.listCount()
	if err != nil {
		return nil, err
	}
	var out [][3]float64
	if n > 0 {
		out = make([][3]float64, 0, n)
	}
	for {
		t, err := r.next()
		if err != nil {
			return nil, err
		}
		if t == ")" {
			return out, nil
		}
		if t != "(" {
			return nil, fmt.Errorf("expected '(' starting vector, got %q", t)
		}
		var v [3]float64
		for i := 0; i < 3; i++ {
			c, err := r.next()
			if err != nil {
				return nil, err
			}
			if v[i], err = strconv.ParseFloat(c, 64); err != nil {
				return nil, fmt.Errorf("bad vector component %q: %w", c, err)
			}
		}
		if err := r.expect(")"); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
}

// FaceList parses "N ( 4(a b c d) ... )" as used by the faces file.
func (r *Reader) FaceList() ([][]int, error) {
	n, err := r.listCount()
	if err != nil {
		return nil, err
	}
	var out [][]int
	if n > 0 {
		out = make([][]int, 0, n)
	}
	for {
		t, err := r.next()
		if err != nil {
			return nil, err
		}
		if t == ")" {
			return out, nil
		}
		nv, err := strconv.Atoi(t)
		if err != nil {
			return nil, fmt.Errorf("bad face vertex count %q: %w", t, err)
		}
		if err := r.expect("("); err != nil {
			return nil, err
		}
		face := make([]int, nv)
		for i := 0; i < nv; i++ {
			c, err := r.next()
			if err != nil {
				return nil, err
			}
			if face[i], err = strconv.Atoi(c); err != nil {
				return nil, fmt.Errorf("bad face vertex %q: %w", c, err)
			}
		}
		if err := r.expect(")"); err != nil {
			return nil, err
		}
		out = append(out, face)
	}
}

// NamedDict is one "name { ... }" element of the boundary file list.
type NamedDict struct {
	Name string
	Dict Dict
}

// NamedDictList parses "N ( name { ... } ... )" as used by the boundary file.
func (r *Reader) NamedDictList() ([]NamedDict, error) {
	n, err := r.listCount()
	if err != nil {
		return nil, err
	}
	var out []NamedDict
	if n > 0 {
		out = make([]NamedDict, 0, n)
	}
	for {
		name, err := r.next()
		if err != nil {
			return nil, err
		}
		if name == ")" {
			return out, nil
		}
		if err := r.expect("{"); err != nil {
			return nil, err
		}
		d, err := r.dictBody()
		if err != nil {
			return nil, fmt.Errorf("patch %q: %w", name, err)
		}
		out = append(out, NamedDict{Name: name, Dict: d})
	}
}
