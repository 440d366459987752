package framing

import (
	"strconv"
	"strings"

	"github.com/timvw/plotpipe/internal/codec"
)

// Kind is how gnuplot interprets a binary stream: as an array of values
// whose coordinates it infers from the index, or as records carrying their
// own coordinates.
type Kind int

const (
	Array Kind = iota
	Record
)

func (k Kind) String() string {
	if k == Record {
		return "record"
	}
	return "array"
}

// Framing is one cell of {Array, Record} x {Direct, Transposed}.
type Framing struct {
	Kind       Kind
	Transposed bool
}

var (
	ArrayDirect      = Framing{Kind: Array}
	ArrayTransposed  = Framing{Kind: Array, Transposed: true}
	RecordDirect     = Framing{Kind: Record}
	RecordTransposed = Framing{Kind: Record, Transposed: true}
)

// Clause renders the framing for the given dimensions, e.g. "array=(3)"
// or "array=(50,100) transpose". Dimensions are listed fastest-varying
// first, as gnuplot expects.
func (f Framing) Clause(dims ...int) string {
	var b strings.Builder
	b.WriteString(f.Kind.String())
	b.WriteString("=(")
	for i, d := range dims {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(d))
	}
	b.WriteByte(')')
	if f.Transposed {
		b.WriteString(" transpose")
	}
	return b.String()
}

// GridClause renders the framing of a width x height grid supplied in
// row-major order (x outer, y fastest). Array framing names the dimensions
// (width,height) and relies on transpose to match the scan order; record
// framing lists the fastest dimension first.
func (f Framing) GridClause(width, height int) string {
	if f.Kind == Array && f.Transposed {
		return f.Clause(width, height)
	}
	return f.Clause(height, width)
}

// Binary returns the "'-' binary ..." data source fragment of a plot
// directive, for callers that compose their own command text.
func Binary(endian codec.Endian, clause string) string {
	var b strings.Builder
	b.WriteString("'-' binary")
	if e := endian.Directive(); e != "" {
		b.WriteByte(' ')
		b.WriteString(e)
	}
	b.WriteByte(' ')
	b.WriteString(clause)
	return b.String()
}

// Directive is a plot command that reads its data inline from stdin.
type Directive struct {
	Command string // "plot" or "splot"
	Endian  codec.Endian
	Clause  string // from Framing.Clause or Framing.GridClause
	Style   string // free text after the data source, e.g. "with lines"
}

// Append appends the directive line, newline included.
func (d Directive) Append(dst []byte) []byte {
	dst = append(dst, d.Command...)
	dst = append(dst, ' ')
	dst = append(dst, Binary(d.Endian, d.Clause)...)
	if d.Style != "" {
		dst = append(dst, ' ')
		dst = append(dst, d.Style...)
	}
	return append(dst, '\n')
}

func (d Directive) String() string {
	return string(d.Append(nil))
}
