// Package framing builds the two ways a dataset travels to gnuplot: an
// anonymous binary stream announced by a plot directive, and a named
// here-document of decimal text.
package framing

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientData means the values ran out before a bounded
	// dimension was complete.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrExcessData means values remained after every bounded dimension
	// was satisfied.
	ErrExcessData = errors.New("excess data")
)

// Bound is an optional nesting size. The zero value is Unbounded.
type Bound struct {
	n   int
	set bool
}

// Unbounded consumes units until the values are exhausted.
var Unbounded = Bound{}

// Exactly consumes exactly n units.
func Exactly(n int) Bound {
	return Bound{n: n, set: true}
}

// Size returns the bound and whether it is set.
func (b Bound) Size() (int, bool) {
	return b.n, b.set
}

func (b Bound) String() string {
	if !b.set {
		return "unbounded"
	}
	return fmt.Sprintf("%d", b.n)
}

// Layout declares how a flat value sequence nests into a here-document:
// Fields values per record (one line), Records per block (blank line after
// each), Blocks per frame (an extra blank line between frames), Frames in
// total. Normally exactly one level is Unbounded.
type Layout struct {
	Fields  int
	Records Bound
	Blocks  Bound
	Frames  Bound
}

// Columns is a single block of records with the given number of fields
// each and no further nesting.
func Columns(fields int) Layout {
	return Layout{Fields: fields}
}

// GridLayout is the layout of a grid with height records per block, one
// block per outer coordinate.
func GridLayout(fields, height int) Layout {
	return Layout{Fields: fields, Records: Exactly(height)}
}

// Validate checks the declared sizes.
func (l Layout) Validate() error {
	if l.Fields < 1 {
		return fmt.Errorf("fields per record must be at least 1, got %d", l.Fields)
	}
	for _, lvl := range []struct {
		name string
		b    Bound
	}{
		{"records per block", l.Records},
		{"blocks per frame", l.Blocks},
		{"frames", l.Frames},
	} {
		if n, ok := lvl.b.Size(); ok && n < 1 {
			return fmt.Errorf("%s must be at least 1 or unbounded, got %d", lvl.name, n)
		}
	}
	return nil
}

// Shaped reports whether any level has a fixed size, in which case at
// least one full unit of that level is required.
func (l Layout) Shaped() bool {
	for _, b := range []Bound{l.Records, l.Blocks, l.Frames} {
		if _, ok := b.Size(); ok {
			return true
		}
	}
	return false
}

// Total returns the exact number of values the layout consumes, and false
// when any level is unbounded.
func (l Layout) Total() (int, bool) {
	total := l.Fields
	for _, b := range []Bound{l.Records, l.Blocks, l.Frames} {
		n, ok := b.Size()
		if !ok {
			return 0, false
		}
		total *= n
	}
	return total, true
}
