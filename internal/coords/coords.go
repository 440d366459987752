// Package coords generates the index sequences callers use to build
// coordinate-augmented datasets. Every sequence is lazy, finite and
// restartable: ranging over the same value twice yields the same items.
package coords

import "iter"

// Point is one grid coordinate.
type Point struct {
	X, Y int
}

// Range yields 0..n-1.
func Range(n int) iter.Seq[int] {
	return func(yield func(int) bool) {
		for i := 0; i < n; i++ {
			if !yield(i) {
				return
			}
		}
	}
}

// Grid yields (x, y) for x in [0, width) and y in [0, height), with y
// varying fastest. This is the record order heredoc grids and record-framed
// surface plots expect.
func Grid(width, height int) iter.Seq2[int, int] {
	return func(yield func(int, int) bool) {
		for x := 0; x < width; x++ {
			for y := 0; y < height; y++ {
				if !yield(x, y) {
					return
				}
			}
		}
	}
}

// Points is Grid yielding Point values.
func Points(width, height int) iter.Seq[Point] {
	return func(yield func(Point) bool) {
		for x, y := range Grid(width, height) {
			if !yield(Point{X: x, Y: y}) {
				return
			}
		}
	}
}

// Surface flattens f over the grid into (x, y, z) triples in grid order,
// ready for a three-field heredoc.
func Surface(width, height int, f func(x, y int) float64) iter.Seq[float64] {
	return func(yield func(float64) bool) {
		for x, y := range Grid(width, height) {
			if !yield(float64(x)) || !yield(float64(y)) || !yield(f(x, y)) {
				return
			}
		}
	}
}
