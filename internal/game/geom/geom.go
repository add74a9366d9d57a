// Package geom provides the grid geometry shared by the board, pathfinding,
// and decision layers: points, step deltas, distance metrics, and adjacency
// predicates. Everything in this package is a pure function over integer
// coordinates.
package geom

import "fmt"

// Point is a cell coordinate on a board. X grows east, Y grows south, with
// the origin at the board's north-west corner.
type Point struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Add returns the point offset by d.
func (p Point) Add(d Delta) Point {
	return Point{X: p.X + d.DX, Y: p.Y + d.DY}
}

// Sub returns the delta that carries q onto p.
func (p Point) Sub(q Point) Delta {
	return Delta{DX: p.X - q.X, DY: p.Y - q.Y}
}

// Delta is an offset between two points, either a single step or a jump.
type Delta struct {
	DX int `json:"dx" yaml:"dx"`
	DY int `json:"dy" yaml:"dy"`
}

func (d Delta) String() string {
	return fmt.Sprintf("(%+d,%+d)", d.DX, d.DY)
}

// Scale returns the delta multiplied by n.
func (d Delta) Scale(n int) Delta {
	return Delta{DX: d.DX * n, DY: d.DY * n}
}

// Unit collapses the delta to one step per axis, preserving direction.
// The zero delta maps to itself.
func (d Delta) Unit() Delta {
	return Delta{DX: sign(d.DX), DY: sign(d.DY)}
}

// IsZero reports whether the delta moves nowhere.
func (d Delta) IsZero() bool {
	return d.DX == 0 && d.DY == 0
}

// Manhattan returns the taxicab distance between a and b.
func Manhattan(a, b Point) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

// Chebyshev returns the king-move distance between a and b.
func Chebyshev(a, b Point) int {
	dx := abs(a.X - b.X)
	dy := abs(a.Y - b.Y)
	if dx > dy {
		return dx
	}
	return dy
}

// Adjacent reports whether a and b are distinct and within one king move of
// each other.
func Adjacent(a, b Point) bool {
	return a != b && Chebyshev(a, b) == 1
}

// OrthogonallyAdjacent reports whether a and b share an edge.
func OrthogonallyAdjacent(a, b Point) bool {
	return Manhattan(a, b) == 1
}

// DiagonallyAdjacent reports whether a and b share exactly a corner.
func DiagonallyAdjacent(a, b Point) bool {
	return abs(a.X-b.X) == 1 && abs(a.Y-b.Y) == 1
}

// Cross returns the z component of the cross product of two deltas. It is
// zero exactly when the deltas are collinear.
func Cross(a, b Delta) int {
	return a.DX*b.DY - a.DY*b.DX
}

// Dot returns the dot product of two deltas. Collinear deltas with a
// positive dot product point the same way.
func Dot(a, b Delta) int {
	return a.DX*b.DX + a.DY*b.DY
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}
