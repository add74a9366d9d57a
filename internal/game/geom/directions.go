package geom

// Direction sets are ordered clockwise from north. The decision layers break
// every tie by iterating a set front to back, so the order here is part of
// the observable behavior and must not be rearranged.
var (
	// Orthogonals are the four edge-sharing steps: N, E, S, W.
	Orthogonals = []Delta{
		{DX: 0, DY: -1},
		{DX: 1, DY: 0},
		{DX: 0, DY: 1},
		{DX: -1, DY: 0},
	}

	// Diagonals are the four corner-sharing steps: NE, SE, SW, NW.
	Diagonals = []Delta{
		{DX: 1, DY: -1},
		{DX: 1, DY: 1},
		{DX: -1, DY: 1},
		{DX: -1, DY: -1},
	}

	// Compass is all eight single steps: N, NE, E, SE, S, SW, W, NW.
	Compass = []Delta{
		{DX: 0, DY: -1},
		{DX: 1, DY: -1},
		{DX: 1, DY: 0},
		{DX: 1, DY: 1},
		{DX: 0, DY: 1},
		{DX: -1, DY: 1},
		{DX: -1, DY: 0},
		{DX: -1, DY: -1},
	}

	// KnightJumps are the eight L-shaped (2,1) jumps, clockwise from NNE.
	KnightJumps = []Delta{
		{DX: 1, DY: -2},
		{DX: 2, DY: -1},
		{DX: 2, DY: 1},
		{DX: 1, DY: 2},
		{DX: -1, DY: 2},
		{DX: -2, DY: 1},
		{DX: -2, DY: -1},
		{DX: -1, DY: -2},
	}
)

// Octant identifies one of the eight compass sectors around an origin point.
type Octant int

const (
	OctantNone Octant = iota
	OctantN
	OctantNE
	OctantE
	OctantSE
	OctantS
	OctantSW
	OctantW
	OctantNW
)

func (o Octant) String() string {
	switch o {
	case OctantN:
		return "N"
	case OctantNE:
		return "NE"
	case OctantE:
		return "E"
	case OctantSE:
		return "SE"
	case OctantS:
		return "S"
	case OctantSW:
		return "SW"
	case OctantW:
		return "W"
	case OctantNW:
		return "NW"
	default:
		return "none"
	}
}

// OctantOf classifies p into the compass sector it occupies as seen from
// origin, by the signs of the coordinate differences. A point equal to the
// origin has no sector and classifies as OctantNone.
func OctantOf(origin, p Point) Octant {
	dx := sign(p.X - origin.X)
	dy := sign(p.Y - origin.Y)
	switch {
	case dx == 0 && dy == 0:
		return OctantNone
	case dx == 0 && dy < 0:
		return OctantN
	case dx > 0 && dy < 0:
		return OctantNE
	case dx > 0 && dy == 0:
		return OctantE
	case dx > 0 && dy > 0:
		return OctantSE
	case dx == 0 && dy > 0:
		return OctantS
	case dx < 0 && dy > 0:
		return OctantSW
	case dx < 0 && dy == 0:
		return OctantW
	default:
		return OctantNW
	}
}
