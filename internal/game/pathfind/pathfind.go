// Package pathfind provides breadth-first pathfinding over a board under a
// caller-supplied direction set and walkability predicate. The direction set
// is what makes the search archetype-aware: rooks and pawns search the four
// orthogonal steps, queens and kings all eight, knights their L-jumps.
package pathfind

import "github.com/cory-johannsen/gambit/internal/game/geom"

// Path is an ordered sequence of waypoints from a start cell to a target
// cell, inclusive of the start. Paths are transient; they are recomputed on
// every decision and never persisted.
type Path []geom.Point

// Destination returns the final waypoint.
//
// Precondition: the path must not be empty.
func (p Path) Destination() geom.Point {
	return p[len(p)-1]
}

// Steps returns the number of moves along the path.
func (p Path) Steps() int {
	if len(p) == 0 {
		return 0
	}
	return len(p) - 1
}

// FindPath searches breadth-first from start to target, expanding through
// the given direction set and only into cells the predicate accepts. The
// start cell itself is never tested against the predicate. Intermediate
// cells of a jump delta are not tested either; only landing cells matter,
// which is how knight jumps pass over occupied ground.
//
// Precondition: walkable must return false outside a bounded region, or the
// search will not terminate on an unreachable target.
// Postcondition: Returns a shortest path by step count, nil when the target
// is unreachable, or the single-element path when start equals target.
// Among equal-length paths the result follows direction iteration order;
// callers must not rely on which equal-length path is produced.
func FindPath(start, target geom.Point, directions []geom.Delta, walkable func(geom.Point) bool) Path {
	if start == target {
		return Path{start}
	}

	prev := map[geom.Point]geom.Point{start: start}
	queue := []geom.Point{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, d := range directions {
			next := cur.Add(d)
			if _, seen := prev[next]; seen {
				continue
			}
			if !walkable(next) {
				continue
			}
			prev[next] = cur
			if next == target {
				return reconstruct(prev, start, target)
			}
			queue = append(queue, next)
		}
	}
	return nil
}

// reconstruct walks the predecessor map back from target to start.
func reconstruct(prev map[geom.Point]geom.Point, start, target geom.Point) Path {
	var reversed []geom.Point
	for cur := target; cur != start; cur = prev[cur] {
		reversed = append(reversed, cur)
	}
	path := make(Path, 0, len(reversed)+1)
	path = append(path, start)
	for i := len(reversed) - 1; i >= 0; i-- {
		path = append(path, reversed[i])
	}
	return path
}
