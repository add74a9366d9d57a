// Package tactics provides the cooperative positioning heuristics shared by
// all enemies: ally clustering, octant diversity for flanking, anti-stacking,
// and defensive retreat candidates. Every function is pure; the roster and
// actor are passed explicitly and nothing here mutates them.
package tactics

import (
	"github.com/cory-johannsen/gambit/internal/game/actor"
	"github.com/cory-johannsen/gambit/internal/game/geom"
)

// ClusterSignificance is the mean-distance improvement a candidate cell must
// exceed before a clustering adjustment is worth taking. Smaller gains are
// noise and would cause enemies to oscillate.
const ClusterSignificance = 0.5

// adjustDistanceSlack caps how many tiles of player distance a tactical
// adjustment may give up relative to the actor's current cell.
const adjustDistanceSlack = 2

// Cluster returns the mean Manhattan distance from p to every living ally of
// self. Lower is more clustered. Zero when self has no living allies.
func Cluster(p geom.Point, self *actor.Enemy, roster []*actor.Enemy) float64 {
	sum := 0
	count := 0
	for _, ally := range roster {
		if ally.UID == self.UID || ally.IsDead() {
			continue
		}
		sum += geom.Manhattan(p, ally.Pos)
		count++
	}
	if count == 0 {
		return 0
	}
	return float64(sum) / float64(count)
}

// Diversity returns the fraction of self's living allies whose octant around
// the player differs from the octant p occupies. Higher means the roster is
// spread around more of the player's sides. Zero when self has no living
// allies.
func Diversity(p geom.Point, self *actor.Enemy, roster []*actor.Enemy, player geom.Point) float64 {
	mine := geom.OctantOf(player, p)
	differing := 0
	count := 0
	for _, ally := range roster {
		if ally.UID == self.UID || ally.IsDead() {
			continue
		}
		count++
		if geom.OctantOf(player, ally.Pos) != mine {
			differing++
		}
	}
	if count == 0 {
		return 0
	}
	return float64(differing) / float64(count)
}

// StackedBehind reports whether p lies on the same ray from the player as a
// living ally and strictly farther out, i.e. the ally screens p from the
// player. Stacked cells waste a flanking position.
func StackedBehind(p geom.Point, self *actor.Enemy, roster []*actor.Enemy, player geom.Point) bool {
	toP := p.Sub(player)
	for _, ally := range roster {
		if ally.UID == self.UID || ally.IsDead() {
			continue
		}
		toAlly := ally.Pos.Sub(player)
		if geom.Cross(toAlly, toP) != 0 || geom.Dot(toAlly, toP) <= 0 {
			continue
		}
		if geom.Manhattan(p, player) > geom.Manhattan(ally.Pos, player) {
			return true
		}
	}
	return false
}

// Adjust evaluates single-step alternatives from self's current cell
// against the move the pipeline already proposed, and returns the first one
// that improves clustering beyond ClusterSignificance or improves octant
// diversity at all. Alternatives that end up more than two tiles farther
// from the player than the proposed destination, or that stack behind an
// ally, never qualify; the distance guard is what keeps a long charge from
// being traded away for a sidestep.
//
// Postcondition: Returns (cell, true) for the first qualifying alternative
// in direction order, or (Point{}, false) when none qualifies.
func Adjust(self *actor.Enemy, roster []*actor.Enemy, player, proposed geom.Point, directions []geom.Delta, canStand func(geom.Point) bool) (geom.Point, bool) {
	baseCluster := Cluster(proposed, self, roster)
	baseDiversity := Diversity(proposed, self, roster, player)
	baseDistance := geom.Manhattan(proposed, player)

	for _, d := range directions {
		cand := self.Pos.Add(d)
		if !canStand(cand) {
			continue
		}
		if geom.Manhattan(cand, player) > baseDistance+adjustDistanceSlack {
			continue
		}
		if StackedBehind(cand, self, roster, player) {
			continue
		}
		clusterGain := baseCluster - Cluster(cand, self, roster)
		diversityGain := Diversity(cand, self, roster, player) - baseDiversity
		if clusterGain > ClusterSignificance || diversityGain > 0 {
			return cand, true
		}
	}
	return geom.Point{}, false
}

// vulnerability ranks how exposed a cell is to the player: 2 when adjacent,
// 1 when within two tiles of Manhattan distance, 0 otherwise.
func vulnerability(p, player geom.Point) int {
	if geom.Adjacent(p, player) {
		return 2
	}
	if geom.Manhattan(p, player) <= 2 {
		return 1
	}
	return 0
}

// Retreat returns the best defensive single-step move from self's current
// cell: a cell in the given direction set that strictly increases Manhattan
// distance to the player and improves self's vulnerability rank, or at
// least holds it when self is already inside the danger zone. An actor
// standing safely outside the zone gets no candidates at all, which is what
// lets a long charge carry through the zone untouched. Candidates are
// ranked by distance gained, descending, with direction order breaking
// ties.
//
// Postcondition: Returns (cell, true) for the top candidate, or
// (Point{}, false) when no move qualifies; callers keep their original move
// in that case rather than stalling.
func Retreat(self *actor.Enemy, player geom.Point, directions []geom.Delta, canStand func(geom.Point) bool) (geom.Point, bool) {
	baseDistance := geom.Manhattan(self.Pos, player)
	baseRank := vulnerability(self.Pos, player)

	best := geom.Point{}
	bestGain := 0
	found := false
	for _, d := range directions {
		cand := self.Pos.Add(d)
		if !canStand(cand) {
			continue
		}
		gain := geom.Manhattan(cand, player) - baseDistance
		if gain <= 0 {
			continue
		}
		if baseRank == 0 || vulnerability(cand, player) > baseRank {
			continue
		}
		if !found || gain > bestGain {
			best = cand
			bestGain = gain
			found = true
		}
	}
	return best, found
}
