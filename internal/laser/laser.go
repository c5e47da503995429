// Package laser implements the end-of-turn beam resolution pass (spec
// §4.G): run once after all five physics substeps, never mid-substep.
package laser

import (
	"math"

	"mechmania/internal/collision"
	"mechmania/internal/model"
	"mechmania/internal/registry"
	"mechmania/internal/vecmath"
)

// Resolve fires every live ship's (already order-model-clamped) laser
// once. The beam length used here is read directly from ship.LaserOrder,
// which orders.SetOrder already clamped on assignment — the original
// server instead read the raw client-supplied length before clamping,
// letting a client exploit the gap; this rewrite never does (spec §4.G,
// "Known intentional quirk").
func Resolve(reg *registry.Registry, res *collision.Resolver) {
	ships := reg.Slice()
	for _, ship := range ships {
		if ship.Kind != model.KindShip || ship.Dead {
			continue
		}
		fireOne(reg, res, ship)
	}
}

func fireOne(reg *registry.Registry, res *collision.Resolver, ship *model.Thing) {
	s := ship.Ship
	length := s.LaserOrder
	if length <= 0 {
		s.LaserReach = 0
		return
	}

	target, dist := findTarget(reg, ship, length)

	impactDist := length
	if target != nil && dist < length {
		impactDist = dist - 1
		if impactDist < 0 {
			impactDist = 0
		}
		phantomMass := 30 * (length - impactDist)
		heading := vecmath.Coord{X: math.Cos(ship.Orient), Y: math.Sin(ship.Orient)}
		phantomPos := ship.Pos.Add(heading.Scale(impactDist))
		phantom := model.NewGeneric(0, phantomPos, target.Vel, phantomMass)
		res.HandlePair(reg, target, phantom)
	}

	s.LaserReach = impactDist

	cost := length / 50.0
	if cost > s.Fuel.Current {
		cost = s.Fuel.Current
	}
	s.Fuel.Add(-cost)

	s.LaserOrder = 0
}

// findTarget locates the nearest live Thing (other than self) the ship
// faces along its heading, within beam length. "Faces" means: projecting
// a unit vector from the ship along its heading out to the candidate's
// distance, the tip lands within the candidate's size of the candidate
// (spec §4.G step 2).
func findTarget(reg *registry.Registry, ship *model.Thing, length float64) (*model.Thing, float64) {
	heading := vecmath.Coord{X: math.Cos(ship.Orient), Y: math.Sin(ship.Orient)}

	var best *model.Thing
	bestDist := math.Inf(1)

	reg.Walk(func(candidate *model.Thing) bool {
		if candidate == ship || candidate.Dead {
			return true
		}
		d := ship.Pos.DistTo(candidate.Pos)
		if d >= length || d >= bestDist {
			return true
		}
		tip := ship.Pos.Add(heading.Scale(d))
		if tip.DistTo(candidate.Pos) < candidate.Size {
			best = candidate
			bestDist = d
		}
		return true
	})

	return best, bestDist
}
