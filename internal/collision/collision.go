// Package collision implements the pairwise collision resolver (spec
// §4.F): for every live Thing and every team-controlled Thing (ship or
// station) it overlaps, each side's own reaction is applied independently
// of the other's. A ship handles eating an asteroid; the asteroid
// itself only reacts to a station (elastic bounce) or a sufficiently
// massive laser phantom (shatter) — ship/asteroid ingestion is entirely a
// ship-side effect, matching the "(ship handler)" annotation in the
// reaction table.
//
// The original implementation dispatches through Thing::collide, a
// virtual method that recurses into the other Thing's own collide and
// needs a reentrancy guard (nulling the ship's team pointer) to stop
// mutual ship/ship recursion. This rewrite drives both directions from a
// flat loop instead of recursive method calls, so no such guard is
// needed — resolveSelf(A, B) and resolveSelf(B, A) are just two ordinary
// calls, never nested.
package collision

import (
	"math"

	"mechmania/internal/config"
	"mechmania/internal/model"
	"mechmania/internal/registry"
	"mechmania/internal/vecmath"
)

// Resolver holds what collision resolution needs beyond the registry: the
// config (for v_max clamping) and the id generator for shatter children.
type Resolver struct {
	Cfg   config.GameConfig
	IDGen *model.IDGen

	// resolved counts resolveSelf invocations since the last DrainCount,
	// for the sim loop to forward into the collisions_total metric.
	resolved int
}

// NewResolver builds a collision Resolver.
func NewResolver(cfg config.GameConfig, idgen *model.IDGen) *Resolver {
	return &Resolver{Cfg: cfg, IDGen: idgen}
}

// DrainCount returns the number of resolveSelf calls made since the last
// DrainCount and resets the counter.
func (r *Resolver) DrainCount() int {
	n := r.resolved
	r.resolved = 0
	return n
}

// Resolve runs one substep's worth of pairwise collision checks (spec
// §4.F): every live Thing against every team-controlled Thing (stations,
// ships), testing both directions.
func (r *Resolver) Resolve(reg *registry.Registry) {
	all := reg.Slice()
	teamThings := make([]*model.Thing, 0, len(all))
	for _, t := range all {
		if t.IsTeamControlled() {
			teamThings = append(teamThings, t)
		}
	}

	for _, t := range all {
		if t.Dead {
			continue
		}
		for _, u := range teamThings {
			if u == t || u.Dead || t.Dead {
				continue
			}
			if !t.Overlaps(u) {
				continue
			}
			t.CollideAngle = t.Pos.AngleTo(u.Pos)
			u.CollideAngle = u.Pos.AngleTo(t.Pos)
			r.resolveSelf(reg, t, u)
			r.resolveSelf(reg, u, t)
		}
	}
}

// HandlePair delivers a single direct collision (used by the laser
// package to deliver a phantom to its target) without the general
// all-vs-team-things loop.
func (r *Resolver) HandlePair(reg *registry.Registry, self, other *model.Thing) {
	self.ShotAngle = self.Pos.AngleTo(other.Pos)
	r.resolveSelf(reg, self, other)
}

// resolveSelf applies self's own reaction to overlapping other. Called
// once per direction per overlapping pair; only self is mutated (other is
// mutated by the complementary call with its roles swapped).
func (r *Resolver) resolveSelf(reg *registry.Registry, self, other *model.Thing) {
	r.resolved++
	switch self.Kind {
	case model.KindShip:
		r.shipReaction(reg, self, other)
	case model.KindAsteroid:
		r.asteroidReaction(reg, self, other)
	case model.KindStation, model.KindGeneric:
		// Stations never react to being hit; laser phantoms are scoped to
		// a single delivery and discarded, never a `self` in general
		// resolution.
	}
}

func (r *Resolver) shipReaction(reg *registry.Registry, self, other *model.Thing) {
	// A docked ship reacts only to stations.
	if self.Ship.Docked && other.Kind != model.KindStation {
		return
	}
	switch other.Kind {
	case model.KindStation:
		r.dockAtStation(self, other)
	case model.KindAsteroid:
		r.ingestAsteroid(self, other)
		r.separationImpulse(self, other)
	case model.KindShip:
		r.shipShipDamage(self, other)
		r.separationImpulse(self, other)
	case model.KindGeneric:
		r.laserPhantomDamage(self, other)
	}
}

func (r *Resolver) asteroidReaction(reg *registry.Registry, self, other *model.Thing) {
	switch other.Kind {
	case model.KindStation:
		r.elasticBounceOffStation(self, other)
	case model.KindGeneric:
		r.maybeShatter(reg, self, other)
	case model.KindShip:
		// The ship side fully owns ingestion; the asteroid itself does
		// not shatter on ship contact, only on a >= 1000-mass laser hit.
	}
}

// dockAtStation implements "Ship <-> Station (own or enemy)": the ship
// snaps to the station, stops, and unloads its cargo.
func (r *Resolver) dockAtStation(ship, station *model.Thing) {
	s := ship.Ship
	ship.Pos = station.Pos
	ship.Vel = vecmath.Traj{}
	s.ThrustOrder = 0
	station.Station.VinylStore += s.Cargo.Current
	s.Cargo.Current = 0
	s.Docked = true
}

// ingestAsteroid implements the ship half of "Ship <-> Asteroid": the
// ship always takes the inelastic velocity merge, and additionally
// absorbs the asteroid's mass if it is the first to claim it and has
// headroom for its material.
func (r *Resolver) ingestAsteroid(ship, ast *model.Thing) {
	s := ship.Ship
	shipMass := s.GetMass()
	astMass := ast.Mass

	merged := ship.Vel.Scale(shipMass).Add(ast.Vel.Scale(astMass)).Div(shipMass + astMass)
	ship.Vel = merged.ClampRho(r.Cfg.MaxSpeed)

	if ast.Asteroid.HasEatenBy {
		return
	}

	var stat *model.Stat
	switch ast.Asteroid.Material {
	case model.MaterialVinyl:
		stat = &s.Cargo
	case model.MaterialUranium:
		stat = &s.Fuel
	default:
		return
	}
	if astMass > stat.Headroom() {
		return
	}
	stat.Add(astMass)
	ast.Asteroid.HasEatenBy = true
	ast.Asteroid.EatenBy = ship.WorldIndex
	ast.Dead = true
}

// separationImpulse pushes self away from other after a ship/ship or
// ship/asteroid resolution, preventing re-collision oscillation.
func (r *Resolver) separationImpulse(self, other *model.Thing) {
	dir := other.Pos.AngleTo(self.Pos)
	dist := other.Size + 3
	push := vecmath.Coord{X: math.Cos(dir), Y: math.Sin(dir)}.Scale(dist)
	self.Pos = self.Pos.Add(push)

	selfMass := self.Mass
	if self.Kind == model.KindShip {
		selfMass = self.Ship.GetMass()
	}
	ratio := other.Mass / selfMass
	bump := vecmath.NewTraj(dist*ratio, dir)
	self.Vel = self.Vel.Add(bump).ClampRho(r.Cfg.MaxSpeed)
}

// shipShipDamage implements "Ship <-> Ship": shield damage proportional
// to the relative momentum, death on shield depletion.
func (r *Resolver) shipShipDamage(self, other *model.Thing) {
	pSelf := self.Vel.Scale(self.Ship.GetMass())
	pOther := other.Vel.Scale(other.Ship.GetMass())
	rel := pSelf.Sub(pOther)
	damage := rel.Rho / 1000.0

	self.Ship.Shield.Current -= damage
	if self.Ship.Shield.Current < 0 {
		self.Dead = true
	}
}

// laserPhantomDamage implements "Ship <-> Laser phantom".
func (r *Resolver) laserPhantomDamage(self, phantom *model.Thing) {
	damage := phantom.Mass / 1000.0
	self.Ship.Shield.Current -= damage
	if self.Ship.Shield.Current < 0 {
		self.Dead = true
	}
}

// elasticBounceOffStation implements "Asteroid <-> Station": reflect the
// asteroid's velocity about the station->asteroid normal and reposition
// it just outside the station.
func (r *Resolver) elasticBounceOffStation(ast, station *model.Thing) {
	n := station.Pos.AngleTo(ast.Pos)
	newTheta := 2*n - ast.Vel.Theta + vecmath.Pi
	ast.Vel = vecmath.NewTraj(ast.Vel.Rho, newTheta)

	sizeSum := ast.Size + station.Size
	offset := vecmath.Coord{X: math.Cos(n), Y: math.Sin(n)}.Scale(sizeSum + 1)
	ast.Pos = station.Pos.Add(offset)
}

// maybeShatter implements the laser-phantom half of "Asteroid <-> anything
// that ingests/shatters it": a phantom with mass >= 1000 shatters the
// asteroid into 3 equal children 120 degrees apart; anything lighter
// glances off without effect (spec §4.F, §4.G).
func (r *Resolver) maybeShatter(reg *registry.Registry, ast, phantom *model.Thing) {
	if phantom.Mass < 1000 {
		return
	}
	ast.Dead = true

	childMass := ast.Mass / 3.0
	if childMass < model.MinMass {
		return
	}
	childSize := model.AsteroidSize(childMass)
	// Direction comes from the phantom's velocity relative to the
	// asteroid it struck; speed is overridden to the phantom/asteroid
	// mass ratio rather than carried over from the relative-velocity
	// magnitude (spec §4.F/§4.G).
	relVel := phantom.Vel.Sub(ast.Vel)
	rho := phantom.Mass / (3.0 * ast.Mass)

	for i := 0; i < 3; i++ {
		theta := relVel.Theta + float64(i)*(vecmath.Pi2/3.0)
		child := &model.Thing{
			Core: model.Core{
				ID:           r.IDGen.Next(),
				Kind:         model.KindAsteroid,
				Pos:          ast.Pos,
				Vel:          vecmath.NewTraj(rho, theta).ClampRho(r.Cfg.MaxSpeed),
				Omega:        model.AsteroidOmega,
				Mass:         childMass,
				Size:         childSize,
				TeamID:       -1,
				CollideAngle: model.NoDamage,
				ShotAngle:    model.NoDamage,
			},
			Asteroid: &model.AsteroidData{Material: ast.Asteroid.Material},
		}
		reg.Add(child)
	}
}
