// Package physics implements the per-substep motion kernel: damage-flag
// reset, velocity clamping, order application (jettison, shield, turn,
// thrust), and integration (spec §4.E). Collision resolution and the
// end-of-turn laser pass are separate packages the sim orchestrator calls
// around this one (spec §4.F, §4.G); this package only ever advances a
// single substep's motion.
package physics

import (
	"math"

	"mechmania/internal/config"
	"mechmania/internal/model"
	"mechmania/internal/registry"
	"mechmania/internal/vecmath"
)

// Kernel holds the dependencies a substep needs beyond the registry
// itself: the immutable config and the id generator jettison uses to mint
// new asteroid cookies.
type Kernel struct {
	Cfg   config.GameConfig
	IDGen *model.IDGen
}

// NewKernel builds a physics Kernel.
func NewKernel(cfg config.GameConfig, idgen *model.IDGen) *Kernel {
	return &Kernel{Cfg: cfg, IDGen: idgen}
}

// Substep advances the world by one physics tick (spec §4.E steps 1-4).
// gameOver, when true, freezes every ship: no orders are applied and all
// motion is skipped, matching "if the world is in game-over state, skip
// motion and drop all orders."
func (k *Kernel) Substep(reg *registry.Registry, gameOver bool) {
	dt := k.Cfg.PhysicsDt

	reg.Walk(func(t *model.Thing) bool {
		t.ClearDamageFlags()
		return true
	})

	reg.Walk(func(t *model.Thing) bool {
		if t.Vel.Rho > k.Cfg.MaxSpeed {
			t.Vel.Rho = k.Cfg.MaxSpeed
		}
		return true
	})

	reg.Walk(func(t *model.Thing) bool {
		if t.Kind != model.KindShip {
			return true
		}
		if gameOver {
			t.Ship.ThrustOrder = 0
			t.Ship.TurnOrder = 0
			t.Ship.JettisonOrder = 0
			t.Ship.ShieldOrder = 0
			return true
		}
		k.stepShip(reg, t, dt)
		return true
	})

	reg.Walk(func(t *model.Thing) bool {
		if t.Kind == model.KindShip {
			return true
		}
		t.Pos = t.Pos.Add(vecmath.FromTraj(t.Vel).Scale(dt))
		t.Orient += t.Omega * dt
		t.NormalizeOrientation()
		return true
	})
}

func (k *Kernel) stepShip(reg *registry.Registry, t *model.Thing, dt float64) {
	s := t.Ship

	if !s.Docked {
		k.applyJettison(reg, t)
	} else {
		s.JettisonOrder = 0
	}

	k.applyShield(s)
	k.applyTurn(s, dt)
	k.applyThrust(t, dt)

	t.Pos = t.Pos.Add(vecmath.FromTraj(t.Vel).Scale(dt))
	t.Orient += t.Omega * dt
	t.NormalizeOrientation()
	t.Omega = 0
	s.LaserReach = 0
}

func (k *Kernel) applyShield(s *model.ShipData) {
	if s.ShieldOrder == 0 {
		return
	}
	s.Fuel.Add(-s.ShieldOrder)
	s.Shield.Add(s.ShieldOrder)
	s.ShieldOrder = 0
}

func (k *Kernel) applyTurn(s *model.ShipData, dt float64) {
	if s.TurnOrder == 0 {
		return
	}
	totalMass := s.GetMass()
	costPerSecond := math.Abs(s.TurnOrder) * totalMass / (6 * vecmath.Pi2 * model.ShipBaseMass)
	s.Fuel.Add(-costPerSecond * dt)
	s.Omega = s.TurnOrder
}

func (k *Kernel) applyThrust(t *model.Thing, dt float64) {
	s := t.Ship
	if s.ThrustOrder == 0 {
		return
	}
	mag := s.ThrustOrder
	totalMass := s.GetMass()
	accel := mag / totalMass

	if s.Docked {
		heading := vecmath.Coord{X: math.Cos(t.Orient), Y: math.Sin(t.Orient)}
		t.Pos = t.Pos.Add(heading.Scale(model.LaunchDistance))
		// NewTraj normalizes a negative rho by flipping the heading by pi,
		// so reverse thrust while docked still departs backward.
		t.Vel = vecmath.NewTraj(mag, t.Orient).ClampRho(k.Cfg.MaxSpeed)
		s.Docked = false
		s.ThrustOrder = 0
		return
	}

	cost := math.Abs(mag) * totalMass / (6 * k.Cfg.MaxSpeed * model.ShipBaseMass)
	s.Fuel.Add(-cost)

	delta := vecmath.NewTraj(accel*dt, t.Orient)
	t.Vel = t.Vel.Add(delta).ClampRho(k.Cfg.MaxSpeed)
	s.ThrustOrder = 0
}

// applyJettison implements spec §4.E.1: spawn a mass-|order| asteroid
// ahead of the ship along its heading, recoil the ship, and deduct the
// jettisoned mass from the appropriate inventory.
func (k *Kernel) applyJettison(reg *registry.Registry, t *model.Thing) {
	s := t.Ship
	if s.JettisonOrder == 0 {
		return
	}
	order := s.JettisonOrder
	s.JettisonOrder = 0

	mass := math.Abs(order)
	material := model.MaterialUranium
	if order < 0 {
		material = model.MaterialVinyl
	}

	shipMass := s.GetMass()
	size := model.AsteroidSize(mass)
	offset := (t.Size + size) * 1.15
	pos := t.Pos.Add(vecmath.Coord{X: math.Cos(t.Orient), Y: math.Sin(t.Orient)}.Scale(offset))

	ast := &model.Thing{
		Core: model.Core{
			ID:           k.IDGen.Next(),
			Kind:         model.KindAsteroid,
			Pos:          pos,
			Vel:          t.Vel,
			Omega:        model.AsteroidOmega,
			Mass:         mass,
			Size:         size,
			TeamID:       -1,
			CollideAngle: model.NoDamage,
			ShotAngle:    model.NoDamage,
		},
		Asteroid: &model.AsteroidData{Material: material},
	}
	reg.Add(ast)

	if order > 0 {
		s.Fuel.Add(-order)
	} else {
		s.Cargo.Add(order)
	}

	newMass := shipMass - mass
	if newMass <= 0 {
		newMass = shipMass
	}
	// Momentum and recoil are vector quantities, not positions: computed
	// via Traj (which only wraps its angle) rather than Coord (which
	// would wrap magnitudes > 512 back into the world square).
	jettisonedMomentum := t.Vel.Scale(mass)
	recoil := jettisonedMomentum.Scale(-2.0 / newMass)
	t.Vel = t.Vel.Add(recoil).ClampRho(k.Cfg.MaxSpeed)
}
