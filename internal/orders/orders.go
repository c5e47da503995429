// Package orders implements the per-ship command contract: Shield, Laser,
// Thrust, Turn, and Jettison, each with its own fuel accounting and
// mutual-exclusivity rules (spec §4.D).
package orders

import (
	"math"

	"mechmania/internal/config"
	"mechmania/internal/model"
)

// Kind discriminates the five order types a ship may carry.
type Kind uint8

const (
	Shield Kind = iota
	Laser
	Thrust
	Turn
	Jettison
)

// SetOrder validates and stores a single order on ship, returning the
// fuel cost that will actually be paid this turn (after any clamping).
// Setting a meaningful (non-trivial) value in the {Thrust, Turn,
// Jettison} exclusive group zeroes the other two; Laser is forced to
// zero while docked. A trivial value (zero thrust/turn, a jettison
// below model.MinMass) only clears its own field and never clobbers
// whichever of the other two was just set earlier in the same turn's
// fixed Shield/Laser/Thrust/Turn/Jettison order — each setter below
// guards its own zeroing behind that same "is this order non-trivial"
// check the original ship logic uses before clearing its siblings.
//
// The original implementation also defines a dead O_ALL_ORDERS branch
// that would recursively cost Shield+Laser+Thrust together; no client
// ever exercises it, and this rewrite does not recreate the recursion
// (spec §9, Open Question) — SetOrder only ever accepts one Kind at a
// time, by construction of the Kind enum.
func SetOrder(cfg config.GameConfig, ship *model.Thing, kind Kind, value float64) float64 {
	s := ship.Ship

	switch kind {
	case Shield:
		return setShield(s, value)
	case Laser:
		return setLaser(cfg, s, value)
	case Thrust:
		return setThrust(cfg, s, value)
	case Turn:
		return setTurn(cfg, s, value)
	case Jettison:
		return setJettison(s, value)
	default:
		return 0
	}
}

func setShield(s *model.ShipData, increment float64) float64 {
	if increment < 0 {
		increment = 0
	}
	headroom := s.Shield.Headroom()
	applied := math.Min(increment, headroom)
	applied = math.Min(applied, s.Fuel.Current)
	s.ShieldOrder = applied
	return applied
}

func setLaser(cfg config.GameConfig, s *model.ShipData, length float64) float64 {
	if s.Docked {
		s.LaserOrder = 0
		return 0
	}
	maxLen := math.Min(cfg.MaxLaserLength, worldHalfDiagonal())
	if length < 0 {
		length = 0
	}
	if length > maxLen {
		length = maxLen
	}
	cost := length / 50.0
	if cost > s.Fuel.Current {
		length = s.Fuel.Current * 50.0
		cost = s.Fuel.Current
	}
	s.LaserOrder = length
	return cost
}

// worldHalfDiagonal bounds laser length to half the world extent, per the
// "0..min(512, world_half)" clamp in spec §4.D. The world is 1024 wide on
// each axis, so world_half is 512 — equal to the other bound today, but
// expressed independently so a future non-square world stays correct.
func worldHalfDiagonal() float64 {
	return 512.0
}

func setThrust(cfg config.GameConfig, s *model.ShipData, mag float64) float64 {
	if mag == 0 {
		s.ThrustOrder = 0
		return 0
	}
	s.TurnOrder = 0
	s.JettisonOrder = 0

	totalMass := s.GetMass()
	cost := math.Abs(mag) * totalMass / (6 * cfg.MaxSpeed * model.ShipBaseMass)

	if s.Docked {
		// Free while docked, but still capped by fuel capacity: a docked
		// ship cannot store a thrust order implying more fuel than its
		// tank could ever hold.
		maxMagByCapacity := 6 * cfg.MaxSpeed * model.ShipBaseMass * s.Fuel.Capacity / totalMass
		if math.Abs(mag) > maxMagByCapacity {
			mag = math.Copysign(maxMagByCapacity, mag)
		}
		s.ThrustOrder = mag
		return 0
	}

	if cost > s.Fuel.Current {
		// Clamp magnitude down to what current fuel affords.
		maxMag := s.Fuel.Current * 6 * cfg.MaxSpeed * model.ShipBaseMass / totalMass
		mag = math.Copysign(maxMag, mag)
		cost = s.Fuel.Current
	}
	s.ThrustOrder = mag
	return cost
}

func setTurn(_ config.GameConfig, s *model.ShipData, theta float64) float64 {
	if theta == 0 {
		s.TurnOrder = 0
		return 0
	}
	s.ThrustOrder = 0
	s.JettisonOrder = 0

	totalMass := s.GetMass()
	// Total fuel for the turn; the physics kernel deducts this spread
	// evenly across the turn's substeps (cost * dt each), since omega is
	// re-applied from TurnOrder every substep rather than consumed once.
	cost := math.Abs(theta) * totalMass / (6 * 2 * math.Pi * model.ShipBaseMass)

	if s.Docked {
		s.TurnOrder = theta
		return 0
	}

	if cost > s.Fuel.Current {
		maxTheta := s.Fuel.Current * 6 * 2 * math.Pi * model.ShipBaseMass / totalMass
		theta = math.Copysign(maxTheta, theta)
		cost = s.Fuel.Current
	}
	s.TurnOrder = theta
	return cost
}

func setJettison(s *model.ShipData, amount float64) float64 {
	if math.Abs(amount) < model.MinMass {
		s.JettisonOrder = 0
		return 0
	}
	s.ThrustOrder = 0
	s.TurnOrder = 0

	if amount > 0 {
		// Positive: Uranium, drawn from fuel.
		if amount > s.Fuel.Current {
			amount = s.Fuel.Current
		}
	} else {
		// Negative: Vinyl, drawn from cargo.
		if -amount > s.Cargo.Current {
			amount = -s.Cargo.Current
		}
	}
	if math.Abs(amount) < model.MinMass {
		s.JettisonOrder = 0
		return 0
	}
	s.JettisonOrder = amount
	return 0
}
