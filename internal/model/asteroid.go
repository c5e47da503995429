package model

import "math"

// Material names what an Asteroid converts into when ingested: Vinyl
// becomes cargo (and eventually station score), Uranium becomes fuel.
type Material uint8

const (
	MaterialGeneric Material = iota
	MaterialVinyl
	MaterialUranium
)

// MinMass is the smallest mass a spawnable asteroid (or shatter child) may
// have; fragments below this are "dust" and are not spawned.
const MinMass = 3.0

// AsteroidData is the Asteroid variant payload.
type AsteroidData struct {
	Material Material

	// EatenBy names the ship (by registry index) that has already
	// claimed this asteroid during the current collision-resolution
	// step. It never persists across turns.
	EatenBy    int
	HasEatenBy bool
}

// AsteroidSize derives an asteroid's collision radius from its mass, per
// spec §3: size = 3 + 1.6*sqrt(mass).
func AsteroidSize(mass float64) float64 {
	return 3 + 1.6*math.Sqrt(mass)
}

// AsteroidOmega is the fixed spin rate of every asteroid.
const AsteroidOmega = 1.0
