// Package vecmath implements the toroidal coordinate and trajectory algebra
// underpinning every distance, angle, and intercept query in the simulation.
package vecmath

import "math"

// World bounds: a half-open square [-512, 512) x [-512, 512).
const (
	WorldXMin = -512.0
	WorldYMin = -512.0
	WorldXMax = 512.0
	WorldYMax = 512.0

	WorldSizeX = WorldXMax - WorldXMin
	WorldSizeY = WorldYMax - WorldYMin
)

// Coord is a Cartesian (x, y) position on the torus. Every mutating
// operation normalizes the result back into the half-open world square.
type Coord struct {
	X, Y float64
}

// Normalize maps the coordinate into [WorldXMin, WorldXMax) x [WorldYMin,
// WorldYMax) via mathematical modulo (never C-style truncating fmod), so
// that e.g. -1536 always wraps to -512, not +512.
func (c *Coord) Normalize() {
	c.X = wrap(c.X, WorldXMin, WorldSizeX)
	c.Y = wrap(c.Y, WorldYMin, WorldSizeY)
}

func wrap(v, min, size float64) float64 {
	r := math.Mod(v-min, size)
	if r < 0 {
		r += size
	}
	return r + min
}

// Normalized returns a copy of c normalized onto the torus.
func (c Coord) Normalized() Coord {
	c.Normalize()
	return c
}

// DistTo returns the shortest-path distance from c to other, accounting for
// toroidal wraparound: at most one edge is crossed per axis.
func (c Coord) DistTo(other Coord) float64 {
	d := other.Sub(c)
	return math.Hypot(d.X, d.Y)
}

// AngleTo returns the shortest-path direction from c to other, in (-pi, pi].
func (c Coord) AngleTo(other Coord) float64 {
	if c == other {
		return 0.0
	}
	d := other.Sub(c)
	return math.Atan2(d.Y, d.X)
}

// VectTo returns the trajectory (rho, theta) from c to other.
func (c Coord) VectTo(other Coord) Traj {
	return NewTraj(c.DistTo(other), c.AngleTo(other))
}

// Add returns c + other, normalized.
func (c Coord) Add(other Coord) Coord {
	r := Coord{X: c.X + other.X, Y: c.Y + other.Y}
	r.Normalize()
	return r
}

// Sub returns c - other, normalized. This is the shortest-path displacement
// vector used by DistTo/AngleTo: wrapping the difference automatically
// selects the wrap direction because the result lands in [-size/2, size/2).
func (c Coord) Sub(other Coord) Coord {
	r := Coord{X: c.X - other.X, Y: c.Y - other.Y}
	r.Normalize()
	return r
}

// Scale returns c * s, normalized.
func (c Coord) Scale(s float64) Coord {
	r := Coord{X: c.X * s, Y: c.Y * s}
	r.Normalize()
	return r
}

// Div returns c / s, normalized. Division by zero is a no-op (returns c).
func (c Coord) Div(s float64) Coord {
	if s == 0 {
		return c
	}
	return c.Scale(1.0 / s)
}

// Neg returns the additive inverse of c.
func (c Coord) Neg() Coord {
	return Coord{X: -c.X, Y: -c.Y}
}

// FromTraj converts a polar trajectory into Cartesian coordinates.
func FromTraj(t Traj) Coord {
	return Coord{X: math.Cos(t.Theta) * t.Rho, Y: math.Sin(t.Theta) * t.Rho}
}
