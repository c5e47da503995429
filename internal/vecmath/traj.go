package vecmath

import "math"

const (
	Pi  = math.Pi
	Pi2 = 2 * math.Pi
)

// Traj is a polar vector (rho, theta): magnitude and heading. theta is
// always normalized to (-pi, pi]; rho is always >= 0.
//
// Equality is deliberately not implemented: (5, pi) and (5, -pi) name the
// same direction, and a naive == would treat them as different.
type Traj struct {
	Rho, Theta float64
}

// NewTraj builds a normalized Traj from raw magnitude/heading.
func NewTraj(rho, theta float64) Traj {
	t := Traj{Rho: rho, Theta: theta}
	t.Normalize()
	return t
}

// Normalize enforces rho >= 0 (negating rho flips theta by pi) and
// theta in (-pi, pi]. rho == 0 forces theta to 0 so the zero vector has a
// single canonical representation.
func (t *Traj) Normalize() {
	if t.Rho == 0 {
		t.Theta = 0
		return
	}
	if t.Rho < 0 {
		t.Rho = -t.Rho
		t.Theta += Pi
	}
	if t.Theta <= -Pi {
		t.Theta = Pi - math.Mod(-Pi-t.Theta, Pi2)
	}
	if t.Theta > Pi {
		t.Theta = math.Mod(t.Theta+Pi, Pi2) - Pi
		if t.Theta <= -Pi {
			t.Theta = Pi
		}
	}
}

// ConvertToCoord converts the polar vector into Cartesian coordinates.
func (t Traj) ConvertToCoord() Coord {
	return FromTraj(t)
}

// FromCoord sets t to the trajectory from the origin to c.
func (t *Traj) FromCoord(c Coord) {
	origin := Coord{}
	t.Rho = origin.DistTo(c)
	t.Theta = origin.AngleTo(c)
}

// TrajFromCoord returns the trajectory from the origin to c.
func TrajFromCoord(c Coord) Traj {
	var t Traj
	t.FromCoord(c)
	return t
}

// Rotate adds dtheta to the heading, re-normalizing.
func (t Traj) Rotate(dtheta float64) Traj {
	t.Theta += dtheta
	t.Normalize()
	return t
}

// Add combines two trajectories as vectors (not polar addition).
func (t Traj) Add(other Traj) Traj {
	x1, y1 := t.Rho*math.Cos(t.Theta), t.Rho*math.Sin(t.Theta)
	x2, y2 := other.Rho*math.Cos(other.Theta), other.Rho*math.Sin(other.Theta)
	return NewTraj(math.Hypot(x1+x2, y1+y2), math.Atan2(y1+y2, x1+x2))
}

// Sub subtracts other from t as vectors.
func (t Traj) Sub(other Traj) Traj {
	neg := Traj{Rho: other.Rho, Theta: other.Theta + Pi}
	neg.Normalize()
	return t.Add(neg)
}

// Scale multiplies rho by s (negative s flips direction via Normalize).
func (t Traj) Scale(s float64) Traj {
	return NewTraj(t.Rho*s, t.Theta)
}

// Div divides rho by s.
func (t Traj) Div(s float64) Traj {
	return NewTraj(t.Rho/s, t.Theta)
}

// Dot returns the dot product of the two trajectories as vectors.
func (t Traj) Dot(other Traj) float64 {
	return t.Rho * other.Rho * math.Cos(other.Theta-t.Theta)
}

// Cross returns the scalar cross product (z-component) of the two
// trajectories as vectors.
func (t Traj) Cross(other Traj) float64 {
	return t.Rho * other.Rho * math.Sin(other.Theta-t.Theta)
}

// ClampRho returns t with Rho capped to max, preserving heading.
func (t Traj) ClampRho(max float64) Traj {
	if t.Rho > max {
		t.Rho = max
	}
	return t
}
