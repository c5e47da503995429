// Package model defines the Thing hierarchy (Generic/Asteroid/Station/Ship)
// as a single tagged-variant type, plus the Team that owns ships and a
// station. This replaces the original inheritance hierarchy with explicit
// kind dispatch, per the "Inheritance hierarchy -> tagged variant" design
// note: collision dispatch becomes a match on the pair rather than a
// vtable call, keeping the reaction table auditable.
package model

import "mechmania/internal/vecmath"

// Kind discriminates the variant payload carried by a Thing.
type Kind uint8

const (
	KindGeneric Kind = iota
	KindAsteroid
	KindStation
	KindShip
)

func (k Kind) String() string {
	switch k {
	case KindGeneric:
		return "Generic"
	case KindAsteroid:
		return "Asteroid"
	case KindStation:
		return "Station"
	case KindShip:
		return "Ship"
	default:
		return "Unknown"
	}
}

// NoDamage is the sentinel collide/shot angle recorded when no damage was
// taken this turn. It is chosen well outside the normalized (-pi, pi]
// range so it is never confused with a real angle.
const NoDamage = 1000.0

// Core holds the attributes and invariants every Thing shares, regardless
// of variant (spec §3, "Common Thing attributes").
type Core struct {
	ID   uint32
	Kind Kind
	Name string

	Pos    vecmath.Coord
	Vel    vecmath.Traj
	Orient float64
	Omega  float64

	Mass float64
	Size float64

	Dead bool

	CollideAngle float64
	ShotAngle    float64

	// TeamID is the owning team's slot, or -1 for ownerless things
	// (asteroids, laser phantoms).
	TeamID int
	// WorldIndex is this Thing's slot in the registry. It is NOT stable
	// across a deep copy of the world; TeamID + in-team ship number are
	// the only cross-copy stable identity (spec §4.C).
	WorldIndex int
}

// NormalizeOrientation clamps Orient into (-pi, pi] using the same modulo
// rule as vecmath.Traj.Normalize.
func (c *Core) NormalizeOrientation() {
	t := vecmath.NewTraj(1, c.Orient)
	c.Orient = t.Theta
}

// Thing is the tagged-variant entity. Exactly one of Asteroid/Station/Ship
// is non-nil, matching Core.Kind; KindGeneric (used for laser phantoms)
// carries no payload at all.
type Thing struct {
	Core

	Asteroid *AsteroidData
	Station  *StationData
	Ship     *ShipData
}

// NewGeneric builds a transient kind-Generic Thing (used for laser
// phantoms, scoped to a single collision call and never added to the
// add-queue for persistence across turns).
func NewGeneric(id uint32, pos vecmath.Coord, vel vecmath.Traj, mass float64) *Thing {
	return &Thing{
		Core: Core{
			ID:     id,
			Kind:   KindGeneric,
			Pos:    pos,
			Vel:    vel,
			Mass:   mass,
			Size:   1.0,
			TeamID: -1,

			CollideAngle: NoDamage,
			ShotAngle:    NoDamage,
		},
	}
}

// ClearDamageFlags resets the per-substep damage markers; called at the
// start of every physics substep (spec §4.E step 1).
func (t *Thing) ClearDamageFlags() {
	t.CollideAngle = NoDamage
	t.ShotAngle = NoDamage
}

// Overlaps reports whether t and other's circles intersect.
func (t *Thing) Overlaps(other *Thing) bool {
	return t.Pos.DistTo(other.Pos) < t.Size+other.Size
}

// IsTeamControlled reports whether this Thing is a Ship or Station, the
// only kinds the collision resolver drives as "team-controlled" (spec
// §4.F).
func (t *Thing) IsTeamControlled() bool {
	return t.Kind == KindShip || t.Kind == KindStation
}
