package model

// Ship constants (spec §3): fixed size, base mass, and the stat capacity
// budget cargo+fuel must live within.
const (
	ShipSize        = 12.0
	ShipBaseMass    = 40.0
	MaxStatCapacity = 60.0 // cargo capacity + fuel capacity <= this
	ShieldCapacity  = 8000.0
	InitialShield   = 15.0
	DockingDistance = 1.0 // additional slack beyond size-sum for docking checks
	LaunchDistance  = 48.0
)

// Stat is a capped resource (cargo, fuel, or shield) with a current value
// and a capacity.
type Stat struct {
	Current  float64
	Capacity float64
}

// Headroom returns how much more this stat can currently absorb.
func (s Stat) Headroom() float64 {
	h := s.Capacity - s.Current
	if h < 0 {
		return 0
	}
	return h
}

// Add adds amount to Current, clamped to [0, Capacity]. Returns the amount
// actually applied.
func (s *Stat) Add(amount float64) float64 {
	before := s.Current
	s.Current += amount
	if s.Current > s.Capacity {
		s.Current = s.Capacity
	}
	if s.Current < 0 {
		s.Current = 0
	}
	return s.Current - before
}

// ShipData is the Ship variant payload: resource stats, docking state, and
// the single pending order per OrderKind (spec §3, §4.D).
type ShipData struct {
	Cargo  Stat
	Fuel   Stat
	Shield Stat

	Docked bool

	// Orders pending for the next physics pass. At most one of
	// ThrustOrder/TurnOrder/JettisonOrder may be nonzero at a time
	// (mutual exclusivity enforced by the orders package); ShieldOrder
	// and LaserOrder are independent of those and of each other.
	ThrustOrder   float64
	TurnOrder     float64
	JettisonOrder float64
	ShieldOrder   float64
	LaserOrder    float64

	// LaserReach is the actual beam length fired last turn, kept for
	// clients/observers that render the beam; it has no effect on
	// simulation.
	LaserReach float64

	// ShipNumber is this ship's stable 0-3 slot within its team.
	ShipNumber int
}

// GetMass returns the ship's total mass: base hull plus cargo and fuel.
func (s *ShipData) GetMass() float64 {
	return ShipBaseMass + s.Cargo.Current + s.Fuel.Current
}

// SetCapacity redistributes the ship's cargo/fuel capacity budget. The sum
// must not exceed MaxStatCapacity; values are clamped to fit.
func (s *ShipData) SetCapacity(cargoCap, fuelCap float64) {
	if cargoCap < 0 {
		cargoCap = 0
	}
	if fuelCap < 0 {
		fuelCap = 0
	}
	if cargoCap+fuelCap > MaxStatCapacity {
		scale := MaxStatCapacity / (cargoCap + fuelCap)
		cargoCap *= scale
		fuelCap *= scale
	}
	s.Cargo.Capacity = cargoCap
	s.Fuel.Capacity = fuelCap
}
