package orders

import (
	"testing"

	"mechmania/internal/config"
	"mechmania/internal/model"

	. "github.com/smartystreets/goconvey/convey"
)

func freeShip() *model.Thing {
	return &model.Thing{
		Core: model.Core{Kind: model.KindShip, TeamID: 0},
		Ship: &model.ShipData{
			Cargo:  model.Stat{Current: 0, Capacity: 30},
			Fuel:   model.Stat{Current: 50, Capacity: 30},
			Shield: model.Stat{Current: 0, Capacity: model.ShieldCapacity},
		},
	}
}

func TestSetOrder(t *testing.T) {
	cfg := config.Default()

	Convey("Given a free-flying ship with ample fuel", t, func() {
		ship := freeShip()

		Convey("setting Thrust zeroes the other exclusive-group orders", func() {
			ship.Ship.TurnOrder = 1.0
			ship.Ship.JettisonOrder = 5.0
			SetOrder(cfg, ship, Thrust, 10.0)
			So(ship.Ship.TurnOrder, ShouldEqual, 0)
			So(ship.Ship.JettisonOrder, ShouldEqual, 0)
			So(ship.Ship.ThrustOrder, ShouldEqual, 10.0)
		})

		Convey("Thrust cost is clamped to what current fuel affords", func() {
			ship.Ship.Fuel.Current = 0.001
			cost := SetOrder(cfg, ship, Thrust, cfg.MaxThrustOrder)
			So(cost, ShouldAlmostEqual, 0.001, 1e-9)
			So(ship.Ship.ThrustOrder, ShouldBeLessThan, cfg.MaxThrustOrder)
		})

		Convey("Turn cost does not scale by dt: it is the total for the turn", func() {
			cost := SetOrder(cfg, ship, Turn, 1.0)
			expect := 1.0 * ship.Ship.GetMass() / (6 * 2 * 3.141592653589793 * model.ShipBaseMass)
			So(cost, ShouldAlmostEqual, expect, 1e-9)
		})

		Convey("Laser while not docked is clamped to MaxLaserLength", func() {
			cost := SetOrder(cfg, ship, Laser, 99999)
			So(ship.Ship.LaserOrder, ShouldAlmostEqual, cfg.MaxLaserLength, 1e-9)
			So(cost, ShouldAlmostEqual, cfg.MaxLaserLength/50.0, 1e-9)
		})

		Convey("Jettison below MinMass is rejected outright", func() {
			cost := SetOrder(cfg, ship, Jettison, 1.0)
			So(cost, ShouldEqual, 0)
			So(ship.Ship.JettisonOrder, ShouldEqual, 0)
		})

		Convey("Jettison of Vinyl clamps to cargo on hand", func() {
			ship.Ship.Cargo.Current = 4.0
			cost := SetOrder(cfg, ship, Jettison, -50.0)
			So(cost, ShouldEqual, 0)
			So(ship.Ship.JettisonOrder, ShouldAlmostEqual, -4.0, 1e-9)
		})

		Convey("Jettison of Uranium clamps to fuel on hand", func() {
			ship.Ship.Fuel.Current = 4.0
			SetOrder(cfg, ship, Jettison, 50.0)
			So(ship.Ship.JettisonOrder, ShouldAlmostEqual, 4.0, 1e-9)
		})

		Convey("Shield order is clamped to both headroom and fuel", func() {
			ship.Ship.Shield.Current = model.ShieldCapacity - 2.0
			ship.Ship.Fuel.Current = 50.0
			cost := SetOrder(cfg, ship, Shield, 100.0)
			So(cost, ShouldAlmostEqual, 2.0, 1e-9)
			So(ship.Ship.ShieldOrder, ShouldAlmostEqual, 2.0, 1e-9)
		})

		Convey("a fixed Thrust, Turn, Jettison(0) sequence leaves only Turn set", func() {
			// Matches the per-turn application order in sim.World.ApplyOrders:
			// every ship's record always carries all five kinds. The
			// non-trivial Turn replaces the Thrust set before it, and the
			// trivial Jettison order must not clobber that Turn.
			SetOrder(cfg, ship, Thrust, 10.0)
			SetOrder(cfg, ship, Turn, 1.0)
			SetOrder(cfg, ship, Jettison, 0)
			So(ship.Ship.ThrustOrder, ShouldEqual, 0)
			So(ship.Ship.TurnOrder, ShouldEqual, 1.0)
			So(ship.Ship.JettisonOrder, ShouldEqual, 0)
		})

		Convey("a later non-trivial Jettison still clears Thrust and Turn", func() {
			SetOrder(cfg, ship, Thrust, 10.0)
			SetOrder(cfg, ship, Turn, 1.0)
			ship.Ship.Cargo.Current = 10.0
			SetOrder(cfg, ship, Jettison, -5.0)
			So(ship.Ship.ThrustOrder, ShouldEqual, 0)
			So(ship.Ship.TurnOrder, ShouldEqual, 0)
			So(ship.Ship.JettisonOrder, ShouldAlmostEqual, -5.0, 1e-9)
		})
	})

	Convey("Given a docked ship", t, func() {
		ship := freeShip()
		ship.Ship.Docked = true

		Convey("Thrust is free but still capped by tank capacity", func() {
			cost := SetOrder(cfg, ship, Thrust, 999999)
			So(cost, ShouldEqual, 0)
			So(ship.Ship.ThrustOrder, ShouldBeLessThan, 999999.0)
		})

		Convey("Turn is free and unclamped", func() {
			cost := SetOrder(cfg, ship, Turn, 2.5)
			So(cost, ShouldEqual, 0)
			So(ship.Ship.TurnOrder, ShouldEqual, 2.5)
		})

		Convey("Laser is forced to zero", func() {
			cost := SetOrder(cfg, ship, Laser, 200.0)
			So(cost, ShouldEqual, 0)
			So(ship.Ship.LaserOrder, ShouldEqual, 0)
		})
	})
}
