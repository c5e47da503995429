package collision

import (
	"math"
	"testing"

	"mechmania/internal/config"
	"mechmania/internal/model"
	"mechmania/internal/registry"
	"mechmania/internal/vecmath"

	. "github.com/smartystreets/goconvey/convey"
)

func newShip(pos vecmath.Coord) *model.Thing {
	return &model.Thing{
		Core: model.Core{
			Kind:         model.KindShip,
			Pos:          pos,
			Mass:         model.ShipBaseMass,
			Size:         model.ShipSize,
			TeamID:       0,
			CollideAngle: model.NoDamage,
			ShotAngle:    model.NoDamage,
		},
		Ship: &model.ShipData{
			Cargo:  model.Stat{Capacity: 30},
			Fuel:   model.Stat{Capacity: 30},
			Shield: model.Stat{Current: model.InitialShield, Capacity: model.ShieldCapacity},
		},
	}
}

func newAsteroid(pos vecmath.Coord, mass float64, material model.Material) *model.Thing {
	return &model.Thing{
		Core: model.Core{
			Kind:         model.KindAsteroid,
			Pos:          pos,
			Mass:         mass,
			Size:         model.AsteroidSize(mass),
			TeamID:       -1,
			CollideAngle: model.NoDamage,
			ShotAngle:    model.NoDamage,
		},
		Asteroid: &model.AsteroidData{Material: material},
	}
}

func TestShipIngestsFittingAsteroid(t *testing.T) {
	Convey("Given a ship overlapping a fitting Vinyl asteroid", t, func() {
		cfg := config.Default()
		idgen := model.NewIDGen()
		reg := registry.New(cfg.MaxThings, nil)
		res := NewResolver(cfg, idgen)

		ship := newShip(vecmath.Coord{})
		ship.Ship.Cargo.Capacity = 40
		ast := newAsteroid(vecmath.Coord{}, 40, model.MaterialVinyl)
		reg.Add(ship)
		reg.Add(ast)
		reg.ResolvePending()

		Convey("Resolve ingests it: cargo += mass, asteroid dies", func() {
			res.Resolve(reg)
			So(ship.Ship.Cargo.Current, ShouldAlmostEqual, 40, 1e-9)
			So(ast.Dead, ShouldBeTrue)
		})
	})
}

func TestSecondShipCannotClaimEatenAsteroid(t *testing.T) {
	Convey("Given an asteroid already claimed by another ship", t, func() {
		cfg := config.Default()
		idgen := model.NewIDGen()
		reg := registry.New(cfg.MaxThings, nil)
		res := NewResolver(cfg, idgen)

		ship := newShip(vecmath.Coord{})
		ast := newAsteroid(vecmath.Coord{}, 40, model.MaterialVinyl)
		ast.Asteroid.HasEatenBy = true
		ast.Asteroid.EatenBy = 99
		reg.Add(ship)
		reg.Add(ast)
		reg.ResolvePending()

		Convey("the ship still gets the velocity merge but no cargo", func() {
			res.Resolve(reg)
			So(ship.Ship.Cargo.Current, ShouldEqual, 0)
			So(ast.Dead, ShouldBeFalse)
		})
	})
}

func TestShipDocksAtStation(t *testing.T) {
	Convey("Given a ship overlapping its station with cargo aboard", t, func() {
		cfg := config.Default()
		idgen := model.NewIDGen()
		reg := registry.New(cfg.MaxThings, nil)
		res := NewResolver(cfg, idgen)

		ship := newShip(vecmath.Coord{})
		ship.Ship.Cargo.Current = 12
		ship.Vel = vecmath.NewTraj(5, 0)
		station := &model.Thing{
			Core: model.Core{
				Kind:         model.KindStation,
				Mass:         model.StationMass,
				Size:         model.StationSize,
				TeamID:       0,
				CollideAngle: model.NoDamage,
				ShotAngle:    model.NoDamage,
			},
			Station: &model.StationData{},
		}
		reg.Add(ship)
		reg.Add(station)
		reg.ResolvePending()

		Convey("it snaps to the station, stops, unloads, and becomes docked", func() {
			res.Resolve(reg)
			So(ship.Pos, ShouldResemble, station.Pos)
			So(ship.Vel.Rho, ShouldEqual, 0)
			So(ship.Ship.Cargo.Current, ShouldEqual, 0)
			So(station.Station.VinylStore, ShouldAlmostEqual, 12, 1e-9)
			So(ship.Ship.Docked, ShouldBeTrue)
		})
	})
}

func TestHeavyPhantomShattersAsteroid(t *testing.T) {
	Convey("Given a 100-ton asteroid hit by a laser phantom of mass >= 1000", t, func() {
		cfg := config.Default()
		idgen := model.NewIDGen()
		reg := registry.New(cfg.MaxThings, nil)
		res := NewResolver(cfg, idgen)

		ast := newAsteroid(vecmath.Coord{}, 100, model.MaterialVinyl)
		reg.Add(ast)
		reg.ResolvePending()

		phantom := model.NewGeneric(idgen.Next(), ast.Pos, vecmath.Traj{}, 1200)

		Convey("it dies and spawns exactly 3 equal children", func() {
			res.HandlePair(reg, ast, phantom)
			reg.ResolvePending()

			So(ast.Dead, ShouldBeTrue)
			count := 0
			reg.Walk(func(th *model.Thing) bool {
				if th.Kind == model.KindAsteroid {
					count++
					So(th.Mass, ShouldAlmostEqual, 100.0/3.0, 1e-6)
				}
				return true
			})
			So(count, ShouldEqual, 3)
		})
	})
}

func TestHeavyPhantomShatterChildVelocityMatchesPhantomRelativeMotion(t *testing.T) {
	Convey("Given an asteroid moving away from a heavier laser phantom", t, func() {
		cfg := config.Default()
		idgen := model.NewIDGen()
		reg := registry.New(cfg.MaxThings, nil)
		res := NewResolver(cfg, idgen)

		ast := newAsteroid(vecmath.Coord{}, 40, model.MaterialVinyl)
		ast.Vel = vecmath.NewTraj(5, 0)
		reg.Add(ast)
		reg.ResolvePending()

		phantom := model.NewGeneric(idgen.Next(), ast.Pos, vecmath.NewTraj(3, vecmath.Pi), 3030)

		Convey("children take the phantom's direction relative to the asteroid, at the mass-ratio speed", func() {
			res.HandlePair(reg, ast, phantom)
			reg.ResolvePending()

			wantRelVel := phantom.Vel.Sub(ast.Vel)
			wantRho := phantom.Mass / (3.0 * ast.Mass)

			reg.Walk(func(th *model.Thing) bool {
				if th.Kind == model.KindAsteroid {
					So(th.Vel.Rho, ShouldAlmostEqual, wantRho, 1e-9)
					diff := math.Mod(th.Vel.Theta-wantRelVel.Theta+vecmath.Pi2*3, vecmath.Pi2/3.0)
					So(math.Min(diff, vecmath.Pi2/3.0-diff), ShouldBeLessThan, 1e-6)
				}
				return true
			})
		})
	})
}

func TestLightPhantomGlancesOff(t *testing.T) {
	Convey("Given an asteroid hit by a laser phantom of mass < 1000", t, func() {
		cfg := config.Default()
		idgen := model.NewIDGen()
		reg := registry.New(cfg.MaxThings, nil)
		res := NewResolver(cfg, idgen)

		ast := newAsteroid(vecmath.Coord{}, 100, model.MaterialVinyl)
		reg.Add(ast)
		reg.ResolvePending()

		phantom := model.NewGeneric(idgen.Next(), ast.Pos, vecmath.Traj{}, 500)

		Convey("it takes no damage", func() {
			res.HandlePair(reg, ast, phantom)
			So(ast.Dead, ShouldBeFalse)
		})
	})
}
