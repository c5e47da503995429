package laser

import (
	"testing"

	"mechmania/internal/collision"
	"mechmania/internal/config"
	"mechmania/internal/model"
	"mechmania/internal/registry"
	"mechmania/internal/vecmath"

	. "github.com/smartystreets/goconvey/convey"
)

func newShip(pos vecmath.Coord, orient float64) *model.Thing {
	return &model.Thing{
		Core: model.Core{
			Kind:         model.KindShip,
			Pos:          pos,
			Orient:       orient,
			Mass:         model.ShipBaseMass,
			Size:         model.ShipSize,
			TeamID:       0,
			CollideAngle: model.NoDamage,
			ShotAngle:    model.NoDamage,
		},
		Ship: &model.ShipData{
			Fuel:   model.Stat{Current: 50, Capacity: 50},
			Shield: model.Stat{Current: model.InitialShield, Capacity: model.ShieldCapacity},
		},
	}
}

func TestLaserShattersFacedAsteroid(t *testing.T) {
	Convey("Given a ship facing a 40-ton Vinyl asteroid 100 units east", t, func() {
		cfg := config.Default()
		idgen := model.NewIDGen()
		reg := registry.New(cfg.MaxThings, nil)
		res := collision.NewResolver(cfg, idgen)

		ship := newShip(vecmath.Coord{X: 0, Y: 0}, 0)
		ship.Ship.LaserOrder = 200

		ast := &model.Thing{
			Core: model.Core{
				Kind:         model.KindAsteroid,
				Pos:          vecmath.Coord{X: 100, Y: 0},
				Mass:         40,
				Size:         model.AsteroidSize(40),
				TeamID:       -1,
				CollideAngle: model.NoDamage,
				ShotAngle:    model.NoDamage,
			},
			Asteroid: &model.AsteroidData{Material: model.MaterialVinyl},
		}
		reg.Add(ship)
		reg.Add(ast)
		reg.ResolvePending()

		Convey("firing Laser=200 shatters the asteroid into 3 children and deducts fuel", func() {
			fuelBefore := ship.Ship.Fuel.Current
			Resolve(reg, res)
			reg.ResolvePending()

			So(ast.Dead, ShouldBeTrue)
			So(ship.Ship.Fuel.Current, ShouldAlmostEqual, fuelBefore-4.0, 1e-9)
			So(ship.Ship.LaserOrder, ShouldEqual, 0)

			count := 0
			reg.Walk(func(th *model.Thing) bool {
				if th.Kind == model.KindAsteroid {
					count++
				}
				return true
			})
			So(count, ShouldEqual, 3)
		})
	})
}

func TestLaserWithNoTargetJustCostsFuel(t *testing.T) {
	Convey("Given a ship firing into empty space", t, func() {
		cfg := config.Default()
		idgen := model.NewIDGen()
		reg := registry.New(cfg.MaxThings, nil)
		res := collision.NewResolver(cfg, idgen)

		ship := newShip(vecmath.Coord{X: 0, Y: 0}, 0)
		ship.Ship.LaserOrder = 100
		reg.Add(ship)
		reg.ResolvePending()

		Convey("fuel is deducted and LaserReach records the full length", func() {
			Resolve(reg, res)
			So(ship.Ship.Fuel.Current, ShouldAlmostEqual, 48.0, 1e-9)
			So(ship.Ship.LaserReach, ShouldAlmostEqual, 100.0, 1e-9)
		})
	})
}
