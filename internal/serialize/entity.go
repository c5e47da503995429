// Package serialize implements the wire-level packing of Things, team
// records, and the world snapshot (spec §4.I), built entirely on
// internal/wire's codec primitives.
package serialize

import (
	"fmt"

	"mechmania/internal/model"
	"mechmania/internal/wire"
)

// coreSize is the byte length of the Core fields every Thing variant
// shares: id, name, pos (2 doubles), vel (2 doubles), orient, omega,
// mass, size, dead, collide_angle, shot_angle.
const coreSize = wire.SizeU32 + wire.MaxNameLen +
	10*wire.SizeDouble + wire.SizeU32

// shipExtraSize is the Ship variant's extra payload beyond Core:
// ship_number, docked (bool-as-u32), docking_distance, laser_reach, the
// 5 order doubles, then 3 stats as (current, capacity) double pairs.
const shipExtraSize = wire.SizeU32 + wire.SizeU32 + 2*wire.SizeDouble +
	5*wire.SizeDouble + 6*wire.SizeDouble

// EntitySize returns the packed byte length of t's full record (Core plus
// its variant payload), matching the original's per-kind GetSerialSize.
func EntitySize(t *model.Thing) int {
	switch t.Kind {
	case model.KindAsteroid:
		return coreSize + wire.SizeU32
	case model.KindStation:
		return coreSize + wire.SizeDouble
	case model.KindShip:
		return coreSize + shipExtraSize
	default:
		return coreSize
	}
}

// PackEntity writes t's full record (Core + variant) into buf, returning
// bytes written.
func PackEntity(t *model.Thing, buf []byte) int {
	off := 0
	off = wire.PackU32(buf, off, t.ID)
	off = wire.PackBytes(buf, off, wire.MaxNameLen, t.Name)
	off = wire.PackDouble(buf, off, t.Pos.X)
	off = wire.PackDouble(buf, off, t.Pos.Y)
	off = wire.PackDouble(buf, off, t.Vel.Rho)
	off = wire.PackDouble(buf, off, t.Vel.Theta)
	off = wire.PackDouble(buf, off, t.Orient)
	off = wire.PackDouble(buf, off, t.Omega)
	off = wire.PackDouble(buf, off, t.Mass)
	off = wire.PackDouble(buf, off, t.Size)
	off = wire.PackBool(buf, off, t.Dead)
	off = wire.PackDouble(buf, off, t.CollideAngle)
	off = wire.PackDouble(buf, off, t.ShotAngle)

	switch t.Kind {
	case model.KindAsteroid:
		off = wire.PackU32(buf, off, uint32(t.Asteroid.Material))
	case model.KindStation:
		off = wire.PackDouble(buf, off, t.Station.VinylStore)
	case model.KindShip:
		off = packShipExtra(t.Ship, buf, off)
	}
	return off
}

func packShipExtra(s *model.ShipData, buf []byte, off int) int {
	off = wire.PackU32(buf, off, uint32(s.ShipNumber))
	off = wire.PackBool(buf, off, s.Docked)
	off = wire.PackDouble(buf, off, model.DockingDistance)
	off = wire.PackDouble(buf, off, s.LaserReach)

	off = wire.PackDouble(buf, off, s.ShieldOrder)
	off = wire.PackDouble(buf, off, s.LaserOrder)
	off = wire.PackDouble(buf, off, s.ThrustOrder)
	off = wire.PackDouble(buf, off, s.TurnOrder)
	off = wire.PackDouble(buf, off, s.JettisonOrder)

	off = wire.PackDouble(buf, off, s.Cargo.Current)
	off = wire.PackDouble(buf, off, s.Cargo.Capacity)
	off = wire.PackDouble(buf, off, s.Fuel.Current)
	off = wire.PackDouble(buf, off, s.Fuel.Capacity)
	off = wire.PackDouble(buf, off, s.Shield.Current)
	off = wire.PackDouble(buf, off, s.Shield.Capacity)
	return off
}

// UnpackEntity reads a Thing of the given kind from buf, returning the
// populated Thing and bytes consumed. The caller supplies kind (read from
// the preceding 5-tuple header) since it determines the variant payload.
func UnpackEntity(kind model.Kind, buf []byte) (*model.Thing, int, error) {
	t := &model.Thing{Core: model.Core{Kind: kind}}
	off := 0
	var err error

	if off, err = wire.UnpackU32(buf, off, &t.ID); err != nil {
		return nil, 0, err
	}
	if off, err = wire.UnpackBytes(buf, off, wire.MaxNameLen, &t.Name); err != nil {
		return nil, 0, err
	}
	if off, err = wire.UnpackDouble(buf, off, &t.Pos.X); err != nil {
		return nil, 0, err
	}
	if off, err = wire.UnpackDouble(buf, off, &t.Pos.Y); err != nil {
		return nil, 0, err
	}
	if off, err = wire.UnpackDouble(buf, off, &t.Vel.Rho); err != nil {
		return nil, 0, err
	}
	if off, err = wire.UnpackDouble(buf, off, &t.Vel.Theta); err != nil {
		return nil, 0, err
	}
	if off, err = wire.UnpackDouble(buf, off, &t.Orient); err != nil {
		return nil, 0, err
	}
	if off, err = wire.UnpackDouble(buf, off, &t.Omega); err != nil {
		return nil, 0, err
	}
	if off, err = wire.UnpackDouble(buf, off, &t.Mass); err != nil {
		return nil, 0, err
	}
	if off, err = wire.UnpackDouble(buf, off, &t.Size); err != nil {
		return nil, 0, err
	}
	if off, err = wire.UnpackBool(buf, off, &t.Dead); err != nil {
		return nil, 0, err
	}
	if off, err = wire.UnpackDouble(buf, off, &t.CollideAngle); err != nil {
		return nil, 0, err
	}
	if off, err = wire.UnpackDouble(buf, off, &t.ShotAngle); err != nil {
		return nil, 0, err
	}

	switch kind {
	case model.KindAsteroid:
		var mat uint32
		if off, err = wire.UnpackU32(buf, off, &mat); err != nil {
			return nil, 0, err
		}
		t.Asteroid = &model.AsteroidData{Material: model.Material(mat)}
	case model.KindStation:
		var vinyl float64
		if off, err = wire.UnpackDouble(buf, off, &vinyl); err != nil {
			return nil, 0, err
		}
		t.Station = &model.StationData{VinylStore: vinyl}
	case model.KindShip:
		var s *model.ShipData
		if s, off, err = unpackShipExtra(buf, off); err != nil {
			return nil, 0, err
		}
		t.Ship = s
	default:
		return nil, 0, fmt.Errorf("serialize: unknown thing kind %d", kind)
	}
	return t, off, nil
}

func unpackShipExtra(buf []byte, off int) (*model.ShipData, int, error) {
	s := &model.ShipData{}
	var err error
	var shipNum uint32

	if off, err = wire.UnpackU32(buf, off, &shipNum); err != nil {
		return nil, 0, err
	}
	s.ShipNumber = int(shipNum)

	if off, err = wire.UnpackBool(buf, off, &s.Docked); err != nil {
		return nil, 0, err
	}
	var dockDist float64
	if off, err = wire.UnpackDouble(buf, off, &dockDist); err != nil { // constant, not otherwise used
		return nil, 0, err
	}
	if off, err = wire.UnpackDouble(buf, off, &s.LaserReach); err != nil {
		return nil, 0, err
	}

	if off, err = wire.UnpackDouble(buf, off, &s.ShieldOrder); err != nil {
		return nil, 0, err
	}
	if off, err = wire.UnpackDouble(buf, off, &s.LaserOrder); err != nil {
		return nil, 0, err
	}
	if off, err = wire.UnpackDouble(buf, off, &s.ThrustOrder); err != nil {
		return nil, 0, err
	}
	if off, err = wire.UnpackDouble(buf, off, &s.TurnOrder); err != nil {
		return nil, 0, err
	}
	if off, err = wire.UnpackDouble(buf, off, &s.JettisonOrder); err != nil {
		return nil, 0, err
	}

	if off, err = wire.UnpackDouble(buf, off, &s.Cargo.Current); err != nil {
		return nil, 0, err
	}
	if off, err = wire.UnpackDouble(buf, off, &s.Cargo.Capacity); err != nil {
		return nil, 0, err
	}
	if off, err = wire.UnpackDouble(buf, off, &s.Fuel.Current); err != nil {
		return nil, 0, err
	}
	if off, err = wire.UnpackDouble(buf, off, &s.Fuel.Capacity); err != nil {
		return nil, 0, err
	}
	if off, err = wire.UnpackDouble(buf, off, &s.Shield.Current); err != nil {
		return nil, 0, err
	}
	if off, err = wire.UnpackDouble(buf, off, &s.Shield.Capacity); err != nil {
		return nil, 0, err
	}

	return s, off, nil
}
