package serialize

import (
	"mechmania/internal/model"
	"mechmania/internal/wire"
)

// OrdersPerShip is the number of order doubles packed per ship slot, one
// per orders.Kind (Shield, Laser, Thrust, Turn, Jettison), in that fixed
// enum order (spec §4.I).
const OrdersPerShip = 5

// TeamRecordSize is the fixed size of a team's per-turn record: message
// text, then OrdersPerShip doubles for each of the 4 ship slots
// (missing slots still consume their space, spec §4.I).
const TeamRecordSize = wire.MaxTeamText + model.MaxShipsPerTeam*OrdersPerShip*wire.SizeDouble

// PackTeamRecord writes team's message and every ship slot's current
// orders, in ship-number order. Used both for the client -> server order
// packet and embedded per-team-slot in the world broadcast.
func PackTeamRecord(team *model.Team, buf []byte) int {
	off := 0
	off = wire.PackBytes(buf, off, wire.MaxTeamText, team.Message)
	for i := 0; i < model.MaxShipsPerTeam; i++ {
		ship := team.Ships[i]
		var s model.ShipData
		if ship != nil {
			s = *ship.Ship
		}
		off = wire.PackDouble(buf, off, s.ShieldOrder)
		off = wire.PackDouble(buf, off, s.LaserOrder)
		off = wire.PackDouble(buf, off, s.ThrustOrder)
		off = wire.PackDouble(buf, off, s.TurnOrder)
		off = wire.PackDouble(buf, off, s.JettisonOrder)
	}
	return off
}

// TeamOrders is the decoded content of an incoming team order packet:
// a message and, per ship slot, the raw (unclamped) order values in enum
// order. The caller is responsible for running each through
// orders.SetOrder before it takes effect (spec §4.D).
type TeamOrders struct {
	Message string
	Ships   [model.MaxShipsPerTeam][OrdersPerShip]float64
}

// UnpackTeamRecord reads a team order packet.
func UnpackTeamRecord(buf []byte) (TeamOrders, int, error) {
	var out TeamOrders
	off := 0
	var err error

	if off, err = wire.UnpackBytes(buf, off, wire.MaxTeamText, &out.Message); err != nil {
		return out, 0, err
	}
	for i := 0; i < model.MaxShipsPerTeam; i++ {
		for j := 0; j < OrdersPerShip; j++ {
			if off, err = wire.UnpackDouble(buf, off, &out.Ships[i][j]); err != nil {
				return out, 0, err
			}
		}
	}
	return out, off, nil
}

// InitialTeamRecordSize is the fixed size of the post-connect team
// descriptor packet: team number, team name, station name, and per-ship
// (cargo capacity, fuel capacity, ship name).
const InitialTeamRecordSize = wire.SizeU32 + wire.MaxTeamName + wire.MaxNameLen +
	model.MaxShipsPerTeam*(2*wire.SizeDouble+wire.MaxNameLen)

// InitialShipDescriptor is one ship slot's declared capacities and name
// from the initial team packet.
type InitialShipDescriptor struct {
	CargoCapacity float64
	FuelCapacity  float64
	Name          string
}

// InitialTeamDescriptor is the fully decoded initial team packet (spec
// §4.I, "Initial team packets").
type InitialTeamDescriptor struct {
	TeamNumber  int
	TeamName    string
	StationName string
	Ships       [model.MaxShipsPerTeam]InitialShipDescriptor
}

// PackInitialTeamDescriptor writes d into buf.
func PackInitialTeamDescriptor(d InitialTeamDescriptor, buf []byte) int {
	off := 0
	off = wire.PackU32(buf, off, uint32(d.TeamNumber))
	off = wire.PackBytes(buf, off, wire.MaxTeamName, d.TeamName)
	off = wire.PackBytes(buf, off, wire.MaxNameLen, d.StationName)
	for _, sh := range d.Ships {
		off = wire.PackDouble(buf, off, sh.CargoCapacity)
		off = wire.PackDouble(buf, off, sh.FuelCapacity)
		off = wire.PackBytes(buf, off, wire.MaxNameLen, sh.Name)
	}
	return off
}

// UnpackInitialTeamDescriptor reads an InitialTeamDescriptor from buf. The
// server applies it by setting each declared ship's capacities, full fuel,
// initial shield of 15.0, and name (spec §4.I).
func UnpackInitialTeamDescriptor(buf []byte) (InitialTeamDescriptor, int, error) {
	var d InitialTeamDescriptor
	off := 0
	var err error
	var teamNum uint32

	if off, err = wire.UnpackU32(buf, off, &teamNum); err != nil {
		return d, 0, err
	}
	d.TeamNumber = int(teamNum)
	if off, err = wire.UnpackBytes(buf, off, wire.MaxTeamName, &d.TeamName); err != nil {
		return d, 0, err
	}
	if off, err = wire.UnpackBytes(buf, off, wire.MaxNameLen, &d.StationName); err != nil {
		return d, 0, err
	}
	for i := range d.Ships {
		if off, err = wire.UnpackDouble(buf, off, &d.Ships[i].CargoCapacity); err != nil {
			return d, 0, err
		}
		if off, err = wire.UnpackDouble(buf, off, &d.Ships[i].FuelCapacity); err != nil {
			return d, 0, err
		}
		if off, err = wire.UnpackBytes(buf, off, wire.MaxNameLen, &d.Ships[i].Name); err != nil {
			return d, 0, err
		}
	}
	return d, off, nil
}
