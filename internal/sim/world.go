// Package sim implements the World orchestrator (spec §4.H): the single
// struct that owns the registry and every team, drives physics substeps,
// collision resolution, and the laser pass, and exposes the turn-level
// API the driving loop needs. World never imports internal/transport —
// everything it needs from the network layer is expressed as the
// Transport interface in transport.go, so the full turn loop can be
// exercised in tests with no real sockets (spec §8).
package sim

import (
	"fmt"
	"math/rand"
	"time"

	"mechmania/internal/collision"
	"mechmania/internal/config"
	"mechmania/internal/laser"
	"mechmania/internal/metrics"
	"mechmania/internal/model"
	"mechmania/internal/orders"
	"mechmania/internal/physics"
	"mechmania/internal/registry"
	"mechmania/internal/serialize"
	"mechmania/internal/vecmath"
)

// quadrantCenters are the four half-quadrant station spawn points (spec
// §6.2); a match with fewer than 4 teams simply uses the first N.
var quadrantCenters = [4]vecmath.Coord{
	{X: -256, Y: -256},
	{X: 256, Y: 256},
	{X: -256, Y: 256},
	{X: 256, Y: -256},
}

// World holds everything the simulation core mutates: the entity
// registry, every team, and the stateless kernels (physics, collision)
// threaded with the immutable config.
type World struct {
	Cfg config.GameConfig

	Reg   *registry.Registry
	Teams []*model.Team

	Physics   *physics.Kernel
	Collision *collision.Resolver
	IDGen     *model.IDGen

	GameTime  float64
	GameOver  bool
	Announcer string

	turnNumber int
	rng        *rand.Rand
}

// NewWorld allocates an empty World with cfg.NumTeams team slots and no
// entities; call SetupTeam for each team and SpawnInitialAsteroids before
// starting the turn loop.
func NewWorld(cfg config.GameConfig) *World {
	idgen := model.NewIDGen()
	w := &World{
		Cfg:       cfg,
		IDGen:     idgen,
		Physics:   physics.NewKernel(cfg, idgen),
		Collision: collision.NewResolver(cfg, idgen),
		Teams:     make([]*model.Team, cfg.NumTeams),
		rng:       rand.New(rand.NewSource(1)),
	}
	w.Reg = registry.New(cfg.MaxThings, w)
	for i := range w.Teams {
		w.Teams[i] = model.NewTeam(i, "")
	}
	return w
}

// DetachShip implements registry.TeamDetacher: when a ship's slot is
// finally swept, its team's bookkeeping is nulled so a future LiveShips
// scan (and the next team record pack) no longer sees it.
func (w *World) DetachShip(teamID, shipNumber int) {
	if teamID < 0 || teamID >= len(w.Teams) {
		return
	}
	if shipNumber < 0 || shipNumber >= model.MaxShipsPerTeam {
		return
	}
	w.Teams[teamID].Ships[shipNumber] = nil
}

// SetupTeam applies an initial team descriptor (spec §4.I, "Initial team
// packets"): spawns the team's station at its quadrant center and a
// docked ship per declared slot, fuel full and shield at the spec's
// initial value.
func (w *World) SetupTeam(teamID int, desc serialize.InitialTeamDescriptor) {
	team := w.Teams[teamID]
	team.Name = desc.TeamName
	team.Connected = true

	center := quadrantCenters[teamID%len(quadrantCenters)]
	station := &model.Thing{
		Core: model.Core{
			ID:           w.IDGen.Next(),
			Kind:         model.KindStation,
			Name:         desc.StationName,
			Pos:          center,
			Omega:        model.StationOmega,
			Mass:         model.StationMass,
			Size:         model.StationSize,
			TeamID:       teamID,
			CollideAngle: model.NoDamage,
			ShotAngle:    model.NoDamage,
		},
		Station: &model.StationData{},
	}
	w.Reg.AttachTeamThing(station)
	team.Station = station

	for i, shipDesc := range desc.Ships {
		if shipDesc.CargoCapacity == 0 && shipDesc.FuelCapacity == 0 {
			continue
		}
		orient := float64(i) * (vecmath.Pi2 / model.MaxShipsPerTeam)
		ship := &model.Thing{
			Core: model.Core{
				ID:           w.IDGen.Next(),
				Kind:         model.KindShip,
				Name:         shipDesc.Name,
				Pos:          center,
				Orient:       orient,
				Mass:         model.ShipBaseMass,
				Size:         model.ShipSize,
				TeamID:       teamID,
				CollideAngle: model.NoDamage,
				ShotAngle:    model.NoDamage,
			},
			Ship: &model.ShipData{
				ShipNumber: i,
				Docked:     true,
				Shield:     model.Stat{Current: model.InitialShield, Capacity: model.ShieldCapacity},
			},
		}
		ship.Ship.SetCapacity(shipDesc.CargoCapacity, shipDesc.FuelCapacity)
		ship.Ship.Fuel.Current = ship.Ship.Fuel.Capacity
		w.Reg.AttachTeamThing(ship)
		team.Ships[i] = ship
	}
}

// SpawnInitialAsteroids seeds the world per cfg.InitialSpawn (spec §6.2
// defaults: 5 Vinyl + 5 Uranium at mass 40), scattered at random
// positions and headings. Placement is cosmetic, not a simulation rule,
// so the stdlib's math/rand is used directly rather than reaching for a
// third-party generator — no example repo's domain stack covers "seed a
// starfield," and nothing would be gained by a heavier dependency here.
func (w *World) SpawnInitialAsteroids() {
	for _, group := range w.Cfg.InitialSpawn {
		material := model.MaterialGeneric
		switch group.Material {
		case "Vinyl":
			material = model.MaterialVinyl
		case "Uranium":
			material = model.MaterialUranium
		}
		for i := 0; i < group.Count; i++ {
			pos := vecmath.Coord{
				X: w.rng.Float64()*1024 - 512,
				Y: w.rng.Float64()*1024 - 512,
			}
			heading := w.rng.Float64() * vecmath.Pi2
			speed := w.rng.Float64() * (w.Cfg.MaxSpeed / 4)
			ast := &model.Thing{
				Core: model.Core{
					ID:           w.IDGen.Next(),
					Kind:         model.KindAsteroid,
					Pos:          pos,
					Vel:          vecmath.NewTraj(speed, heading),
					Orient:       heading,
					Omega:        model.AsteroidOmega,
					Mass:         group.Mass,
					Size:         model.AsteroidSize(group.Mass),
					TeamID:       -1,
					CollideAngle: model.NoDamage,
					ShotAngle:    model.NoDamage,
				},
				Asteroid: &model.AsteroidData{Material: material},
			}
			w.Reg.AttachTeamThing(ast)
		}
	}
}

// RunSubstep advances the world by one physics tick, resolves any
// collisions it produced, settles the deferred add/death queue, and
// advances game_time — spec §4.E steps 1-7 in order. Once the game is
// over, game_time stays where the match ended.
func (w *World) RunSubstep() {
	w.Physics.Substep(w.Reg, w.GameOver)
	w.Collision.Resolve(w.Reg)
	metrics.Collisions.Add(float64(w.Collision.DrainCount()))
	w.Reg.ResolvePending()
	if !w.GameOver {
		w.GameTime += w.Cfg.PhysicsDt
	}
}

// RunTurn runs the five physics substeps followed by the single
// end-of-turn laser pass (spec §4.H).
func (w *World) RunTurn() {
	start := time.Now()
	for i := 0; i < 5; i++ {
		w.RunSubstep()
	}
	laser.Resolve(w.Reg, w.Collision)
	w.Reg.ResolvePending()
	w.turnNumber++
	w.Announcer = fmt.Sprintf("turn %d", w.turnNumber)

	metrics.TurnDuration.Observe(time.Since(start).Seconds())
	metrics.GameTime.Set(w.GameTime)
}

// SetGameOver freezes every ship's motion and order processing from the
// next substep onward; collisions (e.g. a still-drifting asteroid
// reaching a station) continue to resolve (spec §4.H).
func (w *World) SetGameOver() {
	w.GameOver = true
}

// MatchOver reports whether game_time has reached the configured match
// length (spec §4.H: `while game_time < 300.0`). The comparison allows
// half a substep of slack, since summing PhysicsDt in floating point
// leaves game_time a hair below the exact match length.
func (w *World) MatchOver() bool {
	return w.GameTime >= float64(w.Cfg.MaxTurns)*w.Cfg.TurnDuration-w.Cfg.PhysicsDt/2
}

// ApplyOrders unpacks each team's per-turn order record onto its ships
// (spec §4.I order: Shield, Laser, Thrust, Turn, Jettison) and stores its
// message text. Teams absent from orders (timed out, disconnected) are
// left untouched: Thrust, Shield and Jettison orders are cleared by the
// physics kernel once applied and Laser by the laser pass, while a Turn
// order stays set.
func (w *World) ApplyOrders(byTeam map[int]serialize.TeamOrders) {
	for teamID, rec := range byTeam {
		if teamID < 0 || teamID >= len(w.Teams) {
			continue
		}
		team := w.Teams[teamID]
		team.Message = model.TruncateMessage(rec.Message)

		for i, ship := range team.Ships {
			if ship == nil {
				continue
			}
			vals := rec.Ships[i]
			orders.SetOrder(w.Cfg, ship, orders.Shield, vals[orders.Shield])
			orders.SetOrder(w.Cfg, ship, orders.Laser, vals[orders.Laser])
			orders.SetOrder(w.Cfg, ship, orders.Thrust, vals[orders.Thrust])
			orders.SetOrder(w.Cfg, ship, orders.Turn, vals[orders.Turn])
			orders.SetOrder(w.Cfg, ship, orders.Jettison, vals[orders.Jettison])
		}
	}
}

// SyncThinkTimes folds the transport's per-team cumulative think-time
// into each Team.ThinkTime, so the next Snapshot's per-team wall-clock
// field (spec §3, §4.I) reflects how much of its budget a team has used.
func (w *World) SyncThinkTimes(seconds []float64) {
	for i, s := range seconds {
		if i < len(w.Teams) {
			w.Teams[i].ThinkTime.Store(s)
		}
	}
}

// ClearTeamMessages empties every team's message buffer after it has
// been broadcast for one turn (spec §4.H loop, last step).
func (w *World) ClearTeamMessages() {
	for _, team := range w.Teams {
		team.Message = ""
	}
}

// Snapshot packs the current world state into a ready-to-send broadcast
// buffer (spec §4.I).
func (w *World) Snapshot() []byte {
	buf := make([]byte, serialize.WorldRecordSize(w.Reg, w.Teams))
	n := serialize.PackWorld(w.Reg, w.GameTime, w.Announcer, w.Teams, buf)
	return buf[:n]
}

