package serialize

import (
	"fmt"

	"mechmania/internal/model"
	"mechmania/internal/registry"
	"mechmania/internal/wire"
)

// WorldHeaderSize is first_index, last_index, game_time, and the
// fixed-width announcer text buffer.
const WorldHeaderSize = 2*wire.SizeU32 + wire.SizeDouble + wire.AnnouncerSize

// WorldSnapshot is the fully decoded broadcast a connected team or
// observer receives once per turn: the header fields, every team's
// wall-clock + order record, and every live Thing (spec §4.I).
type WorldSnapshot struct {
	FirstIndex int
	LastIndex  int
	GameTime   float64
	Announcer  string

	TeamWallClocks []float64
	TeamOrders     []TeamOrders

	Things []*model.Thing
}

// WorldRecordSize computes the exact byte length PackWorld will produce
// for the registry/teams' current state, so callers can size the output
// buffer without a dry-run pack.
func WorldRecordSize(reg *registry.Registry, teams []*model.Team) int {
	size := WorldHeaderSize
	for range teams {
		size += wire.SizeDouble + TeamRecordSize
	}
	for i := reg.FirstIndex(); i != registry.NoSlot; i = reg.Next(i) {
		size += 5*wire.SizeU32 + EntitySize(reg.At(i))
	}
	return size
}

// PackWorld writes a full world snapshot: header, per-team (wall-clock +
// team record, in team-number order), then every live Thing prefixed by
// its 5-tuple header (spec §4.I). Returns bytes written.
func PackWorld(reg *registry.Registry, gameTime float64, announcer string, teams []*model.Team, buf []byte) int {
	off := 0
	off = wire.PackU32(buf, off, uint32(int32(reg.FirstIndex())))
	off = wire.PackU32(buf, off, uint32(int32(lastIndex(reg))))
	off = wire.PackDouble(buf, off, gameTime)
	off = wire.PackBytes(buf, off, wire.AnnouncerSize, announcer)

	for _, team := range teams {
		off = wire.PackDouble(buf, off, team.ThinkTime.Load())
		off += PackTeamRecord(team, buf[off:])
	}

	for i := reg.FirstIndex(); i != registry.NoSlot; i = reg.Next(i) {
		off += packEntityRecord(reg, i, buf[off:])
	}

	return off
}

// UnpackWorld reads a world snapshot packed by PackWorld. numTeams must
// match the number of teams the original packer iterated over.
func UnpackWorld(buf []byte, numTeams int) (WorldSnapshot, int, error) {
	var w WorldSnapshot
	off := 0
	var err error
	var firstIdx, lastIdx uint32

	if off, err = wire.UnpackU32(buf, off, &firstIdx); err != nil {
		return w, 0, err
	}
	if off, err = wire.UnpackU32(buf, off, &lastIdx); err != nil {
		return w, 0, err
	}
	w.FirstIndex = int(int32(firstIdx))
	w.LastIndex = int(int32(lastIdx))

	if off, err = wire.UnpackDouble(buf, off, &w.GameTime); err != nil {
		return w, 0, err
	}
	if off, err = wire.UnpackBytes(buf, off, wire.AnnouncerSize, &w.Announcer); err != nil {
		return w, 0, err
	}

	w.TeamWallClocks = make([]float64, numTeams)
	w.TeamOrders = make([]TeamOrders, numTeams)
	for i := 0; i < numTeams; i++ {
		if off, err = wire.UnpackDouble(buf, off, &w.TeamWallClocks[i]); err != nil {
			return w, 0, err
		}
		var rec TeamOrders
		var n int
		if rec, n, err = UnpackTeamRecord(buf[off:]); err != nil {
			return w, 0, err
		}
		off += n
		w.TeamOrders[i] = rec
	}

	for off < len(buf) {
		header, n, err := unpackEntityHeader(buf[off:])
		if err != nil {
			return w, 0, err
		}
		off += n

		t, m, err := UnpackEntity(header.kind, buf[off:int(off)+int(header.entitySize)])
		if err != nil {
			return w, 0, err
		}
		if m != int(header.entitySize) {
			return w, 0, fmt.Errorf("serialize: entity %d declared size %d, consumed %d", t.ID, header.entitySize, m)
		}
		off += m
		w.Things = append(w.Things, t)
	}

	return w, off, nil
}

// lastIndex walks the registry to find the slot index of the last live
// Thing, or -1 if empty (mirrors Registry.FirstIndex but for the tail).
func lastIndex(reg *registry.Registry) int {
	last := -1
	for i := reg.FirstIndex(); i != registry.NoSlot; i = reg.Next(i) {
		last = i
	}
	return last
}

// packEntityRecord writes one live Thing's 5-tuple header (marker,
// next_index, entity_size, kind, team_discriminant) followed by its own
// packed bytes.
func packEntityRecord(reg *registry.Registry, idx int, buf []byte) int {
	t := reg.At(idx)
	next := reg.Next(idx)
	sz := EntitySize(t)

	discriminant := uint32(0)
	switch t.Kind {
	case model.KindShip:
		discriminant = uint32(t.TeamID&0xFF) | uint32(t.Ship.ShipNumber&0xFF)<<8
	case model.KindAsteroid:
		discriminant = uint32(t.Asteroid.Material)
	default:
		if t.TeamID >= 0 {
			discriminant = uint32(t.TeamID)
		}
	}

	off := 0
	off = wire.PackU32(buf, off, wire.EntityMarker)
	off = wire.PackU32(buf, off, uint32(int32(next)))
	off = wire.PackU32(buf, off, uint32(sz))
	off = wire.PackU32(buf, off, uint32(t.Kind))
	off = wire.PackU32(buf, off, discriminant)
	off += PackEntity(t, buf[off:])
	return off
}

// entityHeader is the decoded 5-tuple preceding each entity's own bytes.
type entityHeader struct {
	marker       uint32
	next         int32
	entitySize   uint32
	kind         model.Kind
	discriminant uint32
}

func unpackEntityHeader(buf []byte) (entityHeader, int, error) {
	var h entityHeader
	off := 0
	var err error
	var marker, next, sz, kind uint32

	if off, err = wire.UnpackU32(buf, off, &marker); err != nil {
		return h, 0, err
	}
	if marker != wire.EntityMarker {
		return h, 0, fmt.Errorf("serialize: entity marker mismatch: got %d, want %d", marker, wire.EntityMarker)
	}
	if off, err = wire.UnpackU32(buf, off, &next); err != nil {
		return h, 0, err
	}
	if off, err = wire.UnpackU32(buf, off, &sz); err != nil {
		return h, 0, err
	}
	if off, err = wire.UnpackU32(buf, off, &kind); err != nil {
		return h, 0, err
	}
	var disc uint32
	if off, err = wire.UnpackU32(buf, off, &disc); err != nil {
		return h, 0, err
	}
	h.marker = marker
	h.next = int32(next)
	h.entitySize = sz
	h.kind = model.Kind(kind)
	h.discriminant = disc
	return h, off, nil
}
