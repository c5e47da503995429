// Package registry implements the Thing entity store: a fixed-size arena
// of MAX_THINGS slots threaded into a doubly linked traversal order, with
// a deferred add-queue and kill-then-sweep removal (spec §3 "Registry",
// §4.C).
package registry

import (
	"mechmania/internal/metrics"
	"mechmania/internal/model"
)

// NoSlot marks an absent linked-list neighbor or an unused slot.
const NoSlot = -1

// TeamDetacher is implemented by the world orchestrator so the registry
// can null a team's ship slot when that ship is finally removed, keeping
// team bookkeeping in sync (spec §4.C).
type TeamDetacher interface {
	DetachShip(teamID, shipNumber int)
}

// Registry is the fixed-size, linked-traversal entity arena.
type Registry struct {
	maxThings int
	slots     []*model.Thing
	next      []int
	prev      []int
	first     int
	last      int

	nextIndex int
	pending   []*model.Thing
	detacher  TeamDetacher
}

// New allocates an empty registry sized for maxThings slots.
func New(maxThings int, detacher TeamDetacher) *Registry {
	r := &Registry{
		maxThings: maxThings,
		slots:     make([]*model.Thing, maxThings),
		next:      make([]int, maxThings),
		prev:      make([]int, maxThings),
		first:     NoSlot,
		last:      NoSlot,
		detacher:  detacher,
	}
	for i := 0; i < maxThings; i++ {
		r.next[i] = NoSlot
		r.prev[i] = NoSlot
	}
	return r
}

// Add enqueues thing for insertion; it is invisible to traversal until
// the next ResolvePending call (spec §4.C).
func (r *Registry) Add(thing *model.Thing) {
	r.pending = append(r.pending, thing)
}

// Kill marks thing dead; it is removed from traversal at the next
// ResolvePending call. Dead is monotonic: once true, Kill is a no-op.
func (r *Registry) Kill(thing *model.Thing) {
	thing.Dead = true
}

// FirstIndex returns the slot index of the first live Thing in traversal
// order, or NoSlot if the registry is empty.
func (r *Registry) FirstIndex() int {
	return r.first
}

// Next returns the slot index following i in traversal order, or NoSlot
// at the end.
func (r *Registry) Next(i int) int {
	return r.next[i]
}

// At returns the Thing occupying slot i.
func (r *Registry) At(i int) *model.Thing {
	return r.slots[i]
}

// Len reports how many live Things are currently in traversal.
func (r *Registry) Len() int {
	n := 0
	for i := r.first; i != NoSlot; i = r.next[i] {
		n++
	}
	return n
}

// Walk visits every live Thing in ascending slot order. Stops early if fn
// returns false.
func (r *Registry) Walk(fn func(*model.Thing) bool) {
	for i := r.first; i != NoSlot; i = r.next[i] {
		if !fn(r.slots[i]) {
			return
		}
	}
}

// Slice materializes the current traversal order as a slice. Convenience
// for callers (collision resolver, serializer) that want random access
// rather than a visitor closure.
func (r *Registry) Slice() []*model.Thing {
	out := make([]*model.Thing, 0, r.Len())
	r.Walk(func(t *model.Thing) bool {
		out = append(out, t)
		return true
	})
	return out
}

// ResolvePending appends queued adds onto the end of the slot arena
// (growing the traversal order) and then sweeps dead Things. Adds and
// deaths made during substep k become visible starting substep k+1,
// never mid-substep (spec §5): callers must only invoke ResolvePending
// between substeps.
func (r *Registry) ResolvePending() {
	r.insertPending()
	r.sweepDead()
}

// insertPending hands out slot indices by a single monotonically
// increasing counter, never reusing a hole left by a mid-arena kill
// (spec.md:111-114, :374-377: traversal must visit live Things in
// strictly ascending slot-index order, matching list/insertion order).
// A freed slot only becomes available again once sweepDead has
// reclaimed it back off the tail of the arena; see reclaimTrailingHoles.
func (r *Registry) insertPending() {
	for _, t := range r.pending {
		if r.nextIndex >= r.maxThings {
			// Resource error (spec §7): add queue full. Drop excess
			// spawns this turn rather than growing past MAX_THINGS,
			// but count it so operators can see the arena filling up.
			metrics.DroppedSpawns.Inc()
			continue
		}
		idx := r.nextIndex
		r.nextIndex++

		t.WorldIndex = idx
		r.slots[idx] = t
		r.next[idx] = NoSlot
		r.prev[idx] = r.last

		if r.last == NoSlot {
			r.first = idx
		} else {
			r.next[r.last] = idx
		}
		r.last = idx
	}
	r.pending = r.pending[:0]
}

func (r *Registry) sweepDead() {
	i := r.first
	for i != NoSlot {
		nextIdx := r.next[i]
		t := r.slots[i]
		if t.Dead {
			r.unlink(i)
			if t.Kind == model.KindShip && r.detacher != nil {
				r.detacher.DetachShip(t.TeamID, t.Ship.ShipNumber)
			}
			r.slots[i] = nil
		}
		i = nextIdx
	}
	r.reclaimTrailingHoles()
}

// reclaimTrailingHoles shrinks nextIndex back over any run of holes now
// sitting at the tail of the arena, the only case in which a freed slot
// index is ever handed out again — mirroring the original's index
// scheme, where a mid-arena removal leaves a permanent hole but a tail
// removal lets the counter retreat.
func (r *Registry) reclaimTrailingHoles() {
	for r.nextIndex > 0 && r.slots[r.nextIndex-1] == nil {
		r.nextIndex--
	}
}

func (r *Registry) unlink(i int) {
	p, n := r.prev[i], r.next[i]
	if p != NoSlot {
		r.next[p] = n
	} else {
		r.first = n
	}
	if n != NoSlot {
		r.prev[n] = p
	} else {
		r.last = p
	}
	r.prev[i] = NoSlot
	r.next[i] = NoSlot
}

// AttachTeamThing queues thing with Add and then inserts every queued
// Thing at once, so it is visible to traversal immediately. It does not
// touch any team's ship list. Used during initial team setup (stations,
// ships) and for the initial asteroid field.
func (r *Registry) AttachTeamThing(thing *model.Thing) {
	r.Add(thing)
	r.insertPending()
}
