package sim

import "mechmania/internal/serialize"

// Transport is everything the turn loop needs from the network layer
// (spec §4.H, §6): connecting clients, pushing a snapshot, waiting on the
// observer, and collecting the next round of orders. World never imports
// internal/transport; transport.Server implements this interface instead,
// so RunMatch can be driven end-to-end in tests against a fake with no
// real sockets (spec §8).
type Transport interface {
	// ConnectAll blocks until every team slot has connected and sent its
	// initial descriptor, returning them in team-number order.
	ConnectAll(numTeams int) ([]serialize.InitialTeamDescriptor, error)

	// Broadcast sends one turn's packed world snapshot to every
	// connected team and the observer, starting each team's think-time
	// clock (spec §4.H).
	Broadcast(snapshot []byte) error

	// WaitObserverAck blocks until the observer acknowledges the last
	// broadcast, or returns immediately if no observer is connected.
	WaitObserverAck() error

	// ReceiveOrders blocks until every still-connected team has replied,
	// its per-turn timeout has elapsed, or its connection has been
	// severed for exceeding the cumulative budget; it stops each team's
	// think-time clock on arrival. The returned map is keyed by team
	// number and only contains teams that replied in time.
	ReceiveOrders() (map[int]serialize.TeamOrders, error)

	// WaitWhilePaused blocks while an observer PAUSE is in effect,
	// servicing the observer connection only, and returns once resumed
	// (or immediately if not paused). Resume re-syncs team timestamps on
	// the transport side before this returns (spec §4.H).
	WaitWhilePaused() error

	// ThinkTimes reports each team's current cumulative think-time in
	// seconds, indexed by team number, for the world to fold into
	// Team.ThinkTime ahead of the next broadcast (spec §3's "wall-clock
	// accumulator", packed per team slot in every world snapshot).
	ThinkTimes() []float64
}
