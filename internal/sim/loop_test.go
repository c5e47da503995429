package sim

import (
	"testing"

	"mechmania/internal/config"
	"mechmania/internal/serialize"

	. "github.com/smartystreets/goconvey/convey"
)

// fakeTransport drives RunMatch without any sockets: ConnectAll returns a
// fixed set of descriptors, every broadcast is recorded, and orders are
// popped off a pre-scripted per-turn queue (defaulting to all-zero once
// the queue is exhausted).
type fakeTransport struct {
	descs        []serialize.InitialTeamDescriptor
	broadcasts   [][]byte
	observerAcks int
	scriptedOrders []map[int]serialize.TeamOrders
	turn         int
}

func (f *fakeTransport) ConnectAll(numTeams int) ([]serialize.InitialTeamDescriptor, error) {
	return f.descs, nil
}

func (f *fakeTransport) Broadcast(snapshot []byte) error {
	f.broadcasts = append(f.broadcasts, snapshot)
	return nil
}

func (f *fakeTransport) WaitObserverAck() error {
	f.observerAcks++
	return nil
}

func (f *fakeTransport) ReceiveOrders() (map[int]serialize.TeamOrders, error) {
	defer func() { f.turn++ }()
	if f.turn < len(f.scriptedOrders) {
		return f.scriptedOrders[f.turn], nil
	}
	return map[int]serialize.TeamOrders{}, nil
}

func (f *fakeTransport) WaitWhilePaused() error {
	return nil
}

func (f *fakeTransport) ThinkTimes() []float64 {
	return make([]float64, len(f.descs))
}

func TestRunMatchDrivesAFullGameWithNoOrders(t *testing.T) {
	Convey("Given a world with two teams and a fake transport that never supplies orders", t, func() {
		cfg := config.Default()
		cfg.NumTeams = 2
		cfg.InitialSpawn = nil
		w := NewWorld(cfg)

		tr := &fakeTransport{
			descs: []serialize.InitialTeamDescriptor{
				testDescriptor(0, "A"),
				testDescriptor(1, "B"),
			},
		}

		Convey("RunMatch completes, broadcasting one snapshot per turn plus a final frozen one", func() {
			err := RunMatch(w, tr)
			So(err, ShouldBeNil)
			So(w.GameOver, ShouldBeTrue)
			So(w.GameTime, ShouldAlmostEqual, 300.0, 1e-9)
			So(len(tr.broadcasts), ShouldEqual, cfg.MaxTurns+1)
			So(tr.observerAcks, ShouldEqual, cfg.MaxTurns)
		})
	})
}
