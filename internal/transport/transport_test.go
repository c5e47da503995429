package transport

import (
	"io"
	"log"
	"net"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"mechmania/internal/config"
	"mechmania/internal/serialize"
	"mechmania/internal/wire"
)

func newTestLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

// fakeClient drives one side of a net.Pipe as a scripted team or observer
// client, standing in for a real TCP socket in every test below.
type fakeClient struct {
	conn net.Conn
}

func (c *fakeClient) handshakeAsTeam() byte {
	c.conn.Write([]byte(wire.TeamConnect))
	ack := make([]byte, len(wire.ConnAck)+1)
	io.ReadFull(c.conn, ack)
	return ack[len(ack)-1]
}

func (c *fakeClient) handshakeAsObserver() {
	c.conn.Write([]byte(wire.ObserverConn))
	ack := make([]byte, len(wire.ConnAck)+1)
	io.ReadFull(c.conn, ack)
}

func (c *fakeClient) sendInitialDescriptor(d serialize.InitialTeamDescriptor) {
	buf := make([]byte, serialize.InitialTeamRecordSize)
	serialize.PackInitialTeamDescriptor(d, buf)
	c.conn.Write(buf)
}

func testListener(t *testing.T) (net.Listener, func()) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	return lis, func() { lis.Close() }
}

func dial(t *testing.T, addr string) *fakeClient {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return &fakeClient{conn: conn}
}

func TestConnectAllAssignsSequentialTeamIndices(t *testing.T) {
	Convey("Given a server expecting two teams", t, func() {
		lis, closeLis := testListener(t)
		defer closeLis()
		cfg := config.Default()
		s := NewServer(cfg, lis)

		descDone := make(chan []serialize.InitialTeamDescriptor, 1)
		errDone := make(chan error, 1)
		go func() {
			descs, err := s.ConnectAll(2)
			descDone <- descs
			errDone <- err
		}()

		c0 := dial(t, lis.Addr().String())
		idx0 := c0.handshakeAsTeam()
		c1 := dial(t, lis.Addr().String())
		idx1 := c1.handshakeAsTeam()

		Convey("each client receives a distinct sequential index", func() {
			So([]byte{idx0, idx1}, ShouldNotResemble, []byte{idx0, idx0})
		})

		d0 := serialize.InitialTeamDescriptor{TeamNumber: 0, TeamName: "Alpha", StationName: "Base"}
		d1 := serialize.InitialTeamDescriptor{TeamNumber: 1, TeamName: "Beta", StationName: "Fort"}
		// Descriptors must arrive in index order since ConnectAll reads
		// each team's slot sequentially by assigned index.
		if idx0 == 0 {
			c0.sendInitialDescriptor(d0)
			c1.sendInitialDescriptor(d1)
		} else {
			c1.sendInitialDescriptor(d0)
			c0.sendInitialDescriptor(d1)
		}

		Convey("ConnectAll returns both descriptors with no error", func() {
			So(<-errDone, ShouldBeNil)
			descs := <-descDone
			So(len(descs), ShouldEqual, 2)
			names := map[string]bool{descs[0].TeamName: true, descs[1].TeamName: true}
			So(names["Alpha"], ShouldBeTrue)
			So(names["Beta"], ShouldBeTrue)
		})
	})
}

func TestObserverHandshakeReceivesAckByte(t *testing.T) {
	Convey("Given a server with one team already connected", t, func() {
		lis, closeLis := testListener(t)
		defer closeLis()
		cfg := config.Default()
		s := NewServer(cfg, lis)

		done := make(chan struct{})
		go func() {
			s.ConnectAll(1)
			close(done)
		}()

		team := dial(t, lis.Addr().String())
		team.handshakeAsTeam()
		team.sendInitialDescriptor(serialize.InitialTeamDescriptor{TeamNumber: 0, TeamName: "Alpha"})
		<-done

		obs := dial(t, lis.Addr().String())
		obs.conn.Write([]byte(wire.ObserverConn))
		ack := make([]byte, len(wire.ConnAck)+1)
		io.ReadFull(obs.conn, ack)

		Convey("the observer receives ConnAck followed by the ack byte", func() {
			So(string(ack[:len(wire.ConnAck)]), ShouldEqual, wire.ConnAck)
			So(ack[len(ack)-1], ShouldEqual, byte(wire.ObserverAckByte))
		})

		// Give the background acceptObserverLate goroutine a moment to
		// register the connection before the server is asserted on.
		time.Sleep(10 * time.Millisecond)
		s.observerMu.Lock()
		attached := s.observer != nil
		s.observerMu.Unlock()
		Convey("the server records the observer connection", func() {
			So(attached, ShouldBeTrue)
		})
	})
}

func TestReceiveOrdersDropsATimedOutTurnWithoutSeveringTheTeam(t *testing.T) {
	Convey("Given a team connection that never sends orders within the per-turn budget", t, func() {
		cfg := config.Default()
		cfg.PerTurnTimeout = 20 * time.Millisecond
		cfg.CumulativeBudget = time.Hour

		server, client := net.Pipe()
		s := &Server{cfg: cfg, teams: []*teamConn{{id: 0, conn: server, sentAt: time.Now()}}}
		s.logger = newTestLogger()
		defer client.Close()

		Convey("ReceiveOrders returns with that team's orders absent, and the team is not severed", func() {
			out, err := s.ReceiveOrders()
			So(err, ShouldBeNil)
			_, present := out[0]
			So(present, ShouldBeFalse)
			So(s.teams[0].severed, ShouldBeFalse)
		})
	})
}

func TestReceiveOrdersSeversATeamThatExceedsCumulativeBudget(t *testing.T) {
	Convey("Given a team whose accumulated think-time already exceeds the cumulative budget", t, func() {
		cfg := config.Default()
		cfg.PerTurnTimeout = 20 * time.Millisecond
		cfg.CumulativeBudget = time.Millisecond

		server, client := net.Pipe()
		tc := &teamConn{id: 0, conn: server, sentAt: time.Now().Add(-time.Second)}
		s := &Server{cfg: cfg, teams: []*teamConn{tc}}
		s.logger = newTestLogger()
		defer client.Close()

		Convey("ReceiveOrders severs the connection", func() {
			_, err := s.ReceiveOrders()
			So(err, ShouldBeNil)
			So(tc.severed, ShouldBeTrue)
		})
	})
}

func TestThinkTimesReportsAccumulatedSecondsPerTeam(t *testing.T) {
	Convey("Given two teams with different accumulated think-time", t, func() {
		cfg := config.Default()
		tc0 := &teamConn{id: 0, cumulative: 250 * time.Millisecond}
		tc1 := &teamConn{id: 1, cumulative: 1500 * time.Millisecond}
		s := &Server{cfg: cfg, teams: []*teamConn{tc0, tc1}}

		Convey("ThinkTimes reports each team's seconds in index order", func() {
			times := s.ThinkTimes()
			So(times[0], ShouldAlmostEqual, 0.25, 1e-9)
			So(times[1], ShouldAlmostEqual, 1.5, 1e-9)
		})
	})
}

func TestBroadcastDeliversAFrameToAConnectedTeam(t *testing.T) {
	Convey("Given one connected team", t, func() {
		cfg := config.Default()
		server, client := net.Pipe()
		tc := &teamConn{id: 0, conn: server}
		s := &Server{cfg: cfg, teams: []*teamConn{tc}}
		s.logger = newTestLogger()
		defer client.Close()

		payload := []byte{1, 2, 3, 4}
		recvDone := make(chan []byte, 1)
		go func() {
			frame, _ := wire.ReadFrame(client)
			recvDone <- frame
		}()

		Convey("Broadcast succeeds and the client reads back the same payload", func() {
			err := s.Broadcast(payload)
			So(err, ShouldBeNil)
			So(<-recvDone, ShouldResemble, payload)
		})
	})
}
