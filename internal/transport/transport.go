// Package transport implements the TCP team/observer protocol (spec §6):
// accepting connections, handshaking team index assignment and the
// observer, and running the per-turn broadcast/ack/receive-orders cycle
// the sim loop drives through the sim.Transport interface. Every
// connection's reader lives in its own goroutine that only ever touches
// its own teamConn, never world state directly — orders only take effect
// once sim.World.ApplyOrders unpacks them, keeping "the world is the sole
// physics mutator" (spec §5) true across the network boundary.
package transport

import (
	"context"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"sync"
	"time"

	channerics "github.com/niceyeti/channerics/channels"
	"golang.org/x/sync/errgroup"

	"mechmania/internal/config"
	"mechmania/internal/gameerr"
	"mechmania/internal/metrics"
	"mechmania/internal/serialize"
	"mechmania/internal/wire"
)

// teamConn tracks one team's connection and the think-time bookkeeping
// spec §4.H/§5 requires: wall-clock accumulates from the moment a
// broadcast is sent until that team's orders arrive.
type teamConn struct {
	id         int
	conn       net.Conn
	sentAt     time.Time
	cumulative time.Duration
	severed    bool
}

// Server implements sim.Transport over raw net.Conn sockets.
type Server struct {
	cfg      config.GameConfig
	listener net.Listener
	logger   *log.Logger

	teams []*teamConn

	observerMu sync.Mutex
	observer   net.Conn

	pauseMu sync.Mutex
	paused  bool
}

// NewServer wraps an already-listening net.Listener. Accepting the
// listener rather than a bind address lets callers choose how the port
// is opened (plain TCP today, something else in a test).
func NewServer(cfg config.GameConfig, listener net.Listener) *Server {
	return &Server{
		cfg:      cfg,
		listener: listener,
		logger:   log.New(os.Stderr, "[transport] ", log.LstdFlags),
	}
}

// ConnectAll implements sim.Transport: it blocks accepting connections
// until numTeams teams have handshaken and sent their initial
// descriptor, routing any observer connection received along the way
// (or afterward, in the background) to the dashboard/control channel.
func (s *Server) ConnectAll(numTeams int) ([]serialize.InitialTeamDescriptor, error) {
	s.teams = make([]*teamConn, numTeams)
	filled := 0

	for filled < numTeams {
		conn, err := s.listener.Accept()
		if err != nil {
			return nil, err
		}

		hs := make([]byte, wire.HandshakeLen)
		if _, err := io.ReadFull(conn, hs); err != nil {
			conn.Close()
			continue
		}

		switch string(hs) {
		case wire.TeamConnect:
			idx := filled
			if _, err := conn.Write([]byte(wire.ConnAck)); err != nil {
				conn.Close()
				continue
			}
			if _, err := conn.Write([]byte{byte(idx)}); err != nil {
				conn.Close()
				continue
			}
			s.teams[idx] = &teamConn{id: idx, conn: conn}
			filled++
		case wire.ObserverConn:
			s.attachObserver(conn)
		default:
			s.logger.Printf("rejecting connection with unrecognized handshake %q", hs)
			conn.Close()
		}
	}

	descs := make([]serialize.InitialTeamDescriptor, numTeams)
	for i, tc := range s.teams {
		buf := make([]byte, serialize.InitialTeamRecordSize)
		if _, err := io.ReadFull(tc.conn, buf); err != nil {
			return nil, gameerr.Format(i, fmt.Errorf("reading initial team descriptor: %w", err))
		}
		d, _, err := serialize.UnpackInitialTeamDescriptor(buf)
		if err != nil {
			return nil, gameerr.Format(i, err)
		}
		descs[i] = d
	}

	go s.acceptObserverLate()
	return descs, nil
}

// acceptObserverLate keeps the listener open after every team slot has
// filled so a dashboard/observer can still connect mid-match.
func (s *Server) acceptObserverLate() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		hs := make([]byte, wire.HandshakeLen)
		if _, err := io.ReadFull(conn, hs); err != nil || string(hs) != wire.ObserverConn {
			conn.Close()
			continue
		}
		s.attachObserver(conn)
		return
	}
}

func (s *Server) attachObserver(conn net.Conn) {
	if _, err := conn.Write([]byte(wire.ConnAck)); err != nil {
		conn.Close()
		return
	}
	if _, err := conn.Write([]byte{wire.ObserverAckByte}); err != nil {
		conn.Close()
		return
	}
	s.observerMu.Lock()
	s.observer = conn
	s.observerMu.Unlock()
}

// Broadcast implements sim.Transport: it pushes snapshot to every
// non-severed team concurrently, starting each team's think-time clock,
// and once those writes finish sends it to the observer (if connected).
func (s *Server) Broadcast(snapshot []byte) error {
	g, _ := errgroup.WithContext(context.Background())
	now := time.Now()

	for _, tc := range s.teams {
		tc := tc
		if tc.severed {
			continue
		}
		tc.sentAt = now
		g.Go(func() error {
			if err := wire.WriteFrame(tc.conn, snapshot); err != nil {
				s.severTeam(tc, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	s.observerMu.Lock()
	obs := s.observer
	s.observerMu.Unlock()
	if obs != nil {
		if err := wire.WriteFrame(obs, snapshot); err != nil {
			s.observerMu.Lock()
			s.observer = nil
			s.observerMu.Unlock()
		}
	}
	return nil
}

// WaitObserverAck implements sim.Transport: it reads one control message
// from the observer. An ack returns immediately; a PAUSE latches the
// paused flag the next WaitWhilePaused call blocks on. No observer
// connected is not an error — the match proceeds without one.
func (s *Server) WaitObserverAck() error {
	s.observerMu.Lock()
	obs := s.observer
	s.observerMu.Unlock()
	if obs == nil {
		return nil
	}

	buf := make([]byte, 8)
	n, err := obs.Read(buf)
	if err != nil {
		s.observerMu.Lock()
		s.observer = nil
		s.observerMu.Unlock()
		return nil
	}

	switch string(buf[:n]) {
	case wire.PauseCmd:
		s.pauseMu.Lock()
		s.paused = true
		s.pauseMu.Unlock()
	case wire.ResumeCmd:
		// Already running; a redundant resume is a no-op.
	case wire.ObserverAck:
	default:
		s.logger.Printf("unrecognized observer message %q", buf[:n])
	}
	return nil
}

// WaitWhilePaused implements sim.Transport: spec §4.H says pause freezes
// the turn loop except for observer servicing, and resume re-syncs team
// timestamps before normal flow continues. If the observer disconnects
// while paused, the match resumes rather than stalling forever.
func (s *Server) WaitWhilePaused() error {
	for {
		s.pauseMu.Lock()
		paused := s.paused
		s.pauseMu.Unlock()
		if !paused {
			return nil
		}

		s.observerMu.Lock()
		obs := s.observer
		s.observerMu.Unlock()
		if obs == nil {
			s.pauseMu.Lock()
			s.paused = false
			s.pauseMu.Unlock()
			return nil
		}

		buf := make([]byte, 8)
		n, err := obs.Read(buf)
		if err != nil {
			s.observerMu.Lock()
			s.observer = nil
			s.observerMu.Unlock()
			continue
		}
		if string(buf[:n]) == wire.ResumeCmd {
			s.resyncTimestamps()
			s.pauseMu.Lock()
			s.paused = false
			s.pauseMu.Unlock()
			return nil
		}
	}
}

func (s *Server) resyncTimestamps() {
	now := time.Now()
	for _, tc := range s.teams {
		tc.sentAt = now
	}
}

// orderResult is one team's outcome from a ReceiveOrders round.
type orderResult struct {
	id     int
	orders serialize.TeamOrders
	err    error
}

// ReceiveOrders implements sim.Transport: it fans in one reader goroutine
// per still-connected team, each bounded by the per-turn timeout, merges
// their results with channerics the same way the teacher fans in its
// episode-generating workers, and accumulates/enforces the cumulative
// think-time budget (spec §4.H).
func (s *Server) ReceiveOrders() (map[int]serialize.TeamOrders, error) {
	done := make(chan struct{})
	defer close(done)

	chans := make([]<-chan orderResult, 0, len(s.teams))
	for _, tc := range s.teams {
		tc := tc
		ch := make(chan orderResult, 1)
		chans = append(chans, ch)
		if tc.severed {
			close(ch)
			continue
		}
		go s.readOrders(tc, ch)
	}

	out := make(map[int]serialize.TeamOrders, len(s.teams))
	for r := range channerics.Merge(done, chans...) {
		if r.err != nil {
			continue
		}
		out[r.id] = r.orders
	}
	return out, nil
}

func (s *Server) readOrders(tc *teamConn, ch chan<- orderResult) {
	defer close(ch)

	_ = tc.conn.SetReadDeadline(time.Now().Add(s.cfg.PerTurnTimeout))
	buf := make([]byte, serialize.TeamRecordSize)
	_, err := io.ReadFull(tc.conn, buf)
	elapsed := time.Since(tc.sentAt)
	tc.cumulative += elapsed
	metrics.ThinkTime.WithLabelValues(fmt.Sprint(tc.id)).Observe(elapsed.Seconds())

	if tc.cumulative > s.cfg.CumulativeBudget {
		s.severTeam(tc, gameerr.Timeout(tc.id, fmt.Errorf("cumulative think-time %s exceeds budget %s", tc.cumulative, s.cfg.CumulativeBudget)))
		ch <- orderResult{id: tc.id, err: gameerr.Timeout(tc.id, err)}
		return
	}
	if err != nil {
		// Single-turn timeout or read error: this turn's orders are
		// dropped, but the connection stays open (spec §4.H).
		ch <- orderResult{id: tc.id, err: gameerr.Timeout(tc.id, err)}
		return
	}

	rec, _, perr := serialize.UnpackTeamRecord(buf)
	if perr != nil {
		ch <- orderResult{id: tc.id, err: gameerr.Format(tc.id, perr)}
		return
	}
	ch <- orderResult{id: tc.id, orders: rec}
}

// ThinkTimes implements sim.Transport: it reports each team's
// cumulative think-time in seconds so the world can fold it into
// Team.ThinkTime before the next broadcast.
func (s *Server) ThinkTimes() []float64 {
	out := make([]float64, len(s.teams))
	for i, tc := range s.teams {
		out[i] = tc.cumulative.Seconds()
	}
	return out
}

func (s *Server) severTeam(tc *teamConn, cause error) {
	if tc.severed {
		return
	}
	tc.severed = true
	s.logger.Printf("severing team %d: %v", tc.id, cause)
	tc.conn.Close()
}
