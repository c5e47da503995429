// Package devview serves a read-only developer dashboard (spec §6.4):
// an HTML page that opens a websocket and renders live world snapshots,
// plus the /metrics and /healthz operational endpoints. None of this
// participates in the team/observer wire protocol or affects simulation
// outcomes — it is a human-facing projection only, grounded on the
// teacher's own server package (html/template index page,
// gorilla/websocket push loop with ping/pong keepalive) but routed
// through gorilla/mux instead of the teacher's bare net/http mux, and
// reading from a snapshot feed instead of a training-state channel.
package devview

import (
	"html/template"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

const (
	writeWait        = 1 * time.Second
	maxMessageSize   = 8192
	pongWait         = 60 * time.Second
	pingPeriod       = (pongWait * 9) / 10
	closeGracePeriod = 10 * time.Second
)

// Snapshot is the JSON projection of one turn's world state pushed to
// dashboard clients; a much lighter view than the wire codec's packed
// binary frame, since browsers read JSON, not the team protocol.
type Snapshot struct {
	GameTime  float64      `json:"gameTime"`
	Announcer string       `json:"announcer"`
	Things    []ThingView  `json:"things"`
	Teams     []TeamView   `json:"teams"`
}

// ThingView is one entity's dashboard-relevant fields.
type ThingView struct {
	ID         uint32  `json:"id"`
	Kind       string  `json:"kind"`
	Name       string  `json:"name"`
	TeamID     int     `json:"teamId"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Orient     float64 `json:"orient"`
	Size       float64 `json:"size"`
	LaserReach float64 `json:"laserReach,omitempty"`
}

// TeamView is one team's dashboard-relevant fields.
type TeamView struct {
	Number    int     `json:"number"`
	Name      string  `json:"name"`
	Connected bool    `json:"connected"`
	Severed   bool    `json:"severed"`
	ThinkTime float64 `json:"thinkTime"`
}

// Server hosts the dashboard HTTP endpoints. Publish is called once per
// published turn by whatever owns the sim loop; the latest value is held
// for new websocket clients and for the index page's first paint.
type Server struct {
	addr     string
	logger   *log.Logger
	tmpl     *template.Template

	mu      sync.Mutex
	latest  Snapshot
	clients map[*websocket.Conn]chan Snapshot
}

// NewServer builds a dashboard server bound to addr (not yet listening;
// call Serve to start).
func NewServer(addr string) *Server {
	return &Server{
		addr:    addr,
		logger:  log.New(os.Stderr, "[devview] ", log.LstdFlags),
		tmpl:    template.Must(template.New("index").Parse(indexHTML)),
		clients: make(map[*websocket.Conn]chan Snapshot),
	}
}

// Publish records snapshot as the latest world state and fans it out to
// every connected dashboard client. Dropping to a client whose feed
// channel is full is intentional — the dashboard is best-effort, and a
// slow browser should never stall the match.
func (s *Server) Publish(snap Snapshot) {
	s.mu.Lock()
	s.latest = snap
	feeds := make([]chan Snapshot, 0, len(s.clients))
	for _, ch := range s.clients {
		feeds = append(feeds, ch)
	}
	s.mu.Unlock()

	for _, ch := range feeds {
		select {
		case ch <- snap:
		default:
		}
	}
}

// Router builds the gorilla/mux router for the dashboard endpoints (spec
// §6.4), separate from Serve so tests can exercise it with
// httptest.NewServer without binding a real port.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", s.serveIndex).Methods(http.MethodGet)
	r.HandleFunc("/ws", s.serveWebsocket).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.serveHealthz).Methods(http.MethodGet)
	return r
}

// Serve blocks running the dashboard's HTTP server on addr.
func (s *Server) Serve() error {
	return http.ListenAndServe(s.addr, s.Router())
}

func (s *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	s.mu.Lock()
	latest := s.latest
	s.mu.Unlock()
	if err := s.tmpl.Execute(w, latest); err != nil {
		s.logger.Println("render index:", err)
	}
}

func (s *Server) serveHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}

// serveWebsocket upgrades the connection and pushes every Publish call's
// snapshot as JSON, with the teacher's ping/pong keepalive pattern to
// detect a dead browser tab.
func (s *Server) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Println("upgrade:", err)
		return
	}
	defer s.closeWebsocket(ws)

	feed := make(chan Snapshot, 4)
	s.mu.Lock()
	s.clients[ws] = feed
	latest := s.latest
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.clients, ws)
		s.mu.Unlock()
	}()

	feed <- latest

	ws.SetReadLimit(maxMessageSize)
	ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})
	go s.drainPings(ws)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case snap, ok := <-feed:
			if !ok {
				return
			}
			if err := ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := ws.WriteJSON(snap); err != nil {
				return
			}
		case <-ticker.C:
			if err := ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// drainPings discards any message the browser sends; the dashboard is a
// one-way feed, but a read loop is required to process pong control
// frames and detect a closed connection.
func (s *Server) drainPings(ws *websocket.Conn) {
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) closeWebsocket(ws *websocket.Conn) {
	_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
	_ = ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	time.Sleep(closeGracePeriod)
	ws.Close()
}

const indexHTML = `<!DOCTYPE html>
<html>
<head><title>mechmania dashboard</title></head>
<body>
<h1>mechmania dashboard</h1>
<p>game time: <span id="gameTime">{{.GameTime}}</span></p>
<pre id="things"></pre>
<script>
const ws = new WebSocket("ws://" + location.host + "/ws");
ws.onmessage = (ev) => {
  const snap = JSON.parse(ev.data);
  document.getElementById("gameTime").textContent = snap.gameTime.toFixed(1);
  document.getElementById("things").textContent = JSON.stringify(snap.things, null, 2);
};
</script>
</body>
</html>
`
