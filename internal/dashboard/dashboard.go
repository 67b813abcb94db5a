// Package dashboard serves a live view of evaluation progress. It exposes a
// minimal HTML page, a JSON summary endpoint, and a WebSocket stream that
// pushes one snapshot per evaluated episode so long runs can be watched in
// real time.
package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Snapshot is one dashboard update: a finished episode or a final result
// for the named policy or ensemble.
type Snapshot struct {
	Name    string    `json:"name"`
	Episode int       `json:"episode"`
	Reward  float64   `json:"reward"`
	Mean    float64   `json:"mean"`  // running mean over the current run
	Final   bool      `json:"final"` // true for the run's closing snapshot
	Ts      time.Time `json:"ts"`
}

// Dashboard broadcasts evaluation snapshots to connected WebSocket clients
// and keeps the latest snapshot per name for the summary endpoint.
type Dashboard struct {
	server    *http.Server
	upgrader  websocket.Upgrader
	clients   map[*websocket.Conn]bool
	clientsMu sync.RWMutex

	latest   map[string]Snapshot
	latestMu sync.RWMutex

	broadcast chan Snapshot
	stop      chan struct{}
	running   bool
	mu        sync.Mutex
}

// New creates a dashboard listening on the given port.
func New(port int) *Dashboard {
	d := &Dashboard{
		upgrader:  websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		clients:   make(map[*websocket.Conn]bool),
		latest:    make(map[string]Snapshot),
		broadcast: make(chan Snapshot, 256),
		stop:      make(chan struct{}),
	}

	r := mux.NewRouter()
	r.HandleFunc("/", d.handleIndex).Methods("GET")
	r.HandleFunc("/api/summary", d.handleSummary).Methods("GET")
	r.HandleFunc("/ws", d.handleWebSocket).Methods("GET")

	d.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return d
}

// Start runs the HTTP server and the broadcaster in the background.
func (d *Dashboard) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running {
		return fmt.Errorf("dashboard is already running")
	}

	go d.broadcaster()
	go func() {
		log.Info().Str("address", d.server.Addr).Msg("starting evaluation dashboard")
		if err := d.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("dashboard server failed")
		}
	}()

	d.running = true
	return nil
}

// Stop shuts the server down and disconnects all clients.
func (d *Dashboard) Stop(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.running {
		return nil
	}
	close(d.stop)

	d.clientsMu.Lock()
	for conn := range d.clients {
		conn.Close()
	}
	d.clients = make(map[*websocket.Conn]bool)
	d.clientsMu.Unlock()

	d.running = false
	return d.server.Shutdown(ctx)
}

// Publish queues a snapshot for broadcast. It never blocks; when the
// buffer is full the snapshot is dropped, the summary endpoint still gets
// it.
func (d *Dashboard) Publish(s Snapshot) {
	if s.Ts.IsZero() {
		s.Ts = time.Now()
	}
	d.latestMu.Lock()
	d.latest[s.Name] = s
	d.latestMu.Unlock()

	select {
	case d.broadcast <- s:
	default:
	}
}

func (d *Dashboard) broadcaster() {
	for {
		select {
		case <-d.stop:
			return
		case s := <-d.broadcast:
			data, err := json.Marshal(s)
			if err != nil {
				log.Error().Err(err).Msg("marshal snapshot")
				continue
			}
			d.clientsMu.RLock()
			for conn := range d.clients {
				if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
					log.Debug().Err(err).Msg("dropping dashboard client")
					conn.Close()
					go d.removeClient(conn)
				}
			}
			d.clientsMu.RUnlock()
		}
	}
}

func (d *Dashboard) removeClient(conn *websocket.Conn) {
	d.clientsMu.Lock()
	delete(d.clients, conn)
	d.clientsMu.Unlock()
}

func (d *Dashboard) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := d.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	d.clientsMu.Lock()
	d.clients[conn] = true
	d.clientsMu.Unlock()

	// Reader loop only to detect disconnects; clients do not send data.
	go func() {
		defer d.removeClient(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				conn.Close()
				return
			}
		}
	}()
}

func (d *Dashboard) handleSummary(w http.ResponseWriter, _ *http.Request) {
	d.latestMu.RLock()
	defer d.latestMu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(d.latest); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (d *Dashboard) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	fmt.Fprint(w, indexHTML)
}

const indexHTML = `<!DOCTYPE html>
<html>
<head><title>Evaluation Dashboard</title></head>
<body>
<h1>Evaluation Dashboard</h1>
<pre id="log"></pre>
<script>
const log = document.getElementById("log");
const ws = new WebSocket("ws://" + location.host + "/ws");
ws.onmessage = (ev) => {
  const s = JSON.parse(ev.data);
  log.textContent += s.name + " episode " + s.episode +
    " reward " + s.reward.toFixed(1) + " mean " + s.mean.toFixed(1) +
    (s.final ? " (final)" : "") + "\n";
};
</script>
</body>
</html>
`
