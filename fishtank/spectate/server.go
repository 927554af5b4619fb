// Package spectate serves a running game over HTTP: the latest snapshot as
// JSON and a websocket feed of events.
package spectate

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/libklein/llm-fishtank/fishtank/crossclues"
	"github.com/libklein/llm-fishtank/fishtank/engine"
)

const (
	EventSnapshot    = "snapshot"
	EventGameStarted = "game_started"
	EventRoundStart  = "round_started"
	EventClue        = "clue"
	EventRound       = "round"
	EventGameOver    = "game_over"

	clientBuffer = 16
	writeWait    = 10 * time.Second
)

// Event is one websocket message.
type Event struct {
	Type      string               `json:"type"`
	Snapshot  *crossclues.Snapshot `json:"snapshot,omitempty"`
	Round     *crossclues.Round    `json:"round,omitempty"`
	Result    *crossclues.Result   `json:"result,omitempty"`
	ClueGiver string               `json:"clue_giver,omitempty"`
	Clue      string               `json:"clue,omitempty"`
	Number    int                  `json:"number,omitempty"`
}

type client struct {
	conn *websocket.Conn
	send chan Event
}

// Server is a crossclues.Observer. Game callbacks never block on clients: a
// client whose buffer is full misses the message.
type Server struct {
	crossclues.NopObserver

	mu      sync.RWMutex
	snap    *crossclues.Snapshot
	clients map[*client]bool
	closed  bool

	upgrader websocket.Upgrader
}

var _ crossclues.Observer = (*Server)(nil)

func New() *Server {
	return &Server{
		clients: make(map[*client]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})
	r.Get("/api/game", s.handleGame)
	r.Get("/api/stream", s.handleStream)
	return r
}

func (s *Server) handleGame(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.Latest()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "no game has started yet"})
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("[spectate] upgrade error:", err)
		return
	}
	c := &client{conn: conn, send: make(chan Event, clientBuffer)}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		_ = conn.Close()
		return
	}
	s.clients[c] = true
	if s.snap != nil {
		snap := *s.snap
		c.send <- Event{Type: EventSnapshot, Snapshot: &snap}
	}
	s.mu.Unlock()

	go c.writePump()
	s.readPump(c)
}

// readPump only watches for the client going away.
func (s *Server) readPump(c *client) {
	defer s.drop(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) writePump() {
	defer c.conn.Close()
	for ev := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteJSON(ev); err != nil {
			return
		}
	}
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
}

func (s *Server) drop(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clients[c] {
		delete(s.clients, c)
		close(c.send)
	}
}

func (s *Server) broadcast(ev Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for c := range s.clients {
		select {
		case c.send <- ev:
		default:
		}
	}
}

func (s *Server) store(snap crossclues.Snapshot) {
	s.mu.Lock()
	s.snap = &snap
	s.mu.Unlock()
}

// Latest returns the most recent snapshot, if a game has started.
func (s *Server) Latest() (crossclues.Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snap == nil {
		return crossclues.Snapshot{}, false
	}
	return *s.snap, true
}

// Clients is the number of connected websocket clients.
func (s *Server) Clients() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

func (s *Server) GameStarted(snap crossclues.Snapshot) {
	s.store(snap)
	s.broadcast(Event{Type: EventGameStarted, Snapshot: &snap})
}

// RoundStarted leaves the target out so spectators see what the table sees.
func (s *Server) RoundStarted(round int, clueGiver string, _ engine.Coordinate) {
	s.broadcast(Event{Type: EventRoundStart, Number: round, ClueGiver: clueGiver})
}

func (s *Server) ClueGiven(round int, clueGiver string, _ engine.Coordinate, clue string) {
	s.broadcast(Event{Type: EventClue, Number: round, ClueGiver: clueGiver, Clue: clue})
}

func (s *Server) RoundResolved(r crossclues.Round, snap crossclues.Snapshot) {
	s.store(snap)
	s.broadcast(Event{Type: EventRound, Number: r.Number, Round: &r, Snapshot: &snap})
}

func (s *Server) GameOver(res crossclues.Result) {
	s.mu.Lock()
	if s.snap != nil {
		s.snap.State = crossclues.Complete.String()
	}
	s.mu.Unlock()
	s.broadcast(Event{Type: EventGameOver, Result: &res})
}

// Close disconnects every client and refuses new ones.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for c := range s.clients {
		delete(s.clients, c)
		close(c.send)
	}
}

// Serve takes ownership of ln and serves until ctx is done, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		s.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("[spectate] listening on http://%s", ln.Addr())
	err := srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		<-done
		return nil
	}
	return err
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
