// Package lavalinktest runs an in-process fake Lavalink node for tests.
package lavalinktest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/glizzus/sound-panel/internal/lavalink"
	"github.com/gorilla/websocket"
)

const (
	Password  = "youshallnotpass"
	SessionID = "test-session"
)

type PlayerPatch struct {
	GuildID string
	Update  lavalink.PlayerUpdate
}

// Server answers the REST and websocket endpoints a Node uses. Load
// results are registered with AddResult; unknown identifiers load empty.
type Server struct {
	*httptest.Server
	t        *testing.T
	upgrader websocket.Upgrader

	mu        sync.Mutex
	results   map[string]lavalink.LoadResult
	patches   []PlayerPatch
	destroyed []string
	conns     []*websocket.Conn
}

func NewServer(t *testing.T) *Server {
	t.Helper()
	s := &Server{
		t:       t,
		results: make(map[string]lavalink.LoadResult),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v4/websocket", s.serveWebSocket)
	mux.HandleFunc("GET /v4/loadtracks", s.serveLoadTracks)
	mux.HandleFunc("PATCH /v4/sessions/{sessionID}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, lavalink.SessionUpdate{Resuming: true, Timeout: 60})
	})
	mux.HandleFunc("PATCH /v4/sessions/{sessionID}/players/{guildID}", s.servePatchPlayer)
	mux.HandleFunc("DELETE /v4/sessions/{sessionID}/players/{guildID}", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.destroyed = append(s.destroyed, r.PathValue("guildID"))
		s.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /version", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("4.0.8"))
	})

	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func (s *Server) serveWebSocket(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != Password {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.t.Errorf("failed to upgrade: %v", err)
		return
	}

	s.mu.Lock()
	s.conns = append(s.conns, conn)
	err = conn.WriteJSON(map[string]any{"op": "ready", "resumed": false, "sessionId": SessionID})
	s.mu.Unlock()
	if err != nil {
		s.t.Errorf("failed to send ready: %v", err)
	}
}

func (s *Server) serveLoadTracks(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	result, ok := s.results[r.URL.Query().Get("identifier")]
	s.mu.Unlock()
	if !ok {
		result = lavalink.LoadResult{LoadType: lavalink.LoadTypeEmpty, Data: json.RawMessage(`{}`)}
	}
	writeJSON(w, result)
}

func (s *Server) servePatchPlayer(w http.ResponseWriter, r *http.Request) {
	var update lavalink.PlayerUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	guildID := r.PathValue("guildID")

	s.mu.Lock()
	s.patches = append(s.patches, PlayerPatch{GuildID: guildID, Update: update})
	s.mu.Unlock()

	writeJSON(w, lavalink.PlayerInfo{GuildID: guildID, Volume: lavalink.DefaultVolume})
}

// AddTracks makes identifier load as a search result with tracks.
func (s *Server) AddTracks(identifier string, tracks ...lavalink.Track) {
	data, err := json.Marshal(tracks)
	if err != nil {
		s.t.Fatalf("failed to encode tracks: %v", err)
	}
	s.AddResult(identifier, lavalink.LoadResult{LoadType: lavalink.LoadTypeSearch, Data: data})
}

func (s *Server) AddResult(identifier string, result lavalink.LoadResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[identifier] = result
}

// Patches returns the player updates received for guildID in order.
func (s *Server) Patches(guildID string) []lavalink.PlayerUpdate {
	s.mu.Lock()
	defer s.mu.Unlock()
	var updates []lavalink.PlayerUpdate
	for _, p := range s.patches {
		if p.GuildID == guildID {
			updates = append(updates, p.Update)
		}
	}
	return updates
}

func (s *Server) Destroyed() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.destroyed...)
}

// Send writes msg to every connected node.
func (s *Server) Send(msg any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, conn := range s.conns {
		if err := conn.WriteJSON(msg); err != nil {
			s.t.Errorf("failed to send message: %v", err)
		}
	}
}

// SendEvent wraps an event with its op and type the way Lavalink does.
func (s *Server) SendEvent(eventType string, event any) {
	raw, err := json.Marshal(event)
	if err != nil {
		s.t.Fatalf("failed to encode event: %v", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		s.t.Fatalf("failed to encode event: %v", err)
	}
	fields["op"] = "event"
	fields["type"] = eventType
	s.Send(fields)
}

func (s *Server) NodeConfig(userID string) lavalink.NodeConfig {
	return lavalink.NodeConfig{
		WebSocketURL: "ws" + strings.TrimPrefix(s.URL, "http") + "/v4/websocket",
		Password:     Password,
		UserID:       userID,
		RetryDelay:   10 * time.Millisecond,
	}
}

// StartNode connects a node for userID and waits until it is ready.
// The node stops when the test ends.
func (s *Server) StartNode(userID string, handler lavalink.EventHandler) *lavalink.Node {
	s.t.Helper()
	node := lavalink.NewNode(s.NodeConfig(userID), lavalink.NewRESTClient(s.URL, Password), handler)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		node.Run(ctx)
	}()
	s.t.Cleanup(func() {
		cancel()
		<-done
	})

	waitCtx, waitCancel := context.WithTimeout(ctx, 5*time.Second)
	defer waitCancel()
	if err := node.WaitReady(waitCtx); err != nil {
		s.t.Fatalf("node never became ready: %v", err)
	}
	return node
}
