package lavalink

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/glizzus/sound-panel/internal/schedule"
	"github.com/gorilla/websocket"
)

// ErrNodeNotReady is returned when an operation needs a live session.
var ErrNodeNotReady = errors.New("lavalink node is not ready")

type NodeConfig struct {
	WebSocketURL string
	Password     string
	// UserID is the Discord user the node plays audio as.
	UserID     string
	ClientName string
	RetryDelay time.Duration
	// ResumeTimeout is how long the node keeps players after the
	// websocket drops.
	ResumeTimeout time.Duration
}

// EventHandler receives player events after the node's own bookkeeping.
// It is called from the websocket read loop.
type EventHandler func(Event)

// Node is the connection of one bot user to a Lavalink server.
type Node struct {
	cfg     NodeConfig
	rest    *RESTClient
	dialer  *websocket.Dialer
	handler EventHandler

	mu        sync.RWMutex
	sessionID string
	isReady   bool
	ready     chan struct{}

	playersMu sync.Mutex
	players   map[string]*Player
}

func NewNode(cfg NodeConfig, rest *RESTClient, handler EventHandler) *Node {
	if cfg.ClientName == "" {
		cfg.ClientName = "sound-panel"
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 5 * time.Second
	}
	if cfg.ResumeTimeout <= 0 {
		cfg.ResumeTimeout = 60 * time.Second
	}
	return &Node{
		cfg:     cfg,
		rest:    rest,
		dialer:  &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		handler: handler,
		ready:   make(chan struct{}),
		players: make(map[string]*Player),
	}
}

func (n *Node) REST() *RESTClient {
	return n.rest
}

func (n *Node) SessionID() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.sessionID
}

func (n *Node) Ready() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.isReady
}

// WaitReady blocks until the node has a live session or ctx is done.
func (n *Node) WaitReady(ctx context.Context) error {
	n.mu.RLock()
	ready := n.ready
	n.mu.RUnlock()

	select {
	case <-ready:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrNodeNotReady, ctx.Err())
	}
}

// Run keeps the websocket connected until ctx is done, waiting
// RetryDelay between attempts.
func (n *Node) Run(ctx context.Context) error {
	for {
		err := n.connect(ctx)
		n.setNotReady()
		if ctx.Err() != nil {
			return ctx.Err()
		}

		slog.Warn("Lavalink connection lost", "userID", n.cfg.UserID, "error", err, "retryIn", n.cfg.RetryDelay)
		if err := schedule.Sleep(ctx, n.cfg.RetryDelay); err != nil {
			return err
		}
	}
}

func (n *Node) connect(ctx context.Context) error {
	header := http.Header{}
	header.Set("Authorization", n.cfg.Password)
	header.Set("User-Id", n.cfg.UserID)
	header.Set("Client-Name", n.cfg.ClientName)
	if sessionID := n.SessionID(); sessionID != "" {
		header.Set("Session-Id", sessionID)
	}

	conn, resp, err := n.dialer.DialContext(ctx, n.cfg.WebSocketURL, header)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("failed to connect to lavalink (%s): %w", resp.Status, err)
		}
		return fmt.Errorf("failed to connect to lavalink: %w", err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() {
		conn.Close()
	})
	defer stop()

	slog.Info("Connected to lavalink", "url", n.cfg.WebSocketURL, "userID", n.cfg.UserID)
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("failed to read from lavalink: %w", err)
		}
		n.handleMessage(ctx, raw)
	}
}

func (n *Node) handleMessage(ctx context.Context, raw []byte) {
	msg, err := DecodeMessage(raw)
	if err != nil {
		slog.Warn("Skipping lavalink message", "error", err)
		return
	}

	switch m := msg.(type) {
	case *ReadyMessage:
		n.markReady(ctx, m)
	case Event:
		if player, ok := n.ExistingPlayer(m.Guild()); ok {
			player.handleEvent(m)
		}
		if n.handler != nil {
			n.handler(m)
		}
	}
}

func (n *Node) markReady(ctx context.Context, m *ReadyMessage) {
	n.mu.Lock()
	n.sessionID = m.SessionID
	if !n.isReady {
		n.isReady = true
		close(n.ready)
	}
	n.mu.Unlock()

	slog.Info("Lavalink session ready", "sessionID", m.SessionID, "resumed", m.Resumed)

	err := n.rest.UpdateSession(ctx, m.SessionID, SessionUpdate{
		Resuming: true,
		Timeout:  int(n.cfg.ResumeTimeout / time.Second),
	})
	if err != nil {
		slog.Warn("Failed to enable session resuming", "sessionID", m.SessionID, "error", err)
	}

	if !m.Resumed {
		// A fresh session has no players; hand them their voice servers again.
		for _, player := range n.allPlayers() {
			go player.resendVoice(ctx)
		}
	}
}

func (n *Node) setNotReady() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.isReady {
		n.isReady = false
		n.ready = make(chan struct{})
	}
}

// Player returns the guild's player, creating it on first use.
func (n *Node) Player(guildID string) *Player {
	n.playersMu.Lock()
	defer n.playersMu.Unlock()
	player, ok := n.players[guildID]
	if !ok {
		player = newPlayer(n, guildID)
		n.players[guildID] = player
	}
	return player
}

func (n *Node) ExistingPlayer(guildID string) (*Player, bool) {
	n.playersMu.Lock()
	defer n.playersMu.Unlock()
	player, ok := n.players[guildID]
	return player, ok
}

func (n *Node) removePlayer(guildID string) {
	n.playersMu.Lock()
	defer n.playersMu.Unlock()
	delete(n.players, guildID)
}

func (n *Node) allPlayers() []*Player {
	n.playersMu.Lock()
	defer n.playersMu.Unlock()
	players := make([]*Player, 0, len(n.players))
	for _, player := range n.players {
		players = append(players, player)
	}
	return players
}
