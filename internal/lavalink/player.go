package lavalink

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// DefaultVolume is the volume of a new player, in percent.
const DefaultVolume = 100

// Player is the state of one guild's audio on the node. Discord reports
// the voice connection in two halves, the bot's voice state and the voice
// server; once both are known they are forwarded to Lavalink.
type Player struct {
	node    *Node
	guildID string
	queue   Queue

	mu           sync.Mutex
	channelID    string
	voice        VoiceState
	connected    chan struct{}
	hasConnected bool
	current      *Track
	paused       bool
	volume       int
}

func newPlayer(node *Node, guildID string) *Player {
	return &Player{
		node:      node,
		guildID:   guildID,
		connected: make(chan struct{}),
		volume:    DefaultVolume,
	}
}

func (p *Player) GuildID() string {
	return p.guildID
}

func (p *Player) Queue() *Queue {
	return &p.queue
}

// ChannelID is the voice channel the bot sits in, empty when disconnected.
func (p *Player) ChannelID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.channelID
}

func (p *Player) Connected() bool {
	return p.ChannelID() != ""
}

// Current is the track being played, nil when idle.
func (p *Player) Current() *Track {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return nil
	}
	track := *p.current
	return &track
}

func (p *Player) Playing() bool {
	return p.Current() != nil
}

func (p *Player) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

func (p *Player) Volume() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// SetVoiceState records the bot's own voice state. An empty channelID
// means the bot left the channel.
func (p *Player) SetVoiceState(ctx context.Context, channelID, sessionID string) error {
	p.mu.Lock()
	if channelID == "" {
		p.channelID = ""
		p.voice = VoiceState{}
		p.current = nil
		p.paused = false
		if p.hasConnected {
			p.hasConnected = false
			p.connected = make(chan struct{})
		}
		p.mu.Unlock()
		return nil
	}

	p.channelID = channelID
	p.voice.SessionID = sessionID
	voice, complete := p.completeVoiceLocked()
	p.mu.Unlock()

	if !complete {
		return nil
	}
	return p.sendVoice(ctx, voice)
}

func (p *Player) SetVoiceServer(ctx context.Context, token, endpoint string) error {
	p.mu.Lock()
	p.voice.Token = token
	p.voice.Endpoint = endpoint
	voice, complete := p.completeVoiceLocked()
	p.mu.Unlock()

	if !complete {
		return nil
	}
	return p.sendVoice(ctx, voice)
}

func (p *Player) completeVoiceLocked() (VoiceState, bool) {
	v := p.voice
	return v, p.channelID != "" && v.SessionID != "" && v.Token != "" && v.Endpoint != ""
}

func (p *Player) sendVoice(ctx context.Context, voice VoiceState) error {
	if _, err := p.update(ctx, PlayerUpdate{Voice: &voice}); err != nil {
		return err
	}

	p.mu.Lock()
	if !p.hasConnected {
		p.hasConnected = true
		close(p.connected)
	}
	p.mu.Unlock()
	return nil
}

func (p *Player) resendVoice(ctx context.Context) {
	p.mu.Lock()
	voice, complete := p.completeVoiceLocked()
	p.mu.Unlock()
	if !complete {
		return
	}
	if err := p.sendVoice(ctx, voice); err != nil {
		slog.Warn("Failed to restore voice connection", "guildID", p.guildID, "error", err)
	}
}

// WaitConnected blocks until Lavalink has received the voice connection.
func (p *Player) WaitConnected(ctx context.Context) error {
	p.mu.Lock()
	connected := p.connected
	p.mu.Unlock()

	select {
	case <-connected:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("voice connection for guild %s not established: %w", p.guildID, ctx.Err())
	}
}

func (p *Player) update(ctx context.Context, update PlayerUpdate) (*PlayerInfo, error) {
	sessionID := p.node.SessionID()
	if sessionID == "" {
		return nil, ErrNodeNotReady
	}
	return p.node.rest.UpdatePlayer(ctx, sessionID, p.guildID, update, false)
}

// Play replaces whatever is playing with track and unpauses.
func (p *Player) Play(ctx context.Context, track Track) error {
	encoded := track.Encoded
	paused := false
	volume := p.Volume()
	_, err := p.update(ctx, PlayerUpdate{
		Track:  &UpdateTrack{Encoded: &encoded, UserData: track.UserData},
		Paused: &paused,
		Volume: &volume,
	})
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.current = &track
	p.paused = false
	p.mu.Unlock()
	return nil
}

func (p *Player) Stop(ctx context.Context) error {
	if _, err := p.update(ctx, PlayerUpdate{Track: &UpdateTrack{}}); err != nil {
		return err
	}

	p.mu.Lock()
	p.current = nil
	p.paused = false
	p.mu.Unlock()
	return nil
}

func (p *Player) SetPaused(ctx context.Context, paused bool) error {
	if _, err := p.update(ctx, PlayerUpdate{Paused: &paused}); err != nil {
		return err
	}

	p.mu.Lock()
	p.paused = paused
	p.mu.Unlock()
	return nil
}

func (p *Player) SetVolume(ctx context.Context, volume int) error {
	if _, err := p.update(ctx, PlayerUpdate{Volume: &volume}); err != nil {
		return err
	}

	p.mu.Lock()
	p.volume = volume
	p.mu.Unlock()
	return nil
}

// Destroy removes the player from the node and from Lavalink.
func (p *Player) Destroy(ctx context.Context) error {
	p.node.removePlayer(p.guildID)

	p.mu.Lock()
	p.current = nil
	p.paused = false
	p.mu.Unlock()
	p.queue.Clear()

	sessionID := p.node.SessionID()
	if sessionID == "" {
		return nil
	}
	return p.node.rest.DestroyPlayer(ctx, sessionID, p.guildID)
}

func (p *Player) handleEvent(event Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch e := event.(type) {
	case *TrackStartEvent:
		if p.current == nil {
			track := e.Track
			p.current = &track
		}
	case *TrackEndEvent:
		// A replaced track ends after its successor already started.
		if e.Reason != TrackEndReplaced {
			p.current = nil
			p.paused = false
		}
	}
}
