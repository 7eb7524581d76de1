// Package music is the playback logic of one bot: joining voice, resolving
// and queueing tracks, the control panel and reacting to Lavalink events.
package music

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/glizzus/sound-panel/internal/attachment"
	"github.com/glizzus/sound-panel/internal/emoji"
	"github.com/glizzus/sound-panel/internal/lavalink"
	"github.com/glizzus/sound-panel/internal/panel"
)

const (
	MinVolume = 10
	MaxVolume = 200

	defaultConnectTimeout = 10 * time.Second
	eventTimeout          = 10 * time.Second
)

// Discord is the part of a discordgo session the service needs.
// *discordgo.Session satisfies it.
type Discord interface {
	ChannelVoiceJoinManual(guildID, channelID string, mute, deaf bool) error
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
}

// TextChannelStore remembers where panels are posted for each guild.
type TextChannelStore interface {
	TextChannel(ctx context.Context, guildID string) (string, error)
	SetTextChannel(ctx context.Context, guildID, channelID string) error
}

// AttachmentStager makes an uploaded file reachable by Lavalink.
type AttachmentStager interface {
	Stage(ctx context.Context, a *discordgo.MessageAttachment) (string, error)
}

type Config struct {
	// BotUserID owns panels posted for tracks without a requester.
	BotUserID      string
	SearchPrefix   string
	ConnectTimeout time.Duration
}

// Request describes who asked for something and from where.
type Request struct {
	GuildID   string
	ChannelID string
	UserID    string
	// VoiceChannelID is the requester's current voice channel, if any.
	VoiceChannelID string
}

type Service struct {
	cfg         Config
	node        *lavalink.Node
	discord     Discord
	channels    TextChannelStore
	emojis      *emoji.Registry
	panels      *panel.Registry
	attachments AttachmentStager

	mu         sync.Mutex
	lastTracks map[string]lavalink.Track
}

func NewService(
	cfg Config,
	node *lavalink.Node,
	discord Discord,
	channels TextChannelStore,
	emojis *emoji.Registry,
	panels *panel.Registry,
) *Service {
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = defaultConnectTimeout
	}
	return &Service{
		cfg:        cfg,
		node:       node,
		discord:    discord,
		channels:   channels,
		emojis:     emojis,
		panels:     panels,
		lastTracks: make(map[string]lavalink.Track),
	}
}

// WithAttachments enables playing uploaded files through stager.
func (s *Service) WithAttachments(stager AttachmentStager) *Service {
	s.attachments = stager
	return s
}

func (s *Service) Node() *lavalink.Node {
	return s.node
}

// connectedPlayer returns the guild's player if the bot is in a voice
// channel there.
func (s *Service) connectedPlayer(guildID string) (*lavalink.Player, bool) {
	player, ok := s.node.ExistingPlayer(guildID)
	if !ok || !player.Connected() {
		return nil, false
	}
	return player, true
}

// connect returns the guild's player, joining channelID, or the
// requester's voice channel when channelID is empty. An existing
// connection is reused as is.
func (s *Service) connect(ctx context.Context, req Request, channelID string) (*lavalink.Player, error) {
	if req.GuildID == "" {
		return nil, errNoGuild
	}
	if err := s.node.WaitReady(ctx); err != nil {
		return nil, err
	}
	if player, ok := s.connectedPlayer(req.GuildID); ok {
		return player, nil
	}

	target := channelID
	if target == "" {
		target = req.VoiceChannelID
	}
	if target == "" {
		return nil, errJoinFirst
	}

	player := s.node.Player(req.GuildID)
	if err := s.discord.ChannelVoiceJoinManual(req.GuildID, target, false, true); err != nil {
		return nil, fmt.Errorf("failed to join voice channel %s: %w", target, err)
	}

	connectCtx, cancel := context.WithTimeout(ctx, s.cfg.ConnectTimeout)
	defer cancel()
	if err := player.WaitConnected(connectCtx); err != nil {
		slog.Warn("Voice connection timed out", "guildID", req.GuildID, "channelID", target, "error", err)
		return nil, errJoinFailed
	}

	if err := player.SetVolume(ctx, lavalink.DefaultVolume); err != nil {
		slog.Warn("Failed to reset volume", "guildID", req.GuildID, "error", err)
	}
	return player, nil
}

// Join connects to channelID, or to the requester's voice channel.
func (s *Service) Join(ctx context.Context, req Request, channelID string) (string, error) {
	player, err := s.connect(ctx, req, channelID)
	if err != nil {
		return "", err
	}
	s.recordTextChannel(ctx, req)

	name := player.ChannelID()
	if ch, err := s.discord.Channel(name); err == nil {
		name = ch.Name
	}
	return fmt.Sprintf(msgJoinedFormat, name), nil
}

// Play resolves query, or stages file when given, and plays it or queues
// it behind the current track.
func (s *Service) Play(ctx context.Context, req Request, query string, file *discordgo.MessageAttachment) (string, error) {
	if req.GuildID == "" {
		return "", errNoGuild
	}
	player, err := s.connect(ctx, req, "")
	if err != nil {
		return "", err
	}
	textChannelID := s.recordTextChannel(ctx, req)

	track, err := s.resolve(ctx, query, file)
	if err != nil {
		return "", err
	}
	track.UserData = &lavalink.UserData{
		RequesterID:   req.UserID,
		TextChannelID: textChannelID,
	}

	if player.Playing() {
		player.Queue().Put(*track)
		return fmt.Sprintf(msgQueuedFormat, track.Title()), nil
	}
	if err := player.Play(ctx, *track); err != nil {
		return "", fmt.Errorf("failed to play track: %w", err)
	}
	return fmt.Sprintf(msgPlayingFormat, track.Title()), nil
}

func (s *Service) resolve(ctx context.Context, query string, file *discordgo.MessageAttachment) (*lavalink.Track, error) {
	var identifier string
	switch {
	case file != nil && s.attachments != nil:
		url, err := s.attachments.Stage(ctx, file)
		if err != nil {
			var tooLarge *attachment.TooLargeError
			if errors.As(err, &tooLarge) {
				return nil, errTooLarge
			}
			return nil, fmt.Errorf("failed to stage attachment: %w", err)
		}
		identifier = url
	case file != nil:
		identifier = file.URL
	default:
		identifier = Identifier(query, s.cfg.SearchPrefix)
	}
	if identifier == "" {
		return nil, errFetchFailed
	}

	result, err := s.node.REST().LoadTracks(ctx, identifier)
	if err != nil {
		slog.Warn("Track search failed", "identifier", identifier, "error", err)
		return nil, errFetchFailed
	}
	track, err := result.First()
	if err != nil {
		slog.Warn("Track could not be loaded", "identifier", identifier, "error", err)
		return nil, errFetchFailed
	}
	if track == nil {
		return nil, errFetchFailed
	}
	return track, nil
}

func (s *Service) Skip(ctx context.Context, guildID string) (string, error) {
	if guildID == "" {
		return "", errNoGuild
	}
	player, ok := s.connectedPlayer(guildID)
	if !ok || !player.Playing() {
		return "", errNothingPlaying
	}

	if next, ok := player.Queue().Get(); ok {
		if err := player.Play(ctx, next); err != nil {
			return "", fmt.Errorf("failed to play next track: %w", err)
		}
	} else if err := player.Stop(ctx); err != nil {
		return "", fmt.Errorf("failed to stop player: %w", err)
	}
	return msgSkipped, nil
}

func (s *Service) Stop(ctx context.Context, guildID string) (string, error) {
	if guildID == "" {
		return "", errNoGuild
	}
	player, ok := s.connectedPlayer(guildID)
	if !ok {
		return "", errNotConnected
	}

	player.Queue().Clear()
	if err := player.Stop(ctx); err != nil {
		return "", fmt.Errorf("failed to stop player: %w", err)
	}
	return msgStopped, nil
}

// Restart plays the last started track again from the beginning.
func (s *Service) Restart(ctx context.Context, guildID string) (string, error) {
	if guildID == "" {
		return "", errNoGuild
	}
	player, ok := s.connectedPlayer(guildID)
	if !ok {
		return "", errNotConnected
	}
	last, ok := s.lastTrack(guildID)
	if !ok {
		return "", errNoPrevious
	}

	if err := player.Play(ctx, last); err != nil {
		return "", fmt.Errorf("failed to restart track: %w", err)
	}
	return msgRestarted, nil
}

// Resume unpauses, or starts the queue when nothing is playing.
func (s *Service) Resume(ctx context.Context, guildID string) (string, error) {
	if guildID == "" {
		return "", errNoGuild
	}
	player, ok := s.connectedPlayer(guildID)
	if !ok {
		return "", errNotConnected
	}

	if player.Paused() {
		if err := player.SetPaused(ctx, false); err != nil {
			return "", fmt.Errorf("failed to resume player: %w", err)
		}
		return msgResumed, nil
	}
	if !player.Playing() {
		if next, ok := player.Queue().Get(); ok {
			if err := player.Play(ctx, next); err != nil {
				return "", fmt.Errorf("failed to play next track: %w", err)
			}
			return msgNowPlaying, nil
		}
	}
	return "", errNothingPlaying
}

// Pause pauses a playing track and otherwise behaves like Resume.
func (s *Service) Pause(ctx context.Context, guildID string) (string, error) {
	if guildID == "" {
		return "", errNoGuild
	}
	player, ok := s.connectedPlayer(guildID)
	if !ok {
		return "", errNotConnected
	}

	if player.Playing() && !player.Paused() {
		if err := player.SetPaused(ctx, true); err != nil {
			return "", fmt.Errorf("failed to pause player: %w", err)
		}
		return msgPaused, nil
	}
	return s.Resume(ctx, guildID)
}

func (s *Service) ChangeVolume(ctx context.Context, guildID string, delta int) (string, error) {
	if guildID == "" {
		return "", errNoGuild
	}
	player, ok := s.connectedPlayer(guildID)
	if !ok {
		return "", errNotConnected
	}

	volume := min(MaxVolume, max(MinVolume, player.Volume()+delta))
	if err := player.SetVolume(ctx, volume); err != nil {
		return "", fmt.Errorf("failed to set volume: %w", err)
	}
	return fmt.Sprintf(msgVolumeFormat, volume), nil
}

// Leave disconnects from voice. It replies nothing when the bot is not
// connected.
func (s *Service) Leave(ctx context.Context, guildID string) (string, error) {
	if guildID == "" {
		return "", nil
	}
	player, ok := s.node.ExistingPlayer(guildID)
	if !ok {
		return "", nil
	}
	connected := player.Connected()

	if connected {
		if err := s.discord.ChannelVoiceJoinManual(guildID, "", false, false); err != nil {
			return "", fmt.Errorf("failed to leave voice channel: %w", err)
		}
	}
	if err := player.Destroy(ctx); err != nil {
		slog.Warn("Failed to destroy player", "guildID", guildID, "error", err)
	}

	if !connected {
		return "", nil
	}
	return msgLeft, nil
}

func isTextChannel(ch *discordgo.Channel) bool {
	switch ch.Type {
	case discordgo.ChannelTypeGuildText,
		discordgo.ChannelTypeGuildNews,
		discordgo.ChannelTypeGuildNewsThread,
		discordgo.ChannelTypeGuildPublicThread,
		discordgo.ChannelTypeGuildPrivateThread:
		return true
	}
	return false
}

// RecordTextChannel remembers channelID as the guild's panel channel if it
// is a text channel or thread. It reports whether it was recorded.
func (s *Service) RecordTextChannel(ctx context.Context, guildID, channelID string) (bool, error) {
	if guildID == "" || channelID == "" {
		return false, nil
	}
	ch, err := s.discord.Channel(channelID)
	if err != nil {
		return false, fmt.Errorf("failed to look up channel %s: %w", channelID, err)
	}
	if !isTextChannel(ch) {
		return false, nil
	}
	if err := s.channels.SetTextChannel(ctx, guildID, channelID); err != nil {
		return false, fmt.Errorf("failed to save text channel: %w", err)
	}
	return true, nil
}

// recordTextChannel records the request's channel and returns it when it
// was recorded.
func (s *Service) recordTextChannel(ctx context.Context, req Request) string {
	recorded, err := s.RecordTextChannel(ctx, req.GuildID, req.ChannelID)
	if err != nil {
		slog.Warn("Failed to record text channel", "guildID", req.GuildID, "channelID", req.ChannelID, "error", err)
		return ""
	}
	if !recorded {
		return ""
	}
	return req.ChannelID
}

func (s *Service) lastTrack(guildID string) (lavalink.Track, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	track, ok := s.lastTracks[guildID]
	return track, ok
}

func (s *Service) setLastTrack(guildID string, track lavalink.Track) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastTracks[guildID] = track
}
