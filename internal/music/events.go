package music

import (
	"context"
	"errors"
	"log/slog"

	"github.com/glizzus/sound-panel/internal/lavalink"
	"github.com/glizzus/sound-panel/internal/store"
)

// Discord voice close codes after which the voice session is gone.
const (
	voiceCloseSessionInvalid = 4006
	voiceCloseDisconnected   = 4014
)

// HandleEvent reacts to Lavalink player events. It is meant to be the
// node's EventHandler.
func (s *Service) HandleEvent(event lavalink.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
	defer cancel()

	switch e := event.(type) {
	case *lavalink.TrackStartEvent:
		s.setLastTrack(e.GuildID, e.Track)
		s.announce(ctx, e)

	case *lavalink.TrackEndEvent:
		if e.Reason.MayStartNext() && s.playNext(ctx, e.GuildID) {
			return
		}
		if e.Reason != lavalink.TrackEndReplaced {
			s.setLastTrack(e.GuildID, e.Track)
		}

	case *lavalink.TrackExceptionEvent:
		slog.Warn("Track failed",
			"guildID", e.GuildID,
			"title", e.Track.Title(),
			"severity", e.Exception.Severity,
			"error", e.Exception.Message,
		)

	case *lavalink.TrackStuckEvent:
		slog.Warn("Track stuck", "guildID", e.GuildID, "title", e.Track.Title(), "thresholdMs", e.ThresholdMs)

	case *lavalink.WebSocketClosedEvent:
		slog.Warn("Voice websocket closed",
			"guildID", e.GuildID,
			"code", e.Code,
			"reason", e.Reason,
			"byRemote", e.ByRemote,
		)
		if e.Code == voiceCloseSessionInvalid || e.Code == voiceCloseDisconnected {
			if player, ok := s.node.ExistingPlayer(e.GuildID); ok {
				if err := player.Destroy(ctx); err != nil {
					slog.Warn("Failed to destroy player", "guildID", e.GuildID, "error", err)
				}
			}
		}
	}
}

// playNext starts the next queued track and reports whether it did.
func (s *Service) playNext(ctx context.Context, guildID string) bool {
	player, ok := s.node.ExistingPlayer(guildID)
	if !ok {
		return false
	}
	next, ok := player.Queue().Get()
	if !ok {
		return false
	}
	if err := player.Play(ctx, next); err != nil {
		slog.Error("Failed to play next track", "guildID", guildID, "error", err)
		return false
	}
	return true
}

// announce posts a panel for a started track in the guild's recorded text
// channel. The requester owns it, or the bot when there is none.
func (s *Service) announce(ctx context.Context, e *lavalink.TrackStartEvent) {
	channelID, err := s.channels.TextChannel(ctx, e.GuildID)
	if errors.Is(err, store.ErrNotFound) {
		return
	}
	if err != nil {
		slog.Warn("Failed to read text channel", "guildID", e.GuildID, "error", err)
		return
	}

	owner := s.cfg.BotUserID
	if e.Track.UserData != nil && e.Track.UserData.RequesterID != "" {
		owner = e.Track.UserData.RequesterID
	}
	if err := s.SendPanel(ctx, e.GuildID, channelID, owner); err != nil {
		slog.Warn("Failed to announce track", "guildID", e.GuildID, "channelID", channelID, "error", err)
	}
}
