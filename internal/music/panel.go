package music

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/glizzus/sound-panel/internal/emoji"
	"github.com/glizzus/sound-panel/internal/panel"
)

// SendPanel posts a control panel for the guild's current track to
// channelID. Only ownerID may press its buttons.
func (s *Service) SendPanel(ctx context.Context, guildID, channelID, ownerID string) error {
	emojis, err := s.emojis.ForGuild(ctx, guildID)
	if err != nil {
		slog.Warn("Falling back to default emojis", "guildID", guildID, "error", err)
		emojis, _ = s.emojis.ForGuild(ctx, "")
	}

	var title string
	if player, ok := s.node.ExistingPlayer(guildID); ok {
		if current := player.Current(); current != nil {
			title = current.Title()
		}
	}

	p, err := s.panels.Create(ownerID, guildID)
	if err != nil {
		return err
	}
	if _, err := s.discord.ChannelMessageSendComplex(channelID, panel.Build(p.ID, title, emojis)); err != nil {
		s.panels.Forget(p.ID)
		return fmt.Errorf("failed to send panel: %w", err)
	}
	return nil
}

// Press runs the action behind a panel button pressed by userID.
func (s *Service) Press(ctx context.Context, panelID, userID string, action panel.Action) (string, error) {
	p, ok := s.panels.Lookup(panelID)
	if !ok {
		return "", ErrPanelExpired
	}
	if p.OwnerID != userID {
		return "", errNotYours
	}

	switch action {
	case panel.ActionPlay:
		return s.Resume(ctx, p.GuildID)
	case panel.ActionStop:
		return s.Stop(ctx, p.GuildID)
	case panel.ActionSkip:
		return s.Skip(ctx, p.GuildID)
	case panel.ActionRestart:
		return s.Restart(ctx, p.GuildID)
	case panel.ActionVolUp:
		return s.ChangeVolume(ctx, p.GuildID, panel.VolumeStep)
	case panel.ActionVolDown:
		return s.ChangeVolume(ctx, p.GuildID, -panel.VolumeStep)
	}
	return "", fmt.Errorf("unknown panel action %q", action)
}

// SetEmojis stores the guild's non-blank emoji overrides.
func (s *Service) SetEmojis(ctx context.Context, guildID string, raw map[emoji.Key]string) error {
	if guildID == "" {
		return errNoGuild
	}
	return s.emojis.Update(ctx, guildID, raw)
}
