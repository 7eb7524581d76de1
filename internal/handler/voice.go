package handler

import (
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/glizzus/sound-panel/internal/lavalink"
)

// VoiceForwarder hands the bot's own voice credentials to Lavalink.
type VoiceForwarder struct {
	node      *lavalink.Node
	botUserID string
}

func NewVoiceForwarder(node *lavalink.Node, botUserID string) *VoiceForwarder {
	return &VoiceForwarder{node: node, botUserID: botUserID}
}

func (f *VoiceForwarder) VoiceStateUpdate(v *discordgo.VoiceStateUpdate) {
	if v.VoiceState == nil || v.UserID != f.botUserID {
		return
	}
	player, ok := f.node.ExistingPlayer(v.GuildID)
	if !ok {
		return
	}

	ctx, cancel := commandContext()
	defer cancel()
	if err := player.SetVoiceState(ctx, v.ChannelID, v.SessionID); err != nil {
		slog.Warn("Failed to forward voice state", "guildID", v.GuildID, "channelID", v.ChannelID, "error", err)
	}
}

func (f *VoiceForwarder) VoiceServerUpdate(v *discordgo.VoiceServerUpdate) {
	player, ok := f.node.ExistingPlayer(v.GuildID)
	if !ok {
		return
	}

	ctx, cancel := commandContext()
	defer cancel()
	if err := player.SetVoiceServer(ctx, v.Token, v.Endpoint); err != nil {
		slog.Warn("Failed to forward voice server", "guildID", v.GuildID, "error", err)
	}
}
