// Package handler turns Discord gateway events into music service calls.
package handler

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/glizzus/sound-panel/internal/emoji"
	"github.com/glizzus/sound-panel/internal/music"
	"github.com/glizzus/sound-panel/internal/panel"
	"github.com/glizzus/sound-panel/internal/voice"
)

const commandTimeout = 30 * time.Second

// Music is the playback API commands are routed to.
type Music interface {
	Join(ctx context.Context, req music.Request, channelID string) (string, error)
	Play(ctx context.Context, req music.Request, query string, file *discordgo.MessageAttachment) (string, error)
	Skip(ctx context.Context, guildID string) (string, error)
	Stop(ctx context.Context, guildID string) (string, error)
	Pause(ctx context.Context, guildID string) (string, error)
	Resume(ctx context.Context, guildID string) (string, error)
	Leave(ctx context.Context, guildID string) (string, error)
	SendPanel(ctx context.Context, guildID, channelID, ownerID string) error
	Press(ctx context.Context, panelID, userID string, action panel.Action) (string, error)
	SetEmojis(ctx context.Context, guildID string, raw map[emoji.Key]string) error
	RecordTextChannel(ctx context.Context, guildID, channelID string) (bool, error)
}

var _ Music = (*music.Service)(nil)

// DiscordSession is the part of a discordgo session used to reply.
type DiscordSession interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

var _ DiscordSession = (*discordgo.Session)(nil)

// Handler routes the commands of one bot.
type Handler struct {
	music     Music
	state     voice.StateLookup
	prefix    string
	botUserID string
}

func New(m Music, state voice.StateLookup, prefix, botUserID string) *Handler {
	return &Handler{
		music:     m,
		state:     state,
		prefix:    prefix,
		botUserID: botUserID,
	}
}

func (h *Handler) request(guildID, channelID, userID string) music.Request {
	req := music.Request{
		GuildID:   guildID,
		ChannelID: channelID,
		UserID:    userID,
	}
	if guildID != "" {
		req.VoiceChannelID = voice.UserChannelID(h.state, guildID, userID)
	}
	return req
}

func commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), commandTimeout)
}
