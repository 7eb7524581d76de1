package handler

import (
	"github.com/bwmarrin/discordgo"
)

// Intents are the gateway intents a bot session identifies with.
const Intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMessages |
	discordgo.IntentMessageContent |
	discordgo.IntentsGuildVoiceStates

type ReadyHandler = func(*discordgo.Session, *discordgo.Ready)
type MessageCreateHandler = func(*discordgo.Session, *discordgo.MessageCreate)
type InteractionCreateHandler = func(*discordgo.Session, *discordgo.InteractionCreate)
type VoiceStateUpdateHandler = func(*discordgo.Session, *discordgo.VoiceStateUpdate)
type VoiceServerUpdateHandler = func(*discordgo.Session, *discordgo.VoiceServerUpdate)

// Handlers are the gateway event handlers a session is created with.
// Nil handlers are skipped.
type Handlers struct {
	Ready             ReadyHandler
	MessageCreate     MessageCreateHandler
	InteractionCreate InteractionCreateHandler
	VoiceStateUpdate  VoiceStateUpdateHandler
	VoiceServerUpdate VoiceServerUpdateHandler
}

// NewSession creates a bot session that caches up to maxMessages messages.
// It is not opened.
func NewSession(token string, maxMessages int, handlers Handlers) (*discordgo.Session, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}
	s.Identify.Intents = Intents
	s.State.MaxMessageCount = maxMessages
	s.State.TrackVoice = true

	if handlers.Ready != nil {
		s.AddHandler(handlers.Ready)
	}
	if handlers.MessageCreate != nil {
		s.AddHandler(handlers.MessageCreate)
	}
	if handlers.InteractionCreate != nil {
		s.AddHandler(handlers.InteractionCreate)
	}
	if handlers.VoiceStateUpdate != nil {
		s.AddHandler(handlers.VoiceStateUpdate)
	}
	if handlers.VoiceServerUpdate != nil {
		s.AddHandler(handlers.VoiceServerUpdate)
	}
	return s, nil
}

// CachedSession answers channel lookups from the state cache before
// asking the REST API.
type CachedSession struct {
	*discordgo.Session
}

func (s CachedSession) Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error) {
	if ch, err := s.State.Channel(channelID); err == nil {
		return ch, nil
	}
	return s.Session.Channel(channelID, options...)
}
