package voice

import (
	"errors"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/glizzus/sound-panel/internal/util"
)

var ErrChannelNotFound = errors.New("voice channel not found")

// StateLookup is the part of the discordgo state cache used here.
// *discordgo.State satisfies it.
type StateLookup interface {
	Guild(guildID string) (*discordgo.Guild, error)
	VoiceState(guildID, userID string) (*discordgo.VoiceState, error)
}

func IsVoiceChannel(ch *discordgo.Channel) bool {
	return ch.Type == discordgo.ChannelTypeGuildVoice || ch.Type == discordgo.ChannelTypeGuildStageVoice
}

// UserChannelID returns the voice channel userID is connected to in the
// guild, or "" when the user is not in voice.
func UserChannelID(state StateLookup, guildID, userID string) string {
	vs, err := state.VoiceState(guildID, userID)
	if err != nil || vs == nil {
		return ""
	}
	return vs.ChannelID
}

// channelID extracts the ID from a channel mention or a bare ID.
func channelID(arg string) (string, bool) {
	if inner, ok := strings.CutPrefix(arg, "<#"); ok {
		if id, ok := strings.CutSuffix(inner, ">"); ok {
			arg = id
		}
	}
	if arg == "" {
		return "", false
	}
	for _, r := range arg {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return arg, true
}

// ResolveChannel finds a voice channel among channels by mention, ID or
// name. Names match case-insensitively.
func ResolveChannel(channels []*discordgo.Channel, arg string) (*discordgo.Channel, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return nil, ErrChannelNotFound
	}

	var match func(*discordgo.Channel) bool
	if id, ok := channelID(arg); ok {
		match = func(ch *discordgo.Channel) bool { return ch.ID == id }
	} else {
		match = func(ch *discordgo.Channel) bool { return strings.EqualFold(ch.Name, arg) }
	}

	ch, found := util.FindFirst(channels, func(ch *discordgo.Channel) bool {
		return IsVoiceChannel(ch) && match(ch)
	})
	if !found {
		return nil, ErrChannelNotFound
	}
	return ch, nil
}

// ResolveGuildChannel resolves arg against the guild's cached channels.
func ResolveGuildChannel(state StateLookup, guildID, arg string) (*discordgo.Channel, error) {
	guild, err := state.Guild(guildID)
	if err != nil {
		return nil, err
	}
	return ResolveChannel(guild.Channels, arg)
}
