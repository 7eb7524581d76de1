package handler

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/glizzus/sound-panel/internal/emoji"
)

// emojiOptions maps setemojis arguments, in positional order, to panel
// emoji slots.
var emojiOptions = []struct {
	name string
	key  emoji.Key
}{
	{"pause", emoji.Pause},
	{"resume", emoji.Resume},
	{"stop", emoji.Stop},
	{"skip", emoji.Skip},
	{"restart", emoji.Restart},
	{"volup", emoji.VolUp},
	{"voldown", emoji.VolDown},
}

func setEmojisOptions() []*discordgo.ApplicationCommandOption {
	options := make([]*discordgo.ApplicationCommandOption, 0, len(emojiOptions))
	for _, o := range emojiOptions {
		options = append(options, &discordgo.ApplicationCommandOption{
			Name:        o.name,
			Type:        discordgo.ApplicationCommandOptionString,
			Description: "إيموجي زر " + o.name,
		})
	}
	return options
}

// Commands is a list of all the commands the bot can handle.
// This is used to register the commands with Discord.
var Commands = []*discordgo.ApplicationCommand{
	{
		Name:        "join",
		Description: "إدخال البوت قناة صوتية محددة",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:         "channel",
				Type:         discordgo.ApplicationCommandOptionChannel,
				Description:  "القناة الصوتية",
				ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildVoice, discordgo.ChannelTypeGuildStageVoice},
			},
		},
	},
	{
		Name:        "panel",
		Description: "إظهار لوحة التحكم الخاصة بالبث",
	},
	{
		Name:        "setemojis",
		Description: "تغيير إيموجيات البانل",
		Options:     setEmojisOptions(),
	},
	{
		Name:        "play",
		Description: "تشغيل مقطع صوتي",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:        "query",
				Type:        discordgo.ApplicationCommandOptionString,
				Description: "رابط أو كلمات البحث",
			},
			{
				Name:        "file",
				Type:        discordgo.ApplicationCommandOptionAttachment,
				Description: "ملف صوتي",
			},
		},
	},
}

// CommandRegistrar overwrites an application's commands.
// *discordgo.Session satisfies it.
type CommandRegistrar interface {
	ApplicationCommandBulkOverwrite(appID string, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
}

// EstablishCommands registers Commands in guildID, or globally when
// guildID is empty.
func EstablishCommands(s CommandRegistrar, appID, guildID string) error {
	_, err := s.ApplicationCommandBulkOverwrite(appID, guildID, Commands)
	if err != nil {
		return fmt.Errorf("failed to establish commands: %w", err)
	}
	return nil
}

type commandOptions map[string]*discordgo.ApplicationCommandInteractionDataOption

func optionsByName(options []*discordgo.ApplicationCommandInteractionDataOption) commandOptions {
	byName := make(commandOptions, len(options))
	for _, o := range options {
		byName[o.Name] = o
	}
	return byName
}

// value returns the option's string value, or "" when it is missing or
// has another type.
func (o commandOptions) value(name string) string {
	opt, ok := o[name]
	if !ok {
		return ""
	}
	switch opt.Type {
	case discordgo.ApplicationCommandOptionString,
		discordgo.ApplicationCommandOptionChannel,
		discordgo.ApplicationCommandOptionAttachment:
		s, _ := opt.Value.(string)
		return s
	}
	return ""
}

func (o commandOptions) emojis() map[emoji.Key]string {
	raw := make(map[emoji.Key]string)
	for _, e := range emojiOptions {
		if v := o.value(e.name); v != "" {
			raw[e.key] = v
		}
	}
	return raw
}
