package handler

import (
	"context"
	"log/slog"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/glizzus/sound-panel/internal/voice"
)

// ParseCommand splits a message into a command name and its arguments.
// A command starts with prefix or a mention of the bot.
func ParseCommand(content, prefix, botUserID string) (name, args string, ok bool) {
	content = strings.TrimSpace(content)

	rest, found := "", false
	if botUserID != "" {
		for _, mention := range []string{"<@" + botUserID + ">", "<@!" + botUserID + ">"} {
			if rest, found = strings.CutPrefix(content, mention); found {
				break
			}
		}
	}
	if !found && prefix != "" {
		rest, found = strings.CutPrefix(content, prefix)
	}
	if !found {
		return "", "", false
	}

	rest = strings.TrimSpace(rest)
	if rest == "" {
		return "", "", false
	}
	name, args, _ = strings.Cut(rest, " ")
	if i := strings.IndexAny(name, "\n\t"); i >= 0 {
		name, args = name[:i], rest[i+1:]
	}
	return name, strings.TrimSpace(args), true
}

// MessageCreate runs prefix commands.
func (h *Handler) MessageCreate(s DiscordSession, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	name, args, ok := ParseCommand(m.Content, h.prefix, h.botUserID)
	if !ok {
		return
	}

	ctx, cancel := commandContext()
	defer cancel()

	var reply string
	var err error
	switch name {
	case "join":
		reply, err = h.join(ctx, m, args)
	case "شغل":
		reply, err = h.play(ctx, m, args)
	case "stop":
		reply, err = h.music.Stop(ctx, m.GuildID)
	case "pause":
		reply, err = h.music.Pause(ctx, m.GuildID)
	case "resume":
		reply, err = h.music.Resume(ctx, m.GuildID)
	case "skip":
		reply, err = h.music.Skip(ctx, m.GuildID)
	case "leave":
		reply, err = h.music.Leave(ctx, m.GuildID)
	case "panel":
		err = h.panel(ctx, m)
	case "setemojis":
		reply, err = h.setEmojis(ctx, m, args)
	default:
		return
	}

	if err != nil {
		reply = userMessage(err, "", "command", name, "guildID", m.GuildID)
	}
	if reply == "" {
		return
	}
	if _, err := s.ChannelMessageSend(m.ChannelID, reply); err != nil {
		slog.Warn("Failed to reply", "command", name, "channelID", m.ChannelID, "error", err)
	}
}

func (h *Handler) join(ctx context.Context, m *discordgo.MessageCreate, arg string) (string, error) {
	var channelID string
	if arg != "" && m.GuildID != "" {
		ch, err := voice.ResolveGuildChannel(h.state, m.GuildID, arg)
		if err != nil {
			slog.Debug("Voice channel not resolved", "guildID", m.GuildID, "arg", arg, "error", err)
			return msgVoiceChannelNotFound, nil
		}
		channelID = ch.ID
	}
	return h.music.Join(ctx, h.request(m.GuildID, m.ChannelID, m.Author.ID), channelID)
}

func (h *Handler) play(ctx context.Context, m *discordgo.MessageCreate, query string) (string, error) {
	if m.GuildID == "" {
		return "", nil
	}
	var file *discordgo.MessageAttachment
	if len(m.Attachments) > 0 {
		file = m.Attachments[0]
	}
	if query == "" && file == nil {
		return "", nil
	}
	return h.music.Play(ctx, h.request(m.GuildID, m.ChannelID, m.Author.ID), query, file)
}

func (h *Handler) panel(ctx context.Context, m *discordgo.MessageCreate) error {
	if m.GuildID == "" {
		return nil
	}
	if _, err := h.music.RecordTextChannel(ctx, m.GuildID, m.ChannelID); err != nil {
		slog.Warn("Failed to record text channel", "guildID", m.GuildID, "channelID", m.ChannelID, "error", err)
	}
	return h.music.SendPanel(ctx, m.GuildID, m.ChannelID, m.Author.ID)
}

func (h *Handler) setEmojis(ctx context.Context, m *discordgo.MessageCreate, args string) (string, error) {
	if m.GuildID == "" {
		return msgGuildOnly, nil
	}
	fields := strings.Fields(args)
	options := make(commandOptions, len(fields))
	for i, v := range fields {
		if i >= len(emojiOptions) {
			break
		}
		options[emojiOptions[i].name] = &discordgo.ApplicationCommandInteractionDataOption{
			Name:  emojiOptions[i].name,
			Type:  discordgo.ApplicationCommandOptionString,
			Value: v,
		}
	}
	if err := h.music.SetEmojis(ctx, m.GuildID, options.emojis()); err != nil {
		return "", err
	}
	return msgEmojisUpdated, nil
}
