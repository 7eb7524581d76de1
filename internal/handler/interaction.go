package handler

import (
	"context"
	"errors"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/glizzus/sound-panel/internal/music"
	"github.com/glizzus/sound-panel/internal/panel"
	"github.com/glizzus/sound-panel/internal/util"
)

func interactionUserID(i *discordgo.Interaction) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

func ephemeral(content string) *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	}
}

// InteractionCreate runs slash commands and panel buttons.
func (h *Handler) InteractionCreate(s DiscordSession, i *discordgo.InteractionCreate) {
	ctx, cancel := commandContext()
	defer cancel()

	var err error
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		err = h.command(ctx, s, i.Interaction)
	case discordgo.InteractionMessageComponent:
		err = h.component(ctx, s, i.Interaction)
	}
	if err != nil {
		slog.Error("Failed to handle interaction", "interactionID", i.ID, "guildID", i.GuildID, "error", err)
	}
}

func (h *Handler) command(ctx context.Context, s DiscordSession, i *discordgo.Interaction) error {
	if i.GuildID == "" {
		return nil
	}
	data := i.ApplicationCommandData()
	options := optionsByName(data.Options)
	userID := interactionUserID(i)

	switch data.Name {
	case "join":
		reply, err := h.music.Join(ctx, h.request(i.GuildID, i.ChannelID, userID), options.value("channel"))
		if err != nil {
			reply = userMessage(err, msgJoinFailed, "command", data.Name, "guildID", i.GuildID)
		}
		return s.InteractionRespond(i, ephemeral(reply))

	case "panel":
		if _, err := h.music.RecordTextChannel(ctx, i.GuildID, i.ChannelID); err != nil {
			slog.Warn("Failed to record text channel", "guildID", i.GuildID, "channelID", i.ChannelID, "error", err)
		}
		err := s.InteractionRespond(i, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
		})
		if err != nil {
			return err
		}
		reply := msgPanelSent
		if err := h.music.SendPanel(ctx, i.GuildID, i.ChannelID, userID); err != nil {
			reply = userMessage(err, msgUnexpected, "command", data.Name, "guildID", i.GuildID)
		}
		_, err = s.FollowupMessageCreate(i, false, &discordgo.WebhookParams{
			Content: reply,
			Flags:   discordgo.MessageFlagsEphemeral,
		})
		return err

	case "setemojis":
		reply := msgEmojisUpdatedSlash
		if err := h.music.SetEmojis(ctx, i.GuildID, options.emojis()); err != nil {
			reply = userMessage(err, msgUnexpected, "command", data.Name, "guildID", i.GuildID)
		}
		return s.InteractionRespond(i, ephemeral(reply))

	case "play":
		var file *discordgo.MessageAttachment
		if options.value("file") != "" && data.Resolved != nil {
			// The command takes a single file.
			f, err := util.GetOne(data.Resolved.Attachments)
			if err != nil {
				return s.InteractionRespond(i, ephemeral(msgUnexpected))
			}
			file = f
		}
		query := options.value("query")
		if query == "" && file == nil {
			return s.InteractionRespond(i, ephemeral(msgUnexpected))
		}

		// Track resolution can outlast the interaction deadline.
		err := s.InteractionRespond(i, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		})
		if err != nil {
			return err
		}
		reply, err := h.music.Play(ctx, h.request(i.GuildID, i.ChannelID, userID), query, file)
		if err != nil {
			reply = userMessage(err, msgUnexpected, "command", data.Name, "guildID", i.GuildID)
		}
		_, err = s.FollowupMessageCreate(i, false, &discordgo.WebhookParams{Content: reply})
		return err
	}
	return nil
}

func (h *Handler) component(ctx context.Context, s DiscordSession, i *discordgo.Interaction) error {
	action, panelID, ok := panel.ParseCustomID(i.MessageComponentData().CustomID)
	if !ok {
		return nil
	}

	reply, err := h.music.Press(ctx, panelID, interactionUserID(i), action)
	if errors.Is(err, music.ErrPanelExpired) {
		return s.InteractionRespond(i, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseDeferredMessageUpdate,
		})
	}
	if err != nil {
		reply = userMessage(err, msgUnexpected, "action", action, "panelID", panelID)
	}
	return s.InteractionRespond(i, ephemeral(reply))
}
