package e2e_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/glizzus/sound-panel/internal/config"
	"github.com/glizzus/sound-panel/internal/emoji"
	"github.com/glizzus/sound-panel/internal/handler"
	"github.com/glizzus/sound-panel/internal/lavalink"
	"github.com/glizzus/sound-panel/internal/lavalink/lavalinktest"
	"github.com/glizzus/sound-panel/internal/music"
	"github.com/glizzus/sound-panel/internal/panel"
	"github.com/glizzus/sound-panel/internal/store"
)

const (
	textChannelID  = "200000000000000001"
	voiceChannelID = "200000000000000002"
	userID         = "300000000000000001"
)

// discord plays the gateway: joins are answered with voice credentials
// and posted messages are recorded.
type discord struct {
	node    *lavalink.Node
	guildID string

	mu     sync.Mutex
	posted []*discordgo.MessageSend
}

func (d *discord) ChannelVoiceJoinManual(guildID, channelID string, mute, deaf bool) error {
	player, ok := d.node.ExistingPlayer(guildID)
	if !ok {
		return nil
	}
	ctx := context.Background()
	if channelID == "" {
		return player.SetVoiceState(ctx, "", "")
	}
	if err := player.SetVoiceState(ctx, channelID, "session"); err != nil {
		return err
	}
	return player.SetVoiceServer(ctx, "token", "voice.discord.test")
}

func (d *discord) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.posted = append(d.posted, data)
	return &discordgo.Message{ChannelID: channelID}, nil
}

func (d *discord) Channel(channelID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	switch channelID {
	case textChannelID:
		return &discordgo.Channel{ID: channelID, GuildID: d.guildID, Name: "music", Type: discordgo.ChannelTypeGuildText}, nil
	case voiceChannelID:
		return &discordgo.Channel{ID: channelID, GuildID: d.guildID, Name: "Lounge", Type: discordgo.ChannelTypeGuildVoice}, nil
	}
	return nil, fmt.Errorf("unknown channel %s", channelID)
}

func (d *discord) lastPanel(t *testing.T) *discordgo.MessageSend {
	t.Helper()
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.posted) == 0 {
		t.Fatal("expected a panel to be posted")
	}
	return d.posted[len(d.posted)-1]
}

type state struct {
	guildID string
}

func (s *state) Guild(guildID string) (*discordgo.Guild, error) {
	return &discordgo.Guild{ID: guildID}, nil
}

func (s *state) VoiceState(guildID, uid string) (*discordgo.VoiceState, error) {
	if uid != userID {
		return nil, discordgo.ErrStateNotFound
	}
	return &discordgo.VoiceState{GuildID: guildID, UserID: uid, ChannelID: voiceChannelID}, nil
}

type mockSession struct {
	mu        sync.Mutex
	sent      []string
	responses []*discordgo.InteractionResponse
}

func (m *mockSession) ChannelMessageSend(channelID string, content string, opts ...discordgo.RequestOption) (*discordgo.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, content)
	return &discordgo.Message{}, nil
}

func (m *mockSession) InteractionRespond(i *discordgo.Interaction, resp *discordgo.InteractionResponse, opts ...discordgo.RequestOption) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
	return nil
}

func (m *mockSession) FollowupMessageCreate(i *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, opts ...discordgo.RequestOption) (*discordgo.Message, error) {
	return &discordgo.Message{}, nil
}

var _ handler.DiscordSession = (*mockSession)(nil)

// bot is one bot user wired like the real process, minus the gateway.
type bot struct {
	t       *testing.T
	guildID string
	discord *discord
	session *mockSession
	handler *handler.Handler
	events  chan lavalink.Event
	svc     *music.Service
}

func newBot(t *testing.T, lava *lavalinktest.Server, botUserID, guildID string, s store.GuildStore) *bot {
	t.Helper()

	events := make(chan lavalink.Event, 16)
	node := lava.StartNode(botUserID, func(e lavalink.Event) { events <- e })
	d := &discord{node: node, guildID: guildID}

	emojis := emoji.NewRegistry(emoji.Defaults(&config.EmojiConfig{
		Pause: "⏸️", Resume: "▶️", Stop: "⏹️", Skip: "⏭️", Restart: "🔁", VolUp: "🔼", VolDown: "🔽",
	}), s)
	svc := music.NewService(
		music.Config{BotUserID: botUserID, SearchPrefix: "ytsearch", ConnectTimeout: 5 * time.Second},
		node, d, s, emojis, panel.NewRegistry(panel.DefaultTTL, nil),
	)

	return &bot{
		t:       t,
		guildID: guildID,
		discord: d,
		session: &mockSession{},
		handler: handler.New(svc, &state{guildID: guildID}, "!", botUserID),
		events:  events,
		svc:     svc,
	}
}

// say runs a prefix command and returns what the bot replied.
func (b *bot) say(content string) []string {
	b.t.Helper()
	b.handler.MessageCreate(b.session, &discordgo.MessageCreate{Message: &discordgo.Message{
		GuildID:   b.guildID,
		ChannelID: textChannelID,
		Content:   content,
		Author:    &discordgo.User{ID: userID},
	}})

	b.session.mu.Lock()
	defer b.session.mu.Unlock()
	sent := b.session.sent
	b.session.sent = nil
	return sent
}

// press clicks a panel button and returns the interaction response.
func (b *bot) press(customID string) *discordgo.InteractionResponse {
	b.t.Helper()
	b.handler.InteractionCreate(b.session, &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type:    discordgo.InteractionMessageComponent,
		GuildID: b.guildID,
		Member:  &discordgo.Member{User: &discordgo.User{ID: userID}},
		Data:    discordgo.MessageComponentInteractionData{CustomID: customID},
	}})

	b.session.mu.Lock()
	defer b.session.mu.Unlock()
	if len(b.session.responses) == 0 {
		b.t.Fatal("expected an interaction response")
	}
	return b.session.responses[len(b.session.responses)-1]
}

// handleNextEvent waits for the node to deliver an event and handles it.
func (b *bot) handleNextEvent() {
	b.t.Helper()
	select {
	case e := <-b.events:
		b.svc.HandleEvent(e)
	case <-time.After(5 * time.Second):
		b.t.Fatal("no lavalink event arrived")
	}
}

func buttonIDs(msg *discordgo.MessageSend) map[panel.Action]string {
	ids := make(map[panel.Action]string)
	for _, c := range msg.Components {
		row, ok := c.(discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, b := range row.Components {
			button, ok := b.(discordgo.Button)
			if !ok {
				continue
			}
			if action, _, ok := panel.ParseCustomID(button.CustomID); ok {
				ids[action] = button.CustomID
			}
		}
	}
	return ids
}
