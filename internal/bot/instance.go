package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/gorilla/websocket"

	"github.com/glizzus/sound-panel/internal/config"
	"github.com/glizzus/sound-panel/internal/emoji"
	"github.com/glizzus/sound-panel/internal/handler"
	"github.com/glizzus/sound-panel/internal/lavalink"
	"github.com/glizzus/sound-panel/internal/music"
	"github.com/glizzus/sound-panel/internal/panel"
	"github.com/glizzus/sound-panel/internal/store"
)

// closeAuthenticationFailed is the gateway close code for an invalid token.
const closeAuthenticationFailed = 4004

// Shared holds what every bot of the process uses.
type Shared struct {
	Discord  *config.DiscordConfig
	Lavalink *config.LavalinkConfig
	Store    store.GuildStore
	Emojis   *emoji.Registry
	// Attachments is nil when uploaded files are played from their
	// Discord URL.
	Attachments music.AttachmentStager
}

// Instance is one lifetime of one bot: a gateway session and, once the
// session is ready, a Lavalink node and the command handlers.
type Instance struct {
	index  int
	token  string
	shared *Shared
	logger *slog.Logger

	mu      sync.RWMutex
	handler *handler.Handler
	voice   *handler.VoiceForwarder
}

func NewInstance(index int, token string, shared *Shared) *Instance {
	return &Instance{
		index:  index,
		token:  token,
		shared: shared,
		logger: slog.With("bot", index+1),
	}
}

var _ Runner = (*Instance)(nil)

func (b *Instance) Run(ctx context.Context) error {
	session, err := handler.NewSession(b.token, b.shared.Discord.MaxMessages, handler.Handlers{
		Ready: func(s *discordgo.Session, r *discordgo.Ready) {
			b.onReady(ctx, s, r)
		},
		MessageCreate: func(s *discordgo.Session, m *discordgo.MessageCreate) {
			if h := b.commands(); h != nil {
				h.MessageCreate(s, m)
			}
		},
		InteractionCreate: func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			if h := b.commands(); h != nil {
				h.InteractionCreate(s, i)
			}
		},
		VoiceStateUpdate: func(s *discordgo.Session, v *discordgo.VoiceStateUpdate) {
			if f := b.forwarder(); f != nil {
				f.VoiceStateUpdate(v)
			}
		},
		VoiceServerUpdate: func(s *discordgo.Session, v *discordgo.VoiceServerUpdate) {
			if f := b.forwarder(); f != nil {
				f.VoiceServerUpdate(v)
			}
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	if _, err := session.User("@me"); err != nil {
		return loginError(err)
	}
	if err := session.Open(); err != nil {
		return loginError(err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			b.logger.Warn("Failed to close session", "error", err)
		}
	}()

	<-ctx.Done()
	return ctx.Err()
}

// loginError marks errors that mean the token was rejected with
// ErrLoginFailure.
func loginError(err error) error {
	var (
		restErr  *discordgo.RESTError
		closeErr *websocket.CloseError
	)
	if errors.Is(err, discordgo.ErrUnauthorized) ||
		(errors.As(err, &restErr) && restErr.Response != nil && restErr.Response.StatusCode == http.StatusUnauthorized) ||
		(errors.As(err, &closeErr) && closeErr.Code == closeAuthenticationFailed) {
		return fmt.Errorf("%w: %v", ErrLoginFailure, err)
	}
	return fmt.Errorf("failed to connect to discord: %w", err)
}

func (b *Instance) commands() *handler.Handler {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.handler
}

func (b *Instance) forwarder() *handler.VoiceForwarder {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.voice
}

// onReady builds the bot's playback stack the first time the session is
// ready. Later READY events come from reconnects and keep it.
func (b *Instance) onReady(ctx context.Context, s *discordgo.Session, r *discordgo.Ready) {
	b.mu.Lock()
	defer b.mu.Unlock()

	logger := b.logger.With("user", r.User.Username)
	if b.handler != nil {
		logger.Info("Session reconnected")
		return
	}

	userID := r.User.ID
	lavaCfg := b.shared.Lavalink

	var svc *music.Service
	node := lavalink.NewNode(lavalink.NodeConfig{
		WebSocketURL: lavaCfg.WebSocketURL(),
		Password:     lavaCfg.Password,
		UserID:       userID,
		RetryDelay:   lavaCfg.RetryDelay,
	}, lavalink.NewRESTClient(lavaCfg.BaseURL(), lavaCfg.Password), func(e lavalink.Event) {
		svc.HandleEvent(e)
	})

	svc = music.NewService(
		music.Config{BotUserID: userID, SearchPrefix: lavaCfg.SearchPrefix},
		node,
		handler.CachedSession{Session: s},
		b.shared.Store,
		b.shared.Emojis,
		panel.NewRegistry(panel.DefaultTTL, nil),
	)
	if b.shared.Attachments != nil {
		svc.WithAttachments(b.shared.Attachments)
	}

	go func() {
		if err := node.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("Lavalink node stopped", "error", err)
		}
	}()

	b.handler = handler.New(svc, s.State, b.shared.Discord.Prefix, userID)
	b.voice = handler.NewVoiceForwarder(node, userID)

	if err := handler.EstablishCommands(s, s.State.User.ID, b.shared.Discord.GuildID); err != nil {
		logger.Error("Failed to sync slash commands", "error", err)
	}
	logger.Info("Bot is ready", "userID", userID, "guilds", len(r.Guilds))
}
