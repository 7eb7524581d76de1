package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/glizzus/sound-panel/internal/attachment"
	"github.com/glizzus/sound-panel/internal/bot"
	"github.com/glizzus/sound-panel/internal/config"
	"github.com/glizzus/sound-panel/internal/datalayer"
	"github.com/glizzus/sound-panel/internal/emoji"
	"github.com/glizzus/sound-panel/internal/logging"
	"github.com/glizzus/sound-panel/internal/music"
	"github.com/glizzus/sound-panel/internal/store"
)

func runBotsForever() error {
	if err := config.LoadEnv(); err != nil {
		if os.IsNotExist(err) {
			slog.Warn("No .env file found, continuing without it")
		} else {
			return fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	logConfig, err := config.NewLogConfigFromEnv()
	if err != nil {
		return fmt.Errorf("failed to load log config: %w", err)
	}
	flush, err := logging.Setup(os.Stdout, logConfig)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer flush()

	discordConfig, err := config.NewDiscordConfigFromEnv()
	if err != nil {
		return fmt.Errorf("failed to load discord config: %w", err)
	}
	lavalinkConfig, err := config.NewLavalinkConfigFromEnv()
	if err != nil {
		return fmt.Errorf("failed to load lavalink config: %w", err)
	}
	emojiConfig, err := config.NewEmojiConfigFromEnv()
	if err != nil {
		return fmt.Errorf("failed to load emoji config: %w", err)
	}
	storageConfig, err := config.NewStorageConfigFromEnv()
	if err != nil {
		return fmt.Errorf("failed to load storage config: %w", err)
	}
	minioConfig, err := config.NewMinioConfigFromEnv()
	if err != nil {
		return fmt.Errorf("failed to load minio config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	guildStore, err := store.Open(ctx, storageConfig)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer func() {
		if err := guildStore.Close(); err != nil {
			slog.Warn("Failed to close store", "error", err)
		}
	}()

	shared := &bot.Shared{
		Discord:  discordConfig,
		Lavalink: lavalinkConfig,
		Store:    guildStore,
		Emojis:   emoji.NewRegistry(emoji.Defaults(emojiConfig), guildStore),
	}

	if minioConfig.Enabled() {
		stager, err := newAttachmentStager(ctx, minioConfig)
		if err != nil {
			return err
		}
		shared.Attachments = stager
	} else {
		slog.Info("MinIO is not configured, attachments are played from Discord")
	}

	tokens := config.LoadTokens(os.Environ())
	slog.Info("Starting bots", "count", len(tokens), "storage", storageConfig.Backend)

	launcher := bot.NewLauncher(func(index int, token string) bot.Runner {
		return bot.NewInstance(index, token, shared)
	}, discordConfig.StartDelay(), discordConfig.RestartDelay())

	return launcher.RunAll(ctx, tokens)
}

func newAttachmentStager(ctx context.Context, cfg *config.MinioConfig) (music.AttachmentStager, error) {
	minioStorage, err := datalayer.NewMinioStorage(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create minio storage: %w", err)
	}
	if err := minioStorage.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure minio bucket: %w", err)
	}
	return attachment.NewPiper(minioStorage, cfg.MaxUploadBytes), nil
}

func main() {
	if err := runBotsForever(); err != nil {
		log.Fatalf("failed to run bots: %v", err)
	}
}
