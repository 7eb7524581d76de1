package config

import (
	"context"

	"github.com/sethvargo/go-envconfig"
)

// MinioConfig configures the bucket used to stage uploaded audio files.
// Attachment playback is disabled when Endpoint is empty.
type MinioConfig struct {
	Endpoint       string `env:"MINIO_ENDPOINT"`
	Username       string `env:"MINIO_USERNAME" validate:"required_with=Endpoint"`
	Password       string `env:"MINIO_PASSWORD" validate:"required_with=Endpoint"`
	Bucket         string `env:"MINIO_BUCKET, default=soundpanel"`
	Secure         bool   `env:"MINIO_SECURE, default=false"`
	MaxUploadBytes int64  `env:"ATTACHMENT_MAX_BYTES, default=26214400" validate:"gt=0"`
}

func NewMinioConfigFromEnv() (*MinioConfig, error) {
	return newMinioConfig(context.Background(), nil)
}

func newMinioConfig(ctx context.Context, l envconfig.Lookuper) (*MinioConfig, error) {
	var cfg MinioConfig
	if err := process(ctx, l, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *MinioConfig) Enabled() bool {
	return c.Endpoint != ""
}
