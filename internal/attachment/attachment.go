// Package attachment stages files uploaded to Discord in blob storage so
// the audio node can fetch them.
package attachment

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/glizzus/sound-panel/internal/datalayer"
	"github.com/glizzus/sound-panel/internal/generator"
	"github.com/go-resty/resty/v2"
)

const (
	keyPrefix = "attachments"
	// URLExpiry is how long a staged file can be fetched.
	URLExpiry = time.Hour
)

// TooLargeError is returned for attachments above the size limit.
type TooLargeError struct {
	Size int64
	Max  int64
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("attachment too large: %d bytes, max %d", e.Size, e.Max)
}

var _ error = (*TooLargeError)(nil)

// Piper downloads an attachment and immediately uploads it.
type Piper struct {
	storage     datalayer.BlobStorage
	client      *resty.Client
	idGenerator generator.Generator[string]
	maxBytes    int64
}

func NewPiper(storage datalayer.BlobStorage, maxBytes int64) *Piper {
	return &Piper{
		storage:     storage,
		client:      resty.New().SetTimeout(2 * time.Minute),
		idGenerator: &generator.UUIDV4Generator{},
		maxBytes:    maxBytes,
	}
}

// Key is where an attachment is stored.
func Key(id, filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "audio"
	}
	return path.Join(keyPrefix, id, name)
}

// Stage copies a into storage and returns a presigned URL for it.
func (p *Piper) Stage(ctx context.Context, a *discordgo.MessageAttachment) (string, error) {
	if int64(a.Size) > p.maxBytes {
		return "", &TooLargeError{Size: int64(a.Size), Max: p.maxBytes}
	}

	id, err := p.idGenerator.Next()
	if err != nil {
		return "", fmt.Errorf("failed to generate key: %w", err)
	}
	key := Key(id, a.Filename)

	slog.Info("Downloading attachment", "url", a.URL, "size", a.Size)
	resp, err := p.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(a.URL)
	if err != nil {
		return "", fmt.Errorf("failed to make request: %w", err)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("failed to download attachment: %s", resp.Status())
	}

	size := resp.RawResponse.ContentLength
	if size > p.maxBytes {
		return "", &TooLargeError{Size: size, Max: p.maxBytes}
	}

	contentType := resp.Header().Get("Content-Type")
	if contentType == "" {
		contentType = a.ContentType
	}

	err = p.storage.Put(ctx, key, &capReader{r: body, max: p.maxBytes}, datalayer.PutOptions{
		Size:        size,
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload attachment: %w", err)
	}

	url, err := p.storage.PresignedURL(ctx, key, URLExpiry)
	if err != nil {
		return "", fmt.Errorf("failed to presign attachment: %w", err)
	}
	return url, nil
}

// capReader fails once more than max bytes were read, for bodies without
// a content length.
type capReader struct {
	r    io.Reader
	read int64
	max  int64
}

func (c *capReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.read += int64(n)
	if c.read > c.max {
		return n, &TooLargeError{Size: c.read, Max: c.max}
	}
	return n, err
}
