package attachment

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/glizzus/sound-panel/internal/datalayer"
	"github.com/glizzus/sound-panel/internal/generator"
	"github.com/jarcoal/httpmock"
)

type memoryStorage struct {
	objects map[string][]byte
	types   map[string]string
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: make(map[string][]byte), types: make(map[string]string)}
}

func (m *memoryStorage) Put(_ context.Context, key string, data io.Reader, opts datalayer.PutOptions) error {
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	m.objects[key] = raw
	m.types[key] = opts.ContentType
	return nil
}

func (m *memoryStorage) PresignedURL(_ context.Context, key string, expiry time.Duration) (string, error) {
	return "https://blob.test/" + key + "?expires=" + expiry.String(), nil
}

var _ datalayer.BlobStorage = (*memoryStorage)(nil)

func newTestPiper(t *testing.T, maxBytes int64) (*Piper, *memoryStorage) {
	t.Helper()
	storage := newMemoryStorage()
	p := NewPiper(storage, maxBytes)
	p.idGenerator = &generator.SequenceGenerator{Prefix: "id"}
	httpmock.ActivateNonDefault(p.client.GetClient())
	t.Cleanup(httpmock.DeactivateAndReset)
	return p, storage
}

func TestPiperStage(t *testing.T) {
	p, storage := newTestPiper(t, 1024)

	httpmock.RegisterResponder(http.MethodGet, "https://cdn.discordapp.test/song.mp3",
		httpmock.NewBytesResponder(http.StatusOK, []byte("ID3 audio")).
			HeaderSet(http.Header{"Content-Type": {"audio/mpeg"}}))

	url, err := p.Stage(t.Context(), &discordgo.MessageAttachment{
		URL:      "https://cdn.discordapp.test/song.mp3",
		Filename: "song.mp3",
		Size:     9,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if want := "https://blob.test/attachments/id1/song.mp3?expires=1h0m0s"; url != want {
		t.Errorf("expected %s, got %s", want, url)
	}
	if got := storage.objects["attachments/id1/song.mp3"]; !bytes.Equal(got, []byte("ID3 audio")) {
		t.Errorf("unexpected object contents %q", got)
	}
	if got := storage.types["attachments/id1/song.mp3"]; got != "audio/mpeg" {
		t.Errorf("expected audio/mpeg, got %s", got)
	}
}

func TestPiperRejectsLargeAttachment(t *testing.T) {
	p, _ := newTestPiper(t, 4)

	_, err := p.Stage(t.Context(), &discordgo.MessageAttachment{
		URL:      "https://cdn.discordapp.test/big.mp3",
		Filename: "big.mp3",
		Size:     5,
	})
	var tooLarge *TooLargeError
	if !errors.As(err, &tooLarge) {
		t.Fatalf("expected a TooLargeError, got %v", err)
	}
	if httpmock.GetTotalCallCount() != 0 {
		t.Error("expected nothing to be downloaded")
	}
}

func TestPiperRejectsLargeBody(t *testing.T) {
	p, storage := newTestPiper(t, 4)

	httpmock.RegisterResponder(http.MethodGet, "https://cdn.discordapp.test/liar.mp3",
		httpmock.NewStringResponder(http.StatusOK, strings.Repeat("x", 10)))

	_, err := p.Stage(t.Context(), &discordgo.MessageAttachment{
		URL:      "https://cdn.discordapp.test/liar.mp3",
		Filename: "liar.mp3",
		Size:     1,
	})
	var tooLarge *TooLargeError
	if !errors.As(err, &tooLarge) {
		t.Fatalf("expected a TooLargeError, got %v", err)
	}
	if len(storage.objects) != 0 {
		t.Error("expected nothing to be stored")
	}
}

func TestPiperDownloadFailure(t *testing.T) {
	p, _ := newTestPiper(t, 1024)

	httpmock.RegisterResponder(http.MethodGet, "https://cdn.discordapp.test/gone.mp3",
		httpmock.NewStringResponder(http.StatusNotFound, "not found"))

	_, err := p.Stage(t.Context(), &discordgo.MessageAttachment{
		URL:      "https://cdn.discordapp.test/gone.mp3",
		Filename: "gone.mp3",
		Size:     1,
	})
	if err == nil {
		t.Fatal("expected an error")
	}
}

func TestKey(t *testing.T) {
	tests := map[string]string{
		"song.mp3":         "attachments/x/song.mp3",
		"../../etc/passwd": "attachments/x/passwd",
		"dir\\evil.ogg":    "attachments/x/evil.ogg",
		"":                 "attachments/x/audio",
	}
	for filename, want := range tests {
		if got := Key("x", filename); got != want {
			t.Errorf("Key(%q) = %s, want %s", filename, got, want)
		}
	}
}
