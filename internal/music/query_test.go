package music_test

import (
	"testing"

	"github.com/glizzus/sound-panel/internal/music"
)

func TestIdentifier(t *testing.T) {
	tests := []struct {
		query  string
		prefix string
		want   string
	}{
		{query: "never gonna give you up", prefix: "ytsearch", want: "ytsearch:never gonna give you up"},
		{query: "  padded  ", prefix: "scsearch:", want: "scsearch:padded"},
		{query: "https://www.youtube.com/watch?v=dQw4w9WgXcQ", prefix: "ytsearch", want: "https://www.youtube.com/watch?v=dQw4w9WgXcQ"},
		{query: "scsearch:already prefixed", prefix: "ytsearch", want: "scsearch:already prefixed"},
		{query: "no prefix", prefix: "", want: "no prefix"},
		{query: "ftp://not-played", prefix: "ytsearch", want: "ytsearch:ftp://not-played"},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			if got := music.Identifier(tt.query, tt.prefix); got != tt.want {
				t.Errorf("Identifier(%q, %q) = %q, want %q", tt.query, tt.prefix, got, tt.want)
			}
		})
	}
}
