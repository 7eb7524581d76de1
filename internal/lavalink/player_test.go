package lavalink

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
)

type recordedUpdates struct {
	mu      sync.Mutex
	updates []PlayerUpdate
}

func (r *recordedUpdates) all() []PlayerUpdate {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]PlayerUpdate(nil), r.updates...)
}

func newTestPlayer(t *testing.T) (*Player, *recordedUpdates) {
	t.Helper()
	rest := newMockedRESTClient(t)
	node := NewNode(NodeConfig{UserID: "42"}, rest, nil)
	node.sessionID = "s1"

	recorded := &recordedUpdates{}
	httpmock.RegisterResponder(http.MethodPatch, testBaseURL+"/v4/sessions/s1/players/g1",
		func(req *http.Request) (*http.Response, error) {
			var update PlayerUpdate
			if err := json.NewDecoder(req.Body).Decode(&update); err != nil {
				return nil, err
			}
			recorded.mu.Lock()
			recorded.updates = append(recorded.updates, update)
			recorded.mu.Unlock()
			return httpmock.NewJsonResponse(http.StatusOK, map[string]any{"guildId": "g1"})
		})

	return node.Player("g1"), recorded
}

func TestPlayerVoiceHandshake(t *testing.T) {
	player, recorded := newTestPlayer(t)
	ctx := t.Context()

	if err := player.SetVoiceState(ctx, "vc1", "voice-session"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := len(recorded.all()); n != 0 {
		t.Fatalf("expected no update before the voice server is known, got %d", n)
	}

	if err := player.SetVoiceServer(ctx, "token", "eu.discord.media"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	updates := recorded.all()
	if len(updates) != 1 || updates[0].Voice == nil {
		t.Fatalf("expected one voice update, got %+v", updates)
	}
	want := VoiceState{Token: "token", Endpoint: "eu.discord.media", SessionID: "voice-session"}
	if *updates[0].Voice != want {
		t.Errorf("expected %+v, got %+v", want, *updates[0].Voice)
	}

	waitCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := player.WaitConnected(waitCtx); err != nil {
		t.Errorf("expected the player to be connected: %v", err)
	}
	if player.ChannelID() != "vc1" {
		t.Errorf("expected channel vc1, got %s", player.ChannelID())
	}

	t.Run("Leaving the channel should reset the connection", func(t *testing.T) {
		if err := player.SetVoiceState(ctx, "", ""); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if player.Connected() {
			t.Error("expected the player to be disconnected")
		}

		shortCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
		defer cancel()
		if err := player.WaitConnected(shortCtx); err == nil {
			t.Error("expected WaitConnected to time out after leaving")
		}
	})
}

func TestPlayerPlayback(t *testing.T) {
	player, recorded := newTestPlayer(t)
	ctx := t.Context()

	track := Track{Encoded: "abc", Info: TrackInfo{Title: "Song"}, UserData: &UserData{RequesterID: "7"}}
	if err := player.Play(ctx, track); err != nil {
		t.Fatalf("failed to play: %v", err)
	}
	if current := player.Current(); current == nil || current.Encoded != "abc" {
		t.Fatalf("expected abc to be current, got %+v", current)
	}

	if err := player.SetPaused(ctx, true); err != nil {
		t.Fatalf("failed to pause: %v", err)
	}
	if !player.Paused() {
		t.Error("expected the player to be paused")
	}

	if err := player.SetVolume(ctx, 150); err != nil {
		t.Fatalf("failed to set volume: %v", err)
	}
	if player.Volume() != 150 {
		t.Errorf("expected volume 150, got %d", player.Volume())
	}

	if err := player.Stop(ctx); err != nil {
		t.Fatalf("failed to stop: %v", err)
	}
	if player.Playing() {
		t.Error("expected the player to be idle")
	}

	updates := recorded.all()
	if len(updates) != 4 {
		t.Fatalf("expected 4 updates, got %d", len(updates))
	}
	play := updates[0]
	if play.Track == nil || play.Track.Encoded == nil || *play.Track.Encoded != "abc" {
		t.Errorf("expected the play update to carry the track, got %+v", play.Track)
	}
	if play.Track.UserData == nil || play.Track.UserData.RequesterID != "7" {
		t.Errorf("expected user data to be forwarded, got %+v", play.Track.UserData)
	}
	if play.Volume == nil || *play.Volume != DefaultVolume {
		t.Errorf("expected the default volume, got %v", play.Volume)
	}
	stop := updates[3]
	if stop.Track == nil || stop.Track.Encoded != nil {
		t.Errorf("expected the stop update to clear the track, got %+v", stop.Track)
	}
}

func TestPlayerEvents(t *testing.T) {
	player, _ := newTestPlayer(t)

	track := Track{Encoded: "abc"}
	player.handleEvent(&TrackStartEvent{GuildID: "g1", Track: track})
	if !player.Playing() {
		t.Fatal("expected a started track to be current")
	}

	player.handleEvent(&TrackEndEvent{GuildID: "g1", Track: track, Reason: TrackEndReplaced})
	if !player.Playing() {
		t.Error("expected a replaced track to keep its successor current")
	}

	player.handleEvent(&TrackEndEvent{GuildID: "g1", Track: track, Reason: TrackEndFinished})
	if player.Playing() {
		t.Error("expected a finished track to leave the player idle")
	}
}

func TestPlayerWithoutSession(t *testing.T) {
	node := NewNode(NodeConfig{UserID: "42"}, NewRESTClient(testBaseURL, ""), nil)
	player := node.Player("g1")

	if err := player.Play(t.Context(), Track{Encoded: "abc"}); err != ErrNodeNotReady {
		t.Errorf("expected ErrNodeNotReady, got %v", err)
	}
}
