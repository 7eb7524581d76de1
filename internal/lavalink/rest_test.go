package lavalink

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jarcoal/httpmock"
)

const testBaseURL = "http://lavalink.test:2333"

func newMockedRESTClient(t *testing.T) *RESTClient {
	t.Helper()
	client := NewRESTClient(testBaseURL, "youshallnotpass")
	httpmock.ActivateNonDefault(client.client.GetClient())
	t.Cleanup(httpmock.DeactivateAndReset)
	return client
}

func TestRESTClientLoadTracks(t *testing.T) {
	client := newMockedRESTClient(t)

	httpmock.RegisterResponder(http.MethodGet, testBaseURL+"/v4/loadtracks",
		func(req *http.Request) (*http.Response, error) {
			if got := req.URL.Query().Get("identifier"); got != "ytsearch:never gonna" {
				return httpmock.NewStringResponse(http.StatusBadRequest, "bad identifier "+got), nil
			}
			if got := req.Header.Get("Authorization"); got != "youshallnotpass" {
				return httpmock.NewStringResponse(http.StatusUnauthorized, ""), nil
			}
			return httpmock.NewJsonResponse(http.StatusOK, map[string]any{
				"loadType": "search",
				"data": []map[string]any{
					{"encoded": "abc", "info": map[string]any{"title": "Never Gonna Give You Up"}},
				},
			})
		})

	result, err := client.LoadTracks(t.Context(), "ytsearch:never gonna")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	track, err := result.First()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if track == nil || track.Encoded != "abc" {
		t.Errorf("expected track abc, got %+v", track)
	}
}

func TestRESTClientUpdatePlayer(t *testing.T) {
	client := newMockedRESTClient(t)

	var body map[string]any
	var noReplace string
	httpmock.RegisterResponder(http.MethodPatch, testBaseURL+"/v4/sessions/s1/players/g1",
		func(req *http.Request) (*http.Response, error) {
			noReplace = req.URL.Query().Get("noReplace")
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				return nil, err
			}
			return httpmock.NewJsonResponse(http.StatusOK, map[string]any{
				"guildId": "g1",
				"volume":  50,
				"paused":  false,
			})
		})

	volume := 50
	info, err := client.UpdatePlayer(t.Context(), "s1", "g1", PlayerUpdate{Volume: &volume}, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if info.Volume != 50 || info.GuildID != "g1" {
		t.Errorf("unexpected player info: %+v", info)
	}
	if noReplace != "true" {
		t.Errorf("expected noReplace=true, got %q", noReplace)
	}
	if diff := cmp.Diff(map[string]any{"volume": float64(50)}, body); diff != "" {
		t.Errorf("request body mismatch (-want +got):\n%s", diff)
	}
}

func TestRESTClientError(t *testing.T) {
	client := newMockedRESTClient(t)

	httpmock.RegisterResponder(http.MethodDelete, testBaseURL+"/v4/sessions/s1/players/g1",
		httpmock.NewJsonResponderOrPanic(http.StatusNotFound, map[string]any{
			"timestamp": 1667857581613,
			"status":    404,
			"error":     "Not Found",
			"message":   "Session not found",
			"path":      "/v4/sessions/s1/players/g1",
		}))

	err := client.DestroyPlayer(t.Context(), "s1", "g1")
	var restErr *RESTError
	if !errors.As(err, &restErr) {
		t.Fatalf("expected a RESTError, got %v", err)
	}
	if restErr.Status != http.StatusNotFound || restErr.Message != "Session not found" {
		t.Errorf("unexpected error: %+v", restErr)
	}
}

func TestRESTClientErrorWithoutBody(t *testing.T) {
	client := newMockedRESTClient(t)

	httpmock.RegisterResponder(http.MethodPatch, testBaseURL+"/v4/sessions/s1",
		httpmock.NewStringResponder(http.StatusInternalServerError, "boom"))

	err := client.UpdateSession(t.Context(), "s1", SessionUpdate{Resuming: true, Timeout: 60})
	var restErr *RESTError
	if !errors.As(err, &restErr) {
		t.Fatalf("expected a RESTError, got %v", err)
	}
	if restErr.Status != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", restErr.Status)
	}
}

func TestRESTClientVersion(t *testing.T) {
	client := newMockedRESTClient(t)

	httpmock.RegisterResponder(http.MethodGet, testBaseURL+"/version",
		httpmock.NewStringResponder(http.StatusOK, "4.0.8"))

	version, err := client.Version(t.Context())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if version != "4.0.8" {
		t.Errorf("expected 4.0.8, got %s", version)
	}
}

func TestRESTClientStats(t *testing.T) {
	client := newMockedRESTClient(t)

	httpmock.RegisterResponder(http.MethodGet, testBaseURL+"/v4/stats",
		httpmock.NewStringResponder(http.StatusOK, `{
			"players": 3,
			"playingPlayers": 1,
			"uptime": 123456,
			"memory": {"free": 1, "used": 2, "allocated": 3, "reservable": 4},
			"cpu": {"cores": 4, "systemLoad": 0.5, "lavalinkLoad": 0.25},
			"frameStats": null
		}`).HeaderAdd(http.Header{"Content-Type": []string{"application/json"}}))

	stats, err := client.Stats(t.Context())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := &StatsMessage{Players: 3, PlayingPlayers: 1, Uptime: 123456}
	want.Memory.Free, want.Memory.Used, want.Memory.Allocated, want.Memory.Reservable = 1, 2, 3, 4
	want.CPU.Cores, want.CPU.SystemLoad, want.CPU.LavalinkLoad = 4, 0.5, 0.25
	if diff := cmp.Diff(want, stats); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}
}

func TestRESTClientStatsError(t *testing.T) {
	client := newMockedRESTClient(t)

	httpmock.RegisterResponder(http.MethodGet, testBaseURL+"/v4/stats",
		httpmock.NewStringResponder(http.StatusUnauthorized, ""))

	if _, err := client.Stats(t.Context()); err == nil {
		t.Fatal("expected an error for an unauthorized request")
	}
}
