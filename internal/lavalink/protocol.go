// Package lavalink is a small client for the Lavalink v4 audio node:
// the REST API for loading tracks and driving players, and the websocket
// that reports player events.
package lavalink

import (
	"encoding/json"
	"fmt"
)

type TrackInfo struct {
	Identifier string  `json:"identifier"`
	IsSeekable bool    `json:"isSeekable"`
	Author     string  `json:"author"`
	Length     int64   `json:"length"`
	IsStream   bool    `json:"isStream"`
	Position   int64   `json:"position"`
	Title      string  `json:"title"`
	URI        *string `json:"uri"`
	ArtworkURL *string `json:"artworkUrl"`
	ISRC       *string `json:"isrc"`
	SourceName string  `json:"sourceName"`
}

// UserData travels with a track and comes back in every event about it.
type UserData struct {
	RequesterID   string `json:"requesterId,omitempty"`
	TextChannelID string `json:"textChannelId,omitempty"`
}

type Track struct {
	Encoded  string    `json:"encoded"`
	Info     TrackInfo `json:"info"`
	UserData *UserData `json:"userData,omitempty"`
}

// Title falls back to the identifier for tracks without metadata.
func (t *Track) Title() string {
	if t.Info.Title != "" {
		return t.Info.Title
	}
	return t.Info.Identifier
}

type LoadType string

const (
	LoadTypeTrack    LoadType = "track"
	LoadTypePlaylist LoadType = "playlist"
	LoadTypeSearch   LoadType = "search"
	LoadTypeEmpty    LoadType = "empty"
	LoadTypeError    LoadType = "error"
)

type Exception struct {
	Message  string `json:"message"`
	Severity string `json:"severity"`
	Cause    string `json:"cause"`
}

type Playlist struct {
	Info struct {
		Name          string `json:"name"`
		SelectedTrack int    `json:"selectedTrack"`
	} `json:"info"`
	Tracks []Track `json:"tracks"`
}

// LoadResult is the answer of /v4/loadtracks. Data depends on LoadType.
type LoadResult struct {
	LoadType LoadType        `json:"loadType"`
	Data     json.RawMessage `json:"data"`
}

// Tracks returns every track of the result. Empty results have none and
// error results return the node's exception.
func (r *LoadResult) Tracks() ([]Track, error) {
	switch r.LoadType {
	case LoadTypeTrack:
		var track Track
		if err := json.Unmarshal(r.Data, &track); err != nil {
			return nil, fmt.Errorf("failed to decode track: %w", err)
		}
		return []Track{track}, nil
	case LoadTypePlaylist:
		var playlist Playlist
		if err := json.Unmarshal(r.Data, &playlist); err != nil {
			return nil, fmt.Errorf("failed to decode playlist: %w", err)
		}
		return playlist.Tracks, nil
	case LoadTypeSearch:
		var tracks []Track
		if err := json.Unmarshal(r.Data, &tracks); err != nil {
			return nil, fmt.Errorf("failed to decode search result: %w", err)
		}
		return tracks, nil
	case LoadTypeEmpty:
		return nil, nil
	case LoadTypeError:
		var exception Exception
		if err := json.Unmarshal(r.Data, &exception); err != nil {
			return nil, fmt.Errorf("failed to decode load exception: %w", err)
		}
		return nil, &LoadError{Exception: exception}
	}
	return nil, fmt.Errorf("unknown load type %q", r.LoadType)
}

// First returns the first playable track, or nil when there is none.
func (r *LoadResult) First() (*Track, error) {
	tracks, err := r.Tracks()
	if err != nil || len(tracks) == 0 {
		return nil, err
	}
	return &tracks[0], nil
}

type LoadError struct {
	Exception Exception
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("lavalink failed to load track (%s): %s", e.Exception.Severity, e.Exception.Message)
}

var _ error = (*LoadError)(nil)

type VoiceState struct {
	Token     string `json:"token"`
	Endpoint  string `json:"endpoint"`
	SessionID string `json:"sessionId"`
}

// UpdateTrack is the track part of a player update. A nil Encoded is sent
// as null and stops the player.
type UpdateTrack struct {
	Encoded  *string   `json:"encoded"`
	UserData *UserData `json:"userData,omitempty"`
}

// PlayerUpdate is the body of a player PATCH. Nil fields are left alone.
type PlayerUpdate struct {
	Track    *UpdateTrack `json:"track,omitempty"`
	Position *int64       `json:"position,omitempty"`
	Volume   *int         `json:"volume,omitempty"`
	Paused   *bool        `json:"paused,omitempty"`
	Voice    *VoiceState  `json:"voice,omitempty"`
}

type PlayerState struct {
	Time      int64 `json:"time"`
	Position  int64 `json:"position"`
	Connected bool  `json:"connected"`
	Ping      int   `json:"ping"`
}

type PlayerInfo struct {
	GuildID string      `json:"guildId"`
	Track   *Track      `json:"track"`
	Volume  int         `json:"volume"`
	Paused  bool        `json:"paused"`
	State   PlayerState `json:"state"`
	Voice   VoiceState  `json:"voice"`
}

type SessionUpdate struct {
	Resuming bool `json:"resuming"`
	// Timeout is in seconds.
	Timeout int `json:"timeout"`
}

// Message is anything the node sends over the websocket.
type Message interface {
	Op() string
}

// Event is a message about a single guild's player.
type Event interface {
	Message
	Guild() string
}

type ReadyMessage struct {
	Resumed   bool   `json:"resumed"`
	SessionID string `json:"sessionId"`
}

func (ReadyMessage) Op() string { return "ready" }

type PlayerUpdateMessage struct {
	GuildID string      `json:"guildId"`
	State   PlayerState `json:"state"`
}

func (PlayerUpdateMessage) Op() string      { return "playerUpdate" }
func (m PlayerUpdateMessage) Guild() string { return m.GuildID }

type StatsMessage struct {
	Players        int   `json:"players"`
	PlayingPlayers int   `json:"playingPlayers"`
	Uptime         int64 `json:"uptime"`
	Memory         struct {
		Free       int64 `json:"free"`
		Used       int64 `json:"used"`
		Allocated  int64 `json:"allocated"`
		Reservable int64 `json:"reservable"`
	} `json:"memory"`
	CPU struct {
		Cores        int     `json:"cores"`
		SystemLoad   float64 `json:"systemLoad"`
		LavalinkLoad float64 `json:"lavalinkLoad"`
	} `json:"cpu"`
}

func (StatsMessage) Op() string { return "stats" }

type TrackEndReason string

const (
	TrackEndFinished   TrackEndReason = "finished"
	TrackEndLoadFailed TrackEndReason = "loadFailed"
	TrackEndStopped    TrackEndReason = "stopped"
	TrackEndReplaced   TrackEndReason = "replaced"
	TrackEndCleanup    TrackEndReason = "cleanup"
)

// MayStartNext reports whether the next queued track should follow.
// Stopped and replaced tracks were ended on purpose by the bot.
func (r TrackEndReason) MayStartNext() bool {
	return r == TrackEndFinished || r == TrackEndLoadFailed
}

type TrackStartEvent struct {
	GuildID string `json:"guildId"`
	Track   Track  `json:"track"`
}

type TrackEndEvent struct {
	GuildID string         `json:"guildId"`
	Track   Track          `json:"track"`
	Reason  TrackEndReason `json:"reason"`
}

type TrackExceptionEvent struct {
	GuildID   string    `json:"guildId"`
	Track     Track     `json:"track"`
	Exception Exception `json:"exception"`
}

type TrackStuckEvent struct {
	GuildID     string `json:"guildId"`
	Track       Track  `json:"track"`
	ThresholdMs int64  `json:"thresholdMs"`
}

// WebSocketClosedEvent reports that Discord closed the node's voice socket.
type WebSocketClosedEvent struct {
	GuildID  string `json:"guildId"`
	Code     int    `json:"code"`
	Reason   string `json:"reason"`
	ByRemote bool   `json:"byRemote"`
}

func (TrackStartEvent) Op() string      { return "event" }
func (TrackEndEvent) Op() string        { return "event" }
func (TrackExceptionEvent) Op() string  { return "event" }
func (TrackStuckEvent) Op() string      { return "event" }
func (WebSocketClosedEvent) Op() string { return "event" }

func (e TrackStartEvent) Guild() string      { return e.GuildID }
func (e TrackEndEvent) Guild() string        { return e.GuildID }
func (e TrackExceptionEvent) Guild() string  { return e.GuildID }
func (e TrackStuckEvent) Guild() string      { return e.GuildID }
func (e WebSocketClosedEvent) Guild() string { return e.GuildID }

type envelope struct {
	Op   string `json:"op"`
	Type string `json:"type"`
}

// DecodeMessage decodes one websocket frame. Unknown ops and event types
// return an error so callers can log and skip them.
func DecodeMessage(raw []byte) (Message, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("failed to decode message: %w", err)
	}

	var msg Message
	switch env.Op {
	case "ready":
		msg = &ReadyMessage{}
	case "playerUpdate":
		msg = &PlayerUpdateMessage{}
	case "stats":
		msg = &StatsMessage{}
	case "event":
		switch env.Type {
		case "TrackStartEvent":
			msg = &TrackStartEvent{}
		case "TrackEndEvent":
			msg = &TrackEndEvent{}
		case "TrackExceptionEvent":
			msg = &TrackExceptionEvent{}
		case "TrackStuckEvent":
			msg = &TrackStuckEvent{}
		case "WebSocketClosedEvent":
			msg = &WebSocketClosedEvent{}
		default:
			return nil, fmt.Errorf("unknown event type %q", env.Type)
		}
	default:
		return nil, fmt.Errorf("unknown op %q", env.Op)
	}

	if err := json.Unmarshal(raw, msg); err != nil {
		return nil, fmt.Errorf("failed to decode %s message: %w", env.Op, err)
	}
	return msg, nil
}
