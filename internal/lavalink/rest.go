package lavalink

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

// RESTError is the error body Lavalink returns for non 2xx responses.
type RESTError struct {
	Status    int    `json:"status"`
	Reason    string `json:"error"`
	Message   string `json:"message"`
	Path      string `json:"path"`
	Timestamp int64  `json:"timestamp"`
}

func (e *RESTError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("lavalink %s: %d %s: %s", e.Path, e.Status, e.Reason, e.Message)
	}
	return fmt.Sprintf("lavalink %s: %d %s", e.Path, e.Status, e.Reason)
}

var _ error = (*RESTError)(nil)

type RESTClient struct {
	client *resty.Client
}

func NewRESTClient(baseURL, password string) *RESTClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Authorization", password).
		SetHeader("Content-Type", "application/json").
		SetTimeout(10 * time.Second)
	return &RESTClient{client: client}
}

func restError(resp *resty.Response) error {
	if e, ok := resp.Error().(*RESTError); ok && e.Status != 0 {
		return e
	}
	return &RESTError{
		Status:  resp.StatusCode(),
		Reason:  resp.Status(),
		Message: resp.String(),
		Path:    resp.Request.URL,
	}
}

// LoadTracks resolves an identifier: a URL or a "<source>search:<query>".
func (c *RESTClient) LoadTracks(ctx context.Context, identifier string) (*LoadResult, error) {
	var result LoadResult
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("identifier", identifier).
		SetResult(&result).
		SetError(&RESTError{}).
		Get("/v4/loadtracks")
	if err != nil {
		return nil, fmt.Errorf("failed to load tracks: %w", err)
	}
	if resp.IsError() {
		return nil, restError(resp)
	}
	return &result, nil
}

func (c *RESTClient) UpdatePlayer(ctx context.Context, sessionID, guildID string, update PlayerUpdate, noReplace bool) (*PlayerInfo, error) {
	var info PlayerInfo
	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParams(map[string]string{
			"sessionID": sessionID,
			"guildID":   guildID,
		}).
		SetQueryParam("noReplace", strconv.FormatBool(noReplace)).
		SetBody(update).
		SetResult(&info).
		SetError(&RESTError{}).
		Patch("/v4/sessions/{sessionID}/players/{guildID}")
	if err != nil {
		return nil, fmt.Errorf("failed to update player: %w", err)
	}
	if resp.IsError() {
		return nil, restError(resp)
	}
	return &info, nil
}

func (c *RESTClient) DestroyPlayer(ctx context.Context, sessionID, guildID string) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParams(map[string]string{
			"sessionID": sessionID,
			"guildID":   guildID,
		}).
		SetError(&RESTError{}).
		Delete("/v4/sessions/{sessionID}/players/{guildID}")
	if err != nil {
		return fmt.Errorf("failed to destroy player: %w", err)
	}
	if resp.IsError() {
		return restError(resp)
	}
	return nil
}

func (c *RESTClient) UpdateSession(ctx context.Context, sessionID string, update SessionUpdate) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("sessionID", sessionID).
		SetBody(update).
		SetError(&RESTError{}).
		Patch("/v4/sessions/{sessionID}")
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	if resp.IsError() {
		return restError(resp)
	}
	return nil
}

// Version returns the node's version string.
func (c *RESTClient) Version(ctx context.Context) (string, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetError(&RESTError{}).
		Get("/version")
	if err != nil {
		return "", fmt.Errorf("failed to fetch version: %w", err)
	}
	if resp.IsError() {
		return "", restError(resp)
	}
	return resp.String(), nil
}

// Stats fetches the node's current load.
func (c *RESTClient) Stats(ctx context.Context) (*StatsMessage, error) {
	var stats StatsMessage
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&stats).
		SetError(&RESTError{}).
		Get("/v4/stats")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch stats: %w", err)
	}
	if resp.IsError() {
		return nil, restError(resp)
	}
	return &stats, nil
}
