// Package cvclient dispatches uploaded sessions to the external CV service.
package cvclient

import (
	"bytes"
	"clearpath-signals/dto"
	"context"
	"encoding/json"
	"fmt"
	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"
	"io"
	"net/http"
	"strings"
	"time"
)

const processPath = "/api/process-videos"

type Dispatcher interface {
	Dispatch(ctx context.Context, req dto.VideoDispatch) error
}

type client struct {
	baseURL    string
	httpClient *http.Client
	maxTries   uint
}

func New(baseURL string, timeout time.Duration) Dispatcher {
	return &client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		maxTries:   3,
	}
}

// Dispatch posts the session's video URLs, retrying transport errors and 5xx
// responses with exponential backoff. 4xx responses are not retried.
func (c *client) Dispatch(ctx context.Context, req dto.VideoDispatch) error {
	body, err := json.Marshal(req)
	if err != nil {
		return err
	}

	operation := func() (struct{}, error) {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+processPath, bytes.NewReader(body))
		if err != nil {
			return struct{}{}, backoff.Permanent(err)
		}
		httpReq.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("session_id", req.SessionID).Msg("cv service unreachable, retrying")
			return struct{}{}, err
		}
		defer resp.Body.Close()
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))

		switch {
		case resp.StatusCode >= 500:
			return struct{}{}, fmt.Errorf("cv service: %s: %s", resp.Status, msg)
		case resp.StatusCode >= 400:
			return struct{}{}, backoff.Permanent(fmt.Errorf("cv service: %s: %s", resp.Status, msg))
		}
		return struct{}{}, nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond
	bo.MaxInterval = 5 * time.Second
	_, err = backoff.Retry(ctx, operation, backoff.WithBackOff(bo), backoff.WithMaxTries(c.maxTries))
	return err
}
