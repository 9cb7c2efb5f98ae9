package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"hexsquared/communication"
)

type Client struct {
	serverURL string
	http      *http.Client
}

// New returns a client for the move server at serverURL.
func New(serverURL string, timeout time.Duration) *Client {
	return &Client{
		serverURL: strings.TrimRight(serverURL, "/"),
		http:      &http.Client{Timeout: timeout},
	}
}

// Status returns the health message of the server.
func (c *Client) Status(ctx context.Context) (string, error) {
	var status communication.StatusResponse
	if err := c.do(ctx, http.MethodGet, "/", nil, &status); err != nil {
		return "", err
	}
	return status.Message, nil
}

// BestMove asks the server to search the snapshot and returns the chosen cell index.
func (c *Client) BestMove(ctx context.Context, req communication.BestMoveRequest) (int, error) {
	var resp communication.BestMoveResponse
	if err := c.do(ctx, http.MethodPost, "/best-move/", req, &resp); err != nil {
		return -1, err
	}
	return resp.BestMove, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.serverURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var failure communication.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&failure); err != nil || failure.Error == "" {
			return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
		}
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, failure.Error)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
