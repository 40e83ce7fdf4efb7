package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// DefaultMaxBody caps how much of a response body is read.
const DefaultMaxBody int64 = 4 << 20

// StatusError is returned for any non-200 response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("status %d", e.Code)
	}
	return fmt.Sprintf("status %d: %s", e.Code, e.Body)
}

type Client struct {
	HTTP    *http.Client
	Token   string
	MaxBody int64
}

// DoJSON sends req once and decodes a 200 response into out.
func (c *Client) DoJSON(ctx context.Context, req *http.Request, out any) error {
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	req.Header.Set("Accept", "application/json")
	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	limit := c.MaxBody
	if limit <= 0 {
		limit = DefaultMaxBody
	}

	resp, err := hc.Do(req.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()
	body := io.LimitReader(resp.Body, limit)

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(body, 256))
		return &StatusError{Code: resp.StatusCode, Body: string(snippet)}
	}
	if err := json.NewDecoder(body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
