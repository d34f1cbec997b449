package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Client is a small retrying JSON GET helper. 5xx responses and transport
// errors are retried with exponential backoff; any other non-200 status and
// malformed payloads fail immediately. Callers bound the total time through
// ctx and MaxElapsedTime; source adapters keep that bound well below the
// fan-out budget.
type Client struct {
	HTTP  *http.Client
	Token string

	// Retry budget; zero values fall back to the defaults below.
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsedTime  time.Duration
}

const (
	defaultInitialInterval = 200 * time.Millisecond
	defaultMaxInterval     = 1 * time.Second
	defaultMaxElapsedTime  = 3 * time.Second
)

func (c *Client) DoJSON(ctx context.Context, req *http.Request, out any) error {
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	if c.HTTP == nil {
		c.HTTP = http.DefaultClient
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = durOr(c.InitialInterval, defaultInitialInterval)
	exp.MaxInterval = durOr(c.MaxInterval, defaultMaxInterval)
	exp.MaxElapsedTime = durOr(c.MaxElapsedTime, defaultMaxElapsedTime)

	op := func() error {
		resp, err := c.HTTP.Do(req.Clone(ctx))
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 500 {
			return fmt.Errorf("server error %d", resp.StatusCode)
		}
		if resp.StatusCode != 200 {
			return backoff.Permanent(fmt.Errorf("http status %d", resp.StatusCode))
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return backoff.Permanent(fmt.Errorf("decode response: %w", err))
		}
		return nil
	}
	return backoff.Retry(op, backoff.WithContext(exp, ctx))
}

func durOr(d, def time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return def
}
