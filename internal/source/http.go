package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/buyside-cli/internal/model"
)

// HTTPOptions configures the HTTP buyer source.
type HTTPOptions struct {
	BaseURL    string
	APIKey     string
	UserAgent  string
	Timeout    time.Duration
	MaxRetries int
	// RatePerSec caps requests to the buyer service; 0 disables limiting.
	RatePerSec float64
}

// HTTPSource fetches buyer universes from the remote buyer service.
type HTTPSource struct {
	opts    HTTPOptions
	client  *http.Client
	limiter *rate.Limiter
}

// NewHTTP creates an HTTPSource with retry and rate limiting.
func NewHTTP(opts HTTPOptions) *HTTPSource {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "buyside-cli"
	}

	var limiter *rate.Limiter
	if opts.RatePerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RatePerSec), 1)
	}

	return &HTTPSource{
		opts:    opts,
		client:  &http.Client{Timeout: opts.Timeout},
		limiter: limiter,
	}
}

// ListBuyers fetches the buyer universe of one kind. Transient failures
// (5xx, 429, network errors) are retried with exponential backoff.
func (s *HTTPSource) ListBuyers(ctx context.Context, kind model.BuyerKind) ([]model.BuyerRecord, error) {
	endpoint, err := url.Parse(s.opts.BaseURL)
	if err != nil {
		return nil, eris.Wrap(err, "source: parse base URL")
	}
	endpoint = endpoint.JoinPath("buyers")
	q := endpoint.Query()
	q.Set("kind", string(kind))
	endpoint.RawQuery = q.Encode()

	var lastErr error
	for attempt := 0; attempt <= s.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt-1)) * time.Second
			zap.L().Debug("source: retrying buyer fetch",
				zap.Int("attempt", attempt),
				zap.Duration("backoff", backoff),
			)
			select {
			case <-ctx.Done():
				return nil, eris.Wrap(ctx.Err(), "source: fetch canceled")
			case <-time.After(backoff):
			}
		}

		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				return nil, eris.Wrap(err, "source: rate limit wait")
			}
		}

		buyers, retryable, err := s.fetchOnce(ctx, endpoint.String())
		if err == nil {
			zap.L().Info("source: fetched buyers",
				zap.String("kind", string(kind)),
				zap.Int("count", len(buyers)),
			)
			return buyers, nil
		}
		lastErr = err
		if !retryable {
			break
		}
	}
	return nil, eris.Wrapf(lastErr, "source: list %s buyers", kind)
}

func (s *HTTPSource) fetchOnce(ctx context.Context, endpoint string) ([]model.BuyerRecord, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, false, eris.Wrap(err, "build request")
	}
	req.Header.Set("User-Agent", s.opts.UserAgent)
	req.Header.Set("Accept", "application/json")
	if s.opts.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.opts.APIKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, true, eris.Wrap(err, "do request")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		io.Copy(io.Discard, resp.Body) //nolint:errcheck
		return nil, true, eris.New(fmt.Sprintf("buyer service returned %d", resp.StatusCode))
	default:
		io.Copy(io.Discard, resp.Body) //nolint:errcheck
		return nil, false, eris.New(fmt.Sprintf("buyer service returned %d", resp.StatusCode))
	}

	var payload struct {
		Buyers []model.BuyerRecord `json:"buyers"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, false, eris.Wrap(err, "decode response")
	}
	return payload.Buyers, false, nil
}
