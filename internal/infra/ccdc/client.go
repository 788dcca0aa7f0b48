package ccdc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/caustin-usgs/lcmap-gaia/internal/domain/chip"
	"github.com/caustin-usgs/lcmap-gaia/internal/domain/landcover"
	"github.com/caustin-usgs/lcmap-gaia/pkg/metrics"
)

const defaultBaseURL = "http://localhost:5656"

// Client fetches change detection segments and classifier predictions for a chip.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// Options tune the HTTP client. Zero values pick defaults; RequestsPerSecond 0 disables throttling.
type Options struct {
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

// NewClient builds an API client.
func NewClient(baseURL string, opts Options, logger *slog.Logger) *Client {
	base := strings.TrimSpace(baseURL)
	if base == "" {
		base = defaultBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), max(opts.Burst, 1))
	}
	return &Client{
		baseURL:    strings.TrimRight(base, "/"),
		httpClient: &http.Client{Timeout: timeout},
		limiter:    limiter,
		logger:     logger.With("component", "ccdc.client"),
	}
}

// Fetch retrieves segments and predictions concurrently. Either failing fails the fetch.
func (c *Client) Fetch(ctx context.Context, cx, cy int64) (chip.Inputs, error) {
	var inputs chip.Inputs
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		segs, err := c.Segments(gctx, cx, cy)
		inputs.Segments = segs
		return err
	})
	g.Go(func() error {
		preds, err := c.Predictions(gctx, cx, cy)
		inputs.Predictions = preds
		return err
	})
	if err := g.Wait(); err != nil {
		return chip.Inputs{}, err
	}
	c.logger.Debug("chip inputs fetched", "cx", cx, "cy", cy,
		"segments", len(inputs.Segments), "predictions", len(inputs.Predictions))
	return inputs, nil
}

// Segments returns every segment of the chip.
func (c *Client) Segments(ctx context.Context, cx, cy int64) ([]landcover.RawSegment, error) {
	var out []landcover.RawSegment
	if err := c.get(ctx, "segments", cx, cy, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Predictions returns every prediction of the chip.
func (c *Client) Predictions(ctx context.Context, cx, cy int64) ([]landcover.RawPrediction, error) {
	var out []landcover.RawPrediction
	if err := c.get(ctx, "predictions", cx, cy, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, resource string, cx, cy int64, dst any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s request throttled: %w", resource, err)
	}
	query := url.Values{}
	query.Set("cx", strconv.FormatInt(cx, 10))
	query.Set("cy", strconv.FormatInt(cy, 10))
	endpoint := fmt.Sprintf("%s/%s?%s", c.baseURL, resource, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build %s request: %w", resource, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues(resource, "error").Inc()
		return fmt.Errorf("%s request failed: %w", resource, err)
	}
	defer resp.Body.Close()
	metrics.UpstreamRequests.WithLabelValues(resource, statusClass(resp.StatusCode)).Inc()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("%s request error: status=%d body=%s", resource, resp.StatusCode, string(payload))
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode %s response: %w", resource, err)
	}
	return nil
}

func statusClass(code int) string {
	return strconv.Itoa(code/100) + "xx"
}
