package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/config"
	"github.com/vanshaggarwal27/Project-Drishti-sub000/pkg/e"
)

var ErrNoResult = errors.New("geocoder returned no address")

// Client resolves coordinates to a formatted address using a Google-style reverse geocoding API.
type Client struct {
	logger  *slog.Logger
	baseURL string
	apiKey  string
	http    *http.Client
}

func New(logger *slog.Logger, cfg config.GeocoderConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Client{
		logger:  logger,
		baseURL: cfg.URL,
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: timeout},
	}
}

type reverseResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		FormattedAddress string `json:"formatted_address"`
	} `json:"results"`
}

func (c *Client) Reverse(ctx context.Context, lat, lng float64) (string, error) {
	const op = "geocode.Client.Reverse"

	if c.apiKey == "" {
		return "", fmt.Errorf("%s: api key not configured: %w", op, e.ErrUpstreamUnavailable)
	}

	q := url.Values{}
	q.Set("latlng", strconv.FormatFloat(lat, 'f', 6, 64)+","+strconv.FormatFloat(lng, 'f', 6, 64))
	q.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return "", e.Wrap(op, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: %w: %s", op, e.ErrUpstreamUnavailable, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%s: status %d: %w", op, resp.StatusCode, e.ErrUpstreamUnavailable)
	}

	var body reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", e.Wrap(op, err)
	}
	if body.Status != "" && body.Status != "OK" {
		c.logger.Warn("geocoder rejected request",
			slog.String("op", op),
			slog.String("status", body.Status),
			slog.String("message", body.ErrorMessage),
		)
		return "", fmt.Errorf("%s: %s: %w", op, body.Status, ErrNoResult)
	}
	if len(body.Results) == 0 || body.Results[0].FormattedAddress == "" {
		return "", fmt.Errorf("%s: %w", op, ErrNoResult)
	}
	return body.Results[0].FormattedAddress, nil
}
