// Package search looks up poster images for movies and football teams.
package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/corpix/uarand"
	"github.com/klauspost/compress/gzip"
	"github.com/tidwall/gjson"
	"golang.org/x/sync/singleflight"

	"github.com/zokybot/zoky-messenger-go/internal/config"
	domerrors "github.com/zokybot/zoky-messenger-go/internal/errors"
	"github.com/zokybot/zoky-messenger-go/internal/logger"
	"github.com/zokybot/zoky-messenger-go/internal/metrics"
	"github.com/zokybot/zoky-messenger-go/internal/storage"
)

// Topics with a search endpoint.
const (
	TopicMovie    = "movie"
	TopicFootball = "football"
)

const (
	maxResponseBody = 1 << 20
	posterPath      = "Search.0.Poster"
	posterMissing   = "N/A"
)

// Endpoint is one topic's search API.
type Endpoint struct {
	URL    string
	APIKey string
}

// Cache stores poster lookups between requests.
type Cache interface {
	GetSearchResult(ctx context.Context, topic, query string) (*storage.SearchResult, error)
	SaveSearchResult(ctx context.Context, result *storage.SearchResult) error
}

// Client performs poster lookups. Concurrent identical lookups share one
// outbound request, and results are cached when a Cache is configured.
type Client struct {
	httpClient *http.Client
	endpoints  map[string]Endpoint
	timeout    time.Duration
	cache      Cache
	group      singleflight.Group
	metrics    *metrics.Metrics
	logger     *logger.Logger
}

// Config holds configuration for creating a new Client.
type Config struct {
	Endpoints  map[string]Endpoint
	Timeout    time.Duration
	HTTPClient *http.Client // optional
	Cache      Cache        // optional
	Metrics    *metrics.Metrics
	Logger     *logger.Logger
}

// NewClient creates a search client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = config.SearchRequest
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}

	return &Client{
		httpClient: httpClient,
		endpoints:  cfg.Endpoints,
		timeout:    timeout,
		cache:      cfg.Cache,
		metrics:    cfg.Metrics,
		logger:     cfg.Logger.WithModule("search"),
	}
}

// EndpointsFromConfig maps the configured search APIs to topics.
func EndpointsFromConfig(cfg config.SearchConfig) map[string]Endpoint {
	return map[string]Endpoint{
		TopicMovie:    {URL: cfg.MovieURL, APIKey: cfg.MovieKey},
		TopicFootball: {URL: cfg.FootballURL, APIKey: cfg.FootballKey},
	}
}

// Search returns the poster URL of the first result for query.
//
// Errors: domerrors.ErrUnknownTopic when the topic has no endpoint,
// domerrors.ErrNoResult when the response carries no poster, and a
// *domerrors.SearchError for transport failures and non-2xx answers.
func (c *Client) Search(ctx context.Context, topic, query string) (string, error) {
	endpoint, ok := c.endpoints[topic]
	if !ok || endpoint.URL == "" {
		return "", fmt.Errorf("%w: %q", domerrors.ErrUnknownTopic, topic)
	}

	key := NormalizeQuery(query)
	if key == "" {
		return "", fmt.Errorf("blank query: %w", domerrors.ErrNoResult)
	}

	if poster, ok := c.cached(ctx, topic, key); ok {
		return poster, nil
	}

	executed := false
	v, err, shared := c.group.Do(topic+"\x00"+key, func() (any, error) {
		executed = true
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()

		poster, err := c.fetch(fetchCtx, topic, endpoint, strings.TrimSpace(query))
		if err != nil {
			return "", err
		}
		c.store(fetchCtx, topic, key, poster)
		return poster, nil
	})
	if shared && !executed {
		c.metrics.RecordSingleflightDedup(topic)
	}
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *Client) cached(ctx context.Context, topic, key string) (string, bool) {
	if c.cache == nil {
		return "", false
	}
	result, err := c.cache.GetSearchResult(ctx, topic, key)
	if err != nil {
		if !domerrors.IsNotFound(err) {
			c.logger.WithError(err).WarnContext(ctx, "Search cache read failed")
		}
		c.metrics.RecordCacheMiss(topic)
		return "", false
	}
	c.metrics.RecordCacheHit(topic)
	return result.PosterURL, true
}

func (c *Client) store(ctx context.Context, topic, key, poster string) {
	if c.cache == nil {
		return
	}
	err := c.cache.SaveSearchResult(ctx, &storage.SearchResult{Topic: topic, Query: key, PosterURL: poster})
	if err != nil {
		c.logger.WithError(err).WarnContext(ctx, "Search cache write failed")
	}
}

func (c *Client) fetch(ctx context.Context, topic string, endpoint Endpoint, query string) (string, error) {
	start := time.Now()
	poster, status, err := c.do(ctx, topic, endpoint, query)
	c.metrics.RecordSearch(topic, status, time.Since(start).Seconds())
	return poster, err
}

// do returns the poster, the metrics status label and any error.
func (c *Client) do(ctx context.Context, topic string, endpoint Endpoint, query string) (string, string, error) {
	u, err := url.Parse(endpoint.URL)
	if err != nil {
		return "", "error", domerrors.NewSearchError(topic, 0, fmt.Errorf("parse endpoint: %w", err))
	}
	params := u.Query()
	params.Set("s", query)
	params.Set("apikey", endpoint.APIKey)
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", "error", domerrors.NewSearchError(topic, 0, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("User-Agent", uarand.GetRandom())
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", "gzip")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", transportStatus(err), domerrors.NewSearchError(topic, 0, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", "error", domerrors.NewSearchError(topic, resp.StatusCode, errors.New("unexpected status"))
	}

	body, err := readBody(resp)
	if err != nil {
		return "", transportStatus(err), domerrors.NewSearchError(topic, resp.StatusCode, err)
	}

	poster, err := ParsePoster(body)
	if err != nil {
		return "", "no_result", err
	}
	return poster, "success", nil
}

// ParsePoster extracts Search[0].Poster from a search response.
func ParsePoster(body []byte) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("invalid JSON: %w", domerrors.ErrNoResult)
	}
	poster := strings.TrimSpace(gjson.GetBytes(body, posterPath).String())
	if poster == "" || poster == posterMissing {
		return "", domerrors.ErrNoResult
	}
	return poster, nil
}

func readBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader = resp.Body
	if strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress gzip: %w", err)
		}
		defer func() { _ = gz.Close() }()
		reader = gz
	}
	return io.ReadAll(io.LimitReader(reader, maxResponseBody))
}

func transportStatus(err error) string {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return "timeout"
	}
	return "error"
}
