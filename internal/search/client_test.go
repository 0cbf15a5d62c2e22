package search

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domerrors "github.com/zokybot/zoky-messenger-go/internal/errors"
	"github.com/zokybot/zoky-messenger-go/internal/logger"
	"github.com/zokybot/zoky-messenger-go/internal/metrics"
	"github.com/zokybot/zoky-messenger-go/internal/storage"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, cache Cache) (*Client, *metrics.Metrics) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	m := metrics.New(prometheus.NewRegistry())
	return NewClient(Config{
		Endpoints: map[string]Endpoint{
			TopicFootball: {URL: server.URL + "/football/", APIKey: "fk"},
			TopicMovie:    {URL: server.URL + "/movie/", APIKey: "mk"},
		},
		Timeout: 2 * time.Second,
		Cache:   cache,
		Metrics: m,
		Logger:  logger.NewWithWriter("error", io.Discard),
	}), m
}

func newTestCache(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.New(context.Background(), filepath.Join(t.TempDir(), "cache.db"), time.Hour)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func jsonResponse(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}
}

func TestSearch_FirstPoster(t *testing.T) {
	t.Parallel()

	var gotPath, gotQuery, gotKey, gotUA string
	client, m := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("s")
		gotKey = r.URL.Query().Get("apikey")
		gotUA = r.Header.Get("User-Agent")
		_, _ = io.WriteString(w, `{"Search":[{"Poster":"http://x/a.png"},{"Poster":"http://x/b.png"}]}`)
	}, nil)

	poster, err := client.Search(context.Background(), TopicFootball, "Arsenal")
	require.NoError(t, err)

	assert.Equal(t, "http://x/a.png", poster)
	assert.Equal(t, "/football/", gotPath)
	assert.Equal(t, "Arsenal", gotQuery)
	assert.Equal(t, "fk", gotKey)
	assert.NotEmpty(t, gotUA)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SearchRequestsTotal.WithLabelValues(TopicFootball, "success")))
}

func TestSearch_NoResult(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{"missing Search", `{"Response":"False","Error":"Movie not found!"}`},
		{"empty Search", `{"Search":[]}`},
		{"empty Poster", `{"Search":[{"Title":"x","Poster":""}]}`},
		{"poster N/A", `{"Search":[{"Poster":"N/A"}]}`},
		{"invalid JSON", `<html>oops</html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			client, _ := newTestClient(t, jsonResponse(tt.body), nil)

			_, err := client.Search(context.Background(), TopicMovie, "anything")
			assert.True(t, errors.Is(err, domerrors.ErrNoResult), "got %v", err)
		})
	}
}

func TestSearch_StatusError(t *testing.T) {
	t.Parallel()
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}, nil)

	_, err := client.Search(context.Background(), TopicMovie, "alien")

	var searchErr *domerrors.SearchError
	require.True(t, errors.As(err, &searchErr), "got %v", err)
	assert.Equal(t, TopicMovie, searchErr.Topic)
	assert.Equal(t, http.StatusBadGateway, searchErr.StatusCode)
	assert.False(t, errors.Is(err, domerrors.ErrNoResult))
}

func TestSearch_UnknownTopic(t *testing.T) {
	t.Parallel()
	client, _ := newTestClient(t, jsonResponse(`{}`), nil)

	_, err := client.Search(context.Background(), "basketball", "lakers")
	assert.ErrorIs(t, err, domerrors.ErrUnknownTopic)
}

func TestSearch_GzipResponse(t *testing.T) {
	t.Parallel()
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "gzip", r.Header.Get("Accept-Encoding"))
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		_, _ = io.WriteString(gz, `{"Search":[{"Poster":"http://x/zipped.png"}]}`)
		_ = gz.Close()
	}, nil)

	poster, err := client.Search(context.Background(), TopicMovie, "zip")
	require.NoError(t, err)
	assert.Equal(t, "http://x/zipped.png", poster)
}

func TestSearch_CacheHitSkipsOutboundCall(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	cache := newTestCache(t)
	client, m := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = io.WriteString(w, `{"Search":[{"Poster":"http://x/matrix.png"}]}`)
	}, cache)

	first, err := client.Search(context.Background(), TopicMovie, "The Matrix")
	require.NoError(t, err)
	second, err := client.Search(context.Background(), TopicMovie, "  the MATRIX ")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheHitsTotal.WithLabelValues(TopicMovie)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheMissesTotal.WithLabelValues(TopicMovie)))
}

func TestSearch_MissIsNotCached(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = io.WriteString(w, `{"Response":"False"}`)
	}, newTestCache(t))

	for range 2 {
		_, err := client.Search(context.Background(), TopicFootball, "nobody fc")
		require.ErrorIs(t, err, domerrors.ErrNoResult)
	}
	assert.Equal(t, int32(2), calls.Load())
}

func TestSearch_ConcurrentLookupsShareOneRequest(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	release := make(chan struct{})
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		<-release
		_, _ = io.WriteString(w, `{"Search":[{"Poster":"http://x/shared.png"}]}`)
	}, nil)

	const callers = 5
	var wg sync.WaitGroup
	results := make([]string, callers)
	for i := range callers {
		wg.Go(func() {
			results[i], _ = client.Search(context.Background(), TopicMovie, "Shared")
		})
	}

	// Let every caller join the in-flight call before answering.
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, r := range results {
		assert.Equal(t, "http://x/shared.png", r)
	}
}

func TestParsePoster(t *testing.T) {
	poster, err := ParsePoster([]byte(`{"Search":[{"Poster":" http://x/p.png "}]}`))
	require.NoError(t, err)
	assert.Equal(t, "http://x/p.png", poster)
}
