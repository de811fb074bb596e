package geocode

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/config"
	"github.com/vanshaggarwal27/Project-Drishti-sub000/pkg/e"
)

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), nil)) }

func TestReverse_OK(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "28.700000,77.100000", r.URL.Query().Get("latlng"))
		assert.Equal(t, "k", r.URL.Query().Get("key"))
		_, _ = w.Write([]byte(`{"status":"OK","results":[{"formatted_address":"Sector 5, Rohini, Delhi"},{"formatted_address":"Delhi"}]}`))
	}))
	defer srv.Close()

	c := New(quiet(), config.GeocoderConfig{URL: srv.URL, APIKey: "k"})
	addr, err := c.Reverse(context.Background(), 28.70, 77.10)
	require.NoError(t, err)
	assert.Equal(t, "Sector 5, Rohini, Delhi", addr)
}

func TestReverse_Failures(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		handler http.HandlerFunc
		want    error
	}{
		{"zero_results", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"status":"ZERO_RESULTS","results":[]}`))
		}, ErrNoResult},
		{"server_error", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}, e.ErrUpstreamUnavailable},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(c.handler)
			defer srv.Close()

			_, err := New(quiet(), config.GeocoderConfig{URL: srv.URL, APIKey: "k"}).Reverse(context.Background(), 1, 2)
			assert.True(t, errors.Is(err, c.want), "got %v", err)
		})
	}
}

func TestReverse_NoAPIKey(t *testing.T) {
	t.Parallel()

	_, err := New(quiet(), config.GeocoderConfig{URL: "http://unused"}).Reverse(context.Background(), 1, 2)
	assert.ErrorIs(t, err, e.ErrUpstreamUnavailable)
}
