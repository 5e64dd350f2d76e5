package ingest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRequestDefaults(t *testing.T) {
	got := buildRequest(Params{})
	assert.Equal(t, newsRequest{
		Location:    "us",
		Language:    "en",
		Page:        1,
		TimeBounded: false,
		FromDate:    "01/01/2024",
		ToDate:      "12/31/2025",
	}, got)

	bounded := buildRequest(Params{ToDate: "02/01/2025", Query: "ai", Page: 3})
	assert.True(t, bounded.TimeBounded)
	assert.Equal(t, "01/01/2024", bounded.FromDate)
	assert.Equal(t, "02/01/2025", bounded.ToDate)
	assert.Equal(t, 3, bounded.Page)
	assert.Equal(t, "ai", bounded.Query)
}

func TestRapidAPIProviderFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "secret-key", r.Header.Get("x-rapidapi-key"))
		assert.Equal(t, "newsnow.p.rapidapi.com", r.Header.Get("x-rapidapi-host"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gb", body["location"])
		assert.Equal(t, false, body["time_bounded"])

		_, _ = w.Write([]byte(`{"news":[{"title":"A","short_description":"a","url":"u","top_image":"i","source":"s","publish_date":"d"}]}`))
	}))
	defer srv.Close()

	p := NewRapidAPIProvider(srv.URL, "", "secret-key", time.Second)
	items, err := p.Fetch(context.Background(), Params{Location: "gb"})
	require.NoError(t, err)
	assert.Equal(t, []Item{{Title: "A", ShortDescription: "a", URL: "u", TopImage: "i", Source: "s", PublishDate: "d"}}, items)
}

func TestRapidAPIProviderErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("not subscribed"))
	}))
	defer srv.Close()

	_, err := NewRapidAPIProvider(srv.URL, "", "k", time.Second).Fetch(context.Background(), Params{})
	require.EqualError(t, err, "newsnow: status 403: not subscribed")

	_, err = NewRapidAPIProvider(srv.URL, "", "", time.Second).Fetch(context.Background(), Params{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RAPIDAPI_KEY")
}

func TestRapidAPIProviderEmptyNews(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	items, err := NewRapidAPIProvider(srv.URL, "", "k", time.Second).Fetch(context.Background(), Params{})
	require.NoError(t, err)
	assert.Empty(t, items)
}
