package opensubtitles

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	coreErrors "github.com/angelospk/subsubs/pkg/core/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestServer(t *testing.T, handler http.HandlerFunc, mutate ...func(*Config)) (*httptest.Server, *Client) {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	config := Config{
		APIKey:     "test-api-key",
		UserAgent:  "GoTestClient/1.0",
		BaseURL:    server.URL + "/api/v1",
		HTTPClient: server.Client(),
	}
	for _, m := range mutate {
		m(&config)
	}
	client, err := NewClient(config)
	require.NoError(t, err, "Failed to create client for test")
	return server, client
}

func intPtr(v int) *int { return &v }

func TestNewClient(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		c, err := NewClient(Config{APIKey: "k"})
		require.NoError(t, err)
		assert.Equal(t, "subsubs v1.0", c.config.UserAgent)
	})

	t.Run("MissingKeyAccepted", func(t *testing.T) {
		_, err := NewClient(Config{})
		assert.NoError(t, err)
	})

	t.Run("InvalidBaseURL", func(t *testing.T) {
		_, err := NewClient(Config{APIKey: "k", BaseURL: "::not a url"})
		assert.Error(t, err)
	})
}

func TestSearchSubtitlesSuccess(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/subtitles", r.URL.Path)
		assert.Equal(t, "test-api-key", r.Header.Get("Api-Key"))
		assert.Equal(t, "GoTestClient/1.0", r.Header.Get("User-Agent"))
		assert.Equal(t, "Inception", r.URL.Query().Get("query"))
		assert.Equal(t, "", r.URL.Query().Get("languages"))

		w.Header().Set("Content-Type", "application/json")
		resp := SubtitleSearchResponse{
			TotalCount: 2, TotalPages: 1, Page: 1,
			Data: []Subtitle{
				{
					ID: "7001", Type: "subtitle",
					Attributes: SubtitleAttributes{
						SubtitleID:    "7001",
						Language:      "fr",
						DownloadCount: 500,
						Ratings:       7.5,
						Release:       "Inception.2010.1080p.BluRay.x264",
						FeatureDetails: FeatureInfo{
							Title: "Inception", Year: intPtr(2010), IMDbID: intPtr(1375666), FeatureType: "Movie",
						},
						Files: []SubtitleFile{{FileID: 11}, {FileID: 12}},
					},
				},
				{
					ID: "7002", Type: "subtitle",
					Attributes: SubtitleAttributes{
						Language:      "en",
						DownloadCount: 10,
						FeatureDetails: FeatureInfo{
							MovieName: "2010 - Inception",
						},
						Files: []SubtitleFile{{FileID: 21}},
					},
				},
			},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}

	_, client := setupTestServer(t, handler)
	records, err := client.SearchSubtitles(context.Background(), "Inception")
	require.NoError(t, err)
	require.Len(t, records, 2)

	fr := records[0]
	assert.Equal(t, "7001", fr.ID)
	assert.Equal(t, "fr", fr.Language)
	assert.Equal(t, 500, fr.DownloadCount)
	assert.Equal(t, "Inception", fr.MovieTitle)
	require.NotNil(t, fr.Year)
	assert.Equal(t, 2010, *fr.Year)
	require.NotNil(t, fr.IMDbID)
	assert.Equal(t, 1375666, *fr.IMDbID)
	assert.Equal(t, []int{11, 12}, fr.FileIDs)
	assert.True(t, fr.Downloadable())

	en := records[1]
	assert.Equal(t, "7002", en.ID, "falls back to data id when subtitle_id is missing")
	assert.Equal(t, "2010 - Inception", en.MovieTitle, "falls back to movie_name")
	assert.Nil(t, en.Year)
	assert.Nil(t, en.IMDbID)
}

func TestSearchSubtitlesLanguageFilter(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "en,fr", r.URL.Query().Get("languages"))
		_, _ = w.Write([]byte(`{"total_count": 0, "page": 1, "total_pages": 0, "data": []}`))
	}

	_, client := setupTestServer(t, handler, func(c *Config) { c.Languages = " en,fr " })
	records, err := client.SearchSubtitles(context.Background(), "Inception")
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestSearchSubtitlesError(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("Service Unavailable"))
	}

	_, client := setupTestServer(t, handler)
	records, err := client.SearchSubtitles(context.Background(), "Inception")

	require.Error(t, err)
	assert.Nil(t, records)
	upErr, ok := coreErrors.AsUpstream(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusServiceUnavailable, upErr.Status)
	assert.ErrorIs(t, err, coreErrors.ErrServiceUnavailable)
}

func TestSearchSubtitlesTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(Config{APIKey: "k", BaseURL: server.URL, Timeout: 20 * time.Millisecond})
	require.NoError(t, err)

	_, err = client.SearchSubtitles(context.Background(), "Inception")
	assert.True(t, coreErrors.IsUnavailable(err), "timeout should surface as unavailable, got %v", err)
}

func TestMissingCredentialNeverCallsUpstream(t *testing.T) {
	var hits int32
	handler := func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}
	_, client := setupTestServer(t, handler, func(c *Config) { c.APIKey = "" })

	_, err := client.SearchSubtitles(context.Background(), "Inception")
	assert.True(t, coreErrors.IsConfiguration(err))

	_, err = client.RequestDownloadLink(context.Background(), 42)
	assert.True(t, coreErrors.IsConfiguration(err))

	assert.Zero(t, atomic.LoadInt32(&hits))
}

func TestRequestDownloadLinkSuccess(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/download", r.URL.Path)
		assert.Equal(t, "Bearer user-jwt", r.Header.Get("Authorization"))

		var body map[string]int
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]int{"file_id": 11047023}, body)

		_, _ = w.Write([]byte(`{"link": "https://x/y.srt", "file_name": "movie", "requests": 3, "remaining": 97, "reset_time": "23 hours"}`))
	}

	_, client := setupTestServer(t, handler, func(c *Config) { c.Token = "user-jwt" })
	link, err := client.RequestDownloadLink(context.Background(), 11047023)
	require.NoError(t, err)
	assert.Equal(t, "https://x/y.srt", link.URL)
	assert.Equal(t, "movie", link.FileName)
	assert.Equal(t, 97, link.Remaining)
	assert.Equal(t, "23 hours", link.ResetTime)
}

func TestRequestDownloadLinkRefused(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotAcceptable)
		_, _ = w.Write([]byte(`{"requests": 6, "remaining": -1, "message": "You have downloaded your allowed 5 subtitles for 24h."}`))
	}

	_, client := setupTestServer(t, handler)
	link, err := client.RequestDownloadLink(context.Background(), 1)

	assert.Nil(t, link)
	upErr, ok := coreErrors.AsUpstream(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotAcceptable, upErr.Status)
	assert.Equal(t, "You have downloaded your allowed 5 subtitles for 24h.", upErr.Message)
}

func TestFetchFile(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Api-Key"))
		_, _ = w.Write([]byte("1\n00:00:01,000 --> 00:00:02,000\nDream within a dream\n"))
	}
	server, client := setupTestServer(t, handler)

	data, err := client.FetchFile(context.Background(), server.URL+"/file/abc")
	require.NoError(t, err)
	assert.Contains(t, string(data), "Dream within a dream")
}

func TestToRecordClampsNegativeDownloads(t *testing.T) {
	rec := ToRecord(Subtitle{Attributes: SubtitleAttributes{SubtitleID: "1", DownloadCount: -3}})
	assert.Equal(t, 0, rec.DownloadCount)
	assert.False(t, rec.Downloadable())
	assert.NotNil(t, rec.FileIDs)
}
