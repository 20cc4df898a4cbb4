package opensubtitles

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/angelospk/subsubs/internal/constants"
	"github.com/angelospk/subsubs/internal/httpclient"
	"github.com/angelospk/subsubs/pkg/metrics"
)

// Config holds the configuration for the OpenSubtitles client.
type Config struct {
	APIKey    string
	UserAgent string
	BaseURL   string        // Optional: Override default base URL
	Token     string        // Optional: user JWT, sent as Bearer on download requests
	Languages string        // Optional: comma-separated language filter for searches
	Timeout   time.Duration // Optional: defaults to constants.DefaultTimeout
	// HTTPClient overrides the transport; its Timeout is left untouched when set.
	HTTPClient *http.Client
}

// Client is the upstream OpenSubtitles API client. It holds the credential and
// never exposes it to its callers. Every method performs exactly one attempt.
type Client struct {
	config     Config
	httpClient *httpclient.Client
}

// NewClient creates a new OpenSubtitles API client.
// A missing API key is not an error here; each call reports it instead.
func NewClient(config Config) (*Client, error) {
	if config.UserAgent == "" {
		config.UserAgent = constants.DefaultUserAgent
	}

	baseURL := constants.DefaultBaseURL
	if config.BaseURL != "" {
		if _, err := url.ParseRequestURI(config.BaseURL); err != nil {
			return nil, fmt.Errorf("invalid BaseURL provided: %w", err)
		}
		baseURL = config.BaseURL
	}

	hc := config.HTTPClient
	if hc == nil {
		timeout := config.Timeout
		if timeout <= 0 {
			timeout = constants.DefaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}

	c := &Client{
		config:     config,
		httpClient: httpclient.New(baseURL, config.APIKey, config.UserAgent, hc),
	}
	if config.Token != "" {
		c.httpClient.SetAuthToken(config.Token)
	}
	return c, nil
}

// SearchSubtitles searches the upstream catalogue by free-text title and returns
// the records in upstream order. Ranking is the caller's concern.
func (c *Client) SearchSubtitles(ctx context.Context, query string) ([]SubtitleRecord, error) {
	params := SearchSubtitlesParams{
		Query:     query,
		Languages: strings.TrimSpace(c.config.Languages),
	}

	var response SubtitleSearchResponse
	start := time.Now()
	err := c.httpClient.Get(ctx, "/subtitles", params, &response)
	metrics.ObserveUpstream("search", start, err)
	if err != nil {
		return nil, err
	}

	records := make([]SubtitleRecord, 0, len(response.Data))
	for _, sub := range response.Data {
		records = append(records, ToRecord(sub))
	}
	return records, nil
}

// RequestDownloadLink asks the upstream API for a signed link to one file.
// Refusals (quota, entitlement) come back as *errors.UpstreamError with the
// upstream message attached.
func (c *Client) RequestDownloadLink(ctx context.Context, fileID int) (*DownloadLink, error) {
	var response DownloadResponse
	start := time.Now()
	err := c.httpClient.Post(ctx, "/download", DownloadRequest{FileID: fileID}, &response)
	metrics.ObserveUpstream("download_link", start, err)
	if err != nil {
		return nil, err
	}

	return &DownloadLink{
		URL:       response.Link,
		FileName:  response.FileName,
		Remaining: response.Remaining,
		ResetTime: response.ResetTime,
	}, nil
}

// FetchFile retrieves the raw subtitle bytes behind a signed link.
func (c *Client) FetchFile(ctx context.Context, link string) ([]byte, error) {
	start := time.Now()
	data, err := c.httpClient.GetRaw(ctx, link, constants.MaxSubtitleBytes)
	metrics.ObserveUpstream("file_fetch", start, err)
	return data, err
}

// ToRecord converts an upstream subtitle into the presentation record.
func ToRecord(sub Subtitle) SubtitleRecord {
	attrs := sub.Attributes

	id := attrs.SubtitleID
	if id == "" {
		id = sub.ID
	}

	title := attrs.FeatureDetails.Title
	if title == "" {
		title = attrs.FeatureDetails.MovieName
	}

	downloads := attrs.DownloadCount
	if downloads < 0 {
		downloads = 0
	}

	var year *int
	if y := attrs.FeatureDetails.Year; y != nil && *y > 0 {
		v := *y
		year = &v
	}
	var imdbID *int
	if id := attrs.FeatureDetails.IMDbID; id != nil && *id > 0 {
		v := *id
		imdbID = &v
	}

	fileIDs := make([]int, 0, len(attrs.Files))
	for _, f := range attrs.Files {
		fileIDs = append(fileIDs, f.FileID)
	}

	return SubtitleRecord{
		ID:              id,
		Language:        attrs.Language,
		Release:         attrs.Release,
		MovieTitle:      title,
		Year:            year,
		Rating:          attrs.Ratings,
		DownloadCount:   downloads,
		IMDbID:          imdbID,
		FileIDs:         fileIDs,
		FeatureType:     attrs.FeatureDetails.FeatureType,
		HearingImpaired: attrs.HearingImpaired,
		FromTrusted:     attrs.FromTrusted,
	}
}
