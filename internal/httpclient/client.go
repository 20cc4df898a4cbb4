package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	coreErrors "github.com/angelospk/subsubs/pkg/core/errors"
	"github.com/google/go-querystring/query"
)

// CredentialSetting names the configuration key reported when the API key is missing.
const CredentialSetting = "opensubtitles.apikey"

// Client manages making HTTP requests to the API.
type Client struct {
	baseURL    string
	apiKey     string
	userAgent  string
	httpClient *http.Client
	mu         sync.RWMutex // Protects token
	authToken  string
}

// New creates a new internal HTTP client. A nil httpClient falls back to http.DefaultClient.
func New(baseURL, apiKey, userAgent string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		userAgent:  userAgent,
		httpClient: httpClient,
	}
}

// SetAuthToken updates the optional user token sent as a Bearer credential.
func (c *Client) SetAuthToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.authToken = token
}

// HasCredential reports whether an API key is configured.
func (c *Client) HasCredential() bool {
	return strings.TrimSpace(c.apiKey) != ""
}

// Get makes an authenticated GET request.
func (c *Client) Get(ctx context.Context, path string, params interface{}, target interface{}) error {
	return c.doRequest(ctx, http.MethodGet, path, params, nil, target)
}

// Post makes an authenticated POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body interface{}, target interface{}) error {
	return c.doRequest(ctx, http.MethodPost, path, nil, body, target)
}

// GetRaw fetches an absolute URL and returns at most limit bytes of its body.
// Credential headers are never sent with it.
func (c *Client) GetRaw(ctx context.Context, rawURL string, limit int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &coreErrors.UpstreamUnavailableError{Op: "file fetch", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &coreErrors.UpstreamError{Status: resp.StatusCode, Message: errorMessage(body)}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, &coreErrors.UpstreamUnavailableError{Op: "file fetch", Err: err}
	}
	if int64(len(data)) > limit {
		return nil, &coreErrors.UpstreamError{
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("subtitle file exceeds %d bytes", limit),
		}
	}
	return data, nil
}

// doRequest performs the actual HTTP request.
func (c *Client) doRequest(ctx context.Context, method, path string, params interface{}, body interface{}, target interface{}) error {
	if !c.HasCredential() {
		return &coreErrors.ConfigurationError{Setting: CredentialSetting}
	}

	c.mu.RLock()
	currentToken := c.authToken
	c.mu.RUnlock()

	fullURL, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}

	if params != nil {
		v, err := query.Values(params)
		if err != nil {
			return fmt.Errorf("failed to encode query parameters: %w", err)
		}
		fullURL.RawQuery = v.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL.String(), reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Api-Key", c.apiKey)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if currentToken != "" {
		req.Header.Set("Authorization", "Bearer "+currentToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &coreErrors.UpstreamUnavailableError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	respBodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return &coreErrors.UpstreamUnavailableError{Op: method + " " + path, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &coreErrors.UpstreamError{Status: resp.StatusCode, Message: errorMessage(respBodyBytes)}
	}

	if target != nil {
		if err := json.Unmarshal(respBodyBytes, target); err != nil {
			return &coreErrors.UpstreamError{
				Status:  resp.StatusCode,
				Message: fmt.Sprintf("malformed response body: %v", err),
			}
		}
	}

	return nil
}

// errorBody is the subset of the upstream error payload we surface.
type errorBody struct {
	Message string   `json:"message"`
	Errors  []string `json:"errors"`
}

// errorMessage extracts the upstream explanation, if the body carries one. JSON
// bodies use `message`, else the first of `errors`; HTML error pages (proxies,
// maintenance) use their <title>.
func errorMessage(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return ""
	}

	var eb errorBody
	if json.Unmarshal(trimmed, &eb) == nil {
		if eb.Message != "" {
			return eb.Message
		}
		if len(eb.Errors) > 0 {
			return eb.Errors[0]
		}
		return ""
	}

	if trimmed[0] != '<' {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(trimmed))
	if err != nil {
		return ""
	}
	return strings.Join(strings.Fields(doc.Find("title").First().Text()), " ")
}
