package tmdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/marquee/internal/domain"
)

const (
	DefaultBaseURL      = "https://api.themoviedb.org/3"
	DefaultImageBaseURL = "https://image.tmdb.org/t/p/w500"

	defaultTimeout = 15 * time.Second
	userAgent      = "Marquee/1.0"
)

// StatusError reports a non-2xx answer from the catalog API.
// It matches domain.ErrProtocol under errors.Is.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("tmdb status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("tmdb status %d", e.StatusCode)
}

func (e *StatusError) Is(target error) bool {
	return target == domain.ErrProtocol
}

// Client fetches movie pages from the TMDB v3 API.
// It reports failures and never retries; retry policy belongs to callers.
type Client struct {
	baseURL    string
	apiKey     string
	language   string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithBaseURL points the client at a different API root (used by tests)
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(baseURL, "/") }
}

// WithLanguage sets the language query parameter sent with every request
func WithLanguage(language string) Option {
	return func(c *Client) { c.language = language }
}

// WithTimeout overrides the HTTP client timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient creates a new TMDB API client
func NewClient(apiKey string, logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchPage returns one page of movies for a category ("popular", "upcoming", ...)
func (c *Client) FetchPage(ctx context.Context, category string, page int) (*MovieListResponse, error) {
	if c.apiKey == "" {
		return nil, domain.ErrMissingAPIKey
	}
	if page < 1 {
		page = 1
	}

	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	if c.language != "" {
		query.Set("language", c.language)
	}

	path := "/movie/" + url.PathEscape(domain.NormalizeCategory(category))
	body, err := c.doRequest(ctx, path, query)
	if err != nil {
		return nil, err
	}

	var resp MovieListResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.logger.Error("tmdb JSON parse error", "error", err, "bodyLen", len(body))
		return nil, fmt.Errorf("%w: failed to parse response: %v", domain.ErrProtocol, err)
	}

	c.logger.Debug("fetched movie page",
		"category", category,
		"page", resp.Page,
		"results", len(resp.Results),
		"totalPages", resp.TotalPages)
	return &resp, nil
}

// doRequest performs an authenticated GET request and returns the body of a 2xx response
func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if query == nil {
		query = url.Values{}
	}
	query.Set("api_key", c.apiKey)
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	c.logger.Debug("tmdb request", "path", path, "page", query.Get("page"))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		c.logger.Error("tmdb request failed", "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", domain.ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := &StatusError{StatusCode: resp.StatusCode}
		var apiErr errorResponse
		if json.Unmarshal(body, &apiErr) == nil {
			statusErr.Message = apiErr.StatusMessage
		}
		c.logger.Error("tmdb request error", "status", resp.StatusCode, "message", statusErr.Message)
		return nil, statusErr
	}

	return body, nil
}

// ImageURL joins an image path fragment to the image base URL.
// An empty fragment yields an empty URL.
func ImageURL(imageBaseURL, path string) string {
	if path == "" {
		return ""
	}
	if imageBaseURL == "" {
		imageBaseURL = DefaultImageBaseURL
	}
	return strings.TrimRight(imageBaseURL, "/") + "/" + strings.TrimLeft(path, "/")
}
