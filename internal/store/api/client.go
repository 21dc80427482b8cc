// Package api implements the storage gateway over the remote pipeline data
// API. Every gateway call maps to one HTTP round trip.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/leadgrid/harvester/internal/harvest"
)

// defaultPerPage caps how many rows one listing round trip requests.
const defaultPerPage = 500

// Client talks to the pipeline data API. It implements harvest.Store.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// New creates a Client for the API at baseURL.
func New(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type discoveredURLPage struct {
	Data        []harvest.DiscoveredURL `json:"data"`
	CurrentPage int                     `json:"current_page"`
	LastPage    int                     `json:"last_page"`
}

// FetchPending walks the paginated listing until limit is satisfied or the
// source is exhausted, preserving encounter order.
func (c *Client) FetchPending(ctx context.Context, limit int) ([]harvest.DiscoveredURL, error) {
	perPage := defaultPerPage
	if limit > 0 && limit < perPage {
		perPage = limit
	}

	var urls []harvest.DiscoveredURL
	for page := 1; ; page++ {
		chunk, err := c.listPage(ctx, perPage, page)
		if err != nil {
			return nil, err
		}
		if len(chunk.Data) == 0 {
			break
		}
		urls = append(urls, chunk.Data...)
		if limit > 0 && len(urls) >= limit {
			urls = urls[:limit]
			break
		}
		current := chunk.CurrentPage
		if current == 0 {
			current = page
		}
		last := chunk.LastPage
		if last == 0 {
			last = current
		}
		if current >= last {
			break
		}
		// A short page also means the source is exhausted.
		if len(chunk.Data) < perPage {
			break
		}
	}
	c.logger.Debug("Listed pending URLs", zap.Int("count", len(urls)))
	return urls, nil
}

func (c *Client) listPage(ctx context.Context, perPage, page int) (discoveredURLPage, error) {
	query := url.Values{
		"status":   {string(harvest.StatusNew)},
		"per_page": {strconv.Itoa(perPage)},
		"page":     {strconv.Itoa(page)},
	}
	endpoint := c.baseURL + "/api/discovered-urls?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return discoveredURLPage{}, fmt.Errorf("build listing request: %w", err)
	}

	var result discoveredURLPage
	if err := c.do(req, &result); err != nil {
		return discoveredURLPage{}, fmt.Errorf("list discovered urls page %d: %w", page, err)
	}
	return result, nil
}

// Lock transitions a URL to PROCESSING.
func (c *Client) Lock(ctx context.Context, id int64) error {
	return c.updateStatus(ctx, id, harvest.StatusProcessing)
}

// Finalize sets a terminal status.
func (c *Client) Finalize(ctx context.Context, id int64, status harvest.URLStatus) error {
	return c.updateStatus(ctx, id, status)
}

func (c *Client) updateStatus(ctx context.Context, id int64, status harvest.URLStatus) error {
	body := map[string]string{"status": string(status)}
	endpoint := fmt.Sprintf("%s/api/discovered-urls/%d", c.baseURL, id)
	if err := c.send(ctx, http.MethodPatch, endpoint, body, http.StatusOK); err != nil {
		return fmt.Errorf("update url %d to %s: %w", id, status, err)
	}
	return nil
}

// SaveEmail creates one email record.
func (c *Client) SaveEmail(ctx context.Context, placeID, email, source string) error {
	body := harvest.EmailRecord{PlaceID: placeID, Email: email, Source: source}
	endpoint := c.baseURL + "/api/emails"
	if err := c.send(ctx, http.MethodPost, endpoint, body, http.StatusOK, http.StatusCreated); err != nil {
		return fmt.Errorf("create email for place %s: %w", placeID, err)
	}
	return nil
}

// Close implements harvest.Store; the HTTP client holds no resources that
// outlive its idle connections.
func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func (c *Client) send(ctx context.Context, method, endpoint string, body any, accept ...int) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", harvest.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	for _, code := range accept {
		if resp.StatusCode == code {
			return nil
		}
	}
	return responseError(resp)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", harvest.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return responseError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// responseError surfaces the body's error message when present and keeps
// server-side failures distinguishable from request rejection.
func responseError(resp *http.Response) error {
	msg := errorMessage(resp.Body)
	if msg == "" {
		msg = resp.Status
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%w: http %d: %s", harvest.ErrUnavailable, resp.StatusCode, msg)
	}
	return fmt.Errorf("http %d: %s", resp.StatusCode, msg)
}

func errorMessage(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil {
		return ""
	}
	var parsed struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return strings.TrimSpace(string(raw))
	}
	if parsed.Message != "" {
		return parsed.Message
	}
	return parsed.Error
}
