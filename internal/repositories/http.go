package repositories

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/reaver89/time-tracker/internal/models"
	"github.com/rs/zerolog"
)

// maxErrorBody caps how much of an error response is kept for the caller
const maxErrorBody = 2048

// apiClient holds the HTTP plumbing shared by the JIRA and Tempo repositories
type apiClient struct {
	service string
	baseURL string
	client  *http.Client
	auth    func(*http.Request)
	log     zerolog.Logger
}

func newAPIClient(service, baseURL string, timeoutSeconds int, auth func(*http.Request), log zerolog.Logger) *apiClient {
	if timeoutSeconds <= 0 {
		timeoutSeconds = 30
	}
	return &apiClient{
		service: service,
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: time.Duration(timeoutSeconds) * time.Second,
		},
		auth: auth,
		log:  log.With().Str("service", service).Logger(),
	}
}

// url joins path onto the base URL. Absolute URLs, such as pagination
// cursors, are returned unchanged.
func (c *apiClient) url(path string, query url.Values) string {
	u := path
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		u = c.baseURL + path
	}
	if len(query) > 0 {
		sep := "?"
		if strings.Contains(u, "?") {
			sep = "&"
		}
		u += sep + query.Encode()
	}
	return u
}

// do sends a JSON request and decodes a JSON response into out when out is non-nil
func (c *apiClient) do(ctx context.Context, method, rawURL string, body, out any) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.auth(req)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", c.service, err)
	}
	defer resp.Body.Close()

	c.log.Debug().
		Str("method", method).
		Str("url", rawURL).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("api call")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &models.UpstreamError{
			Service:    c.service,
			Method:     method,
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(data)),
		}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", c.service, err)
	}
	return nil
}

// isStatus reports whether err is an upstream error with the given status
func isStatus(err error, status int) bool {
	var upstream *models.UpstreamError
	return errors.As(err, &upstream) && upstream.StatusCode == status
}
