// Package api is the HTTP client for the central backend: token-based
// authentication with transparent refresh, response decompression, and retry
// on transient failures. Methods return domain models; wire DTOs stay
// private to the package.
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
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/trrcms/trrcms/internal/apperrors"
	"github.com/trrcms/trrcms/internal/config"
	"github.com/trrcms/trrcms/internal/metrics"
	"github.com/trrcms/trrcms/internal/models"
)

// refreshWindow is how long before expiry a token is considered stale and
// refreshed ahead of the next request.
const refreshWindow = 5 * time.Minute

// Client queries the central backend.
type Client interface {
	// Login authenticates and caches the access token for later calls.
	Login(ctx context.Context) error
	// Health probes the backend and reports whether it is reachable.
	Health(ctx context.Context) error

	GetBuilding(ctx context.Context, buildingID string) (models.Building, error)
	SearchBuildings(ctx context.Context, query string, page, pageSize int) ([]models.Building, int, error)
	ListBuildingsByNeighborhood(ctx context.Context, neighborhoodCode string) ([]models.Building, error)

	GetUnit(ctx context.Context, unitUUID string) (models.Unit, error)
	ListUnitsByBuilding(ctx context.Context, buildingID string) ([]models.Unit, error)

	ListSurveys(ctx context.Context, source string, page, pageSize int) ([]models.Survey, int, error)
	GetSurveyContext(ctx context.Context, surveyID string) (models.SurveyContext, error)

	Close() error
}

type client struct {
	httpClient *http.Client
	baseURL    string
	username   string
	password   string
	logger     zerolog.Logger

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewClient creates a backend client from configuration. The transport chain
// is retry over compression over the default transport.
func NewClient(cfg *config.Config, logger zerolog.Logger) Client {
	baseTransport := http.DefaultTransport.(*http.Transport).Clone()

	httpClient := &http.Client{
		Timeout:   cfg.BackendTimeout(),
		Transport: newRetryTransport(newCompressionTransport(baseTransport)),
	}

	return &client{
		httpClient: httpClient,
		baseURL:    cfg.Backend.BaseURL,
		username:   cfg.Backend.Username,
		password:   cfg.Backend.Password,
		logger:     logger,
	}
}

// Close releases client resources.
func (c *client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// observe records one backend request in the metrics, labeled by path rather
// than full URL to keep cardinality bounded.
func observe(path string, resp *http.Response, err error) {
	status := "error"
	if err == nil && resp != nil {
		status = strconv.Itoa(resp.StatusCode)
	}
	metrics.BackendRequestsTotal.WithLabelValues(path, status).Inc()
}

// Login authenticates against the backend token endpoint and caches the
// bearer token.
func (c *client) Login(ctx context.Context) error {
	form := url.Values{}
	form.Set("username", c.username)
	form.Set("password", c.password)

	endpoint := c.baseURL + "/api/v1/auth/token"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint,
		bytes.NewBufferString(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	observe("/api/v1/auth/token", resp, err)
	if err != nil {
		return apperrors.NewBackendUnavailableError(endpoint, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return apperrors.NewUnauthorizedError("invalid backend credentials")
	}
	if resp.StatusCode != http.StatusOK {
		return apperrors.NewBackendUnavailableError(endpoint, resp.StatusCode, nil)
	}

	var token TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return fmt.Errorf("failed to decode token response: %w", err)
	}

	c.mu.Lock()
	c.accessToken = token.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
	c.mu.Unlock()

	c.logger.Debug().Str("baseURL", c.baseURL).Msg("Authenticated with backend")
	return nil
}

// ensureToken refreshes the cached token when it is missing or inside the
// refresh window.
func (c *client) ensureToken(ctx context.Context) error {
	c.mu.Lock()
	valid := c.accessToken != "" && time.Until(c.tokenExpiry) > refreshWindow
	c.mu.Unlock()
	if valid {
		return nil
	}
	return c.Login(ctx)
}

// get performs an authenticated GET and decodes the JSON reply into out.
func (c *client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	if err := c.ensureToken(ctx); err != nil {
		return err
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.mu.Lock()
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	c.mu.Unlock()
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	observe(path, resp, err)
	if err != nil {
		return apperrors.NewBackendUnavailableError(endpoint, 0, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return apperrors.NewNotFoundError("Resource", path)
	case resp.StatusCode == http.StatusUnauthorized:
		return apperrors.NewUnauthorizedError("backend token rejected")
	default:
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return apperrors.NewBackendUnavailableError(endpoint, resp.StatusCode, nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return nil
}

// Health probes the backend health endpoint without authentication.
func (c *client) Health(ctx context.Context) error {
	endpoint := c.baseURL + "/api/v1/health"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create health request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	observe("/api/v1/health", resp, err)
	if err != nil {
		return apperrors.NewBackendUnavailableError(endpoint, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apperrors.NewBackendUnavailableError(endpoint, resp.StatusCode, nil)
	}

	var health healthDTO
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return fmt.Errorf("failed to decode health response: %w", err)
	}
	c.logger.Debug().Str("status", health.Status).Str("version", health.Version).Msg("Backend health check")
	return nil
}
