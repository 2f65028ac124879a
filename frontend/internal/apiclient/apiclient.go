package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/a2z-dev/a2z/shared/api"
	"github.com/a2z-dev/a2z/shared/errors"
	"github.com/a2z-dev/a2z/shared/logger"
)

const DefaultTimeout = 10 * time.Second

// APIClient talks to the admin proxy on behalf of a signed-in operator.
type APIClient struct {
	BaseURL    string
	HttpClient *http.Client
}

func New(baseURL string) *APIClient {
	return &APIClient{
		BaseURL:    baseURL,
		HttpClient: &http.Client{Timeout: DefaultTimeout},
	}
}

// Credentials identify the operator to the proxy. Token is sent as a bearer token.
type Credentials struct {
	Token string
}

// do is the single helper for making proxy requests. Transport failures are reported as BackendUnavailable.
func (c *APIClient) do(ctx context.Context, method, path string, body io.Reader, creds Credentials) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create API request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if creds.Token != "" {
		req.Header.Set("Authorization", "Bearer "+creds.Token)
	}

	resp, err := c.HttpClient.Do(req)
	if err != nil {
		logger.Log.Warn("admin proxy request failed", "method", method, "path", path, "error", err)
		return nil, &errors.ErrorWithStatusCode{
			Message:    fmt.Sprintf("backend unavailable: %v", err),
			StatusCode: http.StatusBadGateway,
			Kind:       errors.BackendUnavailable,
		}
	}
	return resp, nil
}

// readError turns a non-2xx proxy response into an error carrying the proxy's message.
func readError(resp *http.Response) error {
	var body api.ErrorResponse
	raw, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(raw, &body); err != nil || body.Error == "" {
		body.Error = fmt.Sprintf("admin proxy responded %d", resp.StatusCode)
	}
	kind := errors.UnknownProviderError
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		kind = errors.InvalidCredentials
	case http.StatusForbidden:
		kind = errors.AccountBlocked
	case http.StatusNotFound:
		kind = errors.IdentityNotFound
	case http.StatusBadRequest:
		kind = errors.ValidationError
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		kind = errors.BackendUnavailable
	}
	return &errors.ErrorWithStatusCode{Message: body.Error, StatusCode: resp.StatusCode, Kind: kind}
}
