package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/a2z-dev/a2z/shared/api"
	"github.com/a2z-dev/a2z/shared/domain"
)

// ListUsers returns the identities known to the credential store.
func (c *APIClient) ListUsers(ctx context.Context, creds Credentials) ([]api.AdminUser, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/admin/users", nil, creds)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, readError(resp)
	}

	var users []api.AdminUser
	if err := json.NewDecoder(resp.Body).Decode(&users); err != nil {
		return nil, fmt.Errorf("failed to decode users response: %w", err)
	}
	return users, nil
}

// SetUserDisabled bans (disabled=true) or reactivates an identity.
func (c *APIClient) SetUserDisabled(ctx context.Context, creds Credentials, uid domain.IdentityId, disabled bool) (string, error) {
	jsonBody, err := json.Marshal(api.BanUserRequest{Uid: uid, Disabled: &disabled})
	if err != nil {
		return "", fmt.Errorf("failed to marshal ban request: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, "/api/admin/ban-user", bytes.NewReader(jsonBody), creds)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", readError(resp)
	}

	var result api.BanUserResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode ban response: %w", err)
	}
	return result.Message, nil
}

// ListBans returns the stored ban records.
func (c *APIClient) ListBans(ctx context.Context, creds Credentials) ([]domain.BanRecord, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/admin/bans", nil, creds)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, readError(resp)
	}

	var result api.BansResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode bans response: %w", err)
	}
	return result.Bans, nil
}
