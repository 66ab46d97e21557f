package edusdk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Client is the API gateway for EduPredict: it owns the base URL, the HTTP
// transport, the credential store and the reactive refresh behaviour.
//
// The client never inspects access-token expiry locally. Requests are sent
// with whatever token is stored; a 401 triggers one silent refresh attempt
// and a retry. If the refresh also fails the unauthorized handler fires and
// the error surfaces to the caller.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	creds CredentialStore

	// refreshMu serialises refresh attempts so concurrent 401s produce a
	// single rotation instead of racing each other with a consumed token.
	refreshMu sync.Mutex

	onUnauthorized func()
}

// NewClient creates a client against the given base URL. Credentials are
// read from and written to store.
func NewClient(baseURL string, store CredentialStore) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		creds: store,
	}
}

// SetUnauthorizedHandler installs a hook invoked when a request fails with
// 401 and the silent refresh cannot recover it. The session layer uses
// this for its exactly-once logout escalation.
func (c *Client) SetUnauthorizedHandler(fn func()) {
	c.onUnauthorized = fn
}

// Credentials exposes the underlying store, mainly so the session layer
// can check whether anything is persisted at startup.
func (c *Client) Credentials() CredentialStore { return c.creds }

func (c *Client) url(path string) string {
	return c.BaseURL + path
}

// doJSON performs an unauthenticated JSON request. Used for the auth
// endpoints themselves; a 401 here is a final answer, never an escalation.
func (c *Client) doJSON(ctx context.Context, method, path string, reqBody, out any, expected int) error {
	var body io.Reader
	if reqBody != nil {
		raw, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	return decodeJSON(resp, out, expected)
}

// doAuthJSON performs an authenticated JSON request with the reactive
// 401-refresh-retry behaviour.
func (c *Client) doAuthJSON(ctx context.Context, method, path string, reqBody, out any, expected int) error {
	var raw []byte
	if reqBody != nil {
		var err error
		raw, err = json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
	}

	creds, err := c.creds.Load()
	if err != nil {
		return fmt.Errorf("failed to load credentials: %w", err)
	}
	if creds.AccessToken == "" && creds.RefreshToken == "" {
		return ErrUnauthenticated
	}

	resp, err := c.send(ctx, method, path, raw, creds.AccessToken)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		io.Copy(io.Discard, resp.Body) //nolint:errcheck
		resp.Body.Close()

		token, refreshErr := c.refreshAfter401(ctx, creds.AccessToken)
		if refreshErr != nil {
			// Only an authoritative rejection of the refresh token ends
			// the session. A transport failure says nothing about the
			// stored tokens, so they stay put and the caller can retry.
			var apiErr *APIError
			if errors.As(refreshErr, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
				if c.onUnauthorized != nil {
					c.onUnauthorized()
				}
			}
			return refreshErr
		}

		resp, err = c.send(ctx, method, path, raw, token)
		if err != nil {
			return err
		}

		// A 401 on the retried request falls through to decodeJSON and is
		// returned as-is. The rotation just proved the session is alive;
		// the endpoint is rejecting this request on its own terms (a wrong
		// current password on the password-change endpoint, for instance),
		// and tearing the session down for that would log the user out
		// over a typo.
	}

	return decodeJSON(resp, out, expected)
}

func (c *Client) send(ctx context.Context, method, path string, body []byte, token string) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	return resp, nil
}

// refreshAfter401 rotates the refresh token and returns a fresh access
// token. staleToken is the access token that just got rejected; if another
// goroutine already refreshed while we waited for the lock, its result is
// reused instead of burning the rotated token again.
func (c *Client) refreshAfter401(ctx context.Context, staleToken string) (string, error) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	creds, err := c.creds.Load()
	if err != nil {
		return "", fmt.Errorf("failed to load credentials: %w", err)
	}
	if creds.AccessToken != "" && creds.AccessToken != staleToken {
		return creds.AccessToken, nil
	}
	if creds.RefreshToken == "" {
		return "", ErrUnauthenticated
	}

	var tokens TokenResponse
	err = c.doJSON(ctx, http.MethodPost, "/v1/auth/refresh",
		map[string]string{"refresh_token": creds.RefreshToken},
		&tokens, http.StatusOK)
	if err != nil {
		return "", err
	}

	newCreds := Credentials{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}
	if err := c.creds.Save(newCreds); err != nil {
		return "", fmt.Errorf("failed to save credentials: %w", err)
	}
	return tokens.AccessToken, nil
}

// decodeJSON decodes a JSON response into target. Returns a typed APIError
// or MFARequiredError if the response indicates an error.
func decodeJSON(resp *http.Response, target any, expectedStatus int) error {
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != expectedStatus {
		return parseErrorResponse(resp, bodyBytes)
	}

	if target == nil {
		return nil
	}
	if err := json.Unmarshal(bodyBytes, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
