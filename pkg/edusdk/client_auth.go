package edusdk

import (
	"context"
	"net/http"
)

// Login performs a password login and persists the resulting token pair.
// When the account has TOTP enrolled the returned error is an
// *MFARequiredError whose token must be passed to ExchangeMFA.
func (c *Client) Login(ctx context.Context, email, password string) (*TokenResponse, error) {
	var tokens TokenResponse
	err := c.doJSON(ctx, http.MethodPost, "/v1/auth/login",
		map[string]string{"email": email, "password": password},
		&tokens, http.StatusOK)
	if err != nil {
		return nil, err
	}

	if err := c.saveTokens(tokens); err != nil {
		return nil, err
	}
	return &tokens, nil
}

// ExchangeMFA completes a login that returned an MFA challenge.
func (c *Client) ExchangeMFA(ctx context.Context, mfaToken, code string) (*TokenResponse, error) {
	var tokens TokenResponse
	err := c.doJSON(ctx, http.MethodPost, "/v1/auth/mfa",
		map[string]string{"mfa_token": mfaToken, "code": code},
		&tokens, http.StatusOK)
	if err != nil {
		return nil, err
	}

	if err := c.saveTokens(tokens); err != nil {
		return nil, err
	}
	return &tokens, nil
}

// Register creates a new account. It does not log the account in; call
// Login afterwards.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (UserProfile, error) {
	var profile UserProfile
	err := c.doJSON(ctx, http.MethodPost, "/v1/auth/register", req, &profile, http.StatusCreated)
	return profile, err
}

// Refresh forces a token rotation using the stored refresh token. Normal
// usage never needs this; rotation happens reactively on 401.
func (c *Client) Refresh(ctx context.Context) error {
	creds, err := c.creds.Load()
	if err != nil {
		return err
	}
	if creds.RefreshToken == "" {
		return ErrUnauthenticated
	}

	var tokens TokenResponse
	err = c.doJSON(ctx, http.MethodPost, "/v1/auth/refresh",
		map[string]string{"refresh_token": creds.RefreshToken},
		&tokens, http.StatusOK)
	if err != nil {
		return err
	}
	return c.saveTokens(tokens)
}

// Logout revokes the stored refresh token and clears local credentials.
// It is idempotent: with nothing stored it simply returns nil, and a
// server-side rejection of the revoke still clears local state.
func (c *Client) Logout(ctx context.Context) error {
	creds, err := c.creds.Load()
	if err != nil {
		return err
	}

	if creds.RefreshToken != "" {
		// best effort; the local teardown matters more than the revoke
		_ = c.doJSON(ctx, http.MethodPost, "/v1/auth/revoke",
			map[string]string{"refresh_token": creds.RefreshToken},
			nil, http.StatusNoContent)
	}

	return c.creds.Clear()
}

// Me fetches the authenticated user's profile.
func (c *Client) Me(ctx context.Context) (UserProfile, error) {
	var profile UserProfile
	err := c.doAuthJSON(ctx, http.MethodGet, "/v1/auth/me", nil, &profile, http.StatusOK)
	return profile, err
}

// UpdateMe applies a partial update to the caller's own profile and
// returns the resulting state.
func (c *Client) UpdateMe(ctx context.Context, upd ProfileUpdate) (UserProfile, error) {
	var profile UserProfile
	err := c.doAuthJSON(ctx, http.MethodPatch, "/v1/auth/me", upd, &profile, http.StatusOK)
	return profile, err
}

// ChangePassword verifies the current password and sets a new one. Every
// refresh token is revoked server-side, so other sessions must log in again.
func (c *Client) ChangePassword(ctx context.Context, current, next string) error {
	return c.doAuthJSON(ctx, http.MethodPost, "/v1/auth/password",
		map[string]string{"current_password": current, "new_password": next},
		nil, http.StatusNoContent)
}

// StartMFAEnrollment generates a TOTP secret for the caller.
func (c *Client) StartMFAEnrollment(ctx context.Context) (MFAEnrollment, error) {
	var enrollment MFAEnrollment
	err := c.doAuthJSON(ctx, http.MethodPost, "/v1/auth/mfa/enroll", nil, &enrollment, http.StatusOK)
	return enrollment, err
}

// ConfirmMFAEnrollment activates TOTP once the authenticator produces a
// valid code.
func (c *Client) ConfirmMFAEnrollment(ctx context.Context, code string) error {
	return c.doAuthJSON(ctx, http.MethodPost, "/v1/auth/mfa/verify",
		map[string]string{"code": code}, nil, http.StatusNoContent)
}

// DisableMFA turns TOTP off; requires a currently-valid code.
func (c *Client) DisableMFA(ctx context.Context, code string) error {
	return c.doAuthJSON(ctx, http.MethodDelete, "/v1/auth/mfa",
		map[string]string{"code": code}, nil, http.StatusNoContent)
}

func (c *Client) saveTokens(tokens TokenResponse) error {
	return c.creds.Save(Credentials{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	})
}
