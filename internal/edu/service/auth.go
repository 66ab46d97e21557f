package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/edupredict/edupredict/internal/edu/domain"
	"github.com/edupredict/edupredict/internal/edu/store"
	"github.com/edupredict/edupredict/pkg/cryptox"
	"github.com/edupredict/edupredict/pkg/edusdk"
	"github.com/edupredict/edupredict/pkg/idx"
	"github.com/edupredict/edupredict/pkg/jwtx"
	"github.com/edupredict/edupredict/pkg/slogx"
	"github.com/pquerna/otp/totp"
)

const (
	// MaxMFAAttempts is the maximum number of failed MFA attempts allowed per session
	MaxMFAAttempts = 5

	// MFASessionTTL bounds how long a password-verified login may wait for
	// its TOTP code.
	MFASessionTTL = 5 * time.Minute
)

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrAccountDisabled    = errors.New("account_disabled")
	ErrInvalidRefresh     = errors.New("invalid_refresh_token")
	ErrInvalidGrant       = errors.New("invalid_grant")
	ErrTooManyAttempts    = errors.New("too_many_attempts")
)

// MFARequiredError is an alias to the SDK's MFARequiredError so both sides
// of the wire agree on the shape of the challenge.
type MFARequiredError = edusdk.MFARequiredError

// AuthService owns the session lifecycle: password login, TOTP challenge
// exchange, refresh rotation and revocation.
type AuthService struct {
	Signer     jwtx.Signer
	Store      store.Store
	Issuer     string
	Audience   string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Login verifies the email/password pair and issues a token pair. If the
// user has TOTP enrolled it returns an *MFARequiredError carrying a
// short-lived challenge token instead.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.TokenPair, error) {
	now := time.Now()
	l := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// burn comparable time so user enumeration via latency is harder
			_ = cryptox.VerifyPassword(password, cryptox.DummyHash)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		l.Info("password verification failed", slog.String("user_id", user.ID))
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		l.Info("login attempt on disabled account", slog.String("user_id", user.ID))
		return nil, ErrAccountDisabled
	}

	// TOTP-enrolled users get a challenge instead of tokens
	if user.MFAEnabled != nil {
		challenge, err := cryptox.GenerateToken(cryptox.TokenSize128)
		if err != nil {
			return nil, err
		}
		session := domain.MFASession{
			Token:     challenge,
			UserID:    user.ID,
			ExpiresAt: now.Add(MFASessionTTL),
		}
		if err := s.Store.MFASessions().CreateMFASession(ctx, session); err != nil {
			return nil, err
		}
		return nil, &MFARequiredError{MFAToken: challenge}
	}

	return s.issuePair(ctx, user, idx.New().String(), now, true)
}

// ExchangeMFACode completes a login that returned an MFA challenge. The
// session allows MaxMFAAttempts failures before it is destroyed.
func (s *AuthService) ExchangeMFACode(ctx context.Context, mfaToken, code string) (*domain.TokenPair, error) {
	now := time.Now()
	l := slogx.FromContext(ctx)

	session, err := s.Store.MFASessions().GetMFASession(ctx, mfaToken)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidGrant
		}
		return nil, err
	}

	if now.After(session.ExpiresAt) {
		_ = s.Store.MFASessions().DeleteMFASession(ctx, mfaToken)
		return nil, ErrInvalidGrant
	}

	if session.Attempts >= MaxMFAAttempts {
		_ = s.Store.MFASessions().DeleteMFASession(ctx, mfaToken)
		l.Warn("MFA session exceeded max attempts",
			slog.String("user_id", session.UserID),
			slog.Int("attempts", session.Attempts),
		)
		return nil, ErrTooManyAttempts
	}

	user, err := s.Store.Users().GetUserByID(ctx, session.UserID)
	if err != nil {
		return nil, err
	}

	if user.MFASecret == nil || !totp.Validate(code, *user.MFASecret) {
		updated, err := s.Store.MFASessions().IncrementMFASessionAttempts(ctx, mfaToken)
		if err != nil {
			return nil, ErrInvalidGrant
		}
		l.Info("MFA code rejected",
			slog.String("user_id", session.UserID),
			slog.Int("attempts", updated.Attempts),
		)
		return nil, ErrInvalidGrant
	}

	if err := s.Store.MFASessions().DeleteMFASession(ctx, mfaToken); err != nil {
		return nil, err
	}

	return s.issuePair(ctx, user, idx.New().String(), now, true)
}

// Refresh rotates the given refresh token: the old token is revoked and a
// new pair issued atomically, preserving the session ID.
func (s *AuthService) Refresh(ctx context.Context, refreshOpaque string) (*domain.TokenPair, error) {
	now := time.Now()

	fp := cryptox.FingerprintToken(refreshOpaque)
	rt, err := s.Store.RefreshTokens().GetRefreshTokenByHash(ctx, fp)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidRefresh
		}
		return nil, err
	}

	if rt.Revoked || now.After(rt.ExpiresAt) {
		return nil, ErrInvalidRefresh
	}

	user, err := s.Store.Users().GetUserByID(ctx, rt.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidRefresh
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrInvalidRefresh
	}

	accessToken, err := s.signAccess(user, rt.SessionID, now)
	if err != nil {
		return nil, err
	}

	newOpaque, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return nil, err
	}

	newRT := domain.RefreshToken{
		ID:        idx.New().String(),
		UserID:    user.ID,
		TokenHash: cryptox.FingerprintToken(newOpaque),
		SessionID: rt.SessionID, // session survives rotation
		ExpiresAt: now.Add(s.RefreshTTL),
	}

	// Atomically: revoke old token and create new one
	if err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.RefreshTokens().RevokeRefreshToken(ctx, fp); err != nil {
			return err
		}
		return tx.RefreshTokens().CreateRefreshToken(ctx, newRT)
	}); err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: newOpaque,
		ExpiresIn:    s.AccessTTL,
	}, nil
}

// Revoke invalidates a refresh token by its opaque value. Revoking a token
// that is already gone is not an error, so logout stays idempotent.
func (s *AuthService) Revoke(ctx context.Context, refreshOpaque string) error {
	fp := cryptox.FingerprintToken(refreshOpaque)
	err := s.Store.RefreshTokens().RevokeRefreshToken(ctx, fp)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	return err
}

// issuePair signs an access token and persists a fresh refresh token. When
// touchLogin is set the user's last_login is updated in the same transaction.
func (s *AuthService) issuePair(
	ctx context.Context,
	user domain.User,
	sessionID string,
	now time.Time,
	touchLogin bool,
) (*domain.TokenPair, error) {
	accessToken, err := s.signAccess(user, sessionID, now)
	if err != nil {
		return nil, err
	}

	refreshOpaque, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return nil, err
	}

	rt := domain.RefreshToken{
		ID:        idx.New().String(),
		UserID:    user.ID,
		TokenHash: cryptox.FingerprintToken(refreshOpaque),
		SessionID: sessionID,
		ExpiresAt: now.Add(s.RefreshTTL),
	}

	if err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.RefreshTokens().CreateRefreshToken(ctx, rt); err != nil {
			return err
		}
		if touchLogin {
			return tx.Users().TouchLastLogin(ctx, user.ID, now)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshOpaque,
		ExpiresIn:    s.AccessTTL,
	}, nil
}

func (s *AuthService) signAccess(u domain.User, sessionID string, now time.Time) (string, error) {
	claims := jwtx.NewAccessClaims(
		u.ID,                 // subject
		sessionID,            // session ID
		u.Email,              // email
		u.Role.String(),      // role
		s.AccessTTL,          // token lifetime
		s.Issuer,             // issuer
		[]string{s.Audience}, // audience
		now,                  // current time
	)
	return s.Signer.Sign(claims)
}
