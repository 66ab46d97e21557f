package service

import (
	"context"
	"errors"

	"github.com/edupredict/edupredict/internal/edu/store"
	"github.com/pquerna/otp/totp"
)

var (
	ErrMFAAlreadyEnabled = errors.New("mfa_already_enabled")
	ErrMFANotEnrolled    = errors.New("mfa_not_enrolled")
	ErrInvalidMFACode    = errors.New("invalid_mfa_code")
)

// MFAService handles TOTP enrollment. The login-time challenge exchange
// lives on AuthService; this service only manages the secret lifecycle.
type MFAService struct {
	Store  store.Store
	Issuer string
}

// EnrollmentResponse carries what the client needs to provision an
// authenticator app.
type EnrollmentResponse struct {
	Secret     string // base32 TOTP secret
	OTPAuthURL string // otpauth:// provisioning URI
}

// StartEnrollment generates a TOTP secret and stores it against the user.
// MFA is not active until ConfirmEnrollment sees a valid code.
func (s *MFAService) StartEnrollment(ctx context.Context, userID string) (*EnrollmentResponse, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if user.MFAEnabled != nil {
		return nil, ErrMFAAlreadyEnabled
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.Issuer,
		AccountName: user.Email,
	})
	if err != nil {
		return nil, err
	}

	if err := s.Store.Users().UpdateMFASecret(ctx, userID, key.Secret()); err != nil {
		return nil, err
	}

	return &EnrollmentResponse{
		Secret:     key.Secret(),
		OTPAuthURL: key.URL(),
	}, nil
}

// ConfirmEnrollment activates MFA once the user proves their authenticator
// produces valid codes.
func (s *MFAService) ConfirmEnrollment(ctx context.Context, userID, code string) error {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if user.MFAEnabled != nil {
		return ErrMFAAlreadyEnabled
	}
	if user.MFASecret == nil {
		return ErrMFANotEnrolled
	}
	if !totp.Validate(code, *user.MFASecret) {
		return ErrInvalidMFACode
	}

	return s.Store.Users().EnableMFA(ctx, userID)
}

// Disable turns MFA off. Requires a currently-valid code so a hijacked
// session can't silently strip the second factor.
func (s *MFAService) Disable(ctx context.Context, userID, code string) error {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if user.MFAEnabled == nil || user.MFASecret == nil {
		return ErrMFANotEnrolled
	}
	if !totp.Validate(code, *user.MFASecret) {
		return ErrInvalidMFACode
	}

	return s.Store.Users().DisableMFA(ctx, userID)
}
