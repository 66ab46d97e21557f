package service

import (
	"context"
	"testing"
	"time"

	"github.com/edupredict/edupredict/internal/edu/domain"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"
)

func TestMFAEnrollmentLifecycle(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &MFAService{Store: st, Issuer: "edupredict-test"}

	user := seedUser(t, st, "enroll@uni.edu", "password123!", domain.RoleStudent, true)

	t.Run("confirm before enrollment fails", func(t *testing.T) {
		require.ErrorIs(t, svc.ConfirmEnrollment(ctx, user.ID, "000000"), ErrMFANotEnrolled)
	})

	enrollment, err := svc.StartEnrollment(ctx, user.ID)
	require.NoError(t, err)
	require.NotEmpty(t, enrollment.Secret)
	require.Contains(t, enrollment.OTPAuthURL, "otpauth://")

	t.Run("enrollment is inactive until confirmed", func(t *testing.T) {
		fetched, err := st.Users().GetUserByID(ctx, user.ID)
		require.NoError(t, err)
		require.Nil(t, fetched.MFAEnabled)
		require.NotNil(t, fetched.MFASecret)
	})

	t.Run("wrong code does not activate", func(t *testing.T) {
		require.ErrorIs(t, svc.ConfirmEnrollment(ctx, user.ID, "000000"), ErrInvalidMFACode)
	})

	code, err := totp.GenerateCode(enrollment.Secret, time.Now())
	require.NoError(t, err)
	require.NoError(t, svc.ConfirmEnrollment(ctx, user.ID, code))

	t.Run("active after confirmation", func(t *testing.T) {
		fetched, err := st.Users().GetUserByID(ctx, user.ID)
		require.NoError(t, err)
		require.NotNil(t, fetched.MFAEnabled)
	})

	t.Run("re-enrollment refused while active", func(t *testing.T) {
		_, err := svc.StartEnrollment(ctx, user.ID)
		require.ErrorIs(t, err, ErrMFAAlreadyEnabled)
	})

	t.Run("disable requires a valid code", func(t *testing.T) {
		require.ErrorIs(t, svc.Disable(ctx, user.ID, "000000"), ErrInvalidMFACode)

		code, err := totp.GenerateCode(enrollment.Secret, time.Now())
		require.NoError(t, err)
		require.NoError(t, svc.Disable(ctx, user.ID, code))

		fetched, err := st.Users().GetUserByID(ctx, user.ID)
		require.NoError(t, err)
		require.Nil(t, fetched.MFAEnabled)
		require.Nil(t, fetched.MFASecret)
	})
}
