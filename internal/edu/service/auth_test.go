package service

import (
	"context"
	"testing"
	"time"

	"github.com/edupredict/edupredict/internal/edu/domain"
	"github.com/edupredict/edupredict/internal/edu/store"
	"github.com/edupredict/edupredict/internal/edu/store/drivers/sqlite"
	"github.com/edupredict/edupredict/pkg/cryptox"
	"github.com/edupredict/edupredict/pkg/idx"
	"github.com/edupredict/edupredict/pkg/jwtx"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func newAuthService(t *testing.T, st store.Store) (*AuthService, *jwtx.EdDSAVerifier) {
	t.Helper()

	keys, err := jwtx.GenerateEdDSAKeyPair(idx.New().String())
	require.NoError(t, err)

	svc := &AuthService{
		Signer:     keys,
		Store:      st,
		Issuer:     "edupredict-test",
		Audience:   "edupredict-api",
		AccessTTL:  jwtx.DefaultAccessTokenTTL,
		RefreshTTL: jwtx.DefaultRefreshTokenTTL,
	}
	verifier := jwtx.NewEdDSAVerifier(svc.Issuer, []string{svc.Audience}, keys)
	return svc, verifier
}

func seedUser(t *testing.T, st store.Store, email, password string, role domain.Role, active bool) domain.User {
	t.Helper()

	hash, err := cryptox.HashPassword(password)
	require.NoError(t, err)

	user := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    "Test",
		LastName:     "User",
		Role:         role,
		IsActive:     active,
	}
	require.NoError(t, st.Users().CreateUser(context.Background(), user))
	return user
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc, verifier := newAuthService(t, st)

	user := seedUser(t, st, "alice@uni.edu", "correct horse battery", domain.RoleTeacher, true)
	seedUser(t, st, "bob@uni.edu", "irrelevant", domain.RoleStudent, false)

	t.Run("issues a pair for valid credentials", func(t *testing.T) {
		pair, err := svc.Login(ctx, "alice@uni.edu", "correct horse battery")
		require.NoError(t, err)
		require.NotEmpty(t, pair.AccessToken)
		require.NotEmpty(t, pair.RefreshToken)

		claims, err := verifier.Verify(pair.AccessToken)
		require.NoError(t, err)
		require.Equal(t, user.ID, claims.Subject)
		require.Equal(t, "teacher", claims.Role)
		require.NotEmpty(t, claims.SID)
	})

	t.Run("updates last_login", func(t *testing.T) {
		fetched, err := st.Users().GetUserByID(ctx, user.ID)
		require.NoError(t, err)
		require.NotNil(t, fetched.LastLogin)
	})

	t.Run("rejects a wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, "alice@uni.edu", "wrong")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("rejects an unknown email", func(t *testing.T) {
		_, err := svc.Login(ctx, "nobody@uni.edu", "whatever")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("rejects a disabled account even with the right password", func(t *testing.T) {
		_, err := svc.Login(ctx, "bob@uni.edu", "irrelevant")
		require.ErrorIs(t, err, ErrAccountDisabled)
	})
}

func TestRefreshRotation(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc, verifier := newAuthService(t, st)

	seedUser(t, st, "carol@uni.edu", "password123!", domain.RoleAdmin, true)

	pair, err := svc.Login(ctx, "carol@uni.edu", "password123!")
	require.NoError(t, err)

	firstClaims, err := verifier.Verify(pair.AccessToken)
	require.NoError(t, err)

	rotated, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	t.Run("session survives rotation", func(t *testing.T) {
		claims, err := verifier.Verify(rotated.AccessToken)
		require.NoError(t, err)
		require.Equal(t, firstClaims.SID, claims.SID)
	})

	t.Run("old token is dead after rotation", func(t *testing.T) {
		_, err := svc.Refresh(ctx, pair.RefreshToken)
		require.ErrorIs(t, err, ErrInvalidRefresh)
	})

	t.Run("new token still works", func(t *testing.T) {
		again, err := svc.Refresh(ctx, rotated.RefreshToken)
		require.NoError(t, err)
		require.NotEmpty(t, again.AccessToken)
	})

	t.Run("garbage token rejected", func(t *testing.T) {
		_, err := svc.Refresh(ctx, "not-a-token")
		require.ErrorIs(t, err, ErrInvalidRefresh)
	})
}

func TestRefreshRejectsDeactivatedUser(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc, _ := newAuthService(t, st)

	user := seedUser(t, st, "dave@uni.edu", "password123!", domain.RoleStudent, true)

	pair, err := svc.Login(ctx, "dave@uni.edu", "password123!")
	require.NoError(t, err)

	require.NoError(t, st.Users().SetUserActive(ctx, user.ID, false))

	_, err = svc.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidRefresh)
}

func TestRevokeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc, _ := newAuthService(t, st)

	seedUser(t, st, "erin@uni.edu", "password123!", domain.RoleAnalyst, true)

	pair, err := svc.Login(ctx, "erin@uni.edu", "password123!")
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(ctx, pair.RefreshToken))

	// revoking again, or revoking garbage, is still fine
	require.NoError(t, svc.Revoke(ctx, pair.RefreshToken))
	require.NoError(t, svc.Revoke(ctx, "never-existed"))

	_, err = svc.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidRefresh)
}

func TestMFAChallengeFlow(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc, _ := newAuthService(t, st)

	user := seedUser(t, st, "frank@uni.edu", "password123!", domain.RoleTeacher, true)

	key, err := totp.Generate(totp.GenerateOpts{Issuer: "edupredict-test", AccountName: user.Email})
	require.NoError(t, err)
	require.NoError(t, st.Users().UpdateMFASecret(ctx, user.ID, key.Secret()))
	require.NoError(t, st.Users().EnableMFA(ctx, user.ID))

	login := func(t *testing.T) string {
		t.Helper()
		_, err := svc.Login(ctx, "frank@uni.edu", "password123!")
		var challenge *MFARequiredError
		require.ErrorAs(t, err, &challenge)
		require.NotEmpty(t, challenge.MFAToken)
		return challenge.MFAToken
	}

	t.Run("valid code completes the login", func(t *testing.T) {
		mfaToken := login(t)

		code, err := totp.GenerateCode(key.Secret(), time.Now())
		require.NoError(t, err)

		pair, err := svc.ExchangeMFACode(ctx, mfaToken, code)
		require.NoError(t, err)
		require.NotEmpty(t, pair.AccessToken)

		// challenge is single use
		_, err = svc.ExchangeMFACode(ctx, mfaToken, code)
		require.ErrorIs(t, err, ErrInvalidGrant)
	})

	t.Run("wrong codes burn attempts until the session dies", func(t *testing.T) {
		mfaToken := login(t)

		for i := 0; i < MaxMFAAttempts; i++ {
			_, err := svc.ExchangeMFACode(ctx, mfaToken, "000000")
			require.ErrorIs(t, err, ErrInvalidGrant)
		}

		code, err := totp.GenerateCode(key.Secret(), time.Now())
		require.NoError(t, err)

		// even the right code is refused once attempts are exhausted
		_, err = svc.ExchangeMFACode(ctx, mfaToken, code)
		require.ErrorIs(t, err, ErrTooManyAttempts)
	})

	t.Run("unknown challenge token rejected", func(t *testing.T) {
		_, err := svc.ExchangeMFACode(ctx, "bogus", "000000")
		require.ErrorIs(t, err, ErrInvalidGrant)
	})
}
