package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/edupredict/edupredict/pkg/httpx"
	"github.com/edupredict/edupredict/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const (
	testIssuer   = "edupredict-test"
	testAudience = "edupredict-api"
)

func newSignedToken(t *testing.T, keys *jwtx.EdDSAKeyPair, subject, role string) string {
	t.Helper()

	claims := jwtx.NewAccessClaims(subject, "sid-1", "test@uni.edu", role,
		time.Minute, testIssuer, []string{testAudience}, time.Now())
	token, err := keys.Sign(claims)
	require.NoError(t, err)
	return token
}

func TestAuthnMiddleware(t *testing.T) {
	keys, err := jwtx.GenerateEdDSAKeyPair("test-key")
	require.NoError(t, err)
	verifier := jwtx.NewEdDSAVerifier(testIssuer, []string{testAudience}, keys)

	// echoes the identity the middleware injected
	var gotUserID, gotRole string
	handler := httpx.AuthnMiddleware(verifier)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = httpx.UserIDFromContext(r.Context())
		gotRole = httpx.RoleFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("valid token passes identity through", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+newSignedToken(t, keys, "user-1", "teacher"))
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "user-1", gotUserID)
		require.Equal(t, "teacher", gotRole)
	})

	t.Run("missing header is a 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Header().Get("WWW-Authenticate"), "invalid_token")
	})

	t.Run("malformed header is a 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("token from an unknown key is a 401", func(t *testing.T) {
		otherKeys, err := jwtx.GenerateEdDSAKeyPair("other-key")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+newSignedToken(t, otherKeys, "user-1", "teacher"))
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("expired token is a 401", func(t *testing.T) {
		claims := jwtx.NewAccessClaims("user-1", "sid-1", "test@uni.edu", "teacher",
			-time.Minute, testIssuer, []string{testAudience}, time.Now().Add(-time.Hour))
		token, err := keys.Sign(claims)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireAnyRole(t *testing.T) {
	keys, err := jwtx.GenerateEdDSAKeyPair("test-key")
	require.NoError(t, err)
	verifier := jwtx.NewEdDSAVerifier(testIssuer, []string{testAudience}, keys)

	okHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	serve := func(handler http.Handler, role string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if role != "" {
			req.Header.Set("Authorization", "Bearer "+newSignedToken(t, keys, "user-1", role))
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	t.Run("allows a listed role", func(t *testing.T) {
		handler := httpx.Chain(okHandler,
			httpx.AuthnMiddleware(verifier),
			httpx.RequireAnyRole("teacher", "admin"),
		)
		require.Equal(t, http.StatusOK, serve(handler, "teacher").Code)
		require.Equal(t, http.StatusOK, serve(handler, "admin").Code)
	})

	t.Run("rejects an unlisted role with 403", func(t *testing.T) {
		handler := httpx.Chain(okHandler,
			httpx.AuthnMiddleware(verifier),
			httpx.RequireAnyRole("admin"),
		)
		rec := serve(handler, "student")
		require.Equal(t, http.StatusForbidden, rec.Code)
		require.Contains(t, rec.Header().Get("WWW-Authenticate"), "insufficient_role")
		require.Contains(t, rec.Body.String(), "insufficient_role")
	})

	t.Run("empty role list means any authenticated caller", func(t *testing.T) {
		handler := httpx.Chain(okHandler,
			httpx.AuthnMiddleware(verifier),
			httpx.RequireAnyRole(),
		)
		require.Equal(t, http.StatusOK, serve(handler, "student").Code)
	})

	t.Run("unauthenticated request never reaches the role check", func(t *testing.T) {
		handler := httpx.Chain(okHandler,
			httpx.AuthnMiddleware(verifier),
			httpx.RequireAnyRole("admin"),
		)
		require.Equal(t, http.StatusUnauthorized, serve(handler, "").Code)
	})
}
