package edusdk

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeServer is a minimal stand-in for the auth endpoints, with switchable
// behaviour so tests can kill a session mid-flight.
type fakeServer struct {
	mu           sync.Mutex
	accessToken  string
	refreshToken string
	rejectAll    bool // when set, every bearer and refresh is rejected
	refreshCount int
	revokeCount  int
	profile      UserProfile
}

func newFakeServer() (*fakeServer, *httptest.Server) {
	fs := &fakeServer{
		accessToken:  "access-1",
		refreshToken: "refresh-1",
		profile: UserProfile{
			ID:        "user-1",
			Email:     "jordan@example.com",
			FirstName: "Jordan",
			LastName:  "Lee",
			Role:      "teacher",
			IsActive:  true,
		},
	}

	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Password != "correct horse" {
			writeJSONError(w, http.StatusUnauthorized, ErrorCodeInvalidCredentials, "invalid email or password")
			return
		}
		fs.mu.Lock()
		defer fs.mu.Unlock()
		writeTokens(w, fs.accessToken, fs.refreshToken)
	})

	mux.HandleFunc("POST /v1/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			RefreshToken string `json:"refresh_token"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)

		fs.mu.Lock()
		defer fs.mu.Unlock()
		fs.refreshCount++
		if fs.rejectAll || body.RefreshToken != fs.refreshToken {
			writeJSONError(w, http.StatusUnauthorized, ErrorCodeInvalidRefresh, "refresh token is invalid")
			return
		}
		fs.accessToken = "access-rotated"
		fs.refreshToken = "refresh-rotated"
		writeTokens(w, fs.accessToken, fs.refreshToken)
	})

	mux.HandleFunc("POST /v1/auth/revoke", func(w http.ResponseWriter, r *http.Request) {
		fs.mu.Lock()
		fs.revokeCount++
		fs.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("GET /v1/auth/me", func(w http.ResponseWriter, r *http.Request) {
		fs.mu.Lock()
		defer fs.mu.Unlock()
		if fs.rejectAll || r.Header.Get("Authorization") != "Bearer "+fs.accessToken {
			writeJSONError(w, http.StatusUnauthorized, ErrorCodeInvalidToken, "token rejected")
			return
		}
		_ = json.NewEncoder(w).Encode(fs.profile)
	})

	return fs, httptest.NewServer(mux)
}

func (fs *fakeServer) killSession() {
	fs.mu.Lock()
	fs.rejectAll = true
	fs.mu.Unlock()
}

func (fs *fakeServer) refreshes() int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.refreshCount
}

func (fs *fakeServer) revokes() int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.revokeCount
}

func writeTokens(w http.ResponseWriter, access, refresh string) {
	_ = json.NewEncoder(w).Encode(TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    1800,
	})
}

func writeJSONError(w http.ResponseWriter, status int, code, desc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":             code,
		"error_description": desc,
	})
}

func TestSessionRestore(t *testing.T) {
	t.Run("no stored credentials resolves unauthenticated", func(t *testing.T) {
		_, srv := newFakeServer()
		defer srv.Close()

		session := NewSessionContext(NewClient(srv.URL, NewMemStore()))
		require.Equal(t, StateInitializing, session.State())
		require.True(t, session.Loading())

		require.NoError(t, session.Restore(context.Background()))
		require.Equal(t, StateUnauthenticated, session.State())
	})

	t.Run("stored credentials resolve authenticated", func(t *testing.T) {
		_, srv := newFakeServer()
		defer srv.Close()

		store := NewMemStore()
		require.NoError(t, store.Save(Credentials{AccessToken: "access-1", RefreshToken: "refresh-1"}))

		session := NewSessionContext(NewClient(srv.URL, store))
		require.NoError(t, session.Restore(context.Background()))
		require.Equal(t, StateAuthenticated, session.State())
		require.Equal(t, "teacher", session.Role())
		require.Equal(t, "jordan@example.com", session.User().Email)
	})

	t.Run("stale access token is refreshed silently", func(t *testing.T) {
		fs, srv := newFakeServer()
		defer srv.Close()

		store := NewMemStore()
		require.NoError(t, store.Save(Credentials{AccessToken: "access-expired", RefreshToken: "refresh-1"}))

		session := NewSessionContext(NewClient(srv.URL, store))
		require.NoError(t, session.Restore(context.Background()))
		require.Equal(t, StateAuthenticated, session.State())
		require.Equal(t, 1, fs.refreshes())

		// rotated pair must have been persisted
		creds, err := store.Load()
		require.NoError(t, err)
		require.Equal(t, "access-rotated", creds.AccessToken)
		require.Equal(t, "refresh-rotated", creds.RefreshToken)
	})

	t.Run("dead tokens resolve unauthenticated and clear the store", func(t *testing.T) {
		fs, srv := newFakeServer()
		defer srv.Close()
		fs.killSession()

		store := NewMemStore()
		require.NoError(t, store.Save(Credentials{AccessToken: "whatever", RefreshToken: "whatever"}))

		session := NewSessionContext(NewClient(srv.URL, store))
		require.NoError(t, session.Restore(context.Background()))
		require.Equal(t, StateUnauthenticated, session.State())

		creds, err := store.Load()
		require.NoError(t, err)
		require.True(t, creds.IsZero())
	})
}

func TestSessionLogin(t *testing.T) {
	_, srv := newFakeServer()
	defer srv.Close()

	session := NewSessionContext(NewClient(srv.URL, NewMemStore()))

	err := session.Login(context.Background(), "jordan@example.com", "wrong")
	require.Error(t, err)
	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	require.Equal(t, ErrorCodeInvalidCredentials, apiErr.Code)
	require.NotEqual(t, StateAuthenticated, session.State())

	require.NoError(t, session.Login(context.Background(), "jordan@example.com", "correct horse"))
	require.Equal(t, StateAuthenticated, session.State())
	require.True(t, session.IsTeacher())
	require.False(t, session.IsAdmin())
}

func TestLogoutIsIdempotent(t *testing.T) {
	fs, srv := newFakeServer()
	defer srv.Close()

	store := NewMemStore()
	session := NewSessionContext(NewClient(srv.URL, store))
	require.NoError(t, session.Login(context.Background(), "jordan@example.com", "correct horse"))

	expired := 0
	session.OnSessionExpired = func() { expired++ }

	require.NoError(t, session.Logout(context.Background()))
	require.Equal(t, StateUnauthenticated, session.State())
	require.Equal(t, 1, fs.revokes())

	// second logout: no tokens left, no server call, still nil
	require.NoError(t, session.Logout(context.Background()))
	require.Equal(t, 1, fs.revokes())

	// explicit logout never counts as an expiry
	require.Equal(t, 0, expired)

	creds, err := store.Load()
	require.NoError(t, err)
	require.True(t, creds.IsZero())
}

func TestSessionExpiresExactlyOnce(t *testing.T) {
	fs, srv := newFakeServer()
	defer srv.Close()

	session := NewSessionContext(NewClient(srv.URL, NewMemStore()))
	require.NoError(t, session.Login(context.Background(), "jordan@example.com", "correct horse"))

	var expirations atomic.Int32
	session.OnSessionExpired = func() { expirations.Add(1) }

	fs.killSession()

	// many concurrent requests all hit 401 and fail to refresh
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := session.Client().Me(context.Background())
			require.Error(t, err)
		}()
	}
	wg.Wait()

	require.Equal(t, int32(1), expirations.Load())
	require.Equal(t, StateUnauthenticated, session.State())
}

func TestUpdateUserOptimisticRollback(t *testing.T) {
	_, srv := newFakeServer()
	defer srv.Close()

	// the fake server has no PATCH /v1/auth/me handler, so the update
	// fails after the optimistic local merge
	session := NewSessionContext(NewClient(srv.URL, NewMemStore()))
	require.NoError(t, session.Login(context.Background(), "jordan@example.com", "correct horse"))

	newName := "Casey"
	err := session.UpdateUser(context.Background(), ProfileUpdate{FirstName: &newName})
	require.Error(t, err)
	require.Equal(t, "Jordan", session.User().FirstName)
}

func TestLoginWithMFAChallenge(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		(&MFARequiredError{MFAToken: "challenge-1"}).WriteError(w)
	})
	mux.HandleFunc("POST /v1/auth/mfa", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			MFAToken string `json:"mfa_token"`
			Code     string `json:"code"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.MFAToken != "challenge-1" || body.Code != "123456" {
			writeJSONError(w, http.StatusUnauthorized, ErrorCodeInvalidGrant, "bad challenge")
			return
		}
		writeTokens(w, "access-mfa", "refresh-mfa")
	})
	mux.HandleFunc("GET /v1/auth/me", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(UserProfile{ID: "user-2", Role: "analyst"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	session := NewSessionContext(NewClient(srv.URL, NewMemStore()))

	err := session.Login(context.Background(), "sam@example.com", "pw")
	var mfa *MFARequiredError
	require.ErrorAs(t, err, &mfa)
	require.Equal(t, "challenge-1", mfa.MFAToken)
	require.NotEqual(t, StateAuthenticated, session.State())

	require.NoError(t, session.CompleteMFA(context.Background(), mfa.MFAToken, "123456"))
	require.Equal(t, StateAuthenticated, session.State())
	require.True(t, session.IsAnalyst())
}

func TestTransportFailureDuringRefreshKeepsSession(t *testing.T) {
	// rejectMe flips the /v1/auth/me endpoint into 401ing, forcing the
	// client down the silent-refresh path
	var rejectMe atomic.Bool

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/auth/me", func(w http.ResponseWriter, r *http.Request) {
		if rejectMe.Load() {
			writeJSONError(w, http.StatusUnauthorized, ErrorCodeInvalidToken, "token rejected")
			return
		}
		_ = json.NewEncoder(w).Encode(UserProfile{ID: "user-1", Role: "teacher"})
	})
	mux.HandleFunc("POST /v1/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		// sever the connection mid-request: a network failure, not a verdict
		conn, _, err := w.(http.Hijacker).Hijack()
		require.NoError(t, err)
		_ = conn.Close()
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	store := NewMemStore()
	require.NoError(t, store.Save(Credentials{AccessToken: "access-1", RefreshToken: "refresh-1"}))

	session := NewSessionContext(NewClient(srv.URL, store))
	require.NoError(t, session.Restore(context.Background()))
	require.Equal(t, StateAuthenticated, session.State())

	expired := 0
	session.OnSessionExpired = func() { expired++ }

	rejectMe.Store(true)

	_, err := session.Client().Me(context.Background())
	require.Error(t, err)
	require.False(t, IsUnauthorized(err), "a dropped connection is not an auth verdict")

	// the session and the stored tokens survive the outage
	require.Equal(t, 0, expired)
	require.Equal(t, StateAuthenticated, session.State())

	creds, err := store.Load()
	require.NoError(t, err)
	require.False(t, creds.IsZero())

	// once the network recovers, the same tokens keep working
	rejectMe.Store(false)
	profile, err := session.Client().Me(context.Background())
	require.NoError(t, err)
	require.Equal(t, "user-1", profile.ID)
}

func TestRejectedRetryAfterRefreshKeepsSession(t *testing.T) {
	var refreshes atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/auth/me", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(UserProfile{ID: "user-1", Role: "teacher"})
	})
	mux.HandleFunc("POST /v1/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshes.Add(1)
		writeTokens(w, "access-rotated", "refresh-rotated")
	})
	// 401s regardless of the bearer token: the credential being checked
	// here is the current password, not the session
	mux.HandleFunc("POST /v1/auth/password", func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, http.StatusUnauthorized, ErrorCodeInvalidCredentials, "current password is wrong")
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	store := NewMemStore()
	require.NoError(t, store.Save(Credentials{AccessToken: "access-1", RefreshToken: "refresh-1"}))

	session := NewSessionContext(NewClient(srv.URL, store))
	require.NoError(t, session.Restore(context.Background()))

	expired := 0
	session.OnSessionExpired = func() { expired++ }

	err := session.Client().ChangePassword(context.Background(), "wrong", "new password!")
	require.Error(t, err)
	require.True(t, IsUnauthorized(err))

	// exactly one refresh attempt, then the 401 surfaces without ending
	// the session
	require.Equal(t, int32(1), refreshes.Load())
	require.Equal(t, 0, expired)
	require.Equal(t, StateAuthenticated, session.State())

	// the burned rotation was persisted, so later requests use the new pair
	creds, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, "access-rotated", creds.AccessToken)
}
