package edusdk

import (
	"context"
	"errors"
	"sync"
)

// SessionState is the lifecycle state of a SessionContext.
type SessionState int

const (
	// StateInitializing means Restore has not yet resolved. Route guards
	// treat this as "don't know yet" rather than redirecting.
	StateInitializing SessionState = iota

	// StateAuthenticated means a user profile is loaded and requests are
	// expected to succeed.
	StateAuthenticated

	// StateUnauthenticated means there is no usable session.
	StateUnauthenticated
)

func (s SessionState) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// SessionContext tracks who is signed in. It starts in StateInitializing
// and resolves via Restore, Login or Logout. A 401 that the client cannot
// silently recover from collapses the session exactly once, no matter how
// many concurrent requests observed the failure.
type SessionContext struct {
	client *Client

	mu    sync.RWMutex
	state SessionState
	user  UserProfile

	// OnSessionExpired fires at most once per authenticated period, when
	// the session collapses from under the user (as opposed to an
	// explicit Logout). Set it before issuing requests.
	OnSessionExpired func()
}

// NewSessionContext wires a session state machine onto the client. The
// client's unauthorized handler is taken over; there must be one
// SessionContext per Client.
func NewSessionContext(client *Client) *SessionContext {
	sc := &SessionContext{
		client: client,
		state:  StateInitializing,
	}
	client.SetUnauthorizedHandler(sc.expire)
	return sc
}

// Client returns the underlying API client.
func (sc *SessionContext) Client() *Client { return sc.client }

// Restore resolves the initial state from stored credentials: nothing
// stored means unauthenticated, otherwise the profile is fetched (with the
// client's usual silent refresh retry on 401). Transport errors leave the
// state untouched so a caller can retry Restore.
func (sc *SessionContext) Restore(ctx context.Context) error {
	creds, err := sc.client.Credentials().Load()
	if err != nil {
		return err
	}
	if creds.IsZero() {
		sc.setUnauthenticated()
		return nil
	}

	profile, err := sc.client.Me(ctx)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == 401 {
			// stored tokens are dead; start over
			_ = sc.client.Credentials().Clear()
			sc.setUnauthenticated()
			return nil
		}
		return err
	}

	sc.setAuthenticated(profile)
	return nil
}

// Login authenticates and loads the user profile. An MFA challenge is
// passed through as *MFARequiredError; complete it with CompleteMFA.
func (sc *SessionContext) Login(ctx context.Context, email, password string) error {
	if _, err := sc.client.Login(ctx, email, password); err != nil {
		return err
	}
	return sc.loadProfile(ctx)
}

// CompleteMFA finishes a login that returned an MFA challenge.
func (sc *SessionContext) CompleteMFA(ctx context.Context, mfaToken, code string) error {
	if _, err := sc.client.ExchangeMFA(ctx, mfaToken, code); err != nil {
		return err
	}
	return sc.loadProfile(ctx)
}

func (sc *SessionContext) loadProfile(ctx context.Context) error {
	profile, err := sc.client.Me(ctx)
	if err != nil {
		return err
	}
	sc.setAuthenticated(profile)
	return nil
}

// Logout revokes and clears the session. Idempotent: logging out twice is
// fine, and an explicit logout never fires OnSessionExpired.
func (sc *SessionContext) Logout(ctx context.Context) error {
	err := sc.client.Logout(ctx)
	sc.setUnauthenticated()
	return err
}

// UpdateUser applies a profile update optimistically: the local user is
// patched immediately and rolled back if the server rejects the change.
func (sc *SessionContext) UpdateUser(ctx context.Context, upd ProfileUpdate) error {
	sc.mu.Lock()
	if sc.state != StateAuthenticated {
		sc.mu.Unlock()
		return ErrUnauthenticated
	}
	previous := sc.user
	if upd.FirstName != nil {
		sc.user.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		sc.user.LastName = *upd.LastName
	}
	if upd.Email != nil {
		sc.user.Email = *upd.Email
	}
	sc.mu.Unlock()

	profile, err := sc.client.UpdateMe(ctx, upd)
	if err != nil {
		sc.mu.Lock()
		// only roll back if nothing else replaced the session meanwhile
		if sc.state == StateAuthenticated && sc.user.ID == previous.ID {
			sc.user = previous
		}
		sc.mu.Unlock()
		return err
	}

	sc.mu.Lock()
	if sc.state == StateAuthenticated {
		sc.user = profile
	}
	sc.mu.Unlock()
	return nil
}

// expire is the unauthorized handler: it tears the session down exactly
// once. Concurrent 401s all call this; only the first transition fires the
// OnSessionExpired hook.
func (sc *SessionContext) expire() {
	sc.mu.Lock()
	if sc.state != StateAuthenticated {
		sc.mu.Unlock()
		return
	}
	sc.state = StateUnauthenticated
	sc.user = UserProfile{}
	hook := sc.OnSessionExpired
	sc.mu.Unlock()

	_ = sc.client.Credentials().Clear()

	if hook != nil {
		hook()
	}
}

func (sc *SessionContext) setAuthenticated(user UserProfile) {
	sc.mu.Lock()
	sc.state = StateAuthenticated
	sc.user = user
	sc.mu.Unlock()
}

func (sc *SessionContext) setUnauthenticated() {
	sc.mu.Lock()
	sc.state = StateUnauthenticated
	sc.user = UserProfile{}
	sc.mu.Unlock()
}

// State returns the current lifecycle state.
func (sc *SessionContext) State() SessionState {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.state
}

// Loading reports whether Restore has not resolved yet.
func (sc *SessionContext) Loading() bool {
	return sc.State() == StateInitializing
}

// IsAuthenticated reports whether a user is signed in.
func (sc *SessionContext) IsAuthenticated() bool {
	return sc.State() == StateAuthenticated
}

// User returns a copy of the signed-in profile. Zero value when not
// authenticated.
func (sc *SessionContext) User() UserProfile {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.user
}

// Role returns the signed-in user's role, empty when not authenticated.
func (sc *SessionContext) Role() string {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	if sc.state != StateAuthenticated {
		return ""
	}
	return sc.user.Role
}

func (sc *SessionContext) IsStudent() bool { return sc.Role() == "student" }
func (sc *SessionContext) IsTeacher() bool { return sc.Role() == "teacher" }
func (sc *SessionContext) IsAdmin() bool   { return sc.Role() == "admin" }
func (sc *SessionContext) IsAnalyst() bool { return sc.Role() == "analyst" }
