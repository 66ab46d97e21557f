package edusdk

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func guardForState(t *testing.T, role string, loading bool) *Guard {
	t.Helper()

	session := NewSessionContext(NewClient("http://unused", NewMemStore()))
	switch {
	case loading:
		// leave in StateInitializing
	case role == "":
		session.setUnauthenticated()
	default:
		session.setAuthenticated(UserProfile{ID: "u1", Role: role})
	}
	return NewGuard(session, DefaultRules())
}

func TestGuardWhileLoading(t *testing.T) {
	guard := guardForState(t, "", true)

	for _, path := range []string{"/dashboard/student", "/login", "/profile", "/anything"} {
		d := guard.CanEnter(path)
		require.Equal(t, Undetermined, d.Kind, "path %s", path)
	}
}

func TestGuardUnauthenticated(t *testing.T) {
	guard := guardForState(t, "", false)

	t.Run("protected routes redirect to login", func(t *testing.T) {
		for _, path := range []string{"/dashboard/teacher", "/users", "/profile"} {
			d := guard.CanEnter(path)
			require.Equal(t, Redirect, d.Kind, "path %s", path)
			require.Equal(t, LoginPath, d.Target, "path %s", path)
		}
	})

	t.Run("public routes render", func(t *testing.T) {
		require.Equal(t, Allow, guard.CanEnter("/login").Kind)
		require.Equal(t, Allow, guard.CanEnter("/register").Kind)
	})
}

func TestGuardRoleGating(t *testing.T) {
	t.Run("own dashboard allowed", func(t *testing.T) {
		for _, role := range []string{"student", "teacher", "admin", "analyst"} {
			guard := guardForState(t, role, false)
			require.Equal(t, Allow, guard.CanEnter("/dashboard/"+role).Kind, "role %s", role)
		}
	})

	t.Run("wrong role is sent to the unauthorized page", func(t *testing.T) {
		guard := guardForState(t, "student", false)

		d := guard.CanEnter("/users")
		require.Equal(t, Redirect, d.Kind)
		require.Equal(t, UnauthorizedPath, d.Target)

		d = guard.CanEnter("/dashboard/admin")
		require.Equal(t, Redirect, d.Kind)
		require.Equal(t, UnauthorizedPath, d.Target)
	})

	t.Run("shared rules admit every listed role", func(t *testing.T) {
		for _, role := range []string{"teacher", "admin"} {
			guard := guardForState(t, role, false)
			require.Equal(t, Allow, guard.CanEnter("/students").Kind, "role %s", role)
			require.Equal(t, Allow, guard.CanEnter("/courses/c1/roster").Kind, "role %s", role)
		}

		guard := guardForState(t, "analyst", false)
		require.Equal(t, Allow, guard.CanEnter("/analytics").Kind)

		d := guard.CanEnter("/students")
		require.Equal(t, Redirect, d.Kind)
		require.Equal(t, UnauthorizedPath, d.Target)
	})

	t.Run("empty role list admits any authenticated user", func(t *testing.T) {
		for _, role := range []string{"student", "teacher", "admin", "analyst"} {
			guard := guardForState(t, role, false)
			require.Equal(t, Allow, guard.CanEnter("/profile").Kind, "role %s", role)
		}
	})
}

func TestGuardPublicRouteInversion(t *testing.T) {
	guard := guardForState(t, "teacher", false)

	d := guard.CanEnter("/login")
	require.Equal(t, Redirect, d.Kind)
	require.Equal(t, "/dashboard/teacher", d.Target)

	d = guard.CanEnter("/register")
	require.Equal(t, Redirect, d.Kind)
	require.Equal(t, "/dashboard/teacher", d.Target)
}

func TestDashboardFor(t *testing.T) {
	require.Equal(t, "/dashboard/student", DashboardFor("student"))
	require.Equal(t, "/dashboard/teacher", DashboardFor("teacher"))
	require.Equal(t, "/dashboard/admin", DashboardFor("admin"))
	require.Equal(t, "/dashboard/analyst", DashboardFor("analyst"))

	// anything outside the closed role set lands on login
	require.Equal(t, LoginPath, DashboardFor(""))
	require.Equal(t, LoginPath, DashboardFor("superuser"))
}

func TestGuardResolvesAfterRestore(t *testing.T) {
	_, srv := newFakeServer()
	defer srv.Close()

	store := NewMemStore()
	require.NoError(t, store.Save(Credentials{AccessToken: "access-1", RefreshToken: "refresh-1"}))

	session := NewSessionContext(NewClient(srv.URL, store))
	guard := NewGuard(session, DefaultRules())

	require.Equal(t, Undetermined, guard.CanEnter("/dashboard/teacher").Kind)

	require.NoError(t, session.Restore(context.Background()))

	require.Equal(t, Allow, guard.CanEnter("/dashboard/teacher").Kind)
	d := guard.CanEnter("/login")
	require.Equal(t, Redirect, d.Kind)
	require.Equal(t, "/dashboard/teacher", d.Target)
}
