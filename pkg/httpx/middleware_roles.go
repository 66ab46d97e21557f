package httpx

import (
	"net/http"
	"strings"
)

// RequireAnyRole gates a handler on the caller's role: the caller must have
// one of the listed roles. An empty list means any authenticated caller is
// allowed, mirroring the route-permission rules the SDK evaluates client
// side. AuthnMiddleware must run first.
func RequireAnyRole(allowed ...string) Middleware {
	want := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		want[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := RoleFromContext(r.Context())
			if role == "" {
				writeBearerError(w, "missing bearer token")
				return
			}

			if len(want) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			if _, ok := want[role]; ok {
				next.ServeHTTP(w, r)
				return
			}

			writeRoleError(w, allowed...)
		})
	}
}

func writeRoleError(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("WWW-Authenticate",
		`Bearer error="insufficient_role", roles="`+strings.Join(allowed, " ")+`"`)
	WriteError(w, http.StatusForbidden, "insufficient_role",
		"your role is not permitted to access this resource")
}
