package edusdk

import (
	"slices"
	"strings"
)

// DecisionKind classifies a route guard's answer.
type DecisionKind int

const (
	// Undetermined means the session is still resolving; render nothing
	// and ask again once Restore finishes.
	Undetermined DecisionKind = iota

	// Allow means the route may render.
	Allow

	// Redirect means navigate to Decision.Target instead.
	Redirect
)

// Decision is the route guard's verdict for a path.
type Decision struct {
	Kind   DecisionKind
	Target string // set when Kind == Redirect
}

// Rule protects every path under Prefix. An empty Roles list admits any
// authenticated user; otherwise the user's role must be listed.
type Rule struct {
	Prefix string
	Roles  []string
}

// LoginPath is where unauthenticated users land.
const LoginPath = "/login"

// UnauthorizedPath is where authenticated users land when their role does
// not permit a route. Distinct from the login page: the session is fine,
// the destination isn't.
const UnauthorizedPath = "/unauthorized"

// Guard decides route access from the session state. Paths not covered by
// any rule and not public are treated as requiring authentication only.
type Guard struct {
	session *SessionContext
	rules   []Rule

	// public paths invert: an authenticated user visiting one is bounced
	// to their dashboard instead of seeing a login form again
	public []string
}

// NewGuard creates a guard over the session with the given protected
// rules. Longest matching prefix wins.
func NewGuard(session *SessionContext, rules []Rule) *Guard {
	sorted := slices.Clone(rules)
	slices.SortFunc(sorted, func(a, b Rule) int {
		return len(b.Prefix) - len(a.Prefix)
	})
	return &Guard{
		session: session,
		rules:   sorted,
		public:  []string{LoginPath, "/register"},
	}
}

// DefaultRules is the standard EduPredict route table.
func DefaultRules() []Rule {
	return []Rule{
		{Prefix: "/dashboard/student", Roles: []string{"student"}},
		{Prefix: "/dashboard/teacher", Roles: []string{"teacher"}},
		{Prefix: "/dashboard/admin", Roles: []string{"admin"}},
		{Prefix: "/dashboard/analyst", Roles: []string{"analyst"}},
		{Prefix: "/users", Roles: []string{"admin"}},
		{Prefix: "/students", Roles: []string{"teacher", "admin"}},
		{Prefix: "/courses", Roles: []string{"teacher", "admin"}},
		{Prefix: "/analytics", Roles: []string{"analyst", "admin"}},
		{Prefix: "/profile", Roles: nil}, // any authenticated user
	}
}

// CanEnter decides whether the current session may visit path.
func (g *Guard) CanEnter(path string) Decision {
	// an unresolved session answers nothing definite for any path
	if g.session.Loading() {
		return Decision{Kind: Undetermined}
	}

	authenticated := g.session.IsAuthenticated()
	role := g.session.Role()

	if g.isPublic(path) {
		if authenticated {
			return Decision{Kind: Redirect, Target: DashboardFor(role)}
		}
		return Decision{Kind: Allow}
	}

	if !authenticated {
		return Decision{Kind: Redirect, Target: LoginPath}
	}

	for _, rule := range g.rules {
		if !matchesPrefix(path, rule.Prefix) {
			continue
		}
		if len(rule.Roles) == 0 || slices.Contains(rule.Roles, role) {
			return Decision{Kind: Allow}
		}
		// signed in, wrong door: not a login problem
		return Decision{Kind: Redirect, Target: UnauthorizedPath}
	}

	return Decision{Kind: Allow}
}

func (g *Guard) isPublic(path string) bool {
	for _, p := range g.public {
		if matchesPrefix(path, p) {
			return true
		}
	}
	return false
}

func matchesPrefix(path, prefix string) bool {
	if path == prefix {
		return true
	}
	return strings.HasPrefix(path, prefix+"/")
}

// DashboardFor maps a role to its landing page. The switch is exhaustive
// over the known roles; anything else lands on the login page.
func DashboardFor(role string) string {
	switch role {
	case "student":
		return "/dashboard/student"
	case "teacher":
		return "/dashboard/teacher"
	case "admin":
		return "/dashboard/admin"
	case "analyst":
		return "/dashboard/analyst"
	default:
		return LoginPath
	}
}
