package domain

import "fmt"

// Role is the sole authorization dimension in EduPredict. The set is closed:
// route gating, dashboard dispatch and the SDK's role flags all switch
// exhaustively over these four values, so adding a role is a deliberate,
// compile-visible change rather than a silent string fallthrough.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
	RoleAnalyst Role = "analyst"
)

// Roles lists every valid role.
func Roles() []Role {
	return []Role{RoleStudent, RoleTeacher, RoleAdmin, RoleAnalyst}
}

// ParseRole validates s as a role name.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleStudent, RoleTeacher, RoleAdmin, RoleAnalyst:
		return Role(s), nil
	}
	return "", fmt.Errorf("domain: unknown role %q", s)
}

// Valid reports whether r is one of the four known roles.
func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

func (r Role) String() string { return string(r) }
