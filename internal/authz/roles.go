package authz

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
	RoleClient   Role = "client"
)

var landing = map[Role]string{
	RoleAdmin:    "/admin/dashboard",
	RoleEmployee: "/admin/calendar/posts",
	RoleClient:   "/dashboard",
}

func (r Role) Valid() bool {
	_, ok := landing[r]
	return ok
}

// LandingPath is where a role lands after login. Unknown roles go to the
// login page.
func LandingPath(r Role) string {
	if p, ok := landing[r]; ok {
		return p
	}
	return "/login"
}

// IsStaff reports whether the role belongs to the agency rather than a client.
func IsStaff(r Role) bool {
	return r == RoleAdmin || r == RoleEmployee
}
