package roles

import "github.com/agrotrack/livestock_tracker/internal/models"

var rank = map[string]int{
	models.RoleUser:       1,
	models.RoleSupervisor: 2,
	models.RoleAdmin:      3,
}

// Valid reports whether role names a known role.
func Valid(role string) bool {
	_, ok := rank[role]
	return ok
}

// AtLeast reports whether role is at least as privileged as required.
// Unknown roles never qualify.
func AtLeast(role, required string) bool {
	r, ok := rank[role]
	if !ok {
		return false
	}
	req, ok := rank[required]
	if !ok {
		return false
	}
	return r >= req
}
