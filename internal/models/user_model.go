package models

import "time"

// Role is a label stored on the user record. It is not enforced by the service.
type Role string

const (
	RoleReadUser   Role = "Read User"
	RoleZonalAdmin Role = "Zonal Admin"
	RoleSuperAdmin Role = "Super Admin"
)

// ValidRole reports whether r is one of the known roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleReadUser, RoleZonalAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// User is the profile stored next to a Firebase Auth account. ID is the Firebase UID and
// doubles as the document key.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstname"`
	LastName  string    `json:"lastname"`
	Phone     string    `json:"phone"`
	Zone      string    `json:"zone"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}
