package domain

// Role enumerates what a caller may do.
type Role string

const (
	RoleViewer Role = "VIEWER"
	RoleEditor Role = "EDITOR"
	RoleAdmin  Role = "ADMIN"
)

// Principal represents the authenticated caller.
type Principal struct {
	UserID     int64
	CommonName string
	Role       Role
}

// Actor converts the principal to the actor recorded on revisions.
func (p Principal) Actor() Actor {
	return Actor{ID: p.UserID, CommonName: p.CommonName}
}

// CanWrite reports whether the principal may change entities.
func (p Principal) CanWrite() bool {
	return p.Role == RoleEditor || p.Role == RoleAdmin
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleViewer, RoleEditor, RoleAdmin:
		return true
	default:
		return false
	}
}
