package domain

// Role of an authenticated caller
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// Actor is the authenticated caller performing an operation
type Actor struct {
	UserID int64
	Role   Role
}

// IsAdmin returns true for administrators
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// Owns returns true if the actor is the owner of the request
func (a Actor) Owns(r *ServiceRequest) bool {
	return r != nil && r.UserID == a.UserID
}

// CanAccess returns true if the actor is the owner or an administrator
func (a Actor) CanAccess(r *ServiceRequest) bool {
	return a.IsAdmin() || a.Owns(r)
}

// User profile as provided by the user service
type User struct {
	ID        int64
	FirstName string
	LastName  string
	Email     string
	Phone     *string
}

// FullName returns "first last" trimmed of missing parts
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}
