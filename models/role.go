package models

// Role is the access level of a User.
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleReceptionist Role = "receptionist"
	RoleCustomer     Role = "customer"
)

// IsStaff reports whether the role may use the front desk pages.
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleReceptionist
}
