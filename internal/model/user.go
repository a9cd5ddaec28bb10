package model

// Roles understood by the route guards.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleCashier = "cashier"
)

// User is one row of the Users sheet.
type User struct {
	Username     string
	PasswordHash string
	Role         string
	DisplayName  string
}
