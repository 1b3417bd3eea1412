package user

import "errors"

const (
	RoleAdmin = "admin"
	RoleBuyer = "buyer"
)

type User struct {
	ID       int64  `json:"-"`
	Username string `json:"username"`
	Password string `json:"-"` // hash (or legacy plaintext), never exposed in JSON
	Role     string `json:"role"`
}

var (
	ErrNotFound      = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already exists")
	ErrAdminExists   = errors.New("an admin account already exists")
)
