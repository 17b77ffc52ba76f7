package models

// User represents a registered account
// PasswordHash is a bcrypt hash; never returned in JSON responses
type User struct {
	ID           int64  `json:"id" db:"id"`
	Username     string `json:"username" db:"username"`
	PasswordHash string `json:"-" db:"password_hash"`
}

// CredentialsRequest is the register/login form input
type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"` // Plaintext; hashed by the auth service
}
