package auth

// User is the signed-in portal operator.
type User struct {
	Username string `json:"username"`
}

// Credentials is the single configured account. PasswordHash is a bcrypt hash.
type Credentials struct {
	Username     string
	PasswordHash string
}
