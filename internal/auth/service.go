package auth

import (
	"context"
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/bizzportal/bizzportal/internal/shared"
)

// Service wraps authentication business rules.
type Service struct {
	creds Credentials
}

// NewService constructs a new Service.
func NewService(creds Credentials) *Service {
	creds.Username = strings.TrimSpace(creds.Username)
	return &Service{creds: creds}
}

// Authenticate validates username/password credentials.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	username = strings.TrimSpace(username)
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.creds.Username)) == 1
	// Always run bcrypt so a wrong username costs the same as a wrong password.
	passErr := bcrypt.CompareHashAndPassword([]byte(s.creds.PasswordHash), []byte(password))
	if !userOK || passErr != nil || s.creds.Username == "" {
		return nil, shared.ErrInvalidCredentials
	}
	return &User{Username: s.creds.Username}, nil
}
