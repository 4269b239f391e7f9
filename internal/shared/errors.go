package shared

import "errors"

// ErrInvalidCredentials indicates a failed login. It never says which half
// of the credentials was wrong.
var ErrInvalidCredentials = errors.New("invalid credentials")
