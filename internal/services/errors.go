package services

import (
	"errors"
	"fmt"
)

// ErrInvalidCredentials is returned on a login password mismatch. It is
// deliberately the same error whether the email was unknown or the
// password was wrong.
var ErrInvalidCredentials = errors.New("invalid email or password")

// ValidationError reports a bad or missing input field. It is always
// produced before any store access and is safe to echo to the client.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
