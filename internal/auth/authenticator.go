// Package auth provides credential verification and session tokens.
package auth

import (
	"context"

	"github.com/lexhour/lexhour/internal/models"
)

// Authenticator verifies and registers user credentials. The abstraction
// keeps the service layer independent of the credential scheme (passwords
// today; passkeys or OAuth later).
type Authenticator interface {
	// Register creates an account for the given email and credential and
	// returns the created user.
	Register(ctx context.Context, email, displayName, credential string) (*models.User, error)

	// Authenticate verifies the credential and returns the matching user.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential checks the credential against the scheme's
	// requirements before any storage is touched.
	ValidateCredential(credential string) error
}
