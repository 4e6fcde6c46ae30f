// Package auth verifies identities over two paths: local email/password
// credentials and federated Google sign-in. Both paths produce the same
// roles-populated user record for the session layer.
package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/avrohommoshebaum/school-crm-sub001/internal/models"
	"github.com/avrohommoshebaum/school-crm-sub001/internal/repository"
	"github.com/avrohommoshebaum/school-crm-sub001/internal/security"
)

var (
	// ErrInvalidCredentials covers unknown user, federated-only account and
	// password mismatch alike; callers must not reveal which one happened.
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInactiveAccount    = errors.New("account is inactive")
)

// UserStore is the slice of the user persistence layer the auth components
// need. Implemented by repository.UserRepository.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByGoogleID(ctx context.Context, googleID string) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	Create(ctx context.Context, user models.User) error
	LinkGoogleID(ctx context.Context, id string, googleID string) error
}

type CredentialVerifier struct {
	users UserStore
	log   zerolog.Logger
}

func NewCredentialVerifier(users UserStore, log zerolog.Logger) *CredentialVerifier {
	return &CredentialVerifier{users: users, log: log}
}

// Verify checks local credentials. Account status is only consulted after the
// password matched, so an attacker cannot probe for disabled accounts.
func (v *CredentialVerifier) Verify(ctx context.Context, email string, password string) (models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := v.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, err
	}

	if len(user.PasswordHash) == 0 {
		// Federated-only account; indistinguishable from a bad password.
		return models.User{}, ErrInvalidCredentials
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return models.User{}, ErrInvalidCredentials
	}

	if !user.Active() {
		return models.User{}, ErrInactiveAccount
	}

	return user, nil
}
