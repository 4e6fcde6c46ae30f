package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/avrohommoshebaum/school-crm-sub001/internal/ids"
	"github.com/avrohommoshebaum/school-crm-sub001/internal/models"
	"github.com/avrohommoshebaum/school-crm-sub001/internal/repository"
)

// GoogleProfile is the identity asserted by Google after a completed OAuth
// consent round trip.
type GoogleProfile struct {
	ID          string
	Email       string
	DisplayName string
}

// FederatedIdentityBroker exchanges an external identity-provider profile for
// an application user, linking or creating accounts as needed.
type FederatedIdentityBroker struct {
	users UserStore
	log   zerolog.Logger
}

func NewFederatedIdentityBroker(users UserStore, log zerolog.Logger) *FederatedIdentityBroker {
	return &FederatedIdentityBroker{users: users, log: log}
}

// ExchangeProfile resolves a profile to a user. Lookup order is provider id,
// then email, then account creation, which makes repeated calls with the same
// profile converge on a single account: a local-password account whose email
// matches is upgraded to also accept federated login, and duplicates are
// never created.
func (b *FederatedIdentityBroker) ExchangeProfile(ctx context.Context, profile GoogleProfile) (models.User, error) {
	user, err := b.users.FindByGoogleID(ctx, profile.ID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return models.User{}, err
	}

	if email := strings.TrimSpace(strings.ToLower(profile.Email)); email != "" {
		user, err = b.users.FindByEmail(ctx, email)
		if err == nil {
			if err := b.users.LinkGoogleID(ctx, user.ID, profile.ID); err != nil {
				return models.User{}, err
			}
			googleID := profile.ID
			user.GoogleID = &googleID
			b.log.Info().Str("user_id", user.ID).Msg("linked google identity to existing account")
			return user, nil
		}
		if !errors.Is(err, repository.ErrUserNotFound) {
			return models.User{}, err
		}
	}

	googleID := profile.ID
	user = models.User{
		ID:          ids.New(),
		Email:       strings.TrimSpace(strings.ToLower(profile.Email)),
		GoogleID:    &googleID,
		DisplayName: profile.DisplayName,
		Status:      models.UserStatusActive,
	}
	if err := b.users.Create(ctx, user); err != nil {
		return models.User{}, err
	}
	b.log.Info().Str("user_id", user.ID).Msg("created account from google identity")
	return user, nil
}
