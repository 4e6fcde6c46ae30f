package auth

import (
	"context"

	"github.com/avrohommoshebaum/school-crm-sub001/internal/models"
	"github.com/avrohommoshebaum/school-crm-sub001/internal/repository"
)

// fakeUserStore is an in-memory UserStore for verifier and broker tests.
type fakeUserStore struct {
	users map[string]models.User // by id
}

func newFakeUserStore(users ...models.User) *fakeUserStore {
	store := &fakeUserStore{users: make(map[string]models.User)}
	for _, user := range users {
		store.users[user.ID] = user
	}
	return store
}

func (f *fakeUserStore) FindByEmail(_ context.Context, email string) (models.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, repository.ErrUserNotFound
}

func (f *fakeUserStore) FindByGoogleID(_ context.Context, googleID string) (models.User, error) {
	for _, user := range f.users {
		if user.GoogleID != nil && *user.GoogleID == googleID {
			return user, nil
		}
	}
	return models.User{}, repository.ErrUserNotFound
}

func (f *fakeUserStore) GetByID(_ context.Context, id string) (models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUserStore) Create(_ context.Context, user models.User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserStore) LinkGoogleID(_ context.Context, id string, googleID string) error {
	user, ok := f.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	user.GoogleID = &googleID
	f.users[id] = user
	return nil
}
