package sleeper

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/deemkeen/huddle/domain"
)

// AccountStore is the part of the store the login flow needs.
type AccountStore interface {
	ReadAccByExternalUsername(username string) (*domain.Account, error)
	ReadAccByExternalId(externalId string) (*domain.Account, error)
	CreateAccount(acc domain.NewAccount) (int64, error)
	ReadAccById(id int64) (*domain.Account, error)
}

// LinkAccount resolves a Sleeper username to a local account, creating it on
// first sight from the provider's user record. The boolean reports whether
// the account was created by this call. A username unknown to the provider
// yields ErrNotFound.
//
// Sleeper matches usernames regardless of case and lets users rename, so
// after the provider call the account is found by the Sleeper user id and a
// new one is stored under the provider's spelling of the name.
func LinkAccount(ctx context.Context, provider Provider, store AccountStore, username string) (*domain.Account, bool, error) {
	if username == "" {
		return nil, false, fmt.Errorf("empty username: %w", ErrNotFound)
	}

	acc, err := store.ReadAccByExternalUsername(username)
	if err == nil {
		return acc, false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, false, err
	}

	user, err := provider.GetUser(ctx, username)
	if err != nil {
		return nil, false, err
	}

	acc, err = store.ReadAccByExternalId(user.UserId)
	if err == nil {
		log.Debug("linked by sleeper id", "typed", username, "stored", acc.ExternalUsername)
		return acc, false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, false, err
	}

	canonical := user.Username
	if canonical == "" {
		canonical = username
	}
	displayName := user.DisplayName
	if displayName == "" {
		displayName = canonical
	}
	id, err := store.CreateAccount(domain.NewAccount{
		ExternalUsername: canonical,
		ExternalId:       user.UserId,
		DisplayName:      displayName,
		AvatarRef:        user.Avatar,
	})
	if errors.Is(err, domain.ErrAlreadyExists) {
		// another session linked the same user first
		acc, readErr := store.ReadAccByExternalId(user.UserId)
		if readErr != nil {
			return nil, false, err
		}
		return acc, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	log.Info("linked new account", "username", canonical, "id", id)
	acc, err = store.ReadAccById(id)
	return acc, true, err
}
