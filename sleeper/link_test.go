package sleeper

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/deemkeen/huddle/db"
	"github.com/deemkeen/huddle/domain"
)

type fakeProvider struct {
	Provider
	users map[string]User
	calls int
}

func (f *fakeProvider) GetUser(_ context.Context, username string) (*User, error) {
	f.calls++
	u, ok := f.users[username]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

type fakeStore struct {
	mu       sync.Mutex
	accounts []domain.Account
	// raced is inserted right before the first CreateAccount, as if another
	// session had won
	raced *domain.NewAccount
}

func (s *fakeStore) ReadAccByExternalUsername(username string) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.ExternalUsername == username {
			acc := a
			return &acc, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *fakeStore) ReadAccByExternalId(externalId string) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.ExternalId == externalId {
			acc := a
			return &acc, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *fakeStore) ReadAccById(id int64) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.Id == id {
			acc := a
			return &acc, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *fakeStore) CreateAccount(acc domain.NewAccount) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.raced != nil {
		s.insert(*s.raced)
		s.raced = nil
	}
	for _, a := range s.accounts {
		if a.ExternalUsername == acc.ExternalUsername || a.ExternalId == acc.ExternalId {
			return 0, domain.ErrAlreadyExists
		}
	}
	return s.insert(acc), nil
}

func (s *fakeStore) insert(acc domain.NewAccount) int64 {
	id := int64(len(s.accounts) + 1)
	s.accounts = append(s.accounts, domain.Account{
		Id:               id,
		ExternalUsername: acc.ExternalUsername,
		ExternalId:       acc.ExternalId,
		DisplayName:      acc.DisplayName,
		AvatarRef:        acc.AvatarRef,
	})
	return id
}

func TestLinkAccountCreatesOnFirstLogin(t *testing.T) {
	provider := &fakeProvider{users: map[string]User{
		"andy": {UserId: "7311", Username: "andy", DisplayName: "Analytics Andy", Avatar: "av1"},
	}}
	store := &fakeStore{}

	acc, created, err := LinkAccount(context.Background(), provider, store, "andy")
	if err != nil {
		t.Fatalf("LinkAccount failed: %v", err)
	}
	if !created {
		t.Error("Expected the account to be created")
	}
	if acc.ExternalId != "7311" || acc.DisplayName != "Analytics Andy" || acc.AvatarRef != "av1" {
		t.Errorf("Unexpected account %+v", acc)
	}

	again, created, err := LinkAccount(context.Background(), provider, store, "andy")
	if err != nil {
		t.Fatalf("second LinkAccount failed: %v", err)
	}
	if created || again.Id != acc.Id {
		t.Errorf("Expected existing account %d, got %d (created=%v)", acc.Id, again.Id, created)
	}
	if provider.calls != 1 {
		t.Errorf("Known accounts must not hit the provider, got %d calls", provider.calls)
	}
}

func TestLinkAccountDisplayNameFallback(t *testing.T) {
	provider := &fakeProvider{users: map[string]User{"quiet": {UserId: "1"}}}
	store := &fakeStore{}

	acc, _, err := LinkAccount(context.Background(), provider, store, "quiet")
	if err != nil {
		t.Fatalf("LinkAccount failed: %v", err)
	}
	if acc.DisplayName != "quiet" {
		t.Errorf("Expected display name to fall back to username, got '%s'", acc.DisplayName)
	}
}

func TestLinkAccountUnknownUser(t *testing.T) {
	store := &fakeStore{}

	_, _, err := LinkAccount(context.Background(), &fakeProvider{}, store, "ghost")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if len(store.accounts) != 0 {
		t.Error("No account should be created for an unknown user")
	}

	if _, _, err := LinkAccount(context.Background(), &fakeProvider{}, store, ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for empty username, got %v", err)
	}
}

func TestLinkAccountLosesRace(t *testing.T) {
	provider := &fakeProvider{users: map[string]User{"andy": {UserId: "7311", DisplayName: "Andy"}}}
	store := &fakeStore{raced: &domain.NewAccount{ExternalUsername: "andy", ExternalId: "7311", DisplayName: "Andy"}}

	acc, created, err := LinkAccount(context.Background(), provider, store, "andy")
	if err != nil {
		t.Fatalf("LinkAccount failed: %v", err)
	}
	if created {
		t.Error("The losing session must not report creation")
	}
	if acc.ExternalUsername != "andy" || len(store.accounts) != 1 {
		t.Errorf("Expected the winner's account, got %+v (%d accounts)", acc, len(store.accounts))
	}
}

func TestLinkAccountRenamedUserKeepsAccount(t *testing.T) {
	provider := &fakeProvider{users: map[string]User{"new_name": {UserId: "7311", Username: "new_name"}}}
	store := &fakeStore{}
	oldId := store.insert(domain.NewAccount{ExternalUsername: "old_name", ExternalId: "7311"})

	acc, created, err := LinkAccount(context.Background(), provider, store, "new_name")
	if err != nil {
		t.Fatalf("LinkAccount failed: %v", err)
	}
	if created || acc.Id != oldId {
		t.Errorf("Expected the existing account %d, got %+v (created=%v)", oldId, acc, created)
	}
	if len(store.accounts) != 1 {
		t.Errorf("Expected no new account, got %d", len(store.accounts))
	}
}

func TestLinkAccountUsernameHeldByOtherUser(t *testing.T) {
	provider := &fakeProvider{users: map[string]User{"Andy": {UserId: "9000", Username: "andy"}}}
	store := &fakeStore{}
	// a different Sleeper user held the name when they linked
	store.insert(domain.NewAccount{ExternalUsername: "andy", ExternalId: "7311"})

	_, _, err := LinkAccount(context.Background(), provider, store, "Andy")
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Errorf("Expected ErrAlreadyExists, got %v", err)
	}
}

// caseInsensitiveProvider answers like Sleeper: any letter case resolves to
// the same user.
type caseInsensitiveProvider struct {
	Provider
	user User
}

func (p *caseInsensitiveProvider) GetUser(_ context.Context, username string) (*User, error) {
	if !strings.EqualFold(username, p.user.Username) {
		return nil, ErrNotFound
	}
	u := p.user
	return &u, nil
}

func TestLinkAccountIgnoresUsernameCase(t *testing.T) {
	store, err := db.Open(filepath.Join(t.TempDir(), "link.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer store.Close()
	provider := &caseInsensitiveProvider{user: User{UserId: "7311", Username: "andy", DisplayName: "Andy"}}

	first, created, err := LinkAccount(context.Background(), provider, store, "Andy")
	if err != nil {
		t.Fatalf("first LinkAccount failed: %v", err)
	}
	if !created {
		t.Error("Expected the first login to create the account")
	}
	if first.ExternalUsername != "andy" {
		t.Errorf("Expected the provider's spelling 'andy', got '%s'", first.ExternalUsername)
	}

	for _, typed := range []string{"andy", "ANDY", "Andy"} {
		acc, created, err := LinkAccount(context.Background(), provider, store, typed)
		if err != nil {
			t.Fatalf("LinkAccount(%q) failed: %v", typed, err)
		}
		if created || acc.Id != first.Id {
			t.Errorf("LinkAccount(%q) = %d (created=%v), want %d", typed, acc.Id, created, first.Id)
		}
	}
}
