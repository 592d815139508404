package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/deemkeen/huddle/domain"
	"github.com/deemkeen/huddle/ui/common"
)

type fakeStore struct {
	drafts  []domain.PostDraft
	reads   int
	follows map[int64]bool
}

func (f *fakeStore) ReadFeed(int64, int, domain.FeedMode) ([]domain.Post, error) {
	f.reads++
	return []domain.Post{}, nil
}

func (f *fakeStore) IncrementLikes(int64) error {
	return nil
}

func (f *fakeStore) CreatePost(draft domain.PostDraft) (int64, error) {
	f.drafts = append(f.drafts, draft)
	return int64(len(f.drafts)), nil
}

var bob = domain.Account{Id: 2, ExternalUsername: "bob", DisplayName: "Bob"}

func (f *fakeStore) ReadAccountSummaries(int64, int) ([]domain.AccountSummary, error) {
	return []domain.AccountSummary{{Account: bob, IsFollowing: f.follows[bob.Id]}}, nil
}

func (f *fakeStore) ReadFollowers(int64) ([]domain.Account, error) {
	return []domain.Account{bob}, nil
}

func (f *fakeStore) ReadFollowing(int64) ([]domain.Account, error) {
	if f.follows[bob.Id] {
		return []domain.Account{bob}, nil
	}
	return []domain.Account{}, nil
}

func (f *fakeStore) Follow(_, id int64) (bool, error) {
	if f.follows == nil {
		f.follows = map[int64]bool{}
	}
	created := !f.follows[id]
	f.follows[id] = true
	return created, nil
}

func (f *fakeStore) Unfollow(_, id int64) error {
	delete(f.follows, id)
	return nil
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestModel(store *fakeStore) MainModel {
	acc := domain.Account{Id: 1, ExternalUsername: "alice", DisplayName: "Alice"}
	return NewModel(store, acc, 50, 120, 50)
}

func update(t *testing.T, m MainModel, msg tea.Msg) (MainModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	mm, ok := next.(MainModel)
	if !ok {
		t.Fatalf("Expected MainModel, got %T", next)
	}
	return mm, cmd
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestStartsOnFeed(t *testing.T) {
	m := newTestModel(&fakeStore{})
	if m.State() != common.FeedView {
		t.Errorf("Expected feed view, got %d", m.State())
	}
	if m.Init() == nil {
		t.Error("Expected an init command loading the feed")
	}
}

func TestQuitKeys(t *testing.T) {
	m := newTestModel(&fakeStore{})
	if _, cmd := update(t, m, runes("q")); !isQuit(cmd) {
		t.Error("Expected q to quit from the feed")
	}
	if _, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC}); !isQuit(cmd) {
		t.Error("Expected ctrl+c to quit")
	}
}

func TestComposeAndCancel(t *testing.T) {
	m := newTestModel(&fakeStore{})

	m, _ = update(t, m, runes("n"))
	if m.State() != common.ComposeView {
		t.Fatalf("Expected compose view, got %d", m.State())
	}

	// q is text while composing
	m, cmd := update(t, m, runes("q"))
	if isQuit(cmd) {
		t.Error("Expected q to be typed, not to quit")
	}
	if m.createModel.TextInput.Value() != "q" {
		t.Errorf("Expected draft %q, got %q", "q", m.createModel.TextInput.Value())
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.State() != common.FeedView {
		t.Errorf("Expected feed view after esc, got %d", m.State())
	}
	if m.createModel.TextInput.Value() != "" {
		t.Error("Expected the draft to be dropped")
	}
}

func TestVisibilityToggleFromFeed(t *testing.T) {
	m := newTestModel(&fakeStore{})
	m, _ = update(t, m, runes("v"))
	if m.createModel.Visibility != domain.VisibilityPrivate {
		t.Errorf("Expected private drafts, got %s", m.createModel.Visibility)
	}
	if m.headerModel.Draft != domain.VisibilityPrivate {
		t.Error("Expected header to follow the draft visibility")
	}
}

func TestTabSwitchesFeedMode(t *testing.T) {
	m := newTestModel(&fakeStore{})
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.feedModel.Mode != domain.FeedPrivate || m.headerModel.Mode != domain.FeedPrivate {
		t.Errorf("Expected private mode in feed and header, got %s / %s", m.feedModel.Mode, m.headerModel.Mode)
	}
	if cmd == nil {
		t.Error("Expected a reload command")
	}
}

func TestPostCreatedReturnsToFeed(t *testing.T) {
	store := &fakeStore{}
	m := newTestModel(store)
	m, _ = update(t, m, runes("n"))
	m.createModel.TextInput.SetValue("sleeper pick of the week")

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("Expected a create command")
	}
	msg := cmd()
	if _, ok := msg.(common.PostCreatedMsg); !ok {
		t.Fatalf("Expected PostCreatedMsg, got %T", msg)
	}
	if len(store.drafts) != 1 || store.drafts[0].OwnerId != 1 {
		t.Fatalf("Expected one draft by account 1, got %+v", store.drafts)
	}

	m, cmd = update(t, m, msg)
	if m.State() != common.FeedView {
		t.Errorf("Expected feed view after posting, got %d", m.State())
	}
	if cmd == nil {
		t.Error("Expected a reload to be scheduled")
	}
}

func TestView(t *testing.T) {
	m := newTestModel(&fakeStore{})
	view := m.View()
	if !strings.Contains(view, "public feed") || !strings.Contains(view, "n: new post") {
		t.Errorf("Unexpected feed view %q", view)
	}

	m, _ = update(t, m, runes("n"))
	if !strings.Contains(m.View(), "new public post") {
		t.Error("Expected the compose panel")
	}
}

func TestNumberKeysSwitchViews(t *testing.T) {
	m := newTestModel(&fakeStore{})

	tests := []struct {
		key   string
		state common.SessionState
		load  bool
		label string
	}{
		{"2", common.PeopleView, true, "managers"},
		{"3", common.FollowersView, true, "followers"},
		{"4", common.FollowingView, true, "following"},
		{"1", common.FeedView, false, "public feed"},
	}
	for _, tt := range tests {
		var cmd tea.Cmd
		m, cmd = update(t, m, runes(tt.key))
		if m.State() != tt.state {
			t.Errorf("key %s: expected state %d, got %d", tt.key, tt.state, m.State())
		}
		if (cmd != nil) != tt.load {
			t.Errorf("key %s: expected load command %v", tt.key, tt.load)
		}
		if got := m.currentFocusedModel(); got != tt.label {
			t.Errorf("key %s: expected focus %q, got %q", tt.key, tt.label, got)
		}
	}
}

func TestFollowFromPeopleReachesFollowing(t *testing.T) {
	store := &fakeStore{}
	m := newTestModel(store)

	m, cmd := update(t, m, runes("2"))
	m, _ = update(t, m, cmd())
	if len(m.peopleModel.Users) != 1 {
		t.Fatalf("Expected bob listed, got %+v", m.peopleModel.Users)
	}

	// f goes to the people list, not the feed
	m, cmd = update(t, m, runes("f"))
	if !m.peopleModel.Users[0].IsFollowing {
		t.Error("Expected bob marked as followed")
	}
	batch, ok := cmd().(tea.BatchMsg)
	if !ok || len(batch) == 0 {
		t.Fatalf("Expected a batch with the follow command, got %T", cmd())
	}
	changed, ok := batch[0]().(common.FollowChangedMsg)
	if !ok || changed.AccountId != bob.Id || !changed.Following {
		t.Fatalf("Expected a FollowChangedMsg for bob, got %#v", changed)
	}
	if !store.follows[bob.Id] {
		t.Error("Expected the follow stored")
	}

	// the change is broadcast to every view; the followers list marks bob mutual
	m, _ = update(t, m, changed)
	if !m.followersModel.FollowsBack[bob.Id] {
		t.Error("Expected followers view to learn about the follow")
	}

	m, cmd = update(t, m, runes("4"))
	m, _ = update(t, m, cmd())
	if len(m.followingModel.Following) != 1 || m.followingModel.Following[0].Id != bob.Id {
		t.Errorf("Expected bob in following, got %+v", m.followingModel.Following)
	}
	if !strings.Contains(m.View(), "u/enter: unfollow") {
		t.Error("Expected the following help text")
	}
}
