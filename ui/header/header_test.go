package header

import (
	"strings"
	"testing"

	"github.com/deemkeen/huddle/domain"
)

func TestModeLabel(t *testing.T) {
	if got := ModeLabel(domain.FeedPublic); got != "public feed" {
		t.Errorf("ModeLabel(public) = %q", got)
	}
	if got := ModeLabel(domain.FeedPrivate); got != "circle feed" {
		t.Errorf("ModeLabel(private) = %q", got)
	}
}

func TestHeaderView(t *testing.T) {
	acc := &domain.Account{ExternalUsername: "alice", DisplayName: "Alice"}
	m := Model{Width: 160, Acc: acc, Mode: domain.FeedPrivate, Draft: domain.VisibilityPublic}

	view := m.View()
	for _, want := range []string{"Alice @alice", "circle feed", "new posts: public", "huddle"} {
		if !strings.Contains(view, want) {
			t.Errorf("Expected header to contain %q, got %q", want, view)
		}
	}
}
