package localusers

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/deemkeen/huddle/domain"
	"github.com/deemkeen/huddle/ui/common"
)

var (
	userStyle = lipgloss.NewStyle().
			PaddingLeft(2).
			MarginBottom(0)

	selectedStyle = lipgloss.NewStyle().
			PaddingLeft(2).
			MarginBottom(0).
			Foreground(lipgloss.Color(common.COLOR_GREEN)).
			Bold(true)

	statsStyle = lipgloss.NewStyle().
			PaddingLeft(4).
			Foreground(lipgloss.Color(common.COLOR_GREY))

	emptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(common.COLOR_DARK_GREY)).
			Italic(true)
)

// Model lists every other account with its stats and lets the session
// account follow or unfollow them.
type Model struct {
	store     common.Store
	AccountId int64
	Users     []domain.AccountSummary
	Selected  int
	Width     int
	Height    int
	Status    string
	Error     string
}

func InitialModel(store common.Store, accountId int64, width, height int) Model {
	return Model{
		store:     store,
		AccountId: accountId,
		Users:     []domain.AccountSummary{},
		Width:     width,
		Height:    height,
	}
}

func (m Model) Init() tea.Cmd {
	return loadUsers(m.store, m.AccountId)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case usersLoadedMsg:
		if msg.err != nil {
			m.Error = "could not load managers"
			return m, clearStatusAfter(3 * time.Second)
		}
		m.Users = msg.users
		if m.Selected >= len(m.Users) {
			m.Selected = max(len(m.Users)-1, 0)
		}
		return m, nil

	case common.FollowChangedMsg:
		m.apply(msg.AccountId, msg.Following)
		return m, nil

	case followFailedMsg:
		m.apply(msg.accountId, !msg.following)
		m.Status = ""
		m.Error = "follow change failed"
		return m, clearStatusAfter(2 * time.Second)

	case clearStatusMsg:
		m.Status = ""
		m.Error = ""
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.Selected > 0 {
				m.Selected--
			}
		case "down", "j":
			if m.Selected < len(m.Users)-1 {
				m.Selected++
			}
		case "r":
			return m, loadUsers(m.store, m.AccountId)
		case "enter", "f":
			if len(m.Users) == 0 {
				return m, nil
			}
			u := m.Users[m.Selected]
			follow := !u.IsFollowing
			m.apply(u.Id, follow)
			if follow {
				m.Status = fmt.Sprintf("following @%s", u.ExternalUsername)
			} else {
				m.Status = fmt.Sprintf("unfollowed @%s", u.ExternalUsername)
			}
			m.Error = ""
			return m, tea.Batch(toggleFollow(m.store, m.AccountId, u.Id, follow), clearStatusAfter(2*time.Second))
		}
	}
	return m, nil
}

// apply sets the follow state of one listed account and keeps its follower
// count in step. Unlisted accounts and unchanged states are ignored.
func (m *Model) apply(accountId int64, following bool) {
	for i := range m.Users {
		u := &m.Users[i]
		if u.Id != accountId || u.IsFollowing == following {
			continue
		}
		u.IsFollowing = following
		if following {
			u.Stats.Followers++
		} else if u.Stats.Followers > 0 {
			u.Stats.Followers--
		}
	}
}

func (m Model) View() string {
	var s strings.Builder

	s.WriteString(common.CaptionStyle.Render(fmt.Sprintf("managers (%d)", len(m.Users))))
	s.WriteString("\n\n")

	if len(m.Users) == 0 {
		s.WriteString(emptyStyle.Render("No other managers yet. Invite your league mates!"))
		s.WriteString("\n")
	} else {
		perPage := common.ItemsPerPage(m.Height)
		start := 0
		if m.Selected >= perPage {
			start = m.Selected - perPage + 1
		}
		end := min(start+perPage, len(m.Users))

		for i := start; i < end; i++ {
			u := m.Users[i]
			line := common.AccountLine(u.Account)
			if u.IsFollowing {
				line += " [following]"
			}
			if i == m.Selected {
				s.WriteString("→ " + selectedStyle.Render(line))
			} else {
				s.WriteString("  " + userStyle.Render(line))
			}
			s.WriteString("\n")
			s.WriteString(statsStyle.Render(fmt.Sprintf("%d posts • %d followers • %d following",
				u.Stats.Posts, u.Stats.Followers, u.Stats.Following)))
			s.WriteString("\n")
		}
	}

	s.WriteString("\n")
	if m.Status != "" {
		s.WriteString(common.StatusStyle.Render(m.Status))
		s.WriteString("\n")
	}
	if m.Error != "" {
		s.WriteString(common.ErrorStyle.Render(m.Error))
		s.WriteString("\n")
	}
	return s.String()
}

type usersLoadedMsg struct {
	users []domain.AccountSummary
	err   error
}

type followFailedMsg struct {
	accountId int64
	following bool
	err       error
}

type clearStatusMsg struct{}

func clearStatusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}

func loadUsers(store common.Store, accountId int64) tea.Cmd {
	return func() tea.Msg {
		users, err := store.ReadAccountSummaries(accountId, 0)
		if err != nil {
			log.Error("Failed to load managers", "account", accountId, "err", err)
		}
		return usersLoadedMsg{users: users, err: err}
	}
}

func toggleFollow(store common.Store, accountId, targetId int64, follow bool) tea.Cmd {
	return func() tea.Msg {
		var err error
		if follow {
			_, err = store.Follow(accountId, targetId)
		} else {
			err = store.Unfollow(accountId, targetId)
		}
		if err != nil {
			log.Error("Follow change failed", "account", accountId, "target", targetId, "follow", follow, "err", err)
			return followFailedMsg{accountId: targetId, following: follow, err: err}
		}
		return common.FollowChangedMsg{AccountId: targetId, Following: follow}
	}
}
