package following

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
	itemStyle = lipgloss.NewStyle().
			PaddingLeft(2).
			MarginBottom(0)

	selectedStyle = lipgloss.NewStyle().
			PaddingLeft(2).
			MarginBottom(0).
			Foreground(lipgloss.Color(common.COLOR_GREEN)).
			Bold(true)

	emptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(common.COLOR_DARK_GREY)).
			Italic(true)
)

type Model struct {
	store     common.Store
	AccountId int64
	Following []domain.Account
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
		Following: []domain.Account{},
		Width:     width,
		Height:    height,
	}
}

func (m Model) Init() tea.Cmd {
	return loadFollowing(m.store, m.AccountId)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case followingLoadedMsg:
		if msg.err != nil {
			m.Error = "could not load who you follow"
			return m, clearStatusAfter(3 * time.Second)
		}
		m.Following = msg.accounts
		if m.Selected >= len(m.Following) {
			m.Selected = max(len(m.Following)-1, 0)
		}
		return m, nil

	case common.FollowChangedMsg:
		return m, loadFollowing(m.store, m.AccountId)

	case unfollowFailedMsg:
		m.Status = ""
		m.Error = "unfollow failed"
		return m, tea.Batch(loadFollowing(m.store, m.AccountId), clearStatusAfter(2*time.Second))

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
			if m.Selected < len(m.Following)-1 {
				m.Selected++
			}
		case "r":
			return m, loadFollowing(m.store, m.AccountId)
		case "u", "enter":
			if len(m.Following) == 0 {
				return m, nil
			}
			target := m.Following[m.Selected]
			m.Following = append(m.Following[:m.Selected:m.Selected], m.Following[m.Selected+1:]...)
			if m.Selected >= len(m.Following) && m.Selected > 0 {
				m.Selected--
			}
			m.Status = fmt.Sprintf("unfollowed @%s", target.ExternalUsername)
			m.Error = ""
			return m, tea.Batch(unfollow(m.store, m.AccountId, target.Id), clearStatusAfter(2*time.Second))
		}
	}
	return m, nil
}

func (m Model) View() string {
	var s strings.Builder

	s.WriteString(common.CaptionStyle.Render(fmt.Sprintf("following (%d)", len(m.Following))))
	s.WriteString("\n\n")

	if len(m.Following) == 0 {
		s.WriteString(emptyStyle.Render("You're not following anyone yet.\nPress 2 to find managers to follow!"))
		s.WriteString("\n")
	} else {
		perPage := common.ItemsPerPage(m.Height) * 2
		start := 0
		if m.Selected >= perPage {
			start = m.Selected - perPage + 1
		}
		end := min(start+perPage, len(m.Following))

		for i := start; i < end; i++ {
			line := "• " + common.AccountLine(m.Following[i])
			if i == m.Selected {
				s.WriteString("→ " + selectedStyle.Render(line))
			} else {
				s.WriteString("  " + itemStyle.Render(line))
			}
			s.WriteString("\n")
		}
		if end < len(m.Following) {
			s.WriteString(itemStyle.Render(fmt.Sprintf("... and %d more", len(m.Following)-end)))
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

type followingLoadedMsg struct {
	accounts []domain.Account
	err      error
}

type unfollowFailedMsg struct {
	err error
}

type clearStatusMsg struct{}

func clearStatusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}

func loadFollowing(store common.Store, accountId int64) tea.Cmd {
	return func() tea.Msg {
		accounts, err := store.ReadFollowing(accountId)
		if err != nil {
			log.Error("Failed to load following", "account", accountId, "err", err)
		}
		return followingLoadedMsg{accounts: accounts, err: err}
	}
}

func unfollow(store common.Store, accountId, targetId int64) tea.Cmd {
	return func() tea.Msg {
		if err := store.Unfollow(accountId, targetId); err != nil {
			log.Error("Unfollow failed", "account", accountId, "target", targetId, "err", err)
			return unfollowFailedMsg{err: err}
		}
		return common.FollowChangedMsg{AccountId: targetId, Following: false}
	}
}
