package followers

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

// Model lists who follows the session account, marking those it follows
// back.
type Model struct {
	store       common.Store
	AccountId   int64
	Followers   []domain.Account
	FollowsBack map[int64]bool
	Selected    int
	Width       int
	Height      int
	Error       string
}

func InitialModel(store common.Store, accountId int64, width, height int) Model {
	return Model{
		store:       store,
		AccountId:   accountId,
		Followers:   []domain.Account{},
		FollowsBack: map[int64]bool{},
		Width:       width,
		Height:      height,
	}
}

func (m Model) Init() tea.Cmd {
	return loadFollowers(m.store, m.AccountId)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case followersLoadedMsg:
		if msg.err != nil {
			m.Error = "could not load your followers"
			return m, clearStatusAfter(3 * time.Second)
		}
		m.Followers = msg.accounts
		m.FollowsBack = msg.back
		if m.Selected >= len(m.Followers) {
			m.Selected = max(len(m.Followers)-1, 0)
		}
		return m, nil

	case common.FollowChangedMsg:
		if msg.Following {
			m.FollowsBack[msg.AccountId] = true
		} else {
			delete(m.FollowsBack, msg.AccountId)
		}
		return m, nil

	case clearStatusMsg:
		m.Error = ""
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.Selected > 0 {
				m.Selected--
			}
		case "down", "j":
			if m.Selected < len(m.Followers)-1 {
				m.Selected++
			}
		case "r":
			return m, loadFollowers(m.store, m.AccountId)
		}
	}
	return m, nil
}

func (m Model) View() string {
	var s strings.Builder

	s.WriteString(common.CaptionStyle.Render(fmt.Sprintf("followers (%d)", len(m.Followers))))
	s.WriteString("\n\n")

	if len(m.Followers) == 0 {
		s.WriteString(emptyStyle.Render("No followers yet.\nShare a roster and they will come!"))
		s.WriteString("\n")
	} else {
		perPage := common.ItemsPerPage(m.Height) * 2
		start := 0
		if m.Selected >= perPage {
			start = m.Selected - perPage + 1
		}
		end := min(start+perPage, len(m.Followers))

		for i := start; i < end; i++ {
			acc := m.Followers[i]
			line := "• " + common.AccountLine(acc)
			if m.FollowsBack[acc.Id] {
				line += " [mutual]"
			}
			if i == m.Selected {
				s.WriteString("→ " + selectedStyle.Render(line))
			} else {
				s.WriteString("  " + itemStyle.Render(line))
			}
			s.WriteString("\n")
		}
		if end < len(m.Followers) {
			s.WriteString(itemStyle.Render(fmt.Sprintf("... and %d more", len(m.Followers)-end)))
			s.WriteString("\n")
		}
	}

	if m.Error != "" {
		s.WriteString("\n")
		s.WriteString(common.ErrorStyle.Render(m.Error))
		s.WriteString("\n")
	}
	return s.String()
}

type followersLoadedMsg struct {
	accounts []domain.Account
	back     map[int64]bool
	err      error
}

type clearStatusMsg struct{}

func clearStatusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}

func loadFollowers(store common.Store, accountId int64) tea.Cmd {
	return func() tea.Msg {
		accounts, err := store.ReadFollowers(accountId)
		if err != nil {
			log.Error("Failed to load followers", "account", accountId, "err", err)
			return followersLoadedMsg{err: err}
		}
		following, err := store.ReadFollowing(accountId)
		if err != nil {
			log.Error("Failed to load following", "account", accountId, "err", err)
			return followersLoadedMsg{err: err}
		}
		back := make(map[int64]bool, len(following))
		for _, f := range following {
			back[f.Id] = true
		}
		return followersLoadedMsg{accounts: accounts, back: back}
	}
}
