package header

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/deemkeen/huddle/domain"
	"github.com/deemkeen/huddle/ui/common"
	"github.com/deemkeen/huddle/util"
)

type Model struct {
	Width int
	Acc   *domain.Account
	Mode  domain.FeedMode
	Draft domain.Visibility
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

func (m Model) View() string {
	return GetHeaderStyle(m.Acc, m.Mode, m.Draft, m.Width)
}

// ModeLabel names the feed lens the way the header shows it.
func ModeLabel(mode domain.FeedMode) string {
	if mode == domain.FeedPrivate {
		return "circle feed"
	}
	return "public feed"
}

func GetHeaderStyle(acc *domain.Account, mode domain.FeedMode, draft domain.Visibility, width int) string {
	// four boxes, each with padding(1) and a top/bottom border: 4 chars overhead per box
	overhead := 16
	availableWidth := width - overhead

	if availableWidth < 40 {
		availableWidth = 40
	}

	nameWidth := availableWidth / 3
	modeWidth := availableWidth / 6
	draftWidth := availableWidth / 6
	versionWidth := availableWidth - nameWidth - modeWidth - draftWidth

	name := lipgloss.
		NewStyle().
		SetString(util.Truncate(acc.DisplayName+" @"+acc.ExternalUsername, nameWidth)).
		Align(lipgloss.Left).
		Background(lipgloss.Color(common.COLOR_PURPLE)).
		Padding(1).
		Height(2).
		Width(nameWidth).
		Border(lipgloss.NormalBorder(), true, false, true, false).
		BorderForeground(lipgloss.Color(common.COLOR_MAGENTA)).
		String()

	lens := lipgloss.
		NewStyle().
		SetString(ModeLabel(mode)).
		Foreground(lipgloss.Color(common.COLOR_MAGENTA)).
		Padding(1).
		Height(2).
		Width(modeWidth).
		Border(lipgloss.NormalBorder(), true, false, true, false).
		BorderForeground(lipgloss.Color(common.COLOR_MAGENTA)).
		String()

	drafts := lipgloss.
		NewStyle().
		SetString("new posts: "+string(draft)).
		Background(lipgloss.Color(common.COLOR_MAGENTA)).
		Padding(1).
		Height(2).
		Width(draftWidth).
		Border(lipgloss.NormalBorder(), true, false, true, false).
		BorderForeground(lipgloss.Color(common.COLOR_MAGENTA)).
		String()

	version := lipgloss.
		NewStyle().
		SetString(util.GetNameAndVersion()).
		Width(versionWidth).
		Height(2).
		Background(lipgloss.Color(common.COLOR_GREY)).
		Padding(1).
		Border(lipgloss.NormalBorder(), true, false, true, false).
		BorderForeground(lipgloss.Color(common.COLOR_MAGENTA)).
		String()

	return lipgloss.JoinHorizontal(
		lipgloss.Left,
		name,
		lens,
		drafts,
		version,
	)
}
