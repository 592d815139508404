package common

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/deemkeen/huddle/domain"
)

const (
	COLOR_GREY      = "241"
	COLOR_DARK_GREY = "238"
	COLOR_MAGENTA   = "170"
	COLOR_LIGHTBLUE = "69"
	COLOR_BLUE      = "33"
	COLOR_GREEN     = "42"
	COLOR_RED       = "196"
	COLOR_PURPLE    = "#7D56F4"
)

var (
	HelpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color(COLOR_GREY)).Padding(0, 2)
	CaptionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(COLOR_MAGENTA)).Padding(1, 2)
	StatusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color(COLOR_BLUE))
	ErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(COLOR_RED))
)

func DefaultWindowWidth(width int) int {
	return width - 10
}

func DefaultWindowHeight(heigth int) int {
	return heigth - 10
}

// ItemsPerPage is how many posts fit below the header at the given height.
func ItemsPerPage(height int) int {
	n := (height - 8) / 5
	if n < 3 {
		return 3
	}
	return n
}

// AccountLine is how a list shows one account.
func AccountLine(acc domain.Account) string {
	if acc.DisplayName == "" || acc.DisplayName == acc.ExternalUsername {
		return "@" + acc.ExternalUsername
	}
	return acc.DisplayName + " @" + acc.ExternalUsername
}
