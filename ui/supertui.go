package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/deemkeen/huddle/domain"
	"github.com/deemkeen/huddle/ui/common"
	"github.com/deemkeen/huddle/ui/feed"
	"github.com/deemkeen/huddle/ui/followers"
	"github.com/deemkeen/huddle/ui/following"
	"github.com/deemkeen/huddle/ui/header"
	"github.com/deemkeen/huddle/ui/localusers"
	"github.com/deemkeen/huddle/ui/writepost"
)

var (
	modelStyle = lipgloss.NewStyle().
			Align(lipgloss.Top, lipgloss.Top).
			BorderStyle(lipgloss.HiddenBorder()).MarginLeft(1)
	focusedModelStyle = lipgloss.NewStyle().
				Align(lipgloss.Top, lipgloss.Top).
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(lipgloss.Color(common.COLOR_LIGHTBLUE)).MarginLeft(1)
)

type MainModel struct {
	width          int
	height         int
	headerModel    header.Model
	account        domain.Account
	state          common.SessionState
	createModel    writepost.Model
	feedModel      feed.Model
	peopleModel    localusers.Model
	followersModel followers.Model
	followingModel following.Model
}

func NewModel(store common.Store, acc domain.Account, feedLimit, width, height int) MainModel {
	width = common.DefaultWindowWidth(width)
	height = common.DefaultWindowHeight(height)

	m := MainModel{state: common.FeedView}
	m.account = acc
	m.width = width
	m.height = height
	m.createModel = writepost.InitialPost(store, acc.Id, width)
	m.feedModel = feed.InitialModel(store, acc.Id, feedLimit, width, height)
	m.peopleModel = localusers.InitialModel(store, acc.Id, width, height)
	m.followersModel = followers.InitialModel(store, acc.Id, width, height)
	m.followingModel = following.InitialModel(store, acc.Id, width, height)
	m.headerModel = header.Model{
		Width: width,
		Acc:   &m.account,
		Mode:  m.feedModel.Mode,
		Draft: m.createModel.Visibility,
	}
	return m
}

func (m MainModel) Init() tea.Cmd {
	return m.feedModel.Init()
}

func (m MainModel) State() common.SessionState {
	return m.state
}

func (m MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.headerModel.Width = msg.Width
		m.feedModel.Width = msg.Width
		m.feedModel.Height = msg.Height
		m.peopleModel.Width = msg.Width
		m.peopleModel.Height = msg.Height
		m.followersModel.Width = msg.Width
		m.followersModel.Height = msg.Height
		m.followingModel.Width = msg.Width
		m.followingModel.Height = msg.Height
		return m, nil

	case common.PostCreatedMsg:
		m.state = common.FeedView
		cmds = append(cmds, func() tea.Msg { return common.ReloadFeedMsg{} })

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}

		if m.state == common.ComposeView {
			if msg.Type == tea.KeyEsc {
				m.createModel = m.createModel.Close()
				m.state = common.FeedView
				return m, nil
			}
			m.createModel, cmd = m.createModel.Update(msg)
			return m, cmd
		}

		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "n":
			m.state = common.ComposeView
			m.createModel, cmd = m.createModel.Open()
			return m, cmd
		case "v":
			m.createModel = m.createModel.ToggleVisibility()
			m.headerModel.Draft = m.createModel.Visibility
			return m, nil
		case "1":
			m.state = common.FeedView
			return m, nil
		case "2":
			return m.switchTo(common.PeopleView, m.peopleModel.Init())
		case "3":
			return m.switchTo(common.FollowersView, m.followersModel.Init())
		case "4":
			return m.switchTo(common.FollowingView, m.followingModel.Init())
		}

		switch m.state {
		case common.PeopleView:
			m.peopleModel, cmd = m.peopleModel.Update(msg)
		case common.FollowersView:
			m.followersModel, cmd = m.followersModel.Update(msg)
		case common.FollowingView:
			m.followingModel, cmd = m.followingModel.Update(msg)
		default:
			m.feedModel, cmd = m.feedModel.Update(msg)
			m.headerModel.Mode = m.feedModel.Mode
		}
		return m, cmd
	}

	// everything that is not a key press goes to every sub-model
	m.headerModel, _ = m.headerModel.Update(msg)
	m.createModel, cmd = m.createModel.Update(msg)
	cmds = append(cmds, cmd)
	m.feedModel, cmd = m.feedModel.Update(msg)
	cmds = append(cmds, cmd)
	m.peopleModel, cmd = m.peopleModel.Update(msg)
	cmds = append(cmds, cmd)
	m.followersModel, cmd = m.followersModel.Update(msg)
	cmds = append(cmds, cmd)
	m.followingModel, cmd = m.followingModel.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// switchTo shows a list view and reloads it.
func (m MainModel) switchTo(state common.SessionState, load tea.Cmd) (MainModel, tea.Cmd) {
	m.state = state
	return m, load
}

func (m MainModel) View() string {
	availableHeight := m.height - 10
	panelWidth := m.width - 4

	panel := lipgloss.NewStyle().
		MaxHeight(availableHeight).
		Width(panelWidth).
		MaxWidth(panelWidth)

	s := m.headerModel.View() + "\n"

	switch m.state {
	case common.ComposeView:
		composeStr := lipgloss.NewStyle().
			Width(panelWidth).
			MaxWidth(panelWidth).
			Render(m.createModel.View())
		s += focusedModelStyle.Render(composeStr) + "\n"
		s += modelStyle.Render(panel.Render(m.feedModel.View())) + "\n"
	case common.PeopleView:
		s += focusedModelStyle.Render(panel.Render(m.peopleModel.View())) + "\n"
	case common.FollowersView:
		s += focusedModelStyle.Render(panel.Render(m.followersModel.View())) + "\n"
	case common.FollowingView:
		s += focusedModelStyle.Render(panel.Render(m.followingModel.View())) + "\n"
	default:
		s += focusedModelStyle.Render(panel.Render(m.feedModel.View())) + "\n"
	}

	const views = "1-4: feed/people/followers/following"
	var viewCommands string
	switch m.state {
	case common.ComposeView:
		viewCommands = "enter: post • esc: cancel"
	case common.PeopleView:
		viewCommands = "j/k: select • f/enter: follow/unfollow • r: reload • " + views + " • q: quit"
	case common.FollowersView:
		viewCommands = "j/k: select • r: reload • " + views + " • q: quit"
	case common.FollowingView:
		viewCommands = "j/k: select • u/enter: unfollow • r: reload • " + views + " • q: quit"
	default:
		viewCommands = "j/k: select • tab: switch feed • l: like • n: new post • v: post visibility • r: reload • " + views + " • q: quit"
	}

	s += common.HelpStyle.Render(fmt.Sprintf("focused > %s\t\tkeys > %s • ctrl-c: exit",
		m.currentFocusedModel(), viewCommands))
	return s
}

func (m MainModel) currentFocusedModel() string {
	switch m.state {
	case common.ComposeView:
		return "new post"
	case common.PeopleView:
		return "managers"
	case common.FollowersView:
		return "followers"
	case common.FollowingView:
		return "following"
	default:
		return header.ModeLabel(m.feedModel.Mode)
	}
}
