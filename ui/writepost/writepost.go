package writepost

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/deemkeen/huddle/domain"
	"github.com/deemkeen/huddle/ui/common"
)

const MaxLetters = 500

type Model struct {
	TextInput  textinput.Model
	Visibility domain.Visibility
	Err        string
	Sending    bool
	store      common.Store
	userId     int64
}

func InitialPost(store common.Store, userId int64, width int) Model {
	ti := textinput.New()
	ti.Placeholder = "what's happening in your league?"
	ti.CharLimit = MaxLetters
	ti.Width = max(width-10, 20)

	return Model{
		TextInput:  ti,
		Visibility: domain.VisibilityPublic,
		store:      store,
		userId:     userId,
	}
}

// ToggleVisibility flips the visibility the next post is stored with.
func (m Model) ToggleVisibility() Model {
	if m.Visibility == domain.VisibilityPublic {
		m.Visibility = domain.VisibilityPrivate
	} else {
		m.Visibility = domain.VisibilityPublic
	}
	return m
}

// Open focuses the input for a fresh draft.
func (m Model) Open() (Model, tea.Cmd) {
	m.Err = ""
	return m, m.TextInput.Focus()
}

// Close drops the draft text; the visibility choice is kept.
func (m Model) Close() Model {
	m.TextInput.Reset()
	m.TextInput.Blur()
	m.Err = ""
	m.Sending = false
	return m
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEnter {
			if m.Sending {
				return m, nil
			}
			content := strings.TrimSpace(m.TextInput.Value())
			if content == "" {
				m.Err = "a post needs some text"
				return m, nil
			}
			draft := domain.PostDraft{
				OwnerId:    m.userId,
				Content:    content,
				Visibility: m.Visibility,
			}
			m.Sending = true
			m.Err = ""
			return m, createPostCmd(m.store, draft)
		}
	case common.PostCreatedMsg:
		return m.Close(), nil
	case postFailedMsg:
		m.Sending = false
		m.Err = "post could not be saved"
		return m, nil
	}

	var cmd tea.Cmd
	m.TextInput, cmd = m.TextInput.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	caption := common.CaptionStyle.Render(fmt.Sprintf("new %s post", m.Visibility))
	help := common.HelpStyle.Render(fmt.Sprintf("characters left: %d • enter: post • esc: cancel",
		m.TextInput.CharLimit-len([]rune(m.TextInput.Value()))))

	s := fmt.Sprintf("%s\n\n  %s\n\n%s", caption, m.TextInput.View(), help)
	if m.Err != "" {
		s += "\n\n" + common.ErrorStyle.PaddingLeft(2).Render(m.Err)
	}
	return s
}

type postFailedMsg struct {
	err error
}

func createPostCmd(store common.Store, draft domain.PostDraft) tea.Cmd {
	return func() tea.Msg {
		id, err := store.CreatePost(draft)
		if err != nil {
			log.Error("Post could not be saved", "account", draft.OwnerId, "err", err)
			return postFailedMsg{err: err}
		}
		log.Info("Post created", "id", id, "account", draft.OwnerId, "visibility", draft.Visibility)
		return common.PostCreatedMsg{Id: id, Visibility: draft.Visibility}
	}
}
