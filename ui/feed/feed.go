package feed

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/deemkeen/huddle/domain"
	"github.com/deemkeen/huddle/ui/common"
	"github.com/deemkeen/huddle/util"
)

var (
	timeStyle = lipgloss.NewStyle().
			Align(lipgloss.Left).
			Foreground(lipgloss.Color(common.COLOR_PURPLE))

	authorStyle = lipgloss.NewStyle().
			Align(lipgloss.Left).
			Foreground(lipgloss.Color(common.COLOR_LIGHTBLUE)).
			Bold(true)

	selectedAuthorStyle = authorStyle.
				Foreground(lipgloss.Color(common.COLOR_GREEN))

	contentStyle = lipgloss.NewStyle().
			Align(lipgloss.Left)

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(common.COLOR_GREY))

	emptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(common.COLOR_DARK_GREY)).
			Italic(true)
)

type Model struct {
	store     common.Store
	AccountId int64
	Mode      domain.FeedMode
	Limit     int
	Posts     []domain.Post
	Selected  int
	Width     int
	Height    int
	Status    string
	Error     string
}

func InitialModel(store common.Store, accountId int64, limit, width, height int) Model {
	return Model{
		store:     store,
		AccountId: accountId,
		Mode:      domain.FeedPublic,
		Limit:     limit,
		Posts:     []domain.Post{},
		Width:     width,
		Height:    height,
	}
}

func (m Model) Init() tea.Cmd {
	return loadFeed(m.store, m.AccountId, m.Limit, m.Mode)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case postsLoadedMsg:
		// a reply for the other lens arrived after a toggle
		if msg.mode != m.Mode {
			return m, nil
		}
		if msg.err != nil {
			m.Error = "could not load the feed"
			return m, clearStatusAfter(3 * time.Second)
		}
		m.Posts = msg.posts
		if m.Selected >= len(m.Posts) {
			m.Selected = max(len(m.Posts)-1, 0)
		}
		return m, nil

	case likedMsg:
		if msg.err != nil {
			m.Error = "like failed"
			m.Status = ""
			return m, tea.Batch(loadFeed(m.store, m.AccountId, m.Limit, m.Mode), clearStatusAfter(2*time.Second))
		}
		return m, nil

	case common.ReloadFeedMsg:
		return m, loadFeed(m.store, m.AccountId, m.Limit, m.Mode)

	case common.FollowChangedMsg:
		// the circle lens depends on who is followed
		if m.Mode == domain.FeedPrivate {
			return m, loadFeed(m.store, m.AccountId, m.Limit, m.Mode)
		}
		return m, nil

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
			if m.Selected < len(m.Posts)-1 {
				m.Selected++
			}
		case "tab":
			m = m.ToggleMode()
			return m, loadFeed(m.store, m.AccountId, m.Limit, m.Mode)
		case "r":
			return m, loadFeed(m.store, m.AccountId, m.Limit, m.Mode)
		case "l":
			if len(m.Posts) == 0 {
				return m, nil
			}
			post := &m.Posts[m.Selected]
			post.Likes++
			m.Status = fmt.Sprintf("liked a post by @%s", post.ExternalUsername)
			m.Error = ""
			return m, tea.Batch(likePost(m.store, post.Id), clearStatusAfter(2*time.Second))
		}
	}
	return m, nil
}

// ToggleMode switches between the public and the circle lens and starts over
// at the top.
func (m Model) ToggleMode() Model {
	if m.Mode == domain.FeedPublic {
		m.Mode = domain.FeedPrivate
	} else {
		m.Mode = domain.FeedPublic
	}
	m.Posts = []domain.Post{}
	m.Selected = 0
	return m
}

func (m Model) View() string {
	var s strings.Builder

	s.WriteString(common.CaptionStyle.Render(fmt.Sprintf("%s feed (%d posts)", m.Mode, len(m.Posts))))
	s.WriteString("\n\n")

	if len(m.Posts) == 0 {
		if m.Mode == domain.FeedPrivate {
			s.WriteString(emptyStyle.Render("Nothing from your circle yet.\nFollow some managers or write a post!"))
		} else {
			s.WriteString(emptyStyle.Render("No posts yet.\nPress n to write the first one!"))
		}
	} else {
		itemsPerPage := common.ItemsPerPage(m.Height)
		start := 0
		if m.Selected >= itemsPerPage {
			start = m.Selected - itemsPerPage + 1
		}
		end := min(start+itemsPerPage, len(m.Posts))

		for i := start; i < end; i++ {
			s.WriteString(m.renderPost(i))
			s.WriteString("\n\n")
		}
	}

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

func (m Model) renderPost(i int) string {
	post := m.Posts[i]

	author := authorStyle
	marker := "  "
	if i == m.Selected {
		author = selectedAuthorStyle
		marker = "→ "
	}

	timeStr := timeStyle.Render(formatTime(post.CreatedAt))
	authorStr := author.Render(marker + post.DisplayName + " @" + post.ExternalUsername)
	contentStr := contentStyle.Render(util.Truncate(post.Content, 280))

	meta := fmt.Sprintf("#%s • %s • ♥ %d", post.Category, post.Visibility, post.Likes)
	if a, ok := post.Attachment(); ok {
		meta += fmt.Sprintf(" • %s from %s (%s)", a.ShareMode.Label(), a.LeagueName, playerCount(a.Players))
	}

	return lipgloss.JoinVertical(lipgloss.Left, timeStr, authorStr, contentStr, metaStyle.Render(meta))
}

// playerCount flags players whose injury status is anything but active.
func playerCount(players []domain.PlayerSummary) string {
	out := 0
	for _, p := range players {
		if !p.Active() {
			out++
		}
	}
	if out == 0 {
		return fmt.Sprintf("%d players", len(players))
	}
	return fmt.Sprintf("%d players, %d not active", len(players), out)
}

type postsLoadedMsg struct {
	mode  domain.FeedMode
	posts []domain.Post
	err   error
}

type likedMsg struct {
	postId int64
	err    error
}

type clearStatusMsg struct{}

func clearStatusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}

func loadFeed(store common.Store, accountId int64, limit int, mode domain.FeedMode) tea.Cmd {
	return func() tea.Msg {
		posts, err := store.ReadFeed(accountId, limit, mode)
		if err != nil {
			log.Error("Failed to load feed", "account", accountId, "mode", mode, "err", err)
			return postsLoadedMsg{mode: mode, posts: []domain.Post{}, err: err}
		}
		return postsLoadedMsg{mode: mode, posts: posts}
	}
}

func likePost(store common.Store, postId int64) tea.Cmd {
	return func() tea.Msg {
		err := store.IncrementLikes(postId)
		if err != nil {
			log.Error("Like failed", "post", postId, "err", err)
		}
		return likedMsg{postId: postId, err: err}
	}
}

func formatTime(t time.Time) string {
	duration := time.Since(t)

	if duration < time.Minute {
		return "just now"
	} else if duration < time.Hour {
		return fmt.Sprintf("%dm ago", int(duration.Minutes()))
	} else if duration < 24*time.Hour {
		return fmt.Sprintf("%dh ago", int(duration.Hours()))
	}
	return fmt.Sprintf("%dd ago", int(duration.Hours()/24))
}
