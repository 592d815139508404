package middleware

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	bm "github.com/charmbracelet/wish/bubbletea"
	"github.com/deemkeen/huddle/ui"
	"github.com/deemkeen/huddle/ui/common"
	"github.com/deemkeen/huddle/util"
	"github.com/muesli/termenv"
)

func MainTui(store common.Store, conf *util.AppConfig) wish.Middleware {
	teaHandler := func(s ssh.Session) *tea.Program {

		pty, _, active := s.Pty()
		if !active {
			wish.Println(s, "no active terminal, skipping")
			return nil
		}

		acc, ok := AccountFromSession(s)
		if !ok {
			log.Error("Session without a linked account", "user", s.User())
			return nil
		}

		m := ui.NewModel(store, *acc, conf.Conf.FeedLimit, pty.Window.Width, pty.Window.Height)
		return tea.NewProgram(m, tea.WithInput(s), tea.WithOutput(s), tea.WithAltScreen())
	}
	return bm.MiddlewareWithProgramHandler(teaHandler, termenv.ANSI256)
}
