package middleware

import (
	"errors"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/deemkeen/huddle/domain"
	"github.com/deemkeen/huddle/sleeper"
	"github.com/deemkeen/huddle/util"
)

type contextKey struct{ name string }

var accountKey = &contextKey{"account"}

// AccountFromSession returns the account AuthMiddleware linked for s.
func AccountFromSession(s ssh.Session) (*domain.Account, bool) {
	acc, ok := s.Context().Value(accountKey).(*domain.Account)
	return acc, ok && acc != nil
}

// AuthMiddleware treats the SSH user name as a Sleeper username: the account
// is looked up, or created from the provider's record on first login.
func AuthMiddleware(store sleeper.AccountStore, provider sleeper.Provider) wish.Middleware {
	return func(h ssh.Handler) ssh.Handler {
		return func(s ssh.Session) {
			acc, created, err := sleeper.LinkAccount(s.Context(), provider, store, s.User())
			switch {
			case errors.Is(err, sleeper.ErrNotFound):
				log.Warn("Unknown Sleeper user", "user", s.User(), "addr", s.RemoteAddr())
				wish.Fatalln(s, "no Sleeper account named "+s.User()+", connect as ssh <sleeper username>@host")
				return
			case err != nil:
				log.Error("Could not link account", "user", s.User(), "err", err)
				wish.Fatalln(s, "could not reach Sleeper, try again later")
				return
			}

			if created {
				log.Info("Linked new account", "id", acc.Id, "user", acc.ExternalUsername)
			}
			util.LogPublicKey(s)
			s.Context().SetValue(accountKey, acc)
			h(s)
		}
	}
}
