package util

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	gossh "golang.org/x/crypto/ssh"
)

// DatabaseFileName is the SQLite file of the first release; keeping the name
// lets existing installs pick up their data.
const DatabaseFileName = "fantasy_social.db"

//go:embed version.txt
var embeddedVersion string

func LogPublicKey(s ssh.Session) {
	if s.PublicKey() == nil {
		log.Info("ssh session opened", "user", s.User(), "addr", s.RemoteAddr())
		return
	}
	log.Info("ssh session opened", "user", s.User(), "addr", s.RemoteAddr(), "key", PublicKeyFingerprint(s.PublicKey()))
}

func PublicKeyFingerprint(pk ssh.PublicKey) string {
	return gossh.FingerprintSHA256(pk)
}

func GetVersion() string {
	return strings.TrimSpace(embeddedVersion)
}

func GetNameAndVersion() string {
	return fmt.Sprintf("%s / %s", Name, GetVersion())
}

// NormalizeInput flattens newlines and escapes HTML, for text that ends up
// in markup such as the RSS feed.
func NormalizeInput(text string) string {
	normalized := strings.ReplaceAll(text, "\n", " ")
	return html.EscapeString(normalized)
}

func DateTimeFormat() string {
	return "2006-01-02 15:04"
}

func PrettyPrint(i any) string {
	s, _ := json.MarshalIndent(i, "", " ")
	return string(s)
}

// Truncate shortens s to at most n runes, marking the cut with an ellipsis.
func Truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
