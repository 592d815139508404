package web

import (
	"fmt"
	"net/http"
	"time"

	"github.com/deemkeen/huddle/db"
	"github.com/deemkeen/huddle/util"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"github.com/gorilla/feeds"
)

// GetRSS renders an account's public posts as RSS 2.0. Private posts never
// appear, whoever fetches the feed.
func GetRSS(conf *util.AppConfig, store *db.DB, username string) (string, error) {
	acc, err := store.ReadAccByExternalUsername(username)
	if err != nil {
		return "", err
	}
	posts, err := store.ReadPublicPostsByAccount(acc.Id, conf.Conf.FeedLimit)
	if err != nil {
		return "", err
	}

	base := fmt.Sprintf("http://%s:%d", conf.Conf.Host, conf.Conf.HttpPort)
	author := &feeds.Author{Name: acc.DisplayName}

	feed := &feeds.Feed{
		Title:       fmt.Sprintf("%s on huddle", acc.DisplayName),
		Link:        &feeds.Link{Href: fmt.Sprintf("%s/feed/%s", base, acc.ExternalUsername)},
		Description: fmt.Sprintf("Public posts by @%s", acc.ExternalUsername),
		Author:      author,
		Created:     time.Now(),
	}

	for _, p := range posts {
		content := p.Content
		if a, ok := p.Attachment(); ok {
			content += fmt.Sprintf(" [%s from %s, %d players]", a.ShareMode.Label(), a.LeagueName, len(a.Players))
		}
		// cut before escaping so an entity is never split
		description := util.NormalizeInput(util.Truncate(content, 140))
		content = util.NormalizeInput(content)
		feed.Items = append(feed.Items, &feeds.Item{
			Id:          fmt.Sprintf("%s/api/posts/%d", base, p.Id),
			Title:       fmt.Sprintf("%s · %s", p.Category, p.CreatedAt.Format(util.DateTimeFormat())),
			Link:        &feeds.Link{Href: fmt.Sprintf("%s/api/posts/%d", base, p.Id)},
			Description: description,
			Content:     content,
			Author:      author,
			Created:     p.CreatedAt,
		})
	}

	return feed.ToRss()
}

func (s *Server) handleRSS(c *gin.Context) {
	rss, err := GetRSS(s.conf, s.store, c.Param("username"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Type", "application/xml; charset=utf-8")
	c.Render(http.StatusOK, render.String{Format: rss})
}
