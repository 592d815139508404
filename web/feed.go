package web

import (
	"net/http"

	"github.com/deemkeen/huddle/domain"
	"github.com/gin-gonic/gin"
)

// handleFeed serves the viewer's feed; ?mode= is public (default) or private.
func (s *Server) handleFeed(c *gin.Context) {
	viewer, ok := requireViewer(c)
	if !ok {
		return
	}
	mode, err := domain.ParseFeedMode(c.Query("mode"))
	if err != nil {
		writeError(c, err)
		return
	}

	posts, err := s.store.ReadFeed(viewer, queryLimit(c, s.conf.Conf.FeedLimit), mode)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"mode":  mode,
		"posts": newPostViews(posts),
	})
}
