package web

import (
	"net/http"

	"github.com/deemkeen/huddle/roster"
	"github.com/gin-gonic/gin"
)

// handleLeague serves the league format and standings.
func (s *Server) handleLeague(c *gin.Context) {
	summary, err := roster.LoadLeague(c.Request.Context(), s.provider, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
