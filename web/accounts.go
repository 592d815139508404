package web

import (
	"net/http"
	"strings"

	"github.com/deemkeen/huddle/roster"
	"github.com/deemkeen/huddle/sleeper"
	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
}

type profileRequest struct {
	DisplayName string `json:"display_name"`
	Bio         string `json:"bio"`
}

// handleLogin links a Sleeper username; the returned id is what clients send
// as X-Viewer-Id afterwards.
func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username required"})
		return
	}

	acc, created, err := sleeper.LinkAccount(c.Request.Context(), s.provider, s.store, strings.TrimSpace(req.Username))
	if err != nil {
		writeError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, newAccountView(*acc))
}

// handleListAccounts lists accounts newest first. With a viewer it is the
// discover list: everyone but the viewer, with stats and follow state.
func (s *Server) handleListAccounts(c *gin.Context) {
	viewer, ok := viewerId(c)
	if !ok {
		accounts, err := s.store.ReadAllAccounts(queryLimit(c, 0))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, newAccountViews(accounts))
		return
	}

	summaries, err := s.store.ReadAccountSummaries(viewer, queryLimit(c, 0))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSummaryViews(summaries, true))
}

// handleLeaderboard ranks accounts by posts plus followers.
func (s *Server) handleLeaderboard(c *gin.Context) {
	leaders, err := s.store.ReadLeaderboard(queryLimit(c, 0))
	if err != nil {
		writeError(c, err)
		return
	}
	views := make([]LeaderView, 0, len(leaders))
	for i, l := range leaders {
		views = append(views, LeaderView{
			Rank:     i + 1,
			Account:  newSummaryView(l, false),
			Activity: l.Activity(),
		})
	}
	c.JSON(http.StatusOK, views)
}

func (s *Server) handleGetAccount(c *gin.Context) {
	id, err := paramId(c)
	if err != nil {
		writeError(c, err)
		return
	}
	acc, err := s.store.ReadAccById(id)
	if err != nil {
		writeError(c, err)
		return
	}
	stats, err := s.store.ReadAccountStats(id)
	if err != nil {
		writeError(c, err)
		return
	}

	view := newAccountView(*acc)
	view.Stats = &stats
	if viewer, ok := viewerId(c); ok && viewer != id {
		following, err := s.store.IsFollowing(viewer, id)
		if err != nil {
			writeError(c, err)
			return
		}
		view.IsFollowing = &following
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) handleUpdateProfile(c *gin.Context) {
	viewer, ok := requireViewer(c)
	if !ok {
		return
	}
	id, err := paramId(c)
	if err != nil {
		writeError(c, err)
		return
	}
	if viewer != id {
		c.JSON(http.StatusForbidden, gin.H{"error": "cannot edit another profile"})
		return
	}

	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	if err := s.store.UpdateProfile(id, strings.TrimSpace(req.DisplayName), strings.TrimSpace(req.Bio)); err != nil {
		writeError(c, err)
		return
	}

	acc, err := s.store.ReadAccById(id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newAccountView(*acc))
}

func (s *Server) handleFollowers(c *gin.Context) {
	id, err := paramId(c)
	if err != nil {
		writeError(c, err)
		return
	}
	accounts, err := s.store.ReadFollowers(id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newAccountViews(accounts))
}

func (s *Server) handleFollowing(c *gin.Context) {
	id, err := paramId(c)
	if err != nil {
		writeError(c, err)
		return
	}
	accounts, err := s.store.ReadFollowing(id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newAccountViews(accounts))
}

func (s *Server) handleFollow(c *gin.Context) {
	viewer, ok := requireViewer(c)
	if !ok {
		return
	}
	id, err := paramId(c)
	if err != nil {
		writeError(c, err)
		return
	}
	if viewer == id {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot follow yourself"})
		return
	}

	created, err := s.store.Follow(viewer, id)
	if err != nil {
		writeError(c, err)
		return
	}
	if !created {
		c.JSON(http.StatusConflict, gin.H{"error": "already following"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"following": true})
}

func (s *Server) handleUnfollow(c *gin.Context) {
	viewer, ok := requireViewer(c)
	if !ok {
		return
	}
	id, err := paramId(c)
	if err != nil {
		writeError(c, err)
		return
	}
	if err := s.store.Unfollow(viewer, id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// handleAccountLeagues lists the account's leagues at the provider for the
// configured sport and season, with the account's record in each.
func (s *Server) handleAccountLeagues(c *gin.Context) {
	id, err := paramId(c)
	if err != nil {
		writeError(c, err)
		return
	}
	acc, err := s.store.ReadAccById(id)
	if err != nil {
		writeError(c, err)
		return
	}

	season := c.DefaultQuery("season", s.conf.Conf.Season)
	leagues, err := roster.LoadAccountLeagues(c.Request.Context(), s.provider, acc.ExternalId, s.conf.Conf.Sport, season)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, leagues)
}
