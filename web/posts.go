package web

import (
	"net/http"

	"github.com/deemkeen/huddle/domain"
	"github.com/deemkeen/huddle/roster"
	"github.com/gin-gonic/gin"
)

type attachmentRequest struct {
	LeagueId string           `json:"league_id" binding:"required"`
	Mode     domain.ShareMode `json:"mode" binding:"required"`
	Selected []string         `json:"selected"`
}

type postRequest struct {
	Content    string             `json:"content"`
	Category   string             `json:"category"`
	Visibility string             `json:"visibility"`
	LeagueId   string             `json:"league_id"`
	Attachment *attachmentRequest `json:"attachment"`
}

type commentRequest struct {
	Content string `json:"content"`
}

// visibilityGate answers whether a viewer may see a post outside the feed
// query, remembering follow lookups per owner.
type visibilityGate struct {
	s       *Server
	viewer  int64
	anon    bool
	circles map[int64]bool
}

func (s *Server) gate(c *gin.Context) *visibilityGate {
	viewer, ok := viewerId(c)
	return &visibilityGate{s: s, viewer: viewer, anon: !ok, circles: map[int64]bool{}}
}

func (g *visibilityGate) canSee(p domain.Post) (bool, error) {
	if p.Visibility == domain.VisibilityPublic {
		return true, nil
	}
	if g.anon {
		return false, nil
	}
	if p.OwnerId == g.viewer {
		return true, nil
	}
	if in, ok := g.circles[p.OwnerId]; ok {
		return in, nil
	}
	in, err := g.s.store.IsFollowing(g.viewer, p.OwnerId)
	if err != nil {
		return false, err
	}
	g.circles[p.OwnerId] = in
	return in, nil
}

func (g *visibilityGate) filter(posts []domain.Post) ([]domain.Post, error) {
	out := posts[:0]
	for _, p := range posts {
		ok, err := g.canSee(p)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// readVisiblePost loads a post and hides it as not found when the viewer
// may not see it.
func (s *Server) readVisiblePost(c *gin.Context, id int64) (*domain.Post, error) {
	post, err := s.store.ReadPost(id)
	if err != nil {
		return nil, err
	}
	ok, err := s.gate(c).canSee(*post)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrNotFound
	}
	return post, nil
}

// handleListPosts lists everyone's posts, or one account's with ?account=,
// without the private posts the viewer may not see.
func (s *Server) handleListPosts(c *gin.Context) {
	limit := queryLimit(c, s.conf.Conf.FeedLimit)

	var posts []domain.Post
	var err error
	if account := c.Query("account"); account != "" {
		accountId, perr := parseId(account)
		if perr != nil {
			writeError(c, perr)
			return
		}
		posts, err = s.store.ReadPostsByAccount(accountId, limit)
	} else {
		posts, err = s.store.ReadPosts(limit)
	}
	if err != nil {
		writeError(c, err)
		return
	}

	visible, err := s.gate(c).filter(posts)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPostViews(visible))
}

func (s *Server) handleCreatePost(c *gin.Context) {
	viewer, ok := requireViewer(c)
	if !ok {
		return
	}

	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	draft := domain.PostDraft{
		OwnerId:    viewer,
		Content:    req.Content,
		Category:   req.Category,
		LeagueId:   req.LeagueId,
		Visibility: domain.Visibility(req.Visibility),
	}

	if req.Attachment != nil {
		if !req.Attachment.Mode.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown share mode"})
			return
		}
		acc, err := s.store.ReadAccById(viewer)
		if err != nil {
			writeError(c, err)
			return
		}
		attachment, err := roster.BuildAttachment(c.Request.Context(), s.provider, acc.ExternalId, roster.Request{
			Sport:    s.conf.Conf.Sport,
			LeagueId: req.Attachment.LeagueId,
			Mode:     req.Attachment.Mode,
			Selected: req.Attachment.Selected,
		})
		if err != nil {
			writeError(c, err)
			return
		}
		draft.Attachment = attachment
		if draft.LeagueId == "" {
			draft.LeagueId = attachment.LeagueId
		}
	}

	id, err := s.store.CreatePost(draft)
	if err != nil {
		writeError(c, err)
		return
	}
	post, err := s.store.ReadPost(id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newPostView(*post))
}

func (s *Server) handleGetPost(c *gin.Context) {
	id, err := paramId(c)
	if err != nil {
		writeError(c, err)
		return
	}
	post, err := s.readVisiblePost(c, id)
	if err != nil {
		writeError(c, err)
		return
	}
	comments, err := s.store.ReadComments(id)
	if err != nil {
		writeError(c, err)
		return
	}

	view := newPostView(*post)
	view.Comments = newCommentViews(comments)
	c.JSON(http.StatusOK, view)
}

func (s *Server) handleDeletePost(c *gin.Context) {
	viewer, ok := requireViewer(c)
	if !ok {
		return
	}
	id, err := paramId(c)
	if err != nil {
		writeError(c, err)
		return
	}

	deleted, err := s.store.DeletePost(id, viewer)
	if err != nil {
		writeError(c, err)
		return
	}
	if !deleted {
		// tell a missing post apart from someone else's
		if _, err := s.store.ReadPost(id); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusForbidden, gin.H{"error": "only the author can delete a post"})
		return
	}
	c.Status(http.StatusNoContent)
}

// handleLike counts every call; there is no per-account like record.
func (s *Server) handleLike(c *gin.Context) {
	id, err := paramId(c)
	if err != nil {
		writeError(c, err)
		return
	}
	if _, err := s.store.ReadPost(id); err != nil {
		writeError(c, err)
		return
	}
	if err := s.store.IncrementLikes(id); err != nil {
		writeError(c, err)
		return
	}
	post, err := s.store.ReadPost(id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "likes": post.Likes})
}

func (s *Server) handleListComments(c *gin.Context) {
	id, err := paramId(c)
	if err != nil {
		writeError(c, err)
		return
	}
	if _, err := s.readVisiblePost(c, id); err != nil {
		writeError(c, err)
		return
	}
	comments, err := s.store.ReadComments(id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCommentViews(comments))
}

// handleCreateComment accepts a comment on any existing post.
func (s *Server) handleCreateComment(c *gin.Context) {
	viewer, ok := requireViewer(c)
	if !ok {
		return
	}
	id, err := paramId(c)
	if err != nil {
		writeError(c, err)
		return
	}

	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	commentId, err := s.store.CreateComment(id, viewer, req.Content)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": commentId})
}
