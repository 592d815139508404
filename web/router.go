package web

import (
	"fmt"
	"net/http"
	"time"

	"github.com/deemkeen/huddle/db"
	"github.com/deemkeen/huddle/sleeper"
	"github.com/deemkeen/huddle/util"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const maxBodySize = 256 * 1024

// Server carries what the handlers share.
type Server struct {
	conf     *util.AppConfig
	store    *db.DB
	provider sleeper.Provider
	limiter  *RateLimiter
}

func NewServer(conf *util.AppConfig, store *db.DB, provider sleeper.Provider) *Server {
	perSecond := conf.Conf.RateLimit
	if perSecond <= 0 {
		perSecond = 10
	}
	return &Server{
		conf:     conf,
		store:    store,
		provider: provider,
		limiter:  NewRateLimiter(rate.Limit(perSecond), perSecond*2),
	}
}

// Close stops the background work started by Handler.
func (s *Server) Close() {
	s.limiter.Stop()
}

// Handler builds the gin engine with every route mounted.
func (s *Server) Handler() *gin.Engine {
	g := gin.New()
	g.Use(gin.Recovery())
	g.Use(RequestLogMiddleware())
	g.Use(gzip.Gzip(gzip.DefaultCompression))
	g.Use(RateLimitMiddleware(s.limiter))

	g.GET("/feed/:username", s.handleRSS)

	api := g.Group("/api", MaxBytesMiddleware(maxBodySize), ViewerMiddleware(s.store))
	{
		api.POST("/login", s.handleLogin)

		api.GET("/users", s.handleListAccounts)
		api.GET("/users/:id", s.handleGetAccount)
		api.PATCH("/users/:id", s.handleUpdateProfile)
		api.GET("/users/:id/followers", s.handleFollowers)
		api.GET("/users/:id/following", s.handleFollowing)
		api.POST("/users/:id/follow", s.handleFollow)
		api.DELETE("/users/:id/follow", s.handleUnfollow)
		api.GET("/users/:id/leagues", s.handleAccountLeagues)
		api.GET("/leaderboard", s.handleLeaderboard)

		api.GET("/feed", s.handleFeed)

		api.GET("/posts", s.handleListPosts)
		api.POST("/posts", s.handleCreatePost)
		api.GET("/posts/:id", s.handleGetPost)
		api.DELETE("/posts/:id", s.handleDeletePost)
		api.POST("/posts/:id/like", s.handleLike)
		api.GET("/posts/:id/comments", s.handleListComments)
		api.POST("/posts/:id/comments", s.handleCreateComment)

		api.GET("/leagues/:id", s.handleLeague)
	}

	return g
}

// Router builds the HTTP server for the API. The caller starts it and shuts
// it down.
func Router(conf *util.AppConfig, store *db.DB, provider sleeper.Provider) *http.Server {
	gin.SetMode(gin.ReleaseMode)
	server := NewServer(conf, store, provider)
	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", conf.Conf.Host, conf.Conf.HttpPort),
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
	srv.RegisterOnShutdown(server.Close)
	return srv
}
