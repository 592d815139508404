package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/logging"
	"github.com/deemkeen/huddle/db"
	"github.com/deemkeen/huddle/middleware"
	"github.com/deemkeen/huddle/sleeper"
	"github.com/deemkeen/huddle/util"
	"github.com/deemkeen/huddle/web"
)

func main() {

	conf, err := util.ReadConf()
	if err != nil {
		log.Fatal("Could not read configuration", "err", err)
	}

	level, err := log.ParseLevel(conf.Conf.LogLevel)
	if err != nil {
		log.Warn("Unknown log level, using info", "level", conf.Conf.LogLevel)
		level = log.InfoLevel
	}
	log.SetLevel(level)

	fmt.Println("Configuration: ")
	fmt.Println(util.PrettyPrint(conf))

	db.SetPath(conf.Conf.DbPath)
	database := db.GetDB()
	defer database.Close()

	cache, closeCache := newCache(conf)
	defer closeCache()
	provider := sleeper.NewClient(conf.Conf.ProviderUrl, cache)

	httpServer := web.Router(conf, database, provider)

	var sshServer *ssh.Server
	if conf.Conf.WithSsh {
		sshServer, err = wish.NewServer(
			wish.WithAddress(net.JoinHostPort(conf.Conf.Host, strconv.Itoa(conf.Conf.SshPort))),
			wish.WithHostKeyPath(util.HostKeyPath()),
			wish.WithPublicKeyAuth(publicKeyHandler),
			wish.WithMiddleware(
				middleware.MainTui(database, conf),
				middleware.AuthMiddleware(database, provider),
				logging.Middleware(), // last middleware executed first
			),
		)
		if err != nil {
			log.Fatal("Could not create SSH server", "err", err)
		}
	}

	startServing(sshServer, httpServer, conf)
}

// newCache picks Redis when a DSN is configured and falls back to the
// in-process cache when none is set or the server cannot be reached.
func newCache(conf *util.AppConfig) (sleeper.Cache, func()) {
	if conf.Conf.RedisDsn != "" {
		rc, err := sleeper.NewRedisCache(conf.Conf.RedisDsn)
		if err == nil {
			log.Info("Caching Sleeper responses in redis")
			return rc, func() { rc.Close() }
		}
		log.Warn("Redis unavailable, caching in memory", "err", err)
	}

	mc := sleeper.NewMemoryCache()
	stop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n := mc.Sweep(); n > 0 {
					log.Debug("Swept cache", "expired", n)
				}
			case <-stop:
				return
			}
		}
	}()
	return mc, func() { close(stop) }
}

func startServing(s *ssh.Server, h *http.Server, conf *util.AppConfig) {
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	if s != nil {
		log.Info("Starting SSH server", "host", conf.Conf.Host, "port", conf.Conf.SshPort)
		go func() {
			if err := s.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
				log.Fatal("SSH server failed", "err", err)
			}
		}()
	}

	log.Info("Starting HTTP server", "host", conf.Conf.Host, "port", conf.Conf.HttpPort)
	go func() {
		if err := h.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", "err", err)
		}
	}()

	<-done
	log.Info("Stopping servers")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer func() { cancel() }()

	if err := h.Shutdown(ctx); err != nil {
		log.Error("HTTP shutdown", "err", err)
	}
	if s != nil {
		if err := s.Shutdown(ctx); err != nil {
			log.Error("SSH shutdown", "err", err)
		}
	}
}

// Any key is accepted; the SSH user name picks the account.
func publicKeyHandler(ssh.Context, ssh.PublicKey) bool {
	return true
}
