package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-jwt-server/auth"
	"github.com/jrsteele09/go-jwt-server/internal/config"
	"github.com/jrsteele09/go-jwt-server/server"
	"github.com/jrsteele09/go-jwt-server/token/jwt"
	"github.com/jrsteele09/go-jwt-server/token/keys"
	"github.com/jrsteele09/go-jwt-server/token/refresh"
	"github.com/jrsteele09/go-jwt-server/token/refresh/redisrepo"
	"github.com/jrsteele09/go-jwt-server/users"
	"github.com/jrsteele09/go-jwt-server/users/filerepo"
	fakeuserrepo "github.com/jrsteele09/go-jwt-server/users/repofake"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Error running server")
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c, err := config.New()
	if err != nil {
		return err
	}
	configureLogging(c)
	displayAppname(c.GetAppName())

	var closers []io.Closer
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i].Close(); err != nil {
				log.Warn().Err(err).Msg("close failed")
			}
		}
	}()

	userRepo, closer, err := newUserRepo(c)
	if err != nil {
		return err
	}
	if closer != nil {
		closers = append(closers, closer)
	}

	refreshRepo, closer, err := newRefreshRepo(c)
	if err != nil {
		return err
	}
	if closer != nil {
		closers = append(closers, closer)
	}

	keyRing, err := keys.NewKeyRing(c.GetAccessSecret(), c.GetRefreshSecret())
	if err != nil {
		return err
	}
	provider, err := jwt.NewProvider(keyRing, jwt.WithTokenTTL(c.GetAccessTokenTTL(), c.GetRefreshTokenTTL()))
	if err != nil {
		return err
	}
	authService, err := auth.NewAuthService(userRepo, refreshRepo, provider)
	if err != nil {
		return err
	}

	handler, err := server.New(c, authService)
	if err != nil {
		return err
	}

	httpServer := &http.Server{Addr: c.GetPort(), Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	serveErr := make(chan error, 1)
	go func() { serveErr <- listenAndServe(httpServer) }()

	select {
	case err := <-serveErr:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(httpServer)
}

func configureLogging(c config.EnvConfig) {
	level, err := zerolog.ParseLevel(c.GetLogLevel())
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if c.IsDev() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

func newUserRepo(c config.EnvConfig) (users.UserRepo, io.Closer, error) {
	if c.GetUsersFile() == "" {
		log.Info().Msg("Using built-in seed users")
		return fakeuserrepo.NewSeededUserRepo(), nil, nil
	}

	repo, err := filerepo.New(c.GetUsersFile())
	if err != nil {
		return nil, nil, fmt.Errorf("load users file: %w", err)
	}
	if err := repo.Watch(); err != nil {
		return nil, nil, fmt.Errorf("watch users file: %w", err)
	}
	log.Info().Str("path", c.GetUsersFile()).Int("users", repo.Len()).Msg("Loaded users file")
	return repo, repo, nil
}

func newRefreshRepo(c config.Config) (refresh.Repo, io.Closer, error) {
	switch c.GetRefreshStore() {
	case config.StoreRedis:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		repo, err := redisrepo.Dial(ctx, redisrepo.Config{
			Addr:      c.GetRedisAddr(),
			KeyPrefix: c.GetRefreshKeyPrefix(),
			TTL:       c.GetRefreshTokenTTL(),
		})
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("addr", c.GetRedisAddr()).Msg("Refresh tokens stored in redis")
		return repo, repo, nil
	default:
		log.Info().Msg("Refresh tokens stored in memory")
		return refresh.NewInMemoryRepo(), nil, nil
	}
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
