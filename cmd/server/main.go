package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/urbanfix/go-civic-auth/auth"
	"github.com/urbanfix/go-civic-auth/internal/config"
	"github.com/urbanfix/go-civic-auth/internal/db"
	"github.com/urbanfix/go-civic-auth/server"
	"github.com/urbanfix/go-civic-auth/sessions"
	sessionfakes "github.com/urbanfix/go-civic-auth/sessions/repofakes"
	"github.com/urbanfix/go-civic-auth/token"
	"github.com/urbanfix/go-civic-auth/users"
	userfake "github.com/urbanfix/go-civic-auth/users/repofake"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Fatal().Err(err).Msg("error running server")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Info().Msg("server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Any("panic", r).Msg("recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	setupLogging(cfg)
	displayAppname(cfg.AppName)

	codec, err := buildCodec(cfg)
	if err != nil {
		return err
	}

	ctx := context.Background()
	repos, cleanup, err := buildRepos(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	srv, err := server.New(cfg, repos, codec)
	if err != nil {
		return err
	}

	httpServer := &http.Server{Addr: cfg.Addr, Handler: srv}
	go listenAndServe(httpServer)
	waitForStopSignal()
	return shutdown(httpServer)
}

func setupLogging(cfg *config.Config) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	log.Logger = log.Logger.With().Str("app", cfg.AppName).Logger()
}

// buildCodec wires the token codec from config. Secrets are only ever
// generated (and logged as such) in development: everywhere else a missing
// secret already failed config validation.
func buildCodec(cfg *config.Config) (*token.Codec, error) {
	accessSecret := cfg.AccessTokenSecret
	refreshSecret := cfg.RefreshTokenSecret
	if cfg.IsDevelopment() && (accessSecret == "" || refreshSecret == "") {
		accessSecret = randomSecret()
		refreshSecret = randomSecret()
		log.Warn().Msg("generated ephemeral token secrets; all tokens die with this process")
	}

	return token.NewCodec(token.Config{
		AccessSecret:  []byte(accessSecret),
		RefreshSecret: []byte(refreshSecret),
		AccessTTL:     cfg.AccessTokenTTL,
		RefreshTTL:    cfg.RefreshTokenTTL,
	})
}

// buildRepos opens Postgres and runs migrations. In development without a
// DATABASE_URL it falls back to in-memory repositories seeded with an admin
// account.
func buildRepos(ctx context.Context, cfg *config.Config) (auth.Repos, func(), error) {
	if cfg.DatabaseURL == "" {
		log.Warn().Msg("no DATABASE_URL; using in-memory stores")
		userRepo := userfake.NewFakeUserRepo()
		if err := seedDevAdmin(ctx, userRepo, cfg.BcryptCost); err != nil {
			return auth.Repos{}, nil, err
		}
		return auth.Repos{
			Users:    userRepo,
			Sessions: sessionfakes.NewFakeSessionRepo(),
		}, func() {}, nil
	}

	pool, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return auth.Repos{}, nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Migrate(ctx, pool); err != nil {
		pool.Close()
		return auth.Repos{}, nil, fmt.Errorf("migrate database: %w", err)
	}
	log.Info().Msg("database migrated")

	return auth.Repos{
		Users:    users.NewPostgresRepo(pool),
		Sessions: sessions.NewPostgresRepo(pool),
	}, pool.Close, nil
}

func seedDevAdmin(ctx context.Context, repo users.Repo, bcryptCost int) error {
	password := randomSecret()
	hash, err := users.HashPassword(password, bcryptCost)
	if err != nil {
		return err
	}
	admin := &users.User{
		ID:           "dev-admin",
		Email:        "admin@localhost",
		FullName:     "Development Admin",
		Role:         users.RoleAdmin,
		PasswordHash: hash,
		Active:       true,
		CreatedAt:    time.Now(),
	}
	if err := repo.Upsert(ctx, admin); err != nil {
		return err
	}
	log.Info().Str("email", admin.Email).Str("password", password).Msg("seeded development admin")
	return nil
}

func randomSecret() string {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		panic(err)
	}
	return hex.EncodeToString(bytes)
}

func listenAndServe(httpServer *http.Server) {
	log.Info().Str("addr", httpServer.Addr).Msg("server listening")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error().Err(err).Msg("server.ListenAndServe")
	}
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(httpServer *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
