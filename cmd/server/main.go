package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/itsdrike/rickchurch-go/internal/auth"
	"github.com/itsdrike/rickchurch-go/internal/canvasclient"
	"github.com/itsdrike/rickchurch-go/internal/config"
	"github.com/itsdrike/rickchurch-go/internal/dbconn"
	"github.com/itsdrike/rickchurch-go/internal/httpapi"
	"github.com/itsdrike/rickchurch-go/internal/moderators"
	"github.com/itsdrike/rickchurch-go/internal/project"
	"github.com/itsdrike/rickchurch-go/internal/scheduler"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	setupLogger(cfg)

	log.Info().Str("environment", cfg.Environment).Msg("starting rickchurch-go")

	db, err := dbconn.Open(cfg.DatabaseURL, cfg.MinPoolSize, cfg.MaxPoolSize)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer dbconn.Close(db)

	mods, err := moderators.LoadFile(cfg.ModeratorsFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load moderator seed file")
	}

	projects := project.NewPostgresRepository(db)
	users := auth.NewPostgresUserRepository(db)
	signer := auth.NewSigner(cfg.JWTSecret)
	authorizer := auth.NewAuthorizer(signer, users)
	oauth := auth.NewDiscordOAuth(cfg.DiscordClientID, cfg.DiscordClientSecret, cfg.OAuthRedirectURL)

	canvas := canvasclient.NewClient(cfg.CanvasBaseURL, cfg.CanvasToken, cfg.CanvasRPS, cfg.CanvasBurst)
	store := scheduler.NewStore(cfg.LeaseDuration)
	validator := scheduler.NewValidator(store, canvas, cfg.RefreshInterval)
	refreshLoop := scheduler.NewRefreshLoop(store, projects, canvas, cfg.RefreshInterval)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go refreshLoop.Run(ctx)

	router := httpapi.NewRouter(&httpapi.Server{
		Store:      store,
		Validator:  validator,
		Projects:   projects,
		Users:      users,
		Signer:     signer,
		Authorizer: authorizer,
		OAuth:      oauth,
		Moderators: mods,
		DevAuth:    cfg.DevAuthEnable,
	})

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		log.Info().Msg("shutdown signal received")
		cancel()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("graceful shutdown failed")
		}
	}()

	log.Info().Str("addr", cfg.ListenAddr).Msg("http server listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("listen failed")
	}
}

func setupLogger(cfg *config.Config) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: "15:04:05",
		})
	}
}
