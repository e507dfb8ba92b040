package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/pairup/internal/association"
	associationStore "github.com/MrJamesThe3rd/pairup/internal/association/store"
	"github.com/MrJamesThe3rd/pairup/internal/config"
	"github.com/MrJamesThe3rd/pairup/internal/database"
	"github.com/MrJamesThe3rd/pairup/internal/export"
	pairupHttp "github.com/MrJamesThe3rd/pairup/internal/http"
	associationHandler "github.com/MrJamesThe3rd/pairup/internal/http/association"
	exportHandler "github.com/MrJamesThe3rd/pairup/internal/http/export"
	sessionHandler "github.com/MrJamesThe3rd/pairup/internal/http/session"
	"github.com/MrJamesThe3rd/pairup/internal/matcher"
	"github.com/MrJamesThe3rd/pairup/internal/session"
)

func main() {
	issueToken := flag.String("issue-token", "", "print a bearer token for `subject` and exit")
	tokenTTL := flag.Duration("token-ttl", 24*time.Hour, "lifetime of an issued token")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if *issueToken != "" {
		if cfg.Auth.Secret == "" {
			slog.Error("AUTH_SECRET is not set")
			os.Exit(1)
		}

		token, err := pairupHttp.IssueToken(cfg.Auth.Secret, *issueToken, *tokenTTL)
		if err != nil {
			slog.Error("failed to issue token", "error", err)
			os.Exit(1)
		}

		fmt.Println(token)

		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	scorer, err := cfg.Scorer()
	if err != nil {
		slog.Error("failed to build scorer", "error", err)
		os.Exit(1)
	}

	var (
		associationService = association.NewService(associationStore.New(db))
		exportService      = export.NewService(associationService, cfg.Export.CopyRecordings)
		sessions           = session.NewRegistry(
			matcher.WithScorer(scorer),
			matcher.WithBatchSize(cfg.Matching.BatchSize),
		)
	)

	var (
		sessionH     = sessionHandler.NewHandler(sessions, associationService, cfg.Matching.Threshold)
		associationH = associationHandler.NewHandler(associationService)
		exportH      = exportHandler.NewHandler(exportService)
	)

	router := pairupHttp.New(pairupHttp.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AuthSecret:     cfg.Auth.Secret,
	}, sessionH, associationH, exportH)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.Timeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown failed", "error", err)
		}
	}()

	slog.Info("starting server", "name", cfg.App.Name, "addr", srv.Addr, "algorithm", cfg.Matching.Algorithm)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
