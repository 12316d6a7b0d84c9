package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/leaddesk/backend/internal/config"
	"github.com/leaddesk/backend/internal/handler"
	"github.com/leaddesk/backend/internal/logging"
	"github.com/leaddesk/backend/internal/repository"
	"github.com/leaddesk/backend/internal/service"
	"github.com/leaddesk/backend/pkg/auth"
	"github.com/leaddesk/backend/pkg/captcha"
	"github.com/leaddesk/backend/pkg/gemini"
	"github.com/leaddesk/backend/pkg/mailer"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout = 5 * time.Second
	notifyTimeout   = 10 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("invalid configuration", "error", err)
	}
	logging.Setup(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logging.Fatal("server stopped", "error", err)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	contactRepo := repository.NewPgContactRepository(pool)
	adminUserRepo := repository.NewPgAdminUserRepository(pool)

	// Resend (disabled when RESEND_API_KEY or NOTIFY_TO is unset). Sends run off
	// the request path and are drained after the server stops.
	var notifier mailer.Notifier = mailer.NopNotifier{}
	if n, err := mailer.NewResendNotifier(cfg.ResendAPIKey, cfg.NotifyFrom, cfg.NotifyTo); err == nil {
		async := mailer.NewAsyncNotifier(n, notifyTimeout)
		defer func() {
			dctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
			defer cancel()
			if err := async.Close(dctx); err != nil {
				slog.Warn("pending lead notifications dropped", "error", err)
			}
		}()
		notifier = async
	} else {
		slog.Warn("lead notifications disabled", "reason", err)
	}

	var verifier captcha.Verifier
	if cfg.RecaptchaSecret != "" {
		verifier = captcha.NewClient(cfg.RecaptchaSecret)
	} else {
		slog.Warn("captcha verification disabled")
	}

	var chatter gemini.Chatter
	if c, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.ChatModel, cfg.ChatSystemPrompt); err == nil {
		chatter = c
	} else {
		slog.Warn("chat disabled", "reason", err)
	}

	contactService := service.NewContactService(contactRepo, service.ContactServiceConfig{
		Verifier:        verifier,
		Notifier:        notifier,
		MinCaptchaScore: cfg.RecaptchaMinScore,
		AdminURL:        cfg.FrontendURL + "/admin/contacts",
	})
	adminAuthService := service.NewAdminAuthService(adminUserRepo)
	chatService := service.NewChatService(chatter)

	limiter := handler.NewRateLimiter(cfg.RateLimitPerMinute)
	defer limiter.Close()

	routes := handler.Routes{
		Base:    handler.New(contactRepo, cfg.FrontendURL),
		Contact: handler.NewContactHandler(contactService),
		Auth: handler.NewAuthHandler(adminAuthService, handler.AuthConfig{
			GoogleClientID:     cfg.GoogleClientID,
			GoogleClientSecret: cfg.GoogleClientSecret,
			GoogleRedirectPath: "/api/auth/google/callback",
			BackendURL:         cfg.BackendURL,
			SessionSecret:      cfg.SessionSecret,
			SessionTTL:         cfg.SessionTTL,
			SecureCookie:       cfg.Production(),
			FrontendURL:        cfg.FrontendURL,
		}),
		Chat:              handler.NewChatHandler(chatService),
		Legal:             handler.NewLegalHandler(handler.LegalConfig{DocsDir: cfg.LegalDocsDir}),
		Providers: handler.NewProvidersHandler(handler.ProvidersConfig{
			GoogleClientID: cfg.GoogleClientID,
			ChatEnabled:    chatter != nil,
		}),
		Limiter:           limiter,
		SessionSecret:     auth.SessionSecretBytes(cfg.SessionSecret),
		PublicContactList: cfg.PublicContactList,
	}
	if cfg.PublicContactList {
		slog.Warn("contact list is public; PUBLIC_CONTACT_LIST=true")
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           routes.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// chat replies can take a while
		WriteTimeout: 30 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server listening", "addr", server.Addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
