package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"contact-service/internal/bucketing"
	"contact-service/internal/config"
	"contact-service/internal/handler"
	"contact-service/internal/notifier"
	"contact-service/internal/ratelimit"
	"contact-service/internal/service"
	"contact-service/internal/store"
	"contact-service/internal/util"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		util.Fatal("Failed to load config", util.ErrorField(err))
	}

	util.Init(cfg.Environment, cfg.Logging.Level, cfg.Logging.Format)
	defer util.Sync()

	if cfg.Mail.ResendAPIKey == "" {
		util.Warn("RESEND_API_KEY is not set - contact submissions will fail until it is configured")
	}
	if cfg.Admin.Password == "" {
		util.Warn("ADMIN_PASSWORD is not set - admin endpoints are disabled")
	}

	contactHandler, adminHandler := buildHandlers(cfg)
	router := handler.NewRouter(contactHandler, adminHandler, util.Get(), cfg.Server.AllowedOrigins)

	server := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		util.Info("Server starting",
			util.String("environment", cfg.Environment),
			util.String("address", server.Addr),
			util.Bool("tls_enabled", cfg.Server.EnableTLS),
		)
		var err error
		if cfg.Server.EnableTLS {
			err = server.ListenAndServeTLS(cfg.Server.CertFile, cfg.Server.KeyFile)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		util.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		util.Fatal("Server failed", util.ErrorField(err))
	}
	util.Info("Server shutdown completed")
}

// buildHandlers wires the pipeline: shared bucketing, the fixed-window
// limiter, the bounded attempt log and the Resend client behind the contact
// service, injected into the HTTP handlers.
func buildHandlers(cfg *config.Config) (*handler.ContactHandler, *handler.AdminHandler) {
	buckets := bucketing.NewManager(cfg.RateLimit.Shards)
	limiter := ratelimit.NewFixedWindowLimiter(cfg.RateLimit.Window, cfg.RateLimit.MaxRequests, buckets)
	attempts := store.NewAttemptLog(cfg.Spam.LogCapacity)
	mailer := notifier.NewResendClient(cfg.Mail, util.Get())

	contactService := service.NewContactService(limiter, attempts, mailer, buckets, cfg.Spam, util.Get())

	contactHandler := handler.NewContactHandler(contactService, util.Get())
	adminHandler := handler.NewAdminHandler(contactService, cfg.Admin.Password, util.Get())
	return contactHandler, adminHandler
}
