package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/01moynul/closetline/internal/config"
	"github.com/01moynul/closetline/internal/database"
	"github.com/01moynul/closetline/internal/email"
	"github.com/01moynul/closetline/internal/handlers"
	"github.com/01moynul/closetline/internal/logging"
	"github.com/01moynul/closetline/internal/ratelimit"
	"github.com/01moynul/closetline/internal/routes"
	"github.com/01moynul/closetline/internal/store"
	"github.com/01moynul/closetline/internal/uploads"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 0. --- Load Environment Variables (.env) ---
	config.LoadDotEnv()
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logging.Init(cfg.LogLevel)
	if !cfg.Development() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. --- Database Connection ---
	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close(context.Background())

	// 2. --- Upload Storage ---
	backend, err := openUploadBackend(ctx, cfg)
	if err != nil {
		return err
	}

	// 3. --- Email ---
	notifier, err := newNotifier(cfg)
	if err != nil {
		return err
	}

	// 4. --- Enquiry Rate Limiting ---
	opts := routes.Options{
		AllowedOrigin: cfg.CORSAllowedOrigin,
		Development:   cfg.Development(),
	}
	if cfg.RedisAddr != "" {
		limiter, err := ratelimit.NewFixedWindowLimiter(cfg.RedisAddr, cfg.RedisPassword, "", cfg.EnquiryRateLimitPerMin, time.Minute)
		if err != nil {
			return fmt.Errorf("creating rate limiter: %w", err)
		}
		defer limiter.Close()
		opts.EnquiryLimiter = limiter
		slog.Info("enquiry rate limiting enabled", "per_minute", cfg.EnquiryRateLimitPerMin)
	}

	// --- Application Setup ---
	app := &handlers.Handlers{
		Store:    st,
		Uploads:  uploads.NewIngestor(backend),
		Notifier: notifier,
	}
	router := routes.SetupRouter(app, opts)

	// --- Start Server ---
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting closetline API server", "port", cfg.Port, "env", cfg.Env, "db", cfg.DBDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listening: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.DBDriver {
	case "mysql":
		db, err := database.OpenDB(ctx, cfg.DBDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := database.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrating database: %w", err)
		}
		return store.NewMySQLStore(db), nil
	case "mongo":
		client, err := database.OpenMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := database.EnsureMongoIndexes(ctx, client.Database(cfg.MongoDatabase)); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		return store.NewMongoStore(client, cfg.MongoDatabase), nil
	default:
		slog.Warn("using in-memory store, data will not survive a restart")
		return store.NewMemoryStore(), nil
	}
}

func openUploadBackend(ctx context.Context, cfg *config.Config) (uploads.Backend, error) {
	if cfg.UploadBackend == "minio" {
		b, err := uploads.NewMinioBackend(ctx, cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
		if err != nil {
			return nil, fmt.Errorf("connecting to object storage: %w", err)
		}
		return b, nil
	}
	return uploads.NewDiskBackend(cfg.UploadDir), nil
}

func newNotifier(cfg *config.Config) (*email.Notifier, error) {
	if !cfg.EmailConfigured() {
		slog.Warn("email credentials not set, enquiry notifications disabled")
		return email.NewNotifier(nil, ""), nil
	}
	if cfg.EmailService == "log" {
		return email.NewNotifier(email.LogMailer{}, firstNonEmpty(cfg.StoreEmail, "store@localhost")), nil
	}
	mailer, err := email.NewSMTPMailer(email.SMTPConfig{
		Service:  cfg.EmailService,
		Host:     cfg.EmailHost,
		Port:     cfg.EmailPort,
		Username: cfg.EmailUser,
		Password: cfg.EmailPass,
	})
	if err != nil {
		return nil, fmt.Errorf("configuring email: %w", err)
	}
	return email.NewNotifier(mailer, cfg.StoreEmail), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
