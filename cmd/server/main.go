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

	"dm-server/api"
	"dm-server/auth"
	"dm-server/internal"
	"dm-server/moderation"
	"dm-server/observability"
	"dm-server/realtime"
	"dm-server/repositories"
	"dm-server/runtime"
	"dm-server/runtime/workers"
	"dm-server/services"

	"github.com/Netflix/go-env"
	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Exit codes to provide meaningful status to the operating system or
// service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	// The main function acts as a thin wrapper. Its only responsibility is
	// to call run() and handle the OS exit code.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting. This pattern is preferred over calling
// os.Exit or panic directly because it ensures all defers (database
// cleanup in particular) execute before the program exits.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()

	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	charReplacement, ok := internal.CharacterRune(config.CharReplacement)
	if !ok {
		return exitConfig, fmt.Errorf("CHARACTER_REPLACEMENT must be a single character, got %q", config.CharReplacement)
	}

	logger := internal.LoggerFromString(config.LogLevel)

	ctx := context.Background()

	// 2. Storage (BadgerDB + Bluge)
	db, err := badger.Open(buildBadgerOpts(config, logger, ctx))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		// Defer ensures the database lock is released and buffers are
		// flushed before the function returns.
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	blugeWriter, err := bluge.OpenWriter(bluge.DefaultConfig(config.BlugeFilepath))
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to open bluge writer: %w", err)
	}
	defer func() {
		logger.Info("Closing Bluge...")
		_ = blugeWriter.Close()
	}()

	// 3. Repositories & core components
	userRepository := repositories.NewUserRepository(db)
	messageRepository := repositories.NewMessageRepository(db, logger)
	contactIndex := repositories.NewContactIndex(blugeWriter, logger)

	verifier := auth.NewVerifier(config.JWTSecret, config.AuthTokenDuration)

	censored, err := moderation.LoadCensored()
	if err != nil {
		return exitRuntime, fmt.Errorf("loading censored words failed: %w", err)
	}
	logger.Info(fmt.Sprintf("%d unique censored words loaded (%d languages)",
		len(censored.Words), len(censored.Languages)))

	moderator, err := moderation.NewModerator(censored.Words, charReplacement)
	if err != nil {
		return exitRuntime, fmt.Errorf("building moderator failed: %w", err)
	}

	monitoring := observability.NewMonitoring()
	registry := realtime.NewRegistry()
	pipeline := realtime.NewPipeline(logger, userRepository, messageRepository,
		registry, &moderator, monitoring)
	gate := realtime.NewGate(logger, verifier, registry, pipeline,
		realtime.DefaultExtractors(config.TokenCookieName), config.AllowedOrigin,
		config.SessionBufferSize, config.WriteTimeout)

	// 4. Background workers
	sup := runtime.NewSupervisor(logger)
	sup.Add(
		workers.NewBadgerGCWorker(db, config.GCInterval, logger),
		workers.NewIndexFlushWorker(contactIndex, config.FlushInterval, logger),
		workers.NewReporterWorker(monitoring, registry, config.ReportInterval, logger),
	)

	// 5. HTTP transport
	authService := services.NewAuthService(userRepository, contactIndex, verifier)
	contactService := services.NewContactService(logger, userRepository, messageRepository, contactIndex)
	messageService := services.NewMessageService(messageRepository, config.LimitMessages)

	authRequired := api.NewAuthMiddleware(verifier, config.TokenCookieName)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{config.AllowedOrigin},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowCredentials: true,
	}))

	api.NewAuthHandler(logger, authService, config.TokenCookieName, config.AuthTokenDuration).
		RegisterRoutes(e.Group("/api/auth"), authRequired)
	api.NewContactHandler(logger, contactService).
		RegisterRoutes(e.Group("/api/contacts"), authRequired)
	api.NewMessageHandler(logger, messageService).
		RegisterRoutes(e.Group("/api/messages"), authRequired)
	e.GET("/ws", gate.Handle)

	// 6. Context & Signals
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 2)

	go func() {
		logger.Info("Starting background workers")
		sup.Run(ctx)
	}()

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	go func() {
		logger.Info("Starting HTTP server", "address", address, "at", time.Now().UTC())
		if err := e.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 7. Wait for Stop or Error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errChan:
		return exitRuntime, err
	}

	// 8. Final Cleanup (Graceful Shutdown)
	logger.Info("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown did not finish cleanly", "error", err)
	}
	sup.Stop()
	logger.Info("Program stopped cleanly")

	return exitOK, nil
}

func buildBadgerOpts(config internal.Config, logger *slog.Logger, ctx context.Context) badger.Options {
	options := badger.DefaultOptions(config.BadgerFilepath)

	if logger.Enabled(ctx, slog.LevelDebug) {
		options = options.WithLoggingLevel(badger.DEBUG)
	} else {
		options = options.WithLoggingLevel(badger.WARNING)
	}

	return options
}
