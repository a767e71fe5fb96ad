package main

import (
	"context"
	"errors"
	"firechat/api"
	"firechat/auth"
	"firechat/domain/event"
	grpc2 "firechat/grpc"
	"firechat/internal"
	"firechat/lexicon"
	"firechat/moderation"
	"firechat/repositories"
	"firechat/runtime"
	"firechat/runtime/workers"
	"firechat/search"
	"firechat/services"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "firechat terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run initializes all components, manages the server lifecycle, and centralizes error reporting.
// Every defer runs before the process exits.
func run() (int, error) {
	// 1. Configuration & Logger
	config, err := internal.LoadConfig()
	if err != nil {
		return exitConfig, err
	}
	charReplacement, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return exitConfig, err
	}
	policy, err := moderation.ParsePolicy(config.ModerationPolicy)
	if err != nil {
		return exitConfig, err
	}
	logger := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Storage (BadgerDB + Bluge)
	db, err := badger.Open(buildBadgerOpts(config, logger, ctx))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	blugeWriter, err := search.Open(config.BlugeFilepath)
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to open bluge writer: %w", err)
	}
	defer func() {
		logger.Info("Closing Bluge...")
		_ = blugeWriter.Close()
	}()

	messageRepository, err := repositories.NewMessageRepository(db, logger, time.Now)
	if err != nil {
		return exitRuntime, err
	}
	outboxRepository := repositories.NewOutboxRepository(db, logger)
	lexiconRepository := repositories.NewLexiconRepository(db)
	userRepository := repositories.NewUserRepository(db)

	// 3. Channels, supervision & stats
	createdChan := make(chan event.MessageCreated, config.BufferSize)
	changesChan := make(chan event.FeedChanged, config.BufferSize)
	telemetryChan := make(chan event.Event, config.BufferSize)

	counter := event.NewCounter()
	moderatedHandler := event.NewModeratedHandler(logger, counter)

	sup := workers.NewSupervisor(logger, telemetryChan, config.RestartInterval)
	registry := runtime.NewRegistry()
	store := services.NewMessageStore(messageRepository, createdChan, changesChan, config.MaxContentLength, logger)
	dispatcher := runtime.NewDispatcher(outboxRepository, telemetryChan, logger,
		config.InvocationTimeout, config.MaxAttempts, config.RetryBackoff)

	orchestrator := runtime.NewOrchestrator(logger, sup, registry, dispatcher, store,
		createdChan, changesChan, telemetryChan,
		runtime.Config{
			NumberOfWorkers: config.NumberOfWorkers,
			SinkTimeout:     config.SinkTimeout,
			MetricInterval:  config.MetricInterval,
		})

	// 4. Moderation trigger
	moderator, err := runtime.PrepareModerator(lexicon.NewEmbeddedLoader(), lexiconRepository, charReplacement, policy, logger)
	if err != nil {
		return exitRuntime, fmt.Errorf("moderator preparation failed: %w", err)
	}
	orchestrator.RegisterTrigger("moderation", moderation.NewPipeline(moderator, store, telemetryChan, logger))

	index := search.NewIndex(blugeWriter, store, logger)
	orchestrator.Add(index)
	orchestrator.AddHandlers(
		moderatedHandler,
		event.NewWorkerRestartedAfterPanicHandler(logger, counter),
		event.NewChannelCapacityHandler(logger, config.LowCapacityThreshold),
		event.NewProcessStatsHandler(logger),
	)

	// 5. Services & servers
	issuer := auth.NewTokenIssuer(config.AuthSecret, config.AuthTokenDuration)
	authService := services.NewAuthService(userRepository, issuer, logger)
	chatService := services.NewChatService(store, registry, index, config.DefaultFeedLimit, config.MaxFeedLimit, logger)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler: api.NewRouter(api.NewHandler(chatService, authService, moderatedHandler, logger, config.Origins())),
	}

	grpcAddress := fmt.Sprintf("%s:%d", config.Host, config.GrpcPort)
	listener, err := net.Listen("tcp", grpcAddress)
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to listen on %s: %w", grpcAddress, err)
	}
	healthServer := grpc2.NewHealthServer(logger)

	if logger.Enabled(ctx, slog.LevelDebug) {
		debugServer := internal.StartDebugServer(db, config.DebugPort, func() map[string]any {
			return map[string]any{"Subscribers": registry.Count(), "Moderation": moderatedHandler.Stats()}
		}, logger)
		defer func() { _ = debugServer.Close() }()
	}

	// Error (HTTP, gRPC & Orchestrator)
	errChan := make(chan error, 3)
	orchestratorDone := make(chan struct{})

	// 6. Start the Engine
	go func() {
		defer close(orchestratorDone)
		logger.Info("Starting orchestrator...")
		if err := orchestrator.Start(ctx); err != nil {
			errChan <- fmt.Errorf("orchestrator error: %w", err)
		}
	}()
	go func() {
		select {
		case <-orchestrator.Ready():
			healthServer.MarkServing()
		case <-ctx.Done():
		}
	}()

	go func() {
		logger.Info("Starting gRPC health server", "address", grpcAddress)
		if err := healthServer.Serve(listener); err != nil {
			errChan <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()
	go func() {
		logger.Info("Starting HTTP server", "address", httpServer.Addr, "at", time.Now().UTC())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// 7. Wait for Stop or Error
	code := exitOK
	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case runErr = <-errChan:
		code = exitRuntime
	}

	// 8. Final Cleanup (Graceful Shutdown)
	logger.Info("Shutting down gracefully...")
	healthServer.MarkNotServing()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP server shutdown incomplete", "error", err)
	}
	orchestrator.Stop()
	<-orchestratorDone
	healthServer.GracefulStop()
	logger.Info("Program stopped cleanly")

	return code, runErr
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
