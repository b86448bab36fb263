package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"chat-relay/domain/event"
	"chat-relay/internal"
	"chat-relay/moderation"
	"chat-relay/observability"
	"chat-relay/runtime"
	"chat-relay/runtime/workers"
	"chat-relay/services"
	"chat-relay/sink"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	// The main function acts as a thin wrapper.
	// Its only responsibility is to call run() and handle the OS exit code.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Relay terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run initializes all components, manages the relay lifecycle, and centralizes
// error reporting so that every defer executes before the process exits.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()

	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	logger := logs.GetLoggerFromString(config.LogLevel)

	// 2. Shared state: registries and telemetry
	monitoring := observability.NewMonitoringManager()
	users := runtime.NewUserRegistry(logger)
	groups := runtime.NewGroupRegistry(users, config.GroupCapacity, logger)

	var moderator *moderation.Moderator
	if config.EnableModeration {
		charReplacement, err := internal.CharacterRune(config.CharReplacement)
		if err != nil {
			return exitConfig, err
		}
		words, err := moderation.LoadDefaultWords()
		if err != nil {
			return exitConfig, fmt.Errorf("loading censored words: %w", err)
		}
		m, err := moderation.NewModerator(words, charReplacement)
		if err != nil {
			return exitConfig, fmt.Errorf("building moderator: %w", err)
		}
		moderator = &m
		logger.Info("Moderation enabled", "words", len(words))
	}

	// 3. Event pipeline
	domainEvents := make(chan event.DomainEvent, config.EventBufferSize)
	telemetryChan := make(chan event.Event, config.TelemetryBufferSize)

	timeline := sink.NewTimeline(config.TimelineLimit)
	fanout := workers.NewEventFanout(logger, domainEvents).
		Add(sink.NewLogSink(logger), timeline)

	counter := event.NewCounter()
	telemetry := workers.NewTelemetryWorker(logger, telemetryChan, []event.Handler{
		event.NewWorkerRestartedAfterPanicHandler(logger, counter),
		event.NewChannelCapacityHandler(logger, config.LowCapacityThreshold),
	})

	// 4. Relay service and accept loop
	relay := services.NewRelayService(logger, users, groups, moderator, monitoring, domainEvents, config.DefaultGroup)
	listener := runtime.NewListener(logger, config.ListenAddr(), relay, monitoring)
	heartbeat := workers.NewHeartbeatWorker(logger, monitoring, config.HeartbeatInterval)
	capacity := workers.NewChannelCapacityWorker(logger, []workers.NamedChannel{
		{Name: "domainEvents", Channel: domainEvents},
		{Name: "telemetry", Channel: telemetryChan},
	}, telemetryChan, config.MetricInterval)

	if config.DebugPort > 0 {
		internal.StartDebugServer(config.DebugPort, users, groups, func() map[string]any {
			stats := monitoring.GetLatest()
			return map[string]any{
				"sessions_open":   stats.SessionsOpen,
				"frames_routed":   stats.FramesRouted,
				"frames_dropped":  stats.FramesDropped,
				"routing_errors":  stats.RoutingErrors,
				"protocol_errors": stats.ProtocolErrors,
				"censored":        stats.Censored,
				"alloc_mem_mb":    stats.AllocMemMb,
				"num_gc":          stats.NumGC,
			}
		}, timeline)
		logger.Info("Debug inspect server started", "port", config.DebugPort)
	}

	// 5. Supervised run until SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	supervisor := workers.NewSupervisor(logger, telemetryChan, config.RestartInterval)
	supervisor.Add(listener, fanout, telemetry, heartbeat, capacity)
	supervisor.Run(ctx)

	logger.Info("Relay stopped")
	return exitOK, nil
}
