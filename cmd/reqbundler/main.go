package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"reqbundler/internal/bundling"
	"reqbundler/internal/config"
)

// publishRequest is the combined-request shape used by the demo workload.
type publishRequest struct {
	Topic    string
	Messages []interface{}
}

// publishResponse carries one status per published message.
type publishResponse struct {
	Topic    string
	Statuses []interface{}
}

func main() {
	// Parse flags
	configPath := flag.String("config", "config.json", "path to config file")
	flag.Parse()

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		// Basic logger for startup errors
		log := zerolog.New(os.Stderr).With().Timestamp().Logger()
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Setup logger
	logger := setupLogger(cfg.LogLevel)
	logger.Info().
		Str("config", *configPath).
		Int("countThreshold", cfg.Bundling.MessageCountThreshold).
		Int("bytesizeThreshold", cfg.Bundling.MessageBytesizeThreshold).
		Dur("delayThreshold", cfg.Bundling.GetDelayThresholdDuration()).
		Msg("starting reqbundler")

	executor := bundling.NewExecutor(bundling.Options{
		MessageCountThreshold:    cfg.Bundling.MessageCountThreshold,
		MessageBytesizeThreshold: cfg.Bundling.MessageBytesizeThreshold,
		DelayThreshold:           cfg.Bundling.GetDelayThresholdDuration(),
	}, logger)

	// Flush pending bundles on shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-quit
		logger.Info().Str("signal", sig.String()).Msg("received shutdown signal, flushing")
		executor.FlushAll()
		os.Exit(0)
	}()

	workload := cfg.Workload
	if workload == nil {
		workload = &config.WorkloadConfig{
			Callers:   config.DefaultWorkloadCallers,
			GroupSize: config.DefaultWorkloadGroupSize,
			Bundles:   config.DefaultWorkloadBundles,
		}
	}

	runWorkload(executor, workload, logger)
	logger.Info().Msg("workload complete")
}

// runWorkload schedules uuid-tagged message groups against an in-process
// echo call, spread across a few topics, and waits for every caller's
// event to be fulfilled.
func runWorkload(executor *bundling.Executor, workload *config.WorkloadConfig, logger zerolog.Logger) {
	desc := bundling.Descriptor{
		BundledField:        "Messages",
		SubresponseField:    "Statuses",
		DiscriminatorFields: []string{"Topic"},
	}

	// The combined call: acknowledge every bundled message.
	publish := func(req interface{}) (interface{}, error) {
		r := req.(*publishRequest)
		statuses := make([]interface{}, len(r.Messages))
		for i, m := range r.Messages {
			statuses[i] = fmt.Sprintf("ack:%v", m)
		}
		return &publishResponse{Topic: r.Topic, Statuses: statuses}, nil
	}

	var wg sync.WaitGroup
	for caller := 0; caller < workload.Callers; caller++ {
		topic := fmt.Sprintf("topic-%d", caller%workload.Bundles)

		msgs := make([]interface{}, workload.GroupSize)
		for i := range msgs {
			msgs[i] = uuid.NewString()
		}
		req := &publishRequest{Topic: topic, Messages: msgs}

		id, err := bundling.ComputeBundleID(req, desc.DiscriminatorFields)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to compute bundle id")
		}

		event, err := executor.Schedule(publish, id, desc, req)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to schedule")
		}

		wg.Add(1)
		go func(topic string, event *bundling.Event) {
			defer wg.Done()
			if !event.Wait(5 * time.Second) {
				logger.Warn().Str("topic", topic).Msg("timed out waiting for bundle")
				event.Cancel()
				return
			}
			if err := event.Err(); err != nil {
				logger.Error().Err(err).Str("topic", topic).Msg("bundle failed")
				return
			}
			resp := event.Result().(*publishResponse)
			logger.Info().
				Str("topic", topic).
				Int("statuses", len(resp.Statuses)).
				Msg("caller fulfilled")
		}(topic, event)

		if firing, ok := executor.History(id); ok {
			logger.Debug().
				Str("topic", topic).
				Str("trigger", firing.Trigger).
				Int("messages", firing.Messages).
				Msg("bundle already fired")
		}
	}

	// Only the first live bundle arms the shared delay timer, so drain
	// whatever the thresholds and timer have not already fired.
	time.Sleep(2 * executorFlushGrace)
	executor.FlushAll()
	wg.Wait()
}

// executorFlushGrace gives threshold and timer triggers a chance to fire
// on their own before the workload drains the remainder.
const executorFlushGrace = 150 * time.Millisecond

// setupLogger configures the zerolog logger
func setupLogger(level string) zerolog.Logger {
	// Set log level
	var logLevel zerolog.Level
	switch level {
	case "debug":
		logLevel = zerolog.DebugLevel
	case "info":
		logLevel = zerolog.InfoLevel
	case "warn":
		logLevel = zerolog.WarnLevel
	case "error":
		logLevel = zerolog.ErrorLevel
	default:
		logLevel = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(logLevel)

	// Configure output
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}

	return zerolog.New(output).With().Timestamp().Logger()
}
