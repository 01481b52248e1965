// Package servecmder provides the serve command that runs the tutoring API
// server.
package servecmder

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/api"
	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/api/worker"
	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/config"
	eventstreamutils "github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/eventstream/utils"
	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/llm/provider"
	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/logger"
	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/metrics"
	storageutils "github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/storage/utils"
	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/stream"
)

type serveCommander struct {
	listen         string
	providerType   string
	baseURL        string
	chatModel      string
	reasoningModel string
	streamMode     string
	chunkSize      uint
	storageDriver  string
	sqlitePath     string
	postgresDSN    string
	events         string
	kafkaBrokers   string

	debug  bool
	viper  *viper.Viper
	logger *zap.Logger
}

// serveFlags are the registry keys bound to viper for this command.
var serveFlags = []string{
	config.FlagListen,
	config.FlagProvider,
	config.FlagBaseURL,
	config.FlagChatModel,
	config.FlagReasoningModel,
	config.FlagStreamMode,
	config.FlagChunkSize,
	config.FlagStorageDriver,
	config.FlagSQLite,
	config.FlagPostgresDSN,
	config.FlagEvents,
	config.FlagKafkaBrokers,
}

const serveLongDesc string = `Run the scribe tutoring API server.

The server streams tutor replies over Server-Sent Events, answers one-shot
solution, check and hint requests, and records subproblem timers.

Settings come from flags, SCRIBE_* environment variables and config.toml,
in that order. INSTANCE_HOST, OPENAI_API_KEY and DATABASE_URL are honoured
as well.

Examples:
  scribe serve
  scribe serve --provider openai --base-url http://gpu-host:8000/v1
  scribe serve --storage postgres --postgres-dsn postgres://localhost/scribe`

const serveShortDesc string = "Run the scribe tutoring API server"

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, config.Flags, serveFlags)
			cmder.viper = v
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}
			return cmder.run()
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagListen, &cmder.listen)
	config.AddStringFlag(cmd, config.Flags, config.FlagProvider, &cmder.providerType)
	config.AddStringFlag(cmd, config.Flags, config.FlagBaseURL, &cmder.baseURL)
	config.AddStringFlag(cmd, config.Flags, config.FlagChatModel, &cmder.chatModel)
	config.AddStringFlag(cmd, config.Flags, config.FlagReasoningModel, &cmder.reasoningModel)
	config.AddStringFlag(cmd, config.Flags, config.FlagStreamMode, &cmder.streamMode)
	config.AddUintFlag(cmd, config.Flags, config.FlagChunkSize, &cmder.chunkSize)
	config.AddStringFlag(cmd, config.Flags, config.FlagStorageDriver, &cmder.storageDriver)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.Flags, config.FlagPostgresDSN, &cmder.postgresDSN)
	config.AddStringFlag(cmd, config.Flags, config.FlagEvents, &cmder.events)
	config.AddStringFlag(cmd, config.Flags, config.FlagKafkaBrokers, &cmder.kafkaBrokers)

	return cmd
}

func (c *serveCommander) run() error {
	cfg, err := config.FromViper(c.viper)
	if err != nil {
		return err
	}

	level := logger.LevelFor(c.debug || cfg.Log.Debug)
	c.logger = logger.NewLoggerWithLevel(level)
	defer func() { _ = c.logger.Sync() }()

	// An explicit --debug pins the level; otherwise follow config.toml.
	if !c.debug && config.WatchLogLevel(c.viper, level, c.logger) {
		c.logger.Debug("watching config file for log level changes",
			zap.String("file", c.viper.ConfigFileUsed()),
		)
	}

	apiConfig, err := NewAPIConfig(cfg)
	if err != nil {
		return err
	}

	ctx := context.Background()

	prov, err := provider.New(ctx, provider.Options{
		Type:    cfg.Completion.Provider,
		BaseURL: cfg.Completion.BaseURL,
		APIKey:  cfg.Completion.APIKey,
	})
	if err != nil {
		return fmt.Errorf("creating completion provider: %w", err)
	}

	driver, err := storageutils.NewDriver(ctx, &storageutils.NewDriverOpts{
		DriverType:  cfg.Storage.Driver,
		SQLitePath:  cfg.Storage.SQLitePath,
		PostgresDSN: cfg.Storage.PostgresDSN,
		Logger:      c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating timer store: %w", err)
	}
	defer driver.Close()

	publisher, err := eventstreamutils.NewPublisher(&eventstreamutils.NewPublisherOpts{
		ProviderType: cfg.Events.Provider,
		Brokers:      splitList(cfg.Events.Brokers),
		Topic:        cfg.Events.Topic,
	})
	if err != nil {
		return fmt.Errorf("creating event publisher: %w", err)
	}
	defer publisher.Close()

	m := metrics.New()

	pool, err := worker.NewPool(&worker.Config{
		Publisher: publisher,
		Logger:    c.logger,
		OnResult: func(job worker.Job, err error) {
			m.EventPublished(job.Event.EventType, err)
		},
	})
	if err != nil {
		return fmt.Errorf("creating worker pool: %w", err)
	}
	// Runs before publisher.Close so queued events are flushed.
	defer pool.Close()

	server, err := api.NewServer(apiConfig, api.Deps{
		Provider: prov,
		Storer:   driver,
		Pool:     pool,
		Metrics:  m,
		Logger:   c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	c.logger.Info("scribe server configured",
		zap.String("provider", prov.Name()),
		zap.String("chat_model", apiConfig.ChatModel),
		zap.String("stream_mode", string(apiConfig.StreamMode)),
		zap.String("storage", cfg.Storage.Driver),
		zap.String("events", cfg.Events.Provider),
	)

	errChan := make(chan error, 1)
	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		if err := server.Shutdown(); err != nil {
			c.logger.Error("shutting down API server", zap.Error(err))
		}
		return nil
	}
}

// idleGrace is how far the relay idle timeout is kept past completion.timeout.
const idleGrace = 30 * time.Second

// NewAPIConfig converts the resolved configuration into the server's
// settings, parsing every duration.
func NewAPIConfig(cfg *config.Config) (api.Config, error) {
	out := api.Config{
		ListenAddr:     cfg.Server.Listen,
		CORSOrigins:    cfg.Server.CORSOrigins,
		ChatModel:      cfg.Completion.ChatModel,
		ReasoningModel: cfg.Completion.ReasoningModel,
		MaxTokens:      int(cfg.Completion.MaxTokens),
		ChunkSize:      int(cfg.Stream.ChunkSize),
		Buffer:         int(cfg.Stream.Buffer),
		VerdictDelay:   100 * time.Millisecond,
	}

	switch mode := stream.Mode(cfg.Stream.Mode); mode {
	case stream.ModeAuto, stream.ModeNative, stream.ModeSplit:
		out.StreamMode = mode
	default:
		return api.Config{}, fmt.Errorf("invalid stream.mode %q (allowed: auto, native, split)", cfg.Stream.Mode)
	}

	durations := []struct {
		key    string
		raw    string
		target *time.Duration
	}{
		{"completion.timeout", cfg.Completion.Timeout, &out.CompletionTimeout},
		{"stream.chunk_delay", cfg.Stream.ChunkDelay, &out.ChunkDelay},
		{"stream.word_delay", cfg.Stream.WordDelay, &out.WordDelay},
		{"stream.keepalive", cfg.Stream.KeepAlive, &out.KeepAlive},
		{"stream.idle_timeout", cfg.Stream.IdleTimeout, &out.IdleTimeout},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.raw)
		if err != nil {
			return api.Config{}, fmt.Errorf("invalid %s: %w", d.key, err)
		}
		*d.target = parsed
	}

	// The relay must outlast a timed-out completion so its Error chunk
	// reaches the client.
	if out.CompletionTimeout > 0 && out.IdleTimeout > 0 && out.IdleTimeout <= out.CompletionTimeout {
		out.IdleTimeout = out.CompletionTimeout + idleGrace
	}

	return out, nil
}

func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
