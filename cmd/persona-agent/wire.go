package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"persona-agent/internal/brain"
	"persona-agent/internal/config"
	"persona-agent/internal/core/ports"
	"persona-agent/internal/pipeline"
	"persona-agent/internal/sites/fixture"
	"persona-agent/internal/sites/reddit"
	"persona-agent/internal/storage"
	"persona-agent/internal/ui/telegram"
)

type app struct {
	runID   string
	runner  *pipeline.Runner
	closers []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// wire builds the runner from settings. Optional sinks and the reporter are
// skipped with a warning when they cannot be reached.
func wire(ctx context.Context, s *config.Settings, logger *zap.Logger) (*app, error) {
	a := &app{runID: uuid.NewString()}

	source, err := buildSource(ctx, s, logger, a)
	if err != nil {
		a.Close()
		return nil, err
	}

	gemini, err := brain.NewGeminiBrain(ctx, s.Gemini.APIKey, brain.Options{
		Models:      modelConfigs(s.Gemini.Models),
		Timeout:     s.Gemini.Timeout.Duration,
		Temperature: s.Gemini.Temperature,
	}, logger.Named("brain"))
	if err != nil {
		a.Close()
		return nil, err
	}
	model := brain.NewRetrying(gemini, retryPolicy(s.Retry), logger.Named("retry"))

	sink, err := buildSinks(ctx, s, logger, a)
	if err != nil {
		a.Close()
		return nil, err
	}

	opts := []pipeline.Option{
		pipeline.WithLogger(logger.Named("pipeline")),
		pipeline.WithLimit(s.Fetch.Limit),
	}
	if s.Telegram.Token != "" {
		reporter, err := telegram.NewReporter(s.Telegram.Token, s.Telegram.ChatID, s.Telegram.FailuresOnly)
		if err != nil {
			logger.Warn("Telegram reporter disabled", zap.Error(err))
		} else {
			opts = append(opts, pipeline.WithReporter(reporter))
		}
	}

	a.runner = pipeline.NewRunner(source, model, sink, opts...)
	return a, nil
}

func buildSource(ctx context.Context, s *config.Settings, logger *zap.Logger, a *app) (ports.ActivitySource, error) {
	var source ports.ActivitySource
	switch s.Fetch.Source {
	case "fixture":
		source = fixture.NewSource(s.Fetch.FixturesDir)
	case "reddit":
		client, err := reddit.NewClient(ctx, reddit.Config{
			ClientID:        s.Reddit.ClientID,
			ClientSecret:    s.Reddit.ClientSecret,
			UserAgent:       s.Reddit.UserAgent,
			BaseURL:         s.Reddit.BaseURL,
			TokenURL:        s.Reddit.TokenURL,
			RequestInterval: s.Reddit.RequestInterval.Duration,
			Timeout:         s.Reddit.Timeout.Duration,
		}, logger.Named("reddit"))
		if err != nil {
			return nil, err
		}
		source = client
	default:
		return nil, fmt.Errorf("unknown fetch.source %q", s.Fetch.Source)
	}

	if s.Redis.Addr == "" {
		return source, nil
	}
	rdb := redis.NewClient(&redis.Options{Addr: s.Redis.Addr, DB: s.Redis.DB})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn("Redis unreachable, activity cache disabled", zap.String("addr", s.Redis.Addr), zap.Error(err))
		_ = rdb.Close()
		return source, nil
	}
	a.closers = append(a.closers, func() { _ = rdb.Close() })
	logger.Info("Activity cache enabled", zap.String("addr", s.Redis.Addr), zap.Duration("ttl", s.Redis.TTL.Duration))
	return storage.NewCachedSource(source, rdb, s.Redis.TTL.Duration, logger.Named("cache")), nil
}

func buildSinks(ctx context.Context, s *config.Settings, logger *zap.Logger, a *app) (ports.PersonaSink, error) {
	files, err := storage.NewFileSink(s.Output.Dir, logger.Named("files"))
	if err != nil {
		return nil, fmt.Errorf("prepare output dir: %w", err)
	}
	sinks := storage.MultiSink{files}

	if s.Postgres.URL != "" {
		pg, err := storage.NewPostgresSink(ctx, s.Postgres.URL, a.runID)
		if err != nil {
			logger.Warn("PostgreSQL sink disabled", zap.Error(err))
		} else {
			a.closers = append(a.closers, pg.Close)
			sinks = append(sinks, pg)
			logger.Info("Storage: PostgreSQL connected")
		}
	}

	if len(s.Kafka.Brokers) > 0 {
		k := storage.NewKafkaSink(s.Kafka.Brokers, s.Kafka.Topic, a.runID)
		a.closers = append(a.closers, func() {
			if err := k.Close(); err != nil {
				logger.Warn("Kafka writer close failed", zap.Error(err))
			}
		})
		sinks = append(sinks, k)
		logger.Info("Storage: Kafka publishing", zap.Strings("brokers", s.Kafka.Brokers), zap.String("topic", s.Kafka.Topic))
	}

	if len(sinks) == 1 {
		return files, nil
	}
	return sinks, nil
}

func modelConfigs(specs []config.ModelSpec) []brain.ModelConfig {
	models := make([]brain.ModelConfig, 0, len(specs))
	for _, m := range specs {
		models = append(models, brain.ModelConfig{Name: m.Name, RPM: m.RPM, RPD: m.RPD})
	}
	return models
}

func retryPolicy(r config.RetryConfig) brain.RetryPolicy {
	if r.MaxRetries == 0 {
		return brain.NoRetry{}
	}
	return brain.ExponentialRetry{
		MaxRetries:      r.MaxRetries,
		InitialInterval: r.InitialInterval.Duration,
		MaxInterval:     r.MaxInterval.Duration,
	}
}
