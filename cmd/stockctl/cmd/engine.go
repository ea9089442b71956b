package cmd

import (
	"fmt"

	"github.com/spf13/viper"

	"stockplane/internal/engine"
	"stockplane/internal/fetch"
	"stockplane/internal/importer"
	"stockplane/internal/logger"
	"stockplane/internal/metrics"
	"stockplane/internal/remote"
	"stockplane/internal/sites"
	"stockplane/internal/store/file"
)

// buildEngine assembles an in-process engine from the viper configuration.
func buildEngine(runCfg importer.RunConfig) (*engine.Engine, error) {
	provider, err := sites.Load(viper.GetString("sites"))
	if err != nil {
		return nil, fmt.Errorf("load sites: %w", err)
	}

	kv, err := file.Open(viper.GetString("metrics-file"))
	if err != nil {
		return nil, fmt.Errorf("open metrics store: %w", err)
	}

	log := logger.New()
	opts := []remote.Option{remote.WithRateLimit(viper.GetFloat64("remote-rate"))}
	if base := viper.GetDuration("retry-backoff"); base > 0 {
		opts = append(opts, remote.WithBackoff(base, 12*base))
	}
	client := remote.New(log, opts...)
	recorder := metrics.NewRecorder(kv, log)

	if n := viper.GetInt("request-retries"); n > 0 {
		runCfg.RequestRetries = n
	}

	return engine.New(
		provider,
		importer.NewRunner(client, log),
		fetch.NewSelector(client, recorder, log,
			fetch.WithRequestRetries(runCfg.RequestRetries)),
		recorder,
		log,
		engine.WithRunConfig(runCfg),
	), nil
}
