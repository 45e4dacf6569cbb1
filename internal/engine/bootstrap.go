package engine

import (
	"context"
	"fmt"

	"augment/internal/config"
	"augment/internal/logging"
	"augment/internal/pipeline"
	"augment/internal/stage"
	"augment/internal/telemetry"
	"augment/internal/transport"
)

// Bootstrap compiles the optional pipeline, starts its runner, binds the
// Transformer service and exposes metrics. Run blocks until ctx ends.
func Bootstrap(ctx context.Context, cfg config.Engine) (*Engine, error) {
	var (
		runner *pipeline.Runner
		chain  stage.Chain
		err    error
	)
	if cfg.Pipeline != "" {
		runner, chain, err = pipeline.Compile(cfg.Pipeline)
		if err != nil {
			return nil, fmt.Errorf("pipeline: %w", err)
		}
	}

	srv, err := transport.StartServer(cfg.GRPCPort, chain)
	if err != nil {
		if runner != nil {
			_ = runner.Close()
		}
		return nil, fmt.Errorf("transport: %w", err)
	}

	if runner != nil {
		if err := runner.Start(ctx); err != nil {
			srv.Stop()
			return nil, err
		}
	}

	logging.For("engine").Info("engine started",
		"grpc_port", cfg.GRPCPort, "metrics_port", cfg.MetricsPort,
		"serve_stages", len(chain), "pipeline", runner != nil)

	return &Engine{
		transport: srv,
		runner:    runner,
		chain:     chain,
		metrics:   telemetry.Expose(cfg.MetricsPort),
	}, nil
}
