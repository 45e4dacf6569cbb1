package engine

import (
	"context"
	"errors"
	"net/http"
	"time"

	"google.golang.org/grpc"

	"augment/internal/logging"
	"augment/internal/pipeline"
	"augment/internal/stage"
	"augment/internal/transport"
)

const shutdownTimeout = 5 * time.Second

type Engine struct {
	transport *transport.Server
	runner    *pipeline.Runner
	chain     stage.Chain
	metrics   *http.Server
}

func (e *Engine) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		e.shutdown()
	}()

	if err := e.transport.Serve(); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

func (e *Engine) shutdown() {
	log := logging.For("engine")
	e.transport.Stop()
	if e.runner != nil {
		if err := e.runner.Close(); err != nil {
			log.Warn("runner close", "err", err)
		}
	}
	if err := e.chain.Close(); err != nil {
		log.Warn("serve chain close", "err", err)
	}
	if e.metrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = e.metrics.Shutdown(ctx)
	}
	log.Info("engine stopped")
}
