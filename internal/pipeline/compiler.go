package pipeline

import (
	"fmt"
	"time"

	"augment/internal/config"
	"augment/internal/spec"
	"augment/internal/stage"
	"augment/internal/transform"
	"augment/internal/transport"
	"augment/sink"
	"augment/sink/kafka"
	"augment/sink/stdout"
	source "augment/source/kafka"
)

// Compile reads a pipeline file. The runner is nil when the file declares no
// source; the chain holds the stages listed under serve.
func Compile(path string) (*Runner, stage.Chain, error) {
	cfg, confPath, err := config.LoadPipelineSpec(path)
	if err != nil {
		return nil, nil, err
	}
	serve, err := BuildChain(cfg.Serve)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Source.Kind == "" {
		return nil, serve, nil
	}
	r := NewRunner()
	if err := build(r, cfg, confPath); err != nil {
		_ = r.Close()
		_ = serve.Close()
		return nil, nil, err
	}
	return r, serve, nil
}

func build(r *Runner, cfg spec.File, confPath string) error {
	if cfg.Source.Kind != "kafka" {
		return fmt.Errorf("unsupported source %q", cfg.Source.Kind)
	}
	kc, err := config.LoadKafkaConfig(confPath)
	if err != nil {
		return err
	}
	src, err := source.NewAdapter(cfg.Source.Driver)
	if err != nil {
		return err
	}
	if err = src.Configure(kc); err != nil {
		return err
	}
	r.SetSource(src)
	if aw, ok := src.(source.AckAware); ok {
		r.SubscribeAck(aw.OnAck)
	}

	for _, t := range cfg.Transformers {
		s, err := BuildStage(t)
		if err != nil {
			return err
		}
		r.AddTransformer(s,
			time.Duration(t.TimeoutMS)*time.Millisecond,
			t.RetryPolicy.Attempts,
			time.Duration(t.RetryPolicy.BackoffMS)*time.Millisecond)
	}

	for _, name := range cfg.Sinks {
		sDrv, err := sink.NewAdapter(name)
		if err != nil {
			return err
		}
		switch name {
		case "stdout":
			c := cfg.SinkConfigs.Stdout
			err = sDrv.Configure(stdout.Config{
				PrintCounter: c.PrintCounter,
				BatchSize:    c.AckBatchSize,
				FlushMS:      c.AckFlushMS,
			})
		case "kafka":
			c := cfg.SinkConfigs.Kafka
			err = sDrv.Configure(kafka.Config{Brokers: c.Brokers, Topic: c.Topic, Acks: c.RequiredAcks})
		default:
			err = fmt.Errorf("no config block for sink %q", name)
		}
		if err != nil {
			return err
		}
		r.AddSink(sDrv)
	}
	return nil
}

// BuildChain turns transformer entries into stages, in order.
func BuildChain(ts []spec.TransformerSpec) (stage.Chain, error) {
	chain := make(stage.Chain, 0, len(ts))
	for _, t := range ts {
		s, err := BuildStage(t)
		if err != nil {
			_ = chain.Close()
			return nil, err
		}
		chain = append(chain, s)
	}
	return chain, nil
}

func BuildStage(t spec.TransformerSpec) (stage.Stage, error) {
	switch t.Type {
	case "inproc":
		tr, err := transform.New(t.Op, transform.Options{
			Format:        t.Options.Format,
			DType:         t.Options.DType,
			ColorSpace:    t.Options.ColorSpace,
			OldColorSpace: t.Options.OldColorSpace,
		})
		if err != nil {
			return nil, fmt.Errorf("transformer %s: %w", t.Name, err)
		}
		return stage.NewLocal(t.Name, tr), nil
	case "grpc":
		cli, err := transport.NewClient(t.Address)
		if err != nil {
			return nil, fmt.Errorf("transformer %s: dial %s: %w", t.Name, t.Address, err)
		}
		return stage.NewRemote(t.Name, cli), nil
	default:
		return nil, fmt.Errorf("unsupported transformer type %q for %s", t.Type, t.Name)
	}
}
