package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"augment/internal/codec"
	"augment/internal/config"
	"augment/internal/engine"
	"augment/internal/logging"
	"augment/internal/transform"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "augmentd",
		Short:        "Media meta-transforms as a service",
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd(), newOpsCmd(), newApplyCmd())
	return root
}

func newServeCmd() *cobra.Command {
	var cfgPath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the Transformer service and the optional pipeline",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadEngineConfig(cfgPath)
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			logging.Configure(logging.Options{Level: cfg.Log.Level, JSON: cfg.Log.JSON})

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			e, err := engine.Bootstrap(ctx, cfg)
			if err != nil {
				return fmt.Errorf("bootstrap: %w", err)
			}
			return e.Run(ctx)
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "augmentd.yml", "engine config file (missing file means defaults + env)")
	return cmd
}

func newOpsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ops",
		Short: "List the transform ops a pipeline can reference",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			for _, op := range transform.Ops() {
				fmt.Fprintln(cmd.OutOrStdout(), op)
			}
		},
	}
}

// apply runs one op over a CBOR-encoded value, for debugging pipelines
// without Kafka.
func newApplyCmd() *cobra.Command {
	var (
		opts    transform.Options
		in, out string
	)
	cmd := &cobra.Command{
		Use:   "apply <op>",
		Short: "Apply one transform to a CBOR-encoded media value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logging.InitFromEnv()
			t, err := transform.New(args[0], opts)
			if err != nil {
				return err
			}
			raw, err := os.ReadFile(in)
			if err != nil {
				return err
			}
			v, err := codec.Decode(raw)
			if err != nil {
				return err
			}
			res, err := transform.Run(t, v)
			if err != nil {
				return err
			}
			b, err := codec.Encode(res)
			if err != nil {
				return err
			}
			if out == "" || out == "-" {
				_, err = cmd.OutOrStdout().Write(b)
				return err
			}
			return os.WriteFile(out, b, 0o644)
		},
	}
	f := cmd.Flags()
	f.StringVar(&in, "in", "", "input file")
	f.StringVar(&out, "out", "-", "output file, - for stdout")
	f.StringVar(&opts.Format, "format", "", "bounding box format")
	f.StringVar(&opts.DType, "dtype", "", "target dtype")
	f.StringVar(&opts.ColorSpace, "color-space", "", "target color space")
	f.StringVar(&opts.OldColorSpace, "old-color-space", "", "source color space for untagged tensors")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}

