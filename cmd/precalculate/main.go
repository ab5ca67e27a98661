package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/onnwee/forcegraph/internal/animation"
	"github.com/onnwee/forcegraph/internal/config"
	"github.com/onnwee/forcegraph/internal/graph"
	"github.com/onnwee/forcegraph/internal/layout"
	"github.com/onnwee/forcegraph/internal/logger"
	"github.com/onnwee/forcegraph/internal/tracing"
	"github.com/onnwee/forcegraph/internal/utils"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// options are the precalculate flags.
type options struct {
	input  string
	output string
	format string
	frames int
	fps    float64
	seed   uint64
	static string
}

func newRootCommand() *cobra.Command {
	_ = godotenv.Load()
	cfg := config.Load()
	opts := options{frames: 600, fps: 60, seed: cfg.Seed, format: string(graph.FormatJSON)}

	cmd := &cobra.Command{
		Use:   "precalculate",
		Short: "Run the force layout headlessly and write final positions",
		Long: `Run the force layout headlessly and write final positions.

The input graph (JSON or YAML) is simulated for the given number of frames
at a fixed frame rate, using the LAYOUT_* environment settings. The result
is the same document with every node's position filled in. Output is
deterministic for a given seed.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger.Init(cfg.LogLevel)
			return runPrecalculate(cmd.Context(), cfg, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "graph file (.json, .yaml)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file; stdout when empty")
	cmd.Flags().StringVar(&opts.format, "format", opts.format, "stdout format: json or yaml")
	cmd.Flags().IntVarP(&opts.frames, "frames", "n", opts.frames, "number of simulation steps")
	cmd.Flags().Float64Var(&opts.fps, "fps", opts.fps, "frames per second of the virtual clock")
	cmd.Flags().Uint64Var(&opts.seed, "seed", opts.seed, "seed for coincident-node directions")
	cmd.Flags().StringVar(&opts.static, "static", "", "comma-separated node ids kept in place")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func runPrecalculate(ctx context.Context, cfg *config.Config, opts options, stdout io.Writer) error {
	doc, err := graph.LoadFile(opts.input)
	if err != nil {
		return fmt.Errorf("load %s: %w", opts.input, err)
	}

	static := utils.SplitAndTrim(opts.static, ",")
	if len(static) == 0 {
		static = cfg.StaticNodes
	}
	out, err := precalculate(ctx, doc, cfg.LayoutParams(), cfg.MaxTimeDeltaSec(), opts, static)
	if err != nil {
		return err
	}

	if opts.output == "" {
		return out.Encode(stdout, graph.Format(opts.format))
	}
	format, err := graph.FormatFromPath(opts.output)
	if err != nil {
		return err
	}
	f, err := os.Create(opts.output)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := out.Encode(f, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// precalculate drives the layout over doc with a manual frame clock and
// returns the resulting document.
func precalculate(ctx context.Context, doc *graph.Document, params layout.Params, maxDtSec float64, opts options, static []string) (*graph.Document, error) {
	if opts.frames < 0 {
		return nil, fmt.Errorf("frames must not be negative, got %d", opts.frames)
	}
	if !(opts.fps > 0) {
		return nil, fmt.Errorf("fps must be positive, got %v", opts.fps)
	}
	frameMs := 1000 / opts.fps
	if frameMs/1000 > maxDtSec {
		// Every frame would be clamped to dt=0 and nothing would move.
		return nil, fmt.Errorf("fps %v gives frames longer than the %vs maximum time delta", opts.fps, maxDtSec)
	}

	store := graph.NewStore()
	if err := store.Load(doc); err != nil {
		return nil, fmt.Errorf("load graph: %w", err)
	}

	ctx, span := tracing.StartSpan(ctx, "layout.precalculate", trace.WithAttributes(
		attribute.Int("layout.frames", opts.frames),
		attribute.Float64("layout.fps", opts.fps),
		attribute.Int("layout.nodes", len(doc.Nodes)),
	))
	defer span.End()

	ids := make([]layout.NodeID, len(static))
	for i, id := range static {
		ids[i] = layout.NodeID(id)
	}
	scheduler := animation.NewManualScheduler()
	c, err := animation.Configure(store, scheduler, animation.Options{
		Params:          params,
		MaxTimeDeltaSec: maxDtSec,
		Seed:            opts.seed,
		StaticNodeIDs:   ids,
		Logger:          logger.WithComponent("precalculate"),
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	defer c.Stop()

	// The first frame only sets the clock baseline.
	for i := 0; i <= opts.frames; i++ {
		if i%64 == 0 {
			if err := ctx.Err(); err != nil {
				span.SetStatus(codes.Error, "cancelled")
				return nil, err
			}
		}
		scheduler.Advance(frameMs)
	}

	logger.Info("Precalculated layout", "frames", opts.frames, "nodes", len(doc.Nodes), "ticks", c.Ticks())
	return store.Export(), nil
}
