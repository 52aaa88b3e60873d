package main

import (
	"context"
	"fmt"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/askiada/go-vectorize/internal/logging"
	"github.com/askiada/go-vectorize/pkg/vectorize"
	"github.com/askiada/go-vectorize/pkg/vectorize/classify"
	"github.com/askiada/go-vectorize/pkg/vectorize/drawer"
	"github.com/askiada/go-vectorize/pkg/vectorize/measure"
	"github.com/askiada/go-vectorize/pkg/vectorize/model"
	"github.com/askiada/go-vectorize/pkg/vectorize/remote"
)

type convertFlags struct {
	out         string
	profiles    string
	report      string
	stats       bool
	bitmap      bool
	noFallback  bool
	concurrency int

	color      string
	scale      float64
	background bool
	noInvert   bool
}

func newConvertCmd(a *app) *cobra.Command {
	var flags convertFlags

	cmd := &cobra.Command{
		Use:   "convert <image>...",
		Short: "Convert images into SVG files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.convert(cmd.Context(), &flags, args, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.out, "out", "o", ".", "Output directory for the SVG files")
	f.StringVar(&flags.profiles, "profiles", "", "YAML, JSON or TOML profiles file (overrides trace.profiles_file)")
	f.StringVar(&flags.report, "report", "", "Write the cascade graph of the batch to this DOT file (overrides report.dot_file)")
	f.BoolVar(&flags.stats, "stats", false, "Print per stage timings")
	f.BoolVar(&flags.bitmap, "bitmap", false, "Also write the classified black and white bitmap as <name>.bitmap.png")
	f.BoolVar(&flags.noFallback, "no-fallback", false, "Never call the remote conversion service")
	f.IntVarP(&flags.concurrency, "concurrency", "c", 0, "Number of images converted at the same time (overrides trace.concurrency)")
	f.StringVar(&flags.color, "color", "", "Fill color of the traced paths")
	f.Float64Var(&flags.scale, "scale", 0, "Scale factor applied to the output coordinates")
	f.BoolVar(&flags.background, "background", false, "Keep an opaque white background")
	f.BoolVar(&flags.noInvert, "no-invert", false, "Fill the background instead of the ink")

	return cmd
}

func (a *app) convert(ctx context.Context, flags *convertFlags, paths []string, out io.Writer) error {
	logger := logging.New("convert")

	profiles, err := a.profiles(flags.profiles)
	if err != nil {
		return err
	}

	render := model.DefaultRenderOptions()
	if flags.color != "" {
		render.PathColor = flags.color
	}
	if flags.scale > 0 {
		render.Scale = flags.scale
	}
	render.TransparentBackground = !flags.background
	render.Invert = !flags.noInvert

	msr := measure.NewDefaultMeasure()
	opts := []vectorize.Option{
		vectorize.WithProfiles(profiles...),
		vectorize.WithRenderOptions(render),
		vectorize.WithLogger(logger),
		vectorize.WithHooks(measure.PipelineMeasure(msr)),
	}

	report := flags.report
	if report == "" {
		report = a.cfg.Report.DOTFile
	}
	if report != "" {
		opts = append(opts, vectorize.WithHooks(drawer.PipelineDrawer(drawer.NewDOTDrawer(report), msr)))
	}

	if !flags.noFallback && !a.cfg.Trace.NoFallback {
		client, err := remote.NewClient(a.cfg.Remote, remote.WithLogger(logging.New("remote")))
		if err != nil {
			return errors.Wrap(err, "remote client")
		}
		opts = append(opts, vectorize.WithRemote(client))
	}

	p, err := vectorize.New(opts...)
	if err != nil {
		return errors.Wrap(err, "unable to create pipeline")
	}

	concurrency := flags.concurrency
	if concurrency <= 0 {
		concurrency = a.cfg.Trace.Concurrency
	}

	srcs, err := readSources(ctx, paths, concurrency)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(flags.out, 0o755); err != nil {
		return errors.Wrap(err, "create output directory")
	}

	results, runErr := p.ConvertAll(ctx, srcs, concurrency)

	// Close draws the report, which needs every run to be done.
	if err := p.Close(); err != nil {
		logger.Warn("unable to write report", slog.String("file", report), slog.Any("error", err))
	}

	failed := 0
	summary := table.NewWriter()
	summary.SetStyle(table.StyleLight)
	summary.AppendHeader(table.Row{"Source", "Result", "Output"})
	for i, res := range results {
		detail, err := writeResult(flags.out, srcs[i], res)
		if err != nil {
			return err
		}
		if res.Kind != model.ResultSuccess {
			failed++
		}
		summary.AppendRow(table.Row{srcs[i].Name, res.Kind.String(), detail})

		if flags.bitmap {
			if err := writeBitmap(flags.out, srcs[i]); err != nil {
				logger.Warn("unable to write bitmap", slog.String("source", srcs[i].Name), slog.Any("error", err))
			}
		}
	}
	fmt.Fprintln(out, summary.Render())

	if flags.stats {
		fmt.Fprintln(out, renderStats(msr))
	}

	if runErr != nil {
		return errors.Wrap(runErr, "conversion interrupted")
	}
	if failed > 0 {
		return errors.Errorf("%d of %d conversions failed", failed, len(results))
	}

	return nil
}

// readSources loads the images concurrently, keeping the order of paths.
func readSources(ctx context.Context, paths []string, concurrency int) ([]vectorize.Source, error) {
	srcs := make([]vectorize.Source, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(concurrency, 1))
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return errors.Wrapf(err, "read %s", path)
			}
			srcs[i] = vectorize.Source{Name: path, Data: data}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return srcs, nil
}

func outputPath(dir, name, suffix string) string {
	base := filepath.Base(name)

	return filepath.Join(dir, strings.TrimSuffix(base, filepath.Ext(base))+suffix)
}

func writeResult(dir string, src vectorize.Source, res model.Result) (string, error) {
	switch res.Kind {
	case model.ResultSuccess:
		path := outputPath(dir, src.Name, ".svg")
		if err := os.WriteFile(path, []byte(res.SVG), 0o644); err != nil {
			return "", errors.Wrapf(err, "write %s", path)
		}

		return path, nil
	case model.ResultFailure:
		return res.Err.Error(), nil
	default:
		return "", nil
	}
}

func writeBitmap(dir string, src vectorize.Source) error {
	buf, err := vectorize.Decode(src.Data)
	if err != nil {
		return err
	}

	c := classify.Classify(buf)
	path := outputPath(dir, src.Name, ".bitmap.png")

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create bitmap")
	}
	defer f.Close()

	if err := png.Encode(f, c.Bitmap); err != nil {
		return errors.Wrap(err, "encode bitmap")
	}

	return f.Close()
}

func renderStats(msr measure.Measure) string {
	metrics := msr.AllMetrics()
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	w := table.NewWriter()
	w.SetStyle(table.StyleLight)
	w.AppendHeader(table.Row{"Stage", "Runs", "Failures", "Average"})
	for _, name := range names {
		m := metrics[name]
		w.AppendRow(table.Row{name, m.Total(), m.Failures(), m.AVGDuration().String()})
	}

	outcomes := msr.Outcomes()
	w.AppendFooter(table.Row{
		"outcomes",
		fmt.Sprintf("success %d", outcomes[model.ResultSuccess]),
		fmt.Sprintf("failure %d", outcomes[model.ResultFailure]),
		fmt.Sprintf("cancelled %d", outcomes[model.ResultCancelled]),
	})

	return w.Render()
}
