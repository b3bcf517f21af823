package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/wippyai/wasm-sandbox/engine"
	"github.com/wippyai/wasm-sandbox/fixture"
	"github.com/wippyai/wasm-sandbox/internal/guests"
)

type statsOptions struct {
	fixture string
	wasmDir string
}

// caseResult is one row of the stats report.
type caseResult struct {
	name  string
	guest string
	value string
	err   error
}

func newStatsCmd(a *app) *cobra.Command {
	o := &statsOptions{}
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Run the statistics guests over a fixture file",
		Long: `Run every fixture case through the guest it is named after
(mean_int_works runs mean_int). Guests are built in unless --wasm-dir
holds a <guest>.wasm to use instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runStats(cmd, o)
		},
	}
	cmd.Flags().StringVarP(&o.fixture, "fixture", "f", "", "fixture JSON file")
	cmd.Flags().StringVar(&o.wasmDir, "wasm-dir", "", "directory of <guest>.wasm overrides")
	_ = cmd.MarkFlagRequired("fixture")
	return cmd
}

func (o *statsOptions) module(g guests.Guest) ([]byte, error) {
	if o.wasmDir != "" {
		path := filepath.Join(o.wasmDir, g.Name+".wasm")
		if data, err := os.ReadFile(path); err == nil {
			return data, nil
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}
	return g.Build(), nil
}

func (a *app) runStats(cmd *cobra.Command, o *statsOptions) error {
	set, err := fixture.Load(o.fixture)
	if err != nil {
		return err
	}

	names := set.Names()
	results := make([]caseResult, len(names))

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(a.cfg.Stats.Concurrency)
	for i, name := range names {
		g.Go(func() error {
			results[i] = a.runCase(ctx, set, name, o)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	failed := 0
	for _, r := range results {
		if r.err != nil {
			failed++
		}
	}
	a.log.Debug("stats finished", zap.Int("cases", len(results)), zap.Int("failed", failed))

	renderStats(cmd.OutOrStdout(), results)
	if failed > 0 {
		return fmt.Errorf("%d of %d cases failed", failed, len(results))
	}
	return nil
}

func (a *app) runCase(ctx context.Context, set fixture.Set, name string, o *statsOptions) caseResult {
	r := caseResult{name: name}
	g, ok := guests.ForCase(name)
	if !ok {
		r.err = fmt.Errorf("no guest for case")
		return r
	}
	r.guest = g.Name

	input, err := set.Encode(name, g.Floats)
	if err != nil {
		r.err = err
		return r
	}
	bin, err := o.module(g)
	if err != nil {
		r.err = err
		return r
	}

	ctx, cancel := a.callContext(ctx)
	defer cancel()
	res, err := a.engine.Execute(ctx, engine.Request{
		Module:  bin,
		Inputs:  [][]byte{input},
		Profile: g.Profile.WithEntry(a.cfg.Engine.Entry),
	})
	if err != nil {
		r.err = err
		return r
	}
	r.value = res.Scalar.String()
	return r
}

func renderStats(w io.Writer, results []caseResult) {
	rows := make([][]string, len(results))
	for i, r := range results {
		outcome := r.value
		if r.err != nil {
			outcome = "error: " + r.err.Error()
		}
		rows[i] = []string{r.name, r.guest, outcome}
	}

	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		t := table.New().
			Border(lipgloss.RoundedBorder()).
			BorderStyle(helpStyle).
			Headers("CASE", "GUEST", "RESULT").
			Rows(rows...).
			StyleFunc(func(row, col int) lipgloss.Style {
				switch {
				case row == table.HeaderRow:
					return titleStyle
				case col == 2 && results[row].err != nil:
					return errorStyle
				case col == 2:
					return resultStyle
				default:
					return lipgloss.NewStyle()
				}
			})
		fmt.Fprintln(w, t)
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CASE\tGUEST\tRESULT")
	for _, row := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", row[0], row[1], row[2])
	}
	_ = tw.Flush()
}
