package main

import (
	"encoding/json"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/enrich-cli/internal/enrich"
	"github.com/sells-group/enrich-cli/internal/journal"
	"github.com/sells-group/enrich-cli/internal/normalize"
	"github.com/sells-group/enrich-cli/internal/resolve"
	"github.com/sells-group/enrich-cli/internal/sink"
	"github.com/sells-group/enrich-cli/internal/source"
	"github.com/sells-group/enrich-cli/internal/tabular"
	"github.com/sells-group/enrich-cli/pkg/browser"
)

var (
	runInput  string
	runOutput string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Enrich every incomplete record in the dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if runInput != "" {
			cfg.Dataset.Path = runInput
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		output := runOutput
		if output == "" {
			output = cfg.Dataset.Path
		}

		profile, err := normalize.ProfileByName(cfg.Country)
		if err != nil {
			return err
		}

		ds, err := tabular.Load(cfg.Dataset.Path, cfg.Dataset.Mapping)
		if err != nil {
			return err
		}
		records := ds.Records()

		chainCfg, err := resolve.LoadChainConfig(cfg.Chain)
		if err != nil {
			return err
		}

		// A rendering session is only worth starting when the chain has a
		// serp entry.
		var renderer source.Renderer
		for _, e := range chainCfg.Chain {
			if e.Type == "serp" {
				var opts []browser.Option
				if !cfg.Browser.Headless {
					opts = append(opts, browser.WithHeadful())
				}
				if cfg.Browser.TimeoutSecs > 0 {
					opts = append(opts, browser.WithTimeout(time.Duration(cfg.Browser.TimeoutSecs)*time.Second))
				}
				session := browser.New(opts...)
				defer session.Close()
				renderer = session
				break
			}
		}

		backends, visit, err := resolve.BuildChain(chainCfg, renderer)
		if err != nil {
			return err
		}

		resolver := resolve.New(backends, profile,
			resolve.WithSiteVisit(visit),
			resolve.WithPacer(enrich.NewPacer(cfg.Delay.Interval(), cfg.Delay.Jitter())),
		)

		primary, err := sink.New(ds, output)
		if err != nil {
			return err
		}
		sinkOpts := []enrich.OrchestratorOption{}
		if cfg.Dataset.Fallback != "" {
			fallback, err := sink.New(ds, cfg.Dataset.Fallback)
			if err != nil {
				return eris.Wrap(err, "fallback sink")
			}
			sinkOpts = append(sinkOpts, enrich.WithFallbackSink(fallback))
		}

		j := journal.MustOpen(cfg.Journal.Path)
		if closer, ok := j.(*journal.SQLite); ok {
			defer closer.Close() //nolint:errcheck
		}
		sinkOpts = append(sinkOpts, enrich.WithJournal(j))

		zap.L().Info("pass starting",
			zap.String("input", cfg.Dataset.Path),
			zap.String("output", output),
			zap.Int("records", len(records)),
			zap.Int("backends", len(backends)),
		)

		o := enrich.NewOrchestrator(resolver, primary, sinkOpts...)
		summary, err := o.Run(ctx, records)
		if err != nil {
			return eris.Wrap(err, "enrichment pass")
		}

		zap.L().Info("pass complete",
			zap.Int("resolved", summary.Resolved),
			zap.Int("skipped", summary.Skipped),
			zap.Int("failed", summary.Failed),
			zap.Int("backend_calls", summary.BackendCalls),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	},
}

func init() {
	runCmd.Flags().StringVar(&runInput, "input", "", "input dataset path (overrides config)")
	runCmd.Flags().StringVar(&runOutput, "output", "", "output path (defaults to the input path)")
	rootCmd.AddCommand(runCmd)
}
