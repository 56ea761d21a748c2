package main

import (
	"encoding/json"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sells-group/enrich-cli/internal/model"
	"github.com/sells-group/enrich-cli/internal/resolve"
	"github.com/sells-group/enrich-cli/internal/source"
	"github.com/sells-group/enrich-cli/pkg/browser"
)

var (
	probeQuery    string
	probeLocation string
)

// probeResult groups the raw candidates one backend returned for the query.
type probeResult struct {
	Source     string               `json:"source"`
	Candidates []model.RawCandidate `json:"candidates"`
}

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Run one query through every chain source and dump raw candidates",
	Long:  "Debug helper: sends the query to each configured source in chain order without normalization or voting, so source output can be inspected directly.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		chainCfg, err := resolve.LoadChainConfig(cfg.Chain)
		if err != nil {
			return err
		}

		var renderer source.Renderer
		for _, e := range chainCfg.Chain {
			if e.Type == "serp" {
				session := browser.New(browser.WithTimeout(time.Duration(cfg.Browser.TimeoutSecs) * time.Second))
				defer session.Close()
				renderer = session
				break
			}
		}

		backends, _, err := resolve.BuildChain(chainCfg, renderer)
		if err != nil {
			return err
		}

		results := make([]probeResult, 0, len(backends))
		for _, b := range backends {
			results = append(results, probeResult{
				Source:     b.Name(),
				Candidates: b.Search(ctx, probeQuery, probeLocation),
			})
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	},
}

func init() {
	probeCmd.Flags().StringVar(&probeQuery, "query", "", "query string (required)")
	probeCmd.Flags().StringVar(&probeLocation, "location", "", "location hint")
	_ = probeCmd.MarkFlagRequired("query")
	rootCmd.AddCommand(probeCmd)
}
