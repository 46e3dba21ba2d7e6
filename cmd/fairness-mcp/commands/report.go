package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"fairness-mcp/internal/analyzer"
	"fairness-mcp/internal/snapshot"
	"fairness-mcp/internal/visuals"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	reportExcludeInactive bool
	reportCharts          bool
)

type fileReport struct {
	Path    string             `json:"path"`
	Results []*analyzer.Result `json:"results"`
}

var reportCmd = &cobra.Command{
	Use:   "report <snapshot.json> [more.json...]",
	Short: "Compute fairness reports for snapshot files and print them as JSON",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newAnalyzer()
		if err != nil {
			return err
		}

		var override *bool
		if cmd.Flags().Changed("exclude-inactive") {
			override = &reportExcludeInactive
		}

		files := make([]*snapshot.File, len(args))
		g := new(errgroup.Group)
		for i, path := range args {
			g.Go(func() error {
				f, err := snapshot.ReadFile(path)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				files[i] = f
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		// Oldest period first, so each report sees only the history recorded up to it.
		order, err := byReferenceTime(args, files)
		if err != nil {
			return err
		}
		reports := make([]fileReport, len(args))
		for _, i := range order {
			results, err := a.AnalyzeSnapshot(cmd.Context(), files[i], override)
			if err != nil {
				return fmt.Errorf("%s: %w", args[i], err)
			}
			reports[i] = fileReport{Path: args[i], Results: results}
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(reports); err != nil {
			return err
		}

		if reportCharts {
			for _, fr := range reports {
				for _, res := range fr.Results {
					for _, chart := range []string{
						visuals.GenerateDistributionChart(res.Report),
						visuals.GenerateDeviationChart(res.Report.TopDeviations),
					} {
						if chart != "" {
							fmt.Fprintln(os.Stdout, chart)
						}
					}
				}
			}
		}
		return nil
	},
}

func byReferenceTime(paths []string, files []*snapshot.File) ([]int, error) {
	times := make([]time.Time, len(files))
	for i, f := range files {
		t, err := f.ReferenceTime()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", paths[i], err)
		}
		times[i] = t
	}
	order := make([]int, len(files))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(x, y int) bool {
		return times[order[x]].Before(times[order[y]])
	})
	return order, nil
}

func init() {
	reportCmd.Flags().BoolVar(&reportExcludeInactive, "exclude-inactive", false, "override the snapshot's 90-day inactivity flag")
	reportCmd.Flags().BoolVar(&reportCharts, "charts", false, "append mermaid charts after the JSON output")
}
