package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/banshee-data/aco.dashboard/internal/calc"
	"github.com/banshee-data/aco.dashboard/internal/dataset"
	"github.com/banshee-data/aco.dashboard/internal/drilldown"
	"github.com/banshee-data/aco.dashboard/internal/export"
	"github.com/banshee-data/aco.dashboard/internal/security"
	"github.com/banshee-data/aco.dashboard/internal/state"
)

const summaryTarget = "summary"

type exportOptions struct {
	year     int
	episode  string
	hospital string
	county   string
	elective string
	all      bool
	scenario int
	out      string
}

func newExportCmd(root *rootOptions) *cobra.Command {
	o := &exportOptions{}
	cmd := &cobra.Command{
		Use:   "export <table|summary>",
		Short: "Write a table as CSV or the executive summary as PDF",
		Long: fmt.Sprintf(`Write one of the dashboard tables as CSV, or the executive summary as PDF.

Tables: %s`, strings.Join(drilldown.TableNames, ", ")),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			catalog, err := dataset.Load()
			if err != nil {
				return fmt.Errorf("load dataset: %w", err)
			}
			if o.year == 0 {
				o.year = cfg.GetDefaultYear()
			}

			w, closeOut, err := openOutput(cmd.OutOrStdout(), o.out)
			if err != nil {
				return err
			}
			defer closeOut()

			if args[0] == summaryTarget {
				f := state.DefaultFilters(o.year)
				if o.scenario != 0 {
					f.Scenario = o.scenario
				}
				s, err := export.NewSummary(catalog, f, calc.ProjectionInput{},
					cfg.GetMonteCarloIterations(), cfg.GetMonteCarloSeed(), time.Now())
				if err != nil {
					return err
				}
				return export.WriteSummaryPDF(w, s)
			}

			table, err := export.BuildTable(catalog, args[0], export.Selection{
				Year:           o.year,
				Episode:        o.episode,
				Hospital:       o.hospital,
				County:         o.county,
				ElectiveFilter: o.elective,
				AllProviders:   o.all,
				TopN:           cfg.GetProviderTopN(),
			})
			if err != nil {
				return err
			}
			return export.WriteCSV(w, table)
		},
	}

	fl := cmd.Flags()
	fl.IntVar(&o.year, "year", 0, "performance year (default from config)")
	fl.StringVar(&o.episode, "episode", "", "episode id for the hospital table")
	fl.StringVar(&o.hospital, "hospital", "", "hospital name for the hospital table")
	fl.StringVar(&o.county, "county", "", "county FIPS for the county-providers table")
	fl.StringVar(&o.elective, "elective", state.ElectiveAll, "elective filter: all, elective or nonElective")
	fl.BoolVar(&o.all, "all", false, "list every county provider instead of the top ranks")
	fl.IntVar(&o.scenario, "scenario", 0, "Monte Carlo scenario for the summary")
	fl.StringVarP(&o.out, "out", "o", "-", "output file, - for stdout")
	return cmd
}

func openOutput(stdout io.Writer, path string) (io.Writer, func(), error) {
	if path == "" || path == "-" {
		return stdout, func() {}, nil
	}
	if err := security.ValidateExportPath(path); err != nil {
		return nil, nil, err
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create %s: %w", path, err)
	}
	return f, func() { f.Close() }, nil
}
