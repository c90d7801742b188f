package main

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/screa/vanity-sampler/internal/config"
	"github.com/screa/vanity-sampler/internal/history"
	"github.com/screa/vanity-sampler/pkg/report"
)

func newHistoryCmd(cfg *config.Config, stdout io.Writer) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List archived run summaries, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.HistoryDB == "" {
				return errors.New("--history-db is required")
			}
			cmd.SilenceUsage = true

			store, err := history.Open(cfg.HistoryDB)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.List(limit)
			if err != nil {
				return err
			}
			return printRuns(stdout, runs)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list (0 for all)")
	return cmd
}

func printRuns(w io.Writer, runs []history.Run) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STARTED\tSCHEME\tSUFFIX\tSAMPLE\tGUESSES\tDISTINCT\tCHI-SQUARE\tDF\tP-VALUE")
	for _, r := range runs {
		chi, p := report.NotComputable, report.NotComputable
		if r.Report.StatisticOK {
			chi = fmt.Sprintf("%.4f", r.Report.ChiSquare)
		}
		if r.Report.PValueOK {
			p = fmt.Sprintf("%.4f", r.Report.PValue)
		}
		fmt.Fprintf(tw, "%s\t%s\t%q\t%d\t%d\t%d\t%s\t%d\t%s\n",
			r.StartedAt.Format(time.RFC3339), r.Scheme, r.Suffix, r.SampleSize,
			r.Guesses, r.Report.Distinct, chi, r.Report.DegreesOfFreedom, p)
	}
	return tw.Flush()
}
