package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lucasnoah/deliverynote/internal/history"
	"github.com/lucasnoah/deliverynote/internal/reconcile"
	"github.com/lucasnoah/deliverynote/internal/render"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past reconciliation runs",
	Args:  usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHistory(func(db *history.DB) error {
			runs, err := db.ListRuns(historyLimit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded.")
				return nil
			}
			for _, r := range runs {
				s := r.Stats
				fmt.Fprintf(out, "%s  %s  total %d  passed %d (%s%%)  failed %d  not found %d  manual %d\n",
					r.ID, r.CreatedAt.Format(render.TimeLayout), s.Total,
					s.Passed, reconcile.FormatPct(s.PassedPct()), s.Failed, s.NotFound, s.Manual)
			}
			return nil
		})
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Print the report of a past run",
	Args:  usageArgs(cobra.ExactArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHistory(func(db *history.DB) error {
			run, err := db.GetRun(args[0])
			if err != nil {
				return err
			}
			if run == nil {
				return fmt.Errorf("run %s not found", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Run %s (%s)\n\n", run.ID, run.CreatedAt.Format(render.TimeLayout))
			fmt.Fprint(cmd.OutOrStdout(), render.Text(run.Report()))
			return nil
		})
	},
}

var historyWritesCmd = &cobra.Command{
	Use:   "writes",
	Short: "List recent result store writes",
	Args:  usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHistory(func(db *history.DB) error {
			writes, err := db.ListStoreWrites(historyLimit)
			if err != nil {
				return err
			}
			for _, w := range writes {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %-14s %-8s %4d  %s\n",
					w.CreatedAt.Format(render.TimeLayout), w.Kind, w.Mode, w.Records, w.Source)
			}
			return nil
		})
	},
}

func withHistory(fn func(db *history.DB) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openHistory(cfg)
	if err != nil {
		return err
	}
	if db == nil {
		return errors.New("history is turned off (history_db: off)")
	}
	defer db.Close()
	return fn(db)
}

func init() {
	historyCmd.PersistentFlags().IntVarP(&historyLimit, "limit", "n", 20, "number of entries to show")
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyWritesCmd)
}
