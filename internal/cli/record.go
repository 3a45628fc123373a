package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lucasnoah/deliverynote/internal/history"
	"github.com/lucasnoah/deliverynote/internal/kind"
	"github.com/lucasnoah/deliverynote/internal/results"
)

var (
	recordName string
	recordLock bool
)

var recordCmd = &cobra.Command{
	Use:   "record <kind> <test-case-id> <outcome>",
	Short: "Upsert one outcome into a result store",
	Long: `Record the outcome of a single scenario, as a browser-driven script does
after each run. Any earlier record for the same test case id in that store is
replaced; every other record is kept.

kind is one of auto (unit tests), selenium, axe. outcome is normally success
or failure; any other value is kept verbatim and reported as a failure.

Concurrent record commands on the same store can lose an update. Pass --lock
to serialize writers that all opt in.`,
	Example: `  deliverynote record selenium TC016 success --name "test_crud_flow"
  deliverynote record auto TC004 failure --lock`,
	Args: usageArgs(cobra.ExactArgs(3)),
	RunE: func(cmd *cobra.Command, args []string) error {
		k, err := kind.Parse(args[0])
		if err != nil {
			return usageError(err)
		}
		if !k.Automated() {
			return usageError(fmt.Errorf("%s tests have no result store", k))
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store := openStore(cfg)

		rec := results.Record{
			TestCaseID: args[1],
			Outcome:    args[2],
			Name:       recordName,
			RecordedAt: now().UTC().Format(time.RFC3339),
		}
		write := func() error { return store.WriteMerge(k, rec) }
		if recordLock {
			err = store.WithLock(cmd.Context(), k, write)
		} else {
			err = write()
		}
		if err != nil {
			return err
		}

		path, _ := store.Path(k)
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s -> %s\n", rec.TestCaseID, rec.Outcome, path)
		logStoreWrite(cfg, k, history.ModeMerge, 1, "record")
		return nil
	},
}

func init() {
	recordCmd.Flags().StringVar(&recordName, "name", "", "descriptive scenario name stored with the result")
	recordCmd.Flags().BoolVar(&recordLock, "lock", false, "hold an advisory lock on the store while writing")
}
