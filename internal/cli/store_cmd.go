package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lucasnoah/deliverynote/internal/history"
	"github.com/lucasnoah/deliverynote/internal/kind"
	"github.com/lucasnoah/deliverynote/internal/results"
)

var storeJSON bool

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Inspect or reset result stores",
}

func storeKind(arg string) (kind.Kind, error) {
	k, err := kind.Parse(arg)
	if err != nil {
		return k, usageError(err)
	}
	if !k.Automated() {
		return k, usageError(fmt.Errorf("%s tests have no result store", k))
	}
	return k, nil
}

var storeShowCmd = &cobra.Command{
	Use:   "show <kind>",
	Short: "Print the records of a result store",
	Args:  usageArgs(cobra.ExactArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		k, err := storeKind(args[0])
		if err != nil {
			return err
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store := openStore(cfg)
		recs, err := store.Records(k)
		if err != nil {
			return err
		}

		if storeJSON {
			if recs == nil {
				recs = []results.Record{}
			}
			data, err := json.MarshalIndent(recs, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		}

		path, _ := store.Path(k)
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s (%d records)\n", path, len(recs))
		for _, r := range recs {
			id := r.TestCaseID
			if id == "" {
				id = "-"
			}
			outcome := r.Outcome
			if !r.HasOutcome() {
				outcome = "null"
			}
			name := r.Name
			if name == "" {
				name = r.TestName
			}
			fmt.Fprintf(out, "%-8s %-10s %s\n", id, outcome, name)
		}
		return nil
	},
}

var storeClearCmd = &cobra.Command{
	Use:   "clear <kind>",
	Short: "Replace a result store with an empty one",
	Args:  usageArgs(cobra.ExactArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		k, err := storeKind(args[0])
		if err != nil {
			return err
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store := openStore(cfg)
		if err := store.WriteReplace(k, nil); err != nil {
			return err
		}
		logStoreWrite(cfg, k, history.ModeReplace, 0, "store clear")
		path, _ := store.Path(k)
		fmt.Fprintf(cmd.OutOrStdout(), "cleared %s\n", path)
		return nil
	},
}

func init() {
	storeShowCmd.Flags().BoolVar(&storeJSON, "json", false, "print the raw records as JSON")
	storeCmd.AddCommand(storeShowCmd)
	storeCmd.AddCommand(storeClearCmd)
}
