package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lucasnoah/deliverynote/internal/kind"
	"github.com/lucasnoah/deliverynote/internal/manifest"
)

var manifestPath string

var manifestCmd = &cobra.Command{
	Use:   "manifest",
	Short: "Inspect the test case list",
}

func loadManifest() ([]manifest.TestCase, error) {
	path := manifestPath
	if path == "" {
		cfg, err := loadConfig()
		if err != nil {
			return nil, err
		}
		path = cfg.Manifest
	}
	return manifest.Load(path)
}

var manifestListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print every test case with its derived id and kind",
	Args:  usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		cases, err := loadManifest()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, tc := range cases {
			k := kind.Classify(tc.Label)
			fmt.Fprintf(out, "%-8s %-14s %s\n", tc.ID, kind.Display(k), tc.Title)
		}
		return nil
	},
}

var manifestCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Report entries without an id, duplicate ids and malformed ids",
	Args:  usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		cases, err := loadManifest()
		if err != nil {
			return err
		}
		problems := manifest.Validate(cases)
		if len(problems) == 0 {
			cmd.Printf("%d test cases, no problems.\n", len(cases))
			return nil
		}
		cmd.Println("Problems:")
		for _, p := range problems {
			cmd.Printf("  - %s\n", p)
		}
		return fmt.Errorf("test case list has %d problem(s)", len(problems))
	},
}

func init() {
	manifestCmd.PersistentFlags().StringVarP(&manifestPath, "manifest", "m", "", "test case list (default from config)")
	manifestCmd.AddCommand(manifestListCmd)
	manifestCmd.AddCommand(manifestCheckCmd)
}
