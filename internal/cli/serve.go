package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/lucasnoah/deliverynote/internal/reconcile"
	"github.com/lucasnoah/deliverynote/internal/web"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local web UI",
	Long: `Start a read-only browser UI showing the delivery note computed live from
the current test case list and result stores. The page reloads itself when a
store or the test case list changes. Past runs are listed under /runs.`,
	Args: usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		addr := serveAddr
		if addr == "" {
			addr = cfg.Serve.Addr
		}

		db, err := openHistory(cfg)
		if err != nil {
			slog.Warn("history unavailable", "error", err)
		}
		if db != nil {
			defer db.Close()
		}

		store := openStore(cfg)
		srv := web.NewServer(web.Options{
			Addr:  addr,
			Title: cfg.Output.Title,
			Report: func() (reconcile.Report, error) {
				return buildReport(cfg.Manifest, store)
			},
			History:    db,
			WatchPaths: append([]string{cfg.Manifest}, storePaths(store)...),
			Logger:     slog.Default(),
		})
		return srv.Start(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "address to listen on (default from config: 127.0.0.1:8087)")
}
