package main

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sells-group/kobo-sync/internal/config"
	"github.com/sells-group/kobo-sync/internal/fetcher"
	"github.com/sells-group/kobo-sync/internal/runner"
)

type syncOptions struct {
	url  string
	file string
	mode string
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch the export and replace the target table",
	RunE: func(cmd *cobra.Command, _ []string) error {
		opts := syncOptions{}
		opts.url, _ = cmd.Flags().GetString("url")
		opts.file, _ = cmd.Flags().GetString("file")
		opts.mode, _ = cmd.Flags().GetString("mode")
		return runSync(cmd, opts)
	},
}

// newRunner builds a runner for the configured export, or for a local file
// when one is given.
func newRunner(c *config.Config, url, file string, opts ...runner.Option) *runner.Runner {
	if url != "" {
		c.Kobo.URL = url
	}

	var f fetcher.Fetcher = fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent: c.Kobo.UserAgent,
		Timeout:   time.Duration(c.Kobo.TimeoutSecs) * time.Second,
		Username:  c.Kobo.Username,
		Password:  c.Kobo.Password,
	})
	if file != "" {
		f = fetcher.FileFetcher{}
		opts = append(opts, runner.WithSource(file))
	}

	return runner.New(c, f, runner.PostgresConnector(c.Postgres), opts...)
}

func runSync(cmd *cobra.Command, opts syncOptions) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if opts.mode != "" {
		cfg.Load.Mode = opts.mode
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	r := newRunner(cfg, opts.url, opts.file, runner.WithOutput(cmd.OutOrStdout()))
	_, err := r.Run(ctx)
	return err
}

func init() {
	syncCmd.Flags().String("url", "", "export URL (overrides kobo.url)")
	syncCmd.Flags().String("file", "", "read a local CSV export instead of fetching")
	syncCmd.Flags().String("mode", "", "load mode: insert or copy (overrides load.mode)")
	rootCmd.AddCommand(syncCmd)
}
