package main

import (
	"encoding/json"
	"io"
	"math"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/kobo-sync/internal/runner"
	"github.com/sells-group/kobo-sync/internal/survey"
)

// inspectDoc is what inspect prints.
type inspectDoc struct {
	RunID   string           `json:"run_id" yaml:"run_id"`
	Source  string           `json:"source" yaml:"source"`
	Report  *survey.Report   `json:"report" yaml:"report"`
	Columns []string         `json:"columns" yaml:"columns"`
	Rows    []map[string]any `json:"rows" yaml:"rows"`
}

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Fetch and normalize the export without loading it",
	Long:  "Runs the fetch and normalization steps and prints the normalization report and the cleaned rows. The database is never contacted.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		url, _ := cmd.Flags().GetString("url")
		file, _ := cmd.Flags().GetString("file")
		format, _ := cmd.Flags().GetString("format")
		limit, _ := cmd.Flags().GetInt("limit")

		r := newRunner(cfg, url, file, runner.WithOutput(cmd.ErrOrStderr()))
		res, err := r.Prepare(ctx)
		if err != nil {
			return err
		}

		doc := inspectDoc{
			RunID:   res.RunID,
			Source:  res.Source,
			Report:  res.Report,
			Columns: res.Frame.Columns,
			Rows:    displayRows(res.Frame, limit),
		}
		return writeInspect(cmd.OutOrStdout(), format, doc)
	},
}

// displayRows renders up to limit rows for printing. A limit <= 0 prints all.
// Dates print as YYYY-MM-DD and non-finite floats as strings, since JSON has
// no encoding for them.
func displayRows(f *survey.Frame, limit int) []map[string]any {
	records := f.Records()
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	for _, rec := range records {
		for k, v := range rec {
			switch x := v.(type) {
			case pgtype.Date:
				if x.Valid {
					rec[k] = survey.CellString(x)
				} else {
					rec[k] = nil
				}
			case float64:
				if math.IsInf(x, 0) || math.IsNaN(x) {
					rec[k] = strconv.FormatFloat(x, 'g', -1, 64)
				}
			}
		}
	}
	return records
}

func writeInspect(w io.Writer, format string, doc inspectDoc) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return eris.Wrap(err, "inspect: encode json")
		}
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return eris.Wrap(err, "inspect: encode yaml")
		}
		if err := enc.Close(); err != nil {
			return eris.Wrap(err, "inspect: encode yaml")
		}
	default:
		return eris.Errorf("inspect: unknown format %q (want json or yaml)", format)
	}
	return nil
}

func init() {
	inspectCmd.Flags().String("url", "", "export URL (overrides kobo.url)")
	inspectCmd.Flags().String("file", "", "read a local CSV export instead of fetching")
	inspectCmd.Flags().String("format", "json", "output format: json or yaml")
	inspectCmd.Flags().Int("limit", 20, "max rows to print (0 for all)")
	rootCmd.AddCommand(inspectCmd)
}
