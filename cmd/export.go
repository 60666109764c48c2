package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/insider-sync/internal/export"
	"github.com/sells-group/insider-sync/internal/store"
)

var (
	exportTicker string
	exportType   string
	exportFormat string
	exportOut    string
	exportLimit  int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored transactions to CSV or XLSX",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("export"); err != nil {
			return err
		}
		if exportFormat != "csv" && exportFormat != "xlsx" {
			return eris.Errorf("unknown export format: %s", exportFormat)
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		rows, err := st.ListRows(ctx, store.RowFilter{
			Ticker: exportTicker,
			Type:   exportType,
			Limit:  exportLimit,
		})
		if err != nil {
			return err
		}

		out := exportOut
		if out == "" {
			out = "insider_transactions." + exportFormat
		}

		switch exportFormat {
		case "xlsx":
			if out == "-" {
				return eris.New("xlsx export cannot write to stdout")
			}
			if err := export.WriteXLSX(out, rows); err != nil {
				return err
			}
		default:
			if out == "-" {
				return export.WriteCSV(os.Stdout, rows)
			}
			f, err := os.Create(out)
			if err != nil {
				return eris.Wrapf(err, "create %s", out)
			}
			defer f.Close() //nolint:errcheck
			if err := export.WriteCSV(f, rows); err != nil {
				return err
			}
		}

		zap.L().Info("export written",
			zap.String("path", out),
			zap.String("format", exportFormat),
			zap.Int("rows", len(rows)),
		)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportTicker, "ticker", "", "only export rows for this ticker")
	exportCmd.Flags().StringVar(&exportType, "type", "", "only export rows with this transaction type")
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "output format: csv or xlsx")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output path (\"-\" writes CSV to stdout)")
	exportCmd.Flags().IntVar(&exportLimit, "limit", 0, "cap the number of exported rows (0 = all)")
	rootCmd.AddCommand(exportCmd)
}
