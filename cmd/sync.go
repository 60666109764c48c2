package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/insider-sync/internal/config"
	"github.com/sells-group/insider-sync/internal/dataset"
	"github.com/sells-group/insider-sync/internal/edgar"
	"github.com/sells-group/insider-sync/internal/export"
	"github.com/sells-group/insider-sync/internal/fetcher"
	"github.com/sells-group/insider-sync/internal/model"
	"github.com/sells-group/insider-sync/internal/store"
	"github.com/sells-group/insider-sync/internal/watchlist"
)

var (
	syncWatchlist string
	syncCSVDir    string
)

var syncCmd = &cobra.Command{
	Use:   "sync [tickers...]",
	Short: "Sync insider transactions for the given tickers",
	Long:  "Resolves each ticker to its SEC CIK, walks the EDGAR Form 4 filing index, extracts and cleans the reported transactions, and replaces the ticker's stored dataset.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("sync"); err != nil {
			return err
		}

		tickers, err := gatherTickers(args, syncWatchlist)
		if err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		client := newEdgarClient(cfg.Edgar)

		var failed []string
		for _, ticker := range tickers {
			discovered, kept, err := syncTicker(ctx, client, st, ticker, syncCSVDir)
			if err != nil {
				zap.L().Error("ticker sync failed",
					zap.String("ticker", ticker),
					zap.Error(err),
				)
				failed = append(failed, ticker)
				continue
			}
			zap.L().Info("ticker sync complete",
				zap.String("ticker", ticker),
				zap.Int("discovered", discovered),
				zap.Int("kept", kept),
			)
		}

		if len(failed) == len(tickers) {
			return eris.Errorf("sync: all tickers failed: %s", strings.Join(failed, ", "))
		}
		if len(failed) > 0 {
			zap.L().Warn("sync finished with failures", zap.Strings("tickers", failed))
		}
		return nil
	},
}

// gatherTickers merges command-line tickers with the optional watchlist
// file, upper-casing and de-duplicating while preserving order.
func gatherTickers(args []string, watchlistPath string) ([]string, error) {
	var tickers []string
	seen := map[string]bool{}
	add := func(t string) {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t == "" || seen[t] {
			return
		}
		seen[t] = true
		tickers = append(tickers, t)
	}

	for _, a := range args {
		add(a)
	}
	if watchlistPath != "" {
		fromFile, err := watchlist.Load(watchlistPath)
		if err != nil {
			return nil, err
		}
		for _, t := range fromFile {
			add(t)
		}
	}
	if len(tickers) == 0 {
		return nil, eris.New("sync: no tickers given; pass tickers or --watchlist")
	}
	return tickers, nil
}

func newEdgarClient(ec config.EdgarConfig) *edgar.Client {
	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:    ec.UserAgent,
		Timeout:      time.Duration(ec.TimeoutSecs) * time.Second,
		RateLimiters: fetcher.DefaultRateLimiters(),
	})
	return edgar.New(f, edgar.Config{
		BaseURL:          ec.BaseURL,
		AttachmentSuffix: ec.AttachmentSuffix,
		FilingType:       ec.FilingType,
		PageSize:         ec.PageSize,
		RowDelay:         time.Duration(ec.RowDelayMS) * time.Millisecond,
	})
}

// syncTicker runs the full pipeline for one ticker and records the run.
func syncTicker(ctx context.Context, client *edgar.Client, st store.Store, ticker, csvDir string) (discovered, kept int, err error) {
	cik, err := client.ResolveCIK(ctx, ticker)
	if err != nil {
		return 0, 0, err
	}
	indexURL := client.IndexURL(cik)

	run, err := st.CreateRun(ctx, ticker, cik, indexURL)
	if err != nil {
		return 0, 0, err
	}

	filings, err := client.ScrapeFilings(ctx, indexURL)
	if err != nil {
		return 0, 0, failRun(ctx, st, run.ID, err)
	}

	raw := dataset.Flatten(filings, ticker)
	clean := dataset.Clean(raw)

	kept, err = st.SaveRows(ctx, run.ID, ticker, clean)
	if err != nil {
		return 0, 0, failRun(ctx, st, run.ID, err)
	}

	if csvDir != "" {
		if err := writeTickerCSV(csvDir, ticker, clean); err != nil {
			return 0, 0, failRun(ctx, st, run.ID, err)
		}
	}

	if err := st.CompleteRun(ctx, run.ID, len(raw), kept); err != nil {
		return 0, 0, err
	}
	return len(raw), kept, nil
}

// failRun marks the run failed and hands back the original error.
func failRun(ctx context.Context, st store.Store, runID string, cause error) error {
	if err := st.FailRun(ctx, runID, cause.Error()); err != nil {
		zap.L().Warn("could not mark run failed",
			zap.String("run_id", runID),
			zap.Error(err),
		)
	}
	return cause
}

func writeTickerCSV(dir, ticker string, rows []model.CleanRow) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "create csv dir %s", dir)
	}
	path := filepath.Join(dir, ticker+".csv")
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "create %s", path)
	}
	defer f.Close() //nolint:errcheck
	return export.WriteCSV(f, rows)
}

func init() {
	syncCmd.Flags().StringVar(&syncWatchlist, "watchlist", "", "YAML watchlist file of tickers to sync")
	syncCmd.Flags().StringVar(&syncCSVDir, "csv", "", "also write a <ticker>.csv per ticker into this directory")
	rootCmd.AddCommand(syncCmd)
}
