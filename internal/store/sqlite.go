package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/insider-sync/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS sync_runs (
	id          TEXT PRIMARY KEY,
	ticker      TEXT NOT NULL,
	cik         TEXT NOT NULL,
	index_url   TEXT NOT NULL,
	status      TEXT NOT NULL DEFAULT 'running',
	discovered  INTEGER NOT NULL DEFAULT 0,
	kept        INTEGER NOT NULL DEFAULT 0,
	error       TEXT,
	started_at  DATETIME NOT NULL DEFAULT (datetime('now')),
	finished_at DATETIME
);

CREATE TABLE IF NOT EXISTS transactions (
	id               TEXT PRIMARY KEY,
	run_id           TEXT NOT NULL REFERENCES sync_runs(id),
	seq              INTEGER NOT NULL,
	date             DATETIME NOT NULL,
	stock_ticker     TEXT NOT NULL,
	price            REAL NOT NULL,
	insider_name     TEXT NOT NULL,
	relationship     TEXT NOT NULL,
	transaction_type TEXT NOT NULL,
	shares           REAL NOT NULL,
	value            REAL,
	shares_total     REAL,
	xml_link         TEXT NOT NULL,
	issuer_symbol    TEXT NOT NULL,
	insider_cik      TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sync_runs_status ON sync_runs(status);
CREATE INDEX IF NOT EXISTS idx_sync_runs_ticker ON sync_runs(ticker);
CREATE INDEX IF NOT EXISTS idx_transactions_ticker ON transactions(stock_ticker);
CREATE INDEX IF NOT EXISTS idx_transactions_type ON transactions(transaction_type);
CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(date);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.db.PingContext(ctx), "sqlite: ping")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateRun(ctx context.Context, ticker, cik, indexURL string) (*model.SyncRun, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sync_runs (id, ticker, cik, index_url, status, started_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, ticker, cik, indexURL, string(model.RunStatusRunning), now,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: insert run for %s", ticker)
	}

	return &model.SyncRun{
		ID:        id,
		Ticker:    ticker,
		CIK:       cik,
		IndexURL:  indexURL,
		Status:    model.RunStatusRunning,
		StartedAt: now,
	}, nil
}

func (s *SQLiteStore) CompleteRun(ctx context.Context, runID string, discovered, kept int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sync_runs SET status = ?, discovered = ?, kept = ?, finished_at = ? WHERE id = ?`,
		string(model.RunStatusComplete), discovered, kept, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: complete run %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) FailRun(ctx context.Context, runID string, message string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sync_runs SET status = ?, error = ?, finished_at = ? WHERE id = ?`,
		string(model.RunStatusFailed), message, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: fail run %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.SyncRun, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, ticker, cik, index_url, status, discovered, kept, error, started_at, finished_at
		 FROM sync_runs WHERE id = ?`,
		runID,
	)
	return scanRun(row)
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.SyncRun, error) {
	query := `SELECT id, ticker, cik, index_url, status, discovered, kept, error, started_at, finished_at
	          FROM sync_runs WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.Ticker != "" {
		query += ` AND ticker = ?`
		args = append(args, filter.Ticker)
	}
	query += ` ORDER BY started_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []model.SyncRun
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

func (s *SQLiteStore) SaveRows(ctx context.Context, runID, ticker string, rows []model.CleanRow) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin save")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE stock_ticker = ?`, ticker); err != nil {
		return 0, eris.Wrapf(err, "sqlite: clear rows for %s", ticker)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO transactions
		 (id, run_id, seq, date, stock_ticker, price, insider_name, relationship,
		  transaction_type, shares, value, shares_total, xml_link, issuer_symbol, insider_cik)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare insert")
	}
	defer stmt.Close()

	for i, r := range rows {
		_, err := stmt.ExecContext(ctx,
			uuid.New().String(), runID, i, r.Date, r.StockTicker, r.Price,
			r.InsiderName, r.Relationship, r.TransactionType, r.Shares,
			r.Value, r.SharesTotal, r.XMLLink, r.IssuerSymbol, r.InsiderCIK,
		)
		if err != nil {
			return 0, eris.Wrapf(err, "sqlite: insert row for %s", ticker)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit save")
	}
	return len(rows), nil
}

func (s *SQLiteStore) ListRows(ctx context.Context, filter RowFilter) ([]model.CleanRow, error) {
	query := `SELECT date, stock_ticker, price, insider_name, relationship, transaction_type,
	                 shares, value, shares_total, xml_link, issuer_symbol, insider_cik
	          FROM transactions WHERE 1=1`
	var args []any

	if filter.Ticker != "" {
		query += ` AND stock_ticker = ?`
		args = append(args, filter.Ticker)
	}
	if filter.Type != "" {
		query += ` AND transaction_type = ?`
		args = append(args, filter.Type)
	}
	query += ` ORDER BY date DESC, seq ASC`

	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list rows")
	}
	defer rows.Close()

	var out []model.CleanRow
	for rows.Next() {
		r, err := scanCleanRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list rows iterate")
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRun(row scannable) (*model.SyncRun, error) {
	var r model.SyncRun
	var errMsg sql.NullString
	var finishedAt sql.NullTime

	err := row.Scan(&r.ID, &r.Ticker, &r.CIK, &r.IndexURL, &r.Status,
		&r.Discovered, &r.Kept, &errMsg, &r.StartedAt, &finishedAt)
	if err == sql.ErrNoRows {
		return nil, eris.New("run not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan run")
	}

	if errMsg.Valid {
		r.Error = errMsg.String
	}
	if finishedAt.Valid {
		t := finishedAt.Time
		r.FinishedAt = &t
	}
	return &r, nil
}

func scanCleanRow(row scannable) (*model.CleanRow, error) {
	var r model.CleanRow
	var value, sharesTotal sql.NullFloat64

	err := row.Scan(&r.Date, &r.StockTicker, &r.Price, &r.InsiderName, &r.Relationship,
		&r.TransactionType, &r.Shares, &value, &sharesTotal,
		&r.XMLLink, &r.IssuerSymbol, &r.InsiderCIK)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan transaction")
	}

	if value.Valid {
		v := value.Float64
		r.Value = &v
	}
	if sharesTotal.Valid {
		v := sharesTotal.Float64
		r.SharesTotal = &v
	}
	return &r, nil
}
