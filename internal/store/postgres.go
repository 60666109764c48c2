package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/insider-sync/internal/db"
	"github.com/sells-group/insider-sync/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the most frequently used store operations.
var preparedStatements = map[string]string{
	"insert_run":   `INSERT INTO sync_runs (id, ticker, cik, index_url, status, started_at) VALUES ($1, $2, $3, $4, $5, $6)`,
	"complete_run": `UPDATE sync_runs SET status = $1, discovered = $2, kept = $3, finished_at = $4 WHERE id = $5`,
	"fail_run":     `UPDATE sync_runs SET status = $1, error = $2, finished_at = $3 WHERE id = $4`,
	"get_run":      `SELECT id, ticker, cik, index_url, status, discovered, kept, error, started_at, finished_at FROM sync_runs WHERE id = $1`,
	"clear_ticker": `DELETE FROM transactions WHERE stock_ticker = $1`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	// Apply pool sizing from config with sensible defaults.
	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	// Prepare frequently-used statements on each new connection.
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS sync_runs (
	id          TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	ticker      TEXT NOT NULL,
	cik         TEXT NOT NULL,
	index_url   TEXT NOT NULL,
	status      TEXT NOT NULL DEFAULT 'running',
	discovered  INTEGER NOT NULL DEFAULT 0,
	kept        INTEGER NOT NULL DEFAULT 0,
	error       TEXT,
	started_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	finished_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS transactions (
	id               TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	run_id           TEXT NOT NULL REFERENCES sync_runs(id),
	seq              INTEGER NOT NULL,
	date             DATE NOT NULL,
	stock_ticker     TEXT NOT NULL,
	price            DOUBLE PRECISION NOT NULL,
	insider_name     TEXT NOT NULL,
	relationship     TEXT NOT NULL,
	transaction_type TEXT NOT NULL,
	shares           DOUBLE PRECISION NOT NULL,
	value            DOUBLE PRECISION,
	shares_total     DOUBLE PRECISION,
	xml_link         TEXT NOT NULL,
	issuer_symbol    TEXT NOT NULL,
	insider_cik      TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sync_runs_status ON sync_runs(status);
CREATE INDEX IF NOT EXISTS idx_sync_runs_ticker ON sync_runs(ticker);
CREATE INDEX IF NOT EXISTS idx_transactions_ticker ON transactions(stock_ticker);
CREATE INDEX IF NOT EXISTS idx_transactions_type ON transactions(transaction_type);
CREATE INDEX IF NOT EXISTS idx_transactions_ticker_date ON transactions(stock_ticker, date DESC);
`

// transactionColumns is the COPY column order for bulk inserts.
var transactionColumns = []string{
	"id", "run_id", "seq", "date", "stock_ticker", "price", "insider_name",
	"relationship", "transaction_type", "shares", "value", "shares_total",
	"xml_link", "issuer_symbol", "insider_cik",
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) CreateRun(ctx context.Context, ticker, cik, indexURL string) (*model.SyncRun, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO sync_runs (id, ticker, cik, index_url, status, started_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		id, ticker, cik, indexURL, string(model.RunStatusRunning), now,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: insert run for %s", ticker)
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

func (s *PostgresStore) CompleteRun(ctx context.Context, runID string, discovered, kept int) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE sync_runs SET status = $1, discovered = $2, kept = $3, finished_at = $4 WHERE id = $5`,
		string(model.RunStatusComplete), discovered, kept, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: complete run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}

func (s *PostgresStore) FailRun(ctx context.Context, runID string, message string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE sync_runs SET status = $1, error = $2, finished_at = $3 WHERE id = $4`,
		string(model.RunStatusFailed), message, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: fail run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.SyncRun, error) {
	var r model.SyncRun
	var errMsg *string
	var finishedAt *time.Time

	err := s.pool.QueryRow(ctx,
		`SELECT id, ticker, cik, index_url, status, discovered, kept, error, started_at, finished_at FROM sync_runs WHERE id = $1`,
		runID,
	).Scan(&r.ID, &r.Ticker, &r.CIK, &r.IndexURL, &r.Status,
		&r.Discovered, &r.Kept, &errMsg, &r.StartedAt, &finishedAt)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get run %s", runID)
	}

	if errMsg != nil {
		r.Error = *errMsg
	}
	r.FinishedAt = finishedAt
	return &r, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.SyncRun, error) {
	query := `SELECT id, ticker, cik, index_url, status, discovered, kept, error, started_at, finished_at FROM sync_runs WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, argIdx)
		args = append(args, string(filter.Status))
		argIdx++
	}
	if filter.Ticker != "" {
		query += fmt.Sprintf(` AND ticker = $%d`, argIdx)
		args = append(args, filter.Ticker)
		argIdx++
	}
	query += ` ORDER BY started_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
		argIdx++
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.SyncRun
	for rows.Next() {
		var r model.SyncRun
		var errMsg *string
		var finishedAt *time.Time

		if err := rows.Scan(&r.ID, &r.Ticker, &r.CIK, &r.IndexURL, &r.Status,
			&r.Discovered, &r.Kept, &errMsg, &r.StartedAt, &finishedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		if errMsg != nil {
			r.Error = *errMsg
		}
		r.FinishedAt = finishedAt
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}

func (s *PostgresStore) SaveRows(ctx context.Context, runID, ticker string, rows []model.CleanRow) (int, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: begin save")
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM transactions WHERE stock_ticker = $1`, ticker); err != nil {
		return 0, eris.Wrapf(err, "postgres: clear rows for %s", ticker)
	}

	values := make([][]any, 0, len(rows))
	for i, r := range rows {
		values = append(values, []any{
			uuid.New().String(), runID, i, r.Date, r.StockTicker, r.Price,
			r.InsiderName, r.Relationship, r.TransactionType, r.Shares,
			r.Value, r.SharesTotal, r.XMLLink, r.IssuerSymbol, r.InsiderCIK,
		})
	}
	if _, err := db.CopyFrom(ctx, tx, "transactions", transactionColumns, values); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, eris.Wrap(err, "postgres: commit save")
	}
	return len(rows), nil
}

func (s *PostgresStore) ListRows(ctx context.Context, filter RowFilter) ([]model.CleanRow, error) {
	query := `SELECT date, stock_ticker, price, insider_name, relationship, transaction_type,
	                 shares, value, shares_total, xml_link, issuer_symbol, insider_cik
	          FROM transactions WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Ticker != "" {
		query += fmt.Sprintf(` AND stock_ticker = $%d`, argIdx)
		args = append(args, filter.Ticker)
		argIdx++
	}
	if filter.Type != "" {
		query += fmt.Sprintf(` AND transaction_type = $%d`, argIdx)
		args = append(args, filter.Type)
		argIdx++
	}
	query += ` ORDER BY date DESC, seq ASC`

	if filter.Limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d`, argIdx)
		args = append(args, filter.Limit)
		argIdx++
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list rows")
	}
	defer rows.Close()

	var out []model.CleanRow
	for rows.Next() {
		var r model.CleanRow
		if err := rows.Scan(&r.Date, &r.StockTicker, &r.Price, &r.InsiderName, &r.Relationship,
			&r.TransactionType, &r.Shares, &r.Value, &r.SharesTotal,
			&r.XMLLink, &r.IssuerSymbol, &r.InsiderCIK); err != nil {
			return nil, eris.Wrap(err, "postgres: scan transaction")
		}
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list rows iterate")
}
