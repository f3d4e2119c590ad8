package recorder

import (
	"database/sql"
	"fmt"
	"sync"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists run history to a SQLite database.
type SQLiteRecorder struct {
	db     *sql.DB
	logger *zap.Logger
	mu     sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs
// migrations.
func NewSQLiteRecorder(dbPath string, logger *zap.Logger) (*SQLiteRecorder, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, logger: logger}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Info("sqlite recorder opened",
		zap.String("op", "recorder.NewSQLiteRecorder"),
		zap.String("path", dbPath),
	)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS evaluations (
			id                  INTEGER PRIMARY KEY AUTOINCREMENT,
			ran_at              INTEGER NOT NULL,
			purchase_price      REAL,
			monthly_rent        REAL,
			term_years          INTEGER,
			decision            TEXT,
			result_value        REAL,
			total_purchase_cost REAL,
			total_rental_cost   REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_evaluations_ran_at ON evaluations(ran_at)`,

		`CREATE TABLE IF NOT EXISTS breakevens (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			ran_at       INTEGER NOT NULL,
			price        REAL,
			result_value REAL,
			status       TEXT,
			iterations   INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_breakevens_ran_at ON breakevens(ran_at)`,

		`CREATE TABLE IF NOT EXISTS sweeps (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			ran_at     INTEGER NOT NULL,
			mode       TEXT,
			cells      INTEGER,
			undefined  INTEGER,
			min_value  REAL,
			max_value  REAL,
			mean_value REAL,
			cancelled  INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sweeps_ran_at ON sweeps(ran_at)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordEvaluation(rec *EvaluationRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO evaluations
		(ran_at, purchase_price, monthly_rent, term_years, decision, result_value, total_purchase_cost, total_rental_cost)
		VALUES (?,?,?,?,?,?,?,?)`,
		rec.RanAt.Unix(), rec.PurchasePrice, rec.MonthlyRent, rec.TermYears,
		rec.Decision, rec.ResultValue, rec.TotalPurchaseCost, rec.TotalRentalCost,
	)
	return err
}

func (r *SQLiteRecorder) RecordBreakeven(rec *BreakevenRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO breakevens
		(ran_at, price, result_value, status, iterations)
		VALUES (?,?,?,?,?)`,
		rec.RanAt.Unix(), rec.Price, rec.ResultValue, rec.Status, rec.Iterations,
	)
	return err
}

func (r *SQLiteRecorder) RecordSweep(rec *SweepRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cancelled := 0
	if rec.Cancelled {
		cancelled = 1
	}
	_, err := r.db.Exec(`INSERT INTO sweeps
		(ran_at, mode, cells, undefined, min_value, max_value, mean_value, cancelled)
		VALUES (?,?,?,?,?,?,?,?)`,
		rec.RanAt.Unix(), rec.Mode, rec.Cells, rec.Undefined,
		rec.Min, rec.Max, rec.Mean, cancelled,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	r.logger.Debug("closing sqlite recorder",
		zap.String("op", "recorder.Close"),
	)
	return r.db.Close()
}
