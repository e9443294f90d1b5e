package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"quantlab/backtest"
)

// SQLiteRecorder 把回测运行落到SQLite
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder 打开（或创建）数据库并执行建表
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL模式，写入时不阻塞外部工具读取
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id               TEXT PRIMARY KEY,
			created_at       INTEGER NOT NULL,
			symbol           TEXT NOT NULL,
			strategy         TEXT NOT NULL,
			initial_cash     REAL,
			injected         REAL,
			final_equity     REAL,
			total_return_pct REAL,
			cagr_pct         REAL,
			max_drawdown_pct REAL,
			total_trades     INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at)`,

		`CREATE TABLE IF NOT EXISTS trades (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id     TEXT NOT NULL,
			trade_date TEXT NOT NULL,
			action     TEXT NOT NULL,
			price      REAL,
			shares     REAL,
			cash_delta REAL,
			reason     TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_trades_run ON trades(run_id)`,

		`CREATE TABLE IF NOT EXISTS equity_points (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id         TEXT NOT NULL,
			point_date     TEXT NOT NULL,
			equity         REAL,
			cash           REAL,
			stock_value    REAL,
			drawdown_pct   REAL,
			allocation_pct REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_equity_run ON equity_points(run_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec migration: %w", err)
		}
	}
	return nil
}

// RecordRun 在一个事务里写入汇总、成交与权益曲线
func (r *SQLiteRecorder) RecordRun(result backtest.Result) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := uuid.NewString()

	tx, err := r.db.Begin()
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO runs (id, created_at, symbol, strategy, initial_cash, injected,
			final_equity, total_return_pct, cagr_pct, max_drawdown_pct, total_trades)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, time.Now().Unix(), result.Symbol, result.Strategy,
		result.InitialCash, result.Injected, result.FinalEquity,
		result.TotalReturnPct, result.CAGRPct, result.MaxDDPct, result.TotalTrades,
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	tradeStmt, err := tx.Prepare(
		`INSERT INTO trades (run_id, trade_date, action, price, shares, cash_delta, reason)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("prepare trades: %w", err)
	}
	defer tradeStmt.Close()
	for _, t := range result.Trades {
		if _, err := tradeStmt.Exec(id, t.Time, string(t.Action), t.Price, t.Shares, t.CashDelta, t.Reason); err != nil {
			return "", fmt.Errorf("insert trade: %w", err)
		}
	}

	eqStmt, err := tx.Prepare(
		`INSERT INTO equity_points (run_id, point_date, equity, cash, stock_value, drawdown_pct, allocation_pct)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("prepare equity: %w", err)
	}
	defer eqStmt.Close()
	for _, p := range result.EquityCurve {
		if _, err := eqStmt.Exec(id, p.Time, p.Equity, p.Cash, p.StockValue, p.DrawdownPct, p.AllocationPct); err != nil {
			return "", fmt.Errorf("insert equity point: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}

	log.Printf("[INFO] 回测落库: run=%s %s/%s 成交%d笔", id, result.Symbol, result.Strategy, result.TotalTrades)
	return id, nil
}

// ListRuns 按时间倒序读取最近的运行
func (r *SQLiteRecorder) ListRuns(limit int) ([]RunSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Query(
		`SELECT id, created_at, symbol, strategy, initial_cash, final_equity,
			total_return_pct, max_drawdown_pct, total_trades
		 FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var s RunSummary
		var createdAt int64
		if err := rows.Scan(&s.ID, &createdAt, &s.Symbol, &s.Strategy, &s.InitialCash,
			&s.FinalEquity, &s.TotalReturnPct, &s.MaxDDPct, &s.TotalTrades); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		s.CreatedAt = time.Unix(createdAt, 0).Format("2006-01-02 15:04:05")
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}
