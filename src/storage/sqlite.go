package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"market-structure/src/logger"
	"market-structure/src/models"

	_ "modernc.org/sqlite"
)

// SQLite batch constants
const (
	sqliteMaxVars   = 32000
	paramsPerRow    = 8
	sqliteBatchSize = sqliteMaxVars / paramsPerRow // ~4000 rows
)

// -----------------------------------------------------------------------------

type AsyncSQLiteDB struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewAsyncSQLiteDB(cfg *models.MConfig, log *logger.Logger) (*AsyncSQLiteDB, error) {
	return &AsyncSQLiteDB{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) Initialize() error {
	dsn := d.Config.Storage.DBPath

	// Open DB
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		return err
	}

	d.DB = db

	// PRAGMA optimizations
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	return d.createTables()
}

// -----------------------------------------------------------------------------

// createTables is idempotent. The bars table doubles as a restart cache, so
// existing rows must survive process restarts.
func (d *AsyncSQLiteDB) createTables() error {
	// SQLite types: INTEGER for int64, REAL for float64, TEXT for string
	query := `
		CREATE TABLE IF NOT EXISTS bars (
			symbol TEXT,
			timestamp INTEGER,
			open REAL,
			high REAL,
			low REAL,
			close REAL,
			volume REAL,
			fetched_at INTEGER,
			PRIMARY KEY (symbol, timestamp)
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create bars: %w", err)
	}

	query = `
		CREATE TABLE IF NOT EXISTS structure_reports (
			symbol TEXT PRIMARY KEY,
			as_of INTEGER,
			bias TEXT,
			profile TEXT,
			report TEXT,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create structure_reports: %w", err)
	}

	return nil
}

// -----------------------------------------------------------------------------

// SaveBarsBulk upserts bars in multi-row INSERT batches, chunked so a batch
// never exceeds the SQLite bound-variable limit.
func (d *AsyncSQLiteDB) SaveBarsBulk(bars []models.MBar) error {
	if len(bars) == 0 {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for start := 0; start < len(bars); start += sqliteBatchSize {
		end := start + sqliteBatchSize
		if end > len(bars) {
			end = len(bars)
		}
		chunk := bars[start:end]

		query := `
			INSERT INTO bars (symbol, timestamp, open, high, low, close, volume, fetched_at)
			VALUES ` + strings.TrimSuffix(strings.Repeat("(?, ?, ?, ?, ?, ?, ?, ?),", len(chunk)), ",") + `
			ON CONFLICT (symbol, timestamp) DO UPDATE SET
				open = excluded.open,
				high = excluded.high,
				low = excluded.low,
				close = excluded.close,
				volume = excluded.volume,
				fetched_at = excluded.fetched_at
		`

		args := make([]interface{}, 0, len(chunk)*paramsPerRow)
		for _, b := range chunk {
			args = append(args, b.Symbol, b.Timestamp, b.Open, b.High, b.Low, b.Close, b.Volume, b.FetchedAt)
		}

		if _, err := tx.Exec(query, args...); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// -----------------------------------------------------------------------------

// LoadBars returns the cached series for a symbol in chronological order.
// Rows fetched before minFetchedAt are treated as stale and skipped.
func (d *AsyncSQLiteDB) LoadBars(symbol string, minFetchedAt int64) ([]models.MBar, error) {
	rows, err := d.DB.Query(`
		SELECT symbol, timestamp, open, high, low, close, volume, fetched_at
		FROM bars
		WHERE symbol = ? AND fetched_at >= ?
		ORDER BY timestamp ASC
	`, symbol, minFetchedAt)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bars []models.MBar
	for rows.Next() {
		var b models.MBar
		if err := rows.Scan(&b.Symbol, &b.Timestamp, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume, &b.FetchedAt); err != nil {
			return nil, err
		}
		bars = append(bars, b)
	}

	return bars, rows.Err()
}

// -----------------------------------------------------------------------------

// SaveReports upserts one row per symbol with the full report as JSON plus a
// few denormalized columns for ad-hoc queries.
func (d *AsyncSQLiteDB) SaveReports(reports map[string]models.MStructureReport) error {
	if len(reports) == 0 {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO structure_reports (symbol, as_of, bias, profile, report, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (symbol) DO UPDATE SET
			as_of = excluded.as_of,
			bias = excluded.bias,
			profile = excluded.profile,
			report = excluded.report,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for symbol, report := range reports {
		payload, err := json.Marshal(report)
		if err != nil {
			return fmt.Errorf("failed to marshal report for %s: %w", symbol, err)
		}

		var biasToken, profile string
		if report.Bias != nil {
			biasToken = report.Bias.Token()
		}
		if report.Profile != nil {
			profile = report.Profile.Profile
		}

		if _, err := stmt.Exec(symbol, report.AsOf, biasToken, profile, string(payload), time.Now().UTC()); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) CleanupOldData() error {
	retentionDays := d.Config.DataSource.DataRetentionDays
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays).Unix()

	d.Logger.Info("Cleaning up bars older than %d days (timestamp < %d)...", retentionDays, cutoff)

	if _, err := d.DB.Exec("DELETE FROM bars WHERE timestamp < ?", cutoff); err != nil {
		d.Logger.Error("Cleanup bars error: %v", err)
	}

	d.Logger.Info("Cleanup completed")
	return nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
