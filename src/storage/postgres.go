package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"market-structure/src/logger"
	"market-structure/src/models"

	_ "github.com/lib/pq"
)

// -----------------------------------------------------------------------------

type PostgresDB struct {
	Config *models.MConfig
	DB     *sql.DB
	Schema string
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewPostgresDB(cfg *models.MConfig, log *logger.Logger) (*PostgresDB, error) {
	// Derive the schema name from the executable so several deployments can
	// share one database
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable name: %w", err)
	}
	name := filepath.Base(exe)
	name = strings.TrimSuffix(name, filepath.Ext(name))

	return &PostgresDB{
		Config: cfg,
		Schema: name,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) Initialize() error {
	dsn := d.Config.Storage.DBConnectionString
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		return err
	}

	d.DB = db

	// Create Schema
	if _, err := d.DB.Exec(fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS "%s"`, d.Schema)); err != nil {
		return fmt.Errorf("failed to create schema %s: %w", d.Schema, err)
	}

	if err := d.createTables(); err != nil {
		return err
	}

	// Record the configured symbols so operators can see what this instance
	// is tracking
	for _, srcCfg := range d.Config.DataSource.Sources {
		if err := d.RegisterSymbols(srcCfg.Name, srcCfg.Symbols); err != nil {
			d.Logger.Error("PostgresDB: Failed to register symbols for source %s: %v", srcCfg.Name, err)
		}
	}

	d.Logger.Info("PostgresDB initialized successfully (Schema: %s)", d.Schema)
	return nil
}

// -----------------------------------------------------------------------------

// createTables is idempotent so the bars table survives restarts and can be
// used to skip the initial backfill.
func (d *PostgresDB) createTables() error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS "%s"."bars" (
			symbol TEXT,
			timestamp BIGINT,
			open DOUBLE PRECISION,
			high DOUBLE PRECISION,
			low DOUBLE PRECISION,
			close DOUBLE PRECISION,
			volume DOUBLE PRECISION,
			fetched_at BIGINT,
			PRIMARY KEY (symbol, timestamp)
		);
	`, d.Schema)
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create bars: %w", err)
	}

	query = fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS "%s"."structure_reports" (
			symbol TEXT PRIMARY KEY,
			as_of BIGINT,
			bias TEXT,
			profile TEXT,
			report JSONB,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`, d.Schema)
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create structure_reports: %w", err)
	}

	query = fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS "%s"."symbols" (
			symbol TEXT PRIMARY KEY,
			source_name TEXT,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`, d.Schema)
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create symbols: %w", err)
	}

	return nil
}

// -----------------------------------------------------------------------------

// RegisterSymbols upserts the tracked symbols of one source into the symbols
// metadata table.
func (d *PostgresDB) RegisterSymbols(sourceName string, symbols []string) error {
	if len(symbols) == 0 {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := fmt.Sprintf(`
		INSERT INTO "%s"."symbols" (symbol, source_name, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (symbol) DO UPDATE SET
			source_name = EXCLUDED.source_name,
			updated_at = EXCLUDED.updated_at
	`, d.Schema)

	stmt, err := tx.Prepare(query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, s := range symbols {
		if _, err := stmt.Exec(s, sourceName, now); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) SaveBarsBulk(bars []models.MBar) error {
	if len(bars) == 0 {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := fmt.Sprintf(`
		INSERT INTO "%s"."bars" (symbol, timestamp, open, high, low, close, volume, fetched_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (symbol, timestamp) DO UPDATE SET
			open = EXCLUDED.open,
			high = EXCLUDED.high,
			low = EXCLUDED.low,
			close = EXCLUDED.close,
			volume = EXCLUDED.volume,
			fetched_at = EXCLUDED.fetched_at
	`, d.Schema)
	stmt, err := tx.Prepare(query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, b := range bars {
		_, err := stmt.Exec(b.Symbol, b.Timestamp, b.Open, b.High, b.Low, b.Close, b.Volume, b.FetchedAt)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// -----------------------------------------------------------------------------

// LoadBars returns the cached series for a symbol in chronological order,
// skipping rows fetched before minFetchedAt.
func (d *PostgresDB) LoadBars(symbol string, minFetchedAt int64) ([]models.MBar, error) {
	query := fmt.Sprintf(`
		SELECT symbol, timestamp, open, high, low, close, volume, fetched_at
		FROM "%s"."bars"
		WHERE symbol = $1 AND fetched_at >= $2
		ORDER BY timestamp ASC
	`, d.Schema)

	rows, err := d.DB.Query(query, symbol, minFetchedAt)
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

// SaveReports upserts one row per symbol, storing the full report as JSONB
// alongside denormalized bias and profile columns.
func (d *PostgresDB) SaveReports(reports map[string]models.MStructureReport) error {
	if len(reports) == 0 {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := fmt.Sprintf(`
		INSERT INTO "%s"."structure_reports" (symbol, as_of, bias, profile, report, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (symbol) DO UPDATE SET
			as_of = EXCLUDED.as_of,
			bias = EXCLUDED.bias,
			profile = EXCLUDED.profile,
			report = EXCLUDED.report,
			updated_at = EXCLUDED.updated_at
	`, d.Schema)

	stmt, err := tx.Prepare(query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().UTC()
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

		if _, err := stmt.Exec(symbol, report.AsOf, biasToken, profile, string(payload), now); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) CleanupOldData() error {
	retentionDays := d.Config.DataSource.DataRetentionDays
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays).Unix()

	d.Logger.Info("Cleaning up bars older than %d days (timestamp < %d)...", retentionDays, cutoff)

	query := fmt.Sprintf(`DELETE FROM "%s"."bars" WHERE timestamp < $1`, d.Schema)
	if _, err := d.DB.Exec(query, cutoff); err != nil {
		d.Logger.Error("Cleanup bars error: %v", err)
	}

	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
