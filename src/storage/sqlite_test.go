package storage

import (
	"fmt"
	"testing"

	"market-structure/src/logger"
	"market-structure/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

func testSQLiteDB(t *testing.T) *AsyncSQLiteDB {
	t.Helper()

	cfg := &models.MConfig{
		LogLevel: "ERROR",
		Storage:  models.MStorageConfig{DBType: "sqlite", DBPath: ":memory:"},
		DataSource: models.MDataSourceConfig{
			DataRetentionDays: 30,
		},
	}

	db, err := NewAsyncSQLiteDB(cfg, logger.NewLogger("ERROR", "test"))
	require.NoError(t, err)
	require.NoError(t, db.Initialize())
	t.Cleanup(func() { db.Close() })
	return db
}

func testBar(symbol string, ts int64, closePrice float64) models.MBar {
	return models.MBar{
		Symbol:    symbol,
		Timestamp: ts,
		Open:      closePrice - 1,
		High:      closePrice + 1,
		Low:       closePrice - 2,
		Close:     closePrice,
		Volume:    100,
		FetchedAt: ts,
	}
}

// -----------------------------------------------------------------------------
// Bar cache
// -----------------------------------------------------------------------------

func TestSaveBarsBulkRoundTrip(t *testing.T) {
	db := testSQLiteDB(t)

	bars := []models.MBar{
		testBar("AAPL", 300, 12),
		testBar("AAPL", 100, 10),
		testBar("AAPL", 200, 11),
		testBar("MSFT", 100, 50),
	}
	require.NoError(t, db.SaveBarsBulk(bars))

	loaded, err := db.LoadBars("AAPL", 0)
	require.NoError(t, err)
	require.Len(t, loaded, 3)

	// Chronological regardless of insert order
	assert.Equal(t, int64(100), loaded[0].Timestamp)
	assert.Equal(t, int64(200), loaded[1].Timestamp)
	assert.Equal(t, int64(300), loaded[2].Timestamp)
	assert.Equal(t, 10.0, loaded[0].Close)
}

func TestSaveBarsBulkUpsertsOnConflict(t *testing.T) {
	db := testSQLiteDB(t)

	require.NoError(t, db.SaveBarsBulk([]models.MBar{testBar("AAPL", 100, 10)}))

	// Same (symbol, timestamp) with a revised close replaces the row.
	revised := testBar("AAPL", 100, 99)
	require.NoError(t, db.SaveBarsBulk([]models.MBar{revised}))

	loaded, err := db.LoadBars("AAPL", 0)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, 99.0, loaded[0].Close)
}

func TestSaveBarsBulkChunksLargeSeries(t *testing.T) {
	db := testSQLiteDB(t)

	// One bar past the chunk size forces a second batch and keeps every
	// statement under the SQLite bound-variable limit.
	count := sqliteBatchSize + 1
	bars := make([]models.MBar, 0, count)
	for i := 0; i < count; i++ {
		bars = append(bars, testBar("AAPL", int64(i), float64(i)))
	}
	require.NoError(t, db.SaveBarsBulk(bars))

	loaded, err := db.LoadBars("AAPL", 0)
	require.NoError(t, err)
	require.Len(t, loaded, count)
	assert.Equal(t, int64(0), loaded[0].Timestamp)
	assert.Equal(t, int64(count-1), loaded[count-1].Timestamp)
}

func TestLoadBarsSkipsStaleRows(t *testing.T) {
	db := testSQLiteDB(t)

	stale := testBar("AAPL", 100, 10)
	stale.FetchedAt = 50
	fresh := testBar("AAPL", 200, 11)
	fresh.FetchedAt = 500
	require.NoError(t, db.SaveBarsBulk([]models.MBar{stale, fresh}))

	loaded, err := db.LoadBars("AAPL", 400)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, int64(200), loaded[0].Timestamp)
}

func TestSaveBarsBulkEmptyIsNoop(t *testing.T) {
	db := testSQLiteDB(t)
	assert.NoError(t, db.SaveBarsBulk(nil))
}

// -----------------------------------------------------------------------------
// Reports
// -----------------------------------------------------------------------------

func TestSaveReportsUpserts(t *testing.T) {
	db := testSQLiteDB(t)

	report := models.MStructureReport{Symbol: "AAPL", AsOf: 100, BarCount: 4}
	require.NoError(t, db.SaveReports(map[string]models.MStructureReport{"AAPL": report}))

	report.AsOf = 200
	require.NoError(t, db.SaveReports(map[string]models.MStructureReport{"AAPL": report}))

	var count int
	var asOf int64
	row := db.DB.QueryRow("SELECT COUNT(*), MAX(as_of) FROM structure_reports WHERE symbol = ?", "AAPL")
	require.NoError(t, row.Scan(&count, &asOf))
	assert.Equal(t, 1, count, fmt.Sprintf("expected a single upserted row, got %d", count))
	assert.Equal(t, int64(200), asOf)
}
