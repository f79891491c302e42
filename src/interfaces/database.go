package interfaces

import "market-structure/src/models"

// -----------------------------------------------------------------------------
// IDatabase defines the contract for storage operations.
// -----------------------------------------------------------------------------

type IDatabase interface {

	// -----------------------------------------------------------------------------

	// Initialize sets up the database schema and tables.
	Initialize() error

	// -----------------------------------------------------------------------------

	// SaveBarsBulk inserts a batch of validated bars.
	SaveBarsBulk(bars []models.MBar) error

	// -----------------------------------------------------------------------------

	// LoadBars returns cached bars for a symbol fetched at or after minFetchedAt.
	// A stale or empty cache returns an empty slice, signalling a refetch.
	LoadBars(symbol string, minFetchedAt int64) ([]models.MBar, error)

	// -----------------------------------------------------------------------------

	// SaveReports upserts the bias and day-profile rows of the given reports.
	SaveReports(reports map[string]models.MStructureReport) error

	// -----------------------------------------------------------------------------

	// CleanupOldData removes data older than the retention policy.
	CleanupOldData() error

	// -----------------------------------------------------------------------------

	// Close the database connection
	Close() error
}
