package interfaces

import (
	"context"
	"sync"

	"market-structure/src/models"
)

// -----------------------------------------------------------------------------
// IDataSource interface for fetching bar series from external providers.
// -----------------------------------------------------------------------------

type IDataSource interface {

	// Name returns the unique identifier of the source
	Name() string

	// -----------------------------------------------------------------------------

	// FetchInitialData retrieves the historical backfill for all symbols.
	FetchInitialData() (map[string][]models.MBar, error)

	// -----------------------------------------------------------------------------

	// FetchUpdateData retrieves the most recent bars per symbol.
	FetchUpdateData() (map[string][]models.MBar, error)

	// -----------------------------------------------------------------------------

	// IsRealTime returns true if the source provides real-time data
	IsRealTime() bool

	// -----------------------------------------------------------------------------

	// UpdateSymbols updates the list of symbols being monitored
	UpdateSymbols(symbols []string) error

	// -----------------------------------------------------------------------------

	// Start begins the data fetching process
	// ctx: controls the lifecycle (cancellation stops the source)
	// outputChan: channel to push data to
	// wg: WaitGroup to signal when the source has fully stopped
	Start(ctx context.Context, outputChan chan<- map[string][]models.MBar, wg *sync.WaitGroup) error

	// -----------------------------------------------------------------------------

	// Stop terminates the data fetching process (legacy/manual stop)
	// Ideally, cancelling the context passed to Start should be enough.
	Stop() error
}
