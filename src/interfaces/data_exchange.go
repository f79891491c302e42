package interfaces

import "market-structure/src/models"

// -----------------------------------------------------------------------------
// IDataExchanger defining the interface for sharing reports with external
// systems (Server/Push).
// -----------------------------------------------------------------------------

type IDataExchanger interface {
	// -----------------------------------------------------------------------------
	// Broadcast pushes a report snapshot to external listeners.
	Broadcast(state *models.MLatestData)

	// -----------------------------------------------------------------------------
	// UpdateReports merges new reports into the served state without broadcasting.
	UpdateReports(reports map[string]models.MStructureReport, metrics models.MProcessingMetrics)

	// -----------------------------------------------------------------------------
	// Start the server
	Start() error

	// -----------------------------------------------------------------------------
	// Stop the server gracefully
	Stop() error
}
