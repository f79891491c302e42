package models

// -----------------------------------------------------------------------------
// Server State Structure
// -----------------------------------------------------------------------------

type MLatestData struct {
	Type              string                      `json:"type"` // "INITIAL" or "UPDATE"
	Reports           map[string]MStructureReport `json:"reports"`
	Timestamp         int64                       `json:"timestamp"`
	ProcessingMetrics MProcessingMetrics          `json:"processing_metrics"`
}

// Snapshot returns a copy safe to serialize outside the state lock. The
// Reports map is copied; the report values themselves are never mutated
// after analysis, so a shallow value copy is enough.
func (d *MLatestData) Snapshot() *MLatestData {
	if d == nil {
		return nil
	}

	reports := make(map[string]MStructureReport, len(d.Reports))
	for sym, report := range d.Reports {
		reports[sym] = report
	}

	return &MLatestData{
		Type:              d.Type,
		Reports:           reports,
		Timestamp:         d.Timestamp,
		ProcessingMetrics: d.ProcessingMetrics,
	}
}

// -----------------------------------------------------------------------------
// SubscribeCommand for client messages
// -----------------------------------------------------------------------------

type MSubscribeCommand struct {
	Command    string   `json:"command"`
	ClientType string   `json:"clientType"`
	Symbols    []string `json:"symbols"`
}
