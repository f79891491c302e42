package models

// MProcessingMetrics represents the performance metrics for the analysis pipeline.
type MProcessingMetrics struct {
	AnalysisTimeSeconds float64 `json:"analysis_time_seconds"`
	ValidSymbols        int     `json:"valid_symbols"`
	ReportsProduced     int     `json:"reports_produced"`
}
