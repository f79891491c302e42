package analysis

import (
	"fmt"
	"time"

	"market-structure/src/analysis/core"
	"market-structure/src/logger"
	"market-structure/src/models"
	"market-structure/src/utils"
)

type StructureFacade struct {
	Config *models.MConfig
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewStructureFacade(cfg *models.MConfig, log *logger.Logger) *StructureFacade {
	return &StructureFacade{
		Config: cfg,
		Logger: log,
	}
}

// -----------------------------------------------------------------------------

// AnalyzeSymbol runs the full pipeline over one validated series:
// swings over the whole history, extremes for the session window, then bias
// and day profile. A window with no bars yields a report with NoSession set
// and no bias/profile; that is expected outside trading hours, not a failure.
func (f *StructureFacade) AnalyzeSymbol(
	bars []models.MBar,
	window models.MTimeWindow,
	sessionMap map[string]models.MTimeWindow,
) (models.MStructureReport, error) {
	if len(bars) == 0 {
		return models.MStructureReport{}, fmt.Errorf("analyze: empty bar series")
	}
	if window.Start > window.End {
		return models.MStructureReport{}, fmt.Errorf("analyze: window start %d after end %d", window.Start, window.End)
	}

	last := bars[len(bars)-1]
	report := models.MStructureReport{
		Symbol:   last.Symbol,
		AsOf:     last.Timestamp,
		BarCount: len(bars),
		Window:   window,
		Sessions: sessionMap,
	}

	swings, err := core.DetectSwings(bars, f.swingLookback())
	if err != nil {
		return models.MStructureReport{}, err
	}
	report.Swings = swings

	extremes := core.ExtractSessionExtremes(bars, window)
	if extremes == nil {
		report.NoSession = true
		return report, nil
	}
	report.Extremes = extremes

	cfg := f.Config.Analysis
	bias, err := core.CalculateDailyBiasWith(bars, extremes, cfg.NeutralBandFrac, cfg.RetraceFrac, cfg.RecentCloses)
	if err != nil {
		return models.MStructureReport{}, err
	}
	report.Bias = &bias

	profile, err := core.ClassifyDayProfile(models.MProfileInputs{
		Bias:       bias,
		SessionMap: sessionMap,
		LastPrice:  last.Close,
	})
	if err != nil {
		return models.MStructureReport{}, err
	}
	report.Profile = &profile

	report.Levels = f.resolveLevels(bars, extremes, bias, sessionMap)

	return report, nil
}

// -----------------------------------------------------------------------------

// AnalyzeAll derives session windows from each symbol's trading calendar and
// runs the pipeline per symbol. Symbols that fail stay out of the result map.
func (f *StructureFacade) AnalyzeAll(data map[string][]models.MBar, asOf time.Time) map[string]models.MStructureReport {
	reports := make(map[string]models.MStructureReport)

	for symbol, bars := range data {
		if len(bars) == 0 {
			continue
		}

		cal := utils.GetCalendar(symbol)
		sessionMap := cal.SessionMap(asOf)
		window, ok := sessionMap[models.SessionCurrent]
		if !ok {
			f.Logger.Warning("No current session window for %s, skipping", symbol)
			continue
		}

		report, err := f.AnalyzeSymbol(bars, window, sessionMap)
		if err != nil {
			f.Logger.Error("Analysis failed for %s: %v", symbol, err)
			continue
		}
		if report.NoSession {
			f.Logger.Info("No session data for %s in [%d, %d]", symbol, window.Start, window.End)
		}

		reports[symbol] = report
	}

	return reports
}

// -----------------------------------------------------------------------------

// resolveLevels maps the named targets to concrete price levels where the
// loaded history allows it: prior-day levels from a daily resample, prior
// session levels from the prior session window, equilibrium from the current
// extremes. Unresolvable names are simply absent from the map.
func (f *StructureFacade) resolveLevels(
	bars []models.MBar,
	extremes *models.MSessionExtremes,
	bias models.MBias,
	sessionMap map[string]models.MTimeWindow,
) map[string]float64 {
	levels := map[string]float64{
		models.TargetCurrentEQRetest: extremes.Equilibrium(),
	}

	if daily := ResampleDaily(bars); len(daily) >= 2 {
		prior := daily[len(daily)-2]
		levels[models.TargetPriorDayHigh] = prior.High
		levels[models.TargetPriorDayLow] = prior.Low
		levels[models.TargetPriorDayEQ] = (prior.High + prior.Low) / 2
	}

	if priorWindow, ok := sessionMap[models.SessionPrior]; ok {
		if prior := core.ExtractSessionExtremes(bars, priorWindow); prior != nil {
			levels[models.TargetPriorSessionHigh] = prior.High
			levels[models.TargetPriorSessionLow] = prior.Low
		}
	}

	switch bias.Direction {
	case models.DirectionLong:
		levels[models.TargetOppositeExtreme] = extremes.Low
	case models.DirectionShort:
		levels[models.TargetOppositeExtreme] = extremes.High
	}

	return levels
}

// -----------------------------------------------------------------------------

func (f *StructureFacade) swingLookback() int {
	if f.Config != nil && f.Config.Analysis.SwingLookback > 0 {
		return f.Config.Analysis.SwingLookback
	}
	return 2
}
