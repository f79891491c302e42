package utils

import (
	"log"
	"strings"
	"time"

	"market-structure/src/models"

	"github.com/scmhub/calendar"
)

// TradingCalendar calculates trading days using scmhub/calendar.
type TradingCalendar struct {
	Calendar *calendar.Calendar
	Fallback bool
	Timezone *time.Location
}

// -----------------------------------------------------------------------------

func GetCalendar(symbol string) *TradingCalendar {
	// Simple mapping based on suffix to MIC code
	// See scmhub/calendar for supported MICs (ISO 10383)
	mic := "xnys" // Default US NYSE
	if strings.HasSuffix(symbol, ".L") {
		mic = "xlon"
	} else if strings.HasSuffix(symbol, ".PA") {
		mic = "xpar"
	} else if strings.HasSuffix(symbol, ".DE") {
		mic = "xfra"
	} else if strings.HasSuffix(symbol, ".AS") {
		mic = "xams"
	} else if strings.HasSuffix(symbol, ".BR") {
		mic = "xbru"
	} else if strings.HasSuffix(symbol, ".MI") {
		mic = "xmil"
	} else if strings.HasSuffix(symbol, ".MC") {
		mic = "xmad"
	} else if strings.HasSuffix(symbol, ".ST") {
		mic = "xsto"
	} else if strings.HasSuffix(symbol, ".CO") {
		mic = "xcse"
	} else if strings.HasSuffix(symbol, ".HE") {
		mic = "xhel"
	} else if strings.HasSuffix(symbol, ".VI") {
		mic = "xwbo"
	} else if strings.HasSuffix(symbol, ".SW") {
		mic = "xswx"
	} else if strings.HasSuffix(symbol, ".TO") {
		mic = "xtse"
	} else if strings.HasSuffix(symbol, ".V") {
		mic = "xtsx"
	} else if strings.HasSuffix(symbol, ".T") {
		mic = "xtks"
	} else if strings.HasSuffix(symbol, ".HK") {
		mic = "xhkg"
	} else if strings.HasSuffix(symbol, ".AX") {
		mic = "xasx"
	} else if strings.HasSuffix(symbol, ".KS") {
		mic = "xkrx"
	} else if strings.HasSuffix(symbol, ".TW") {
		mic = "xtai"
	} else if strings.HasSuffix(symbol, ".SS") {
		mic = "xshg"
	} else if strings.HasSuffix(symbol, ".SZ") {
		mic = "xshe"
	}

	// scmhub/calendar.GetCalendar returns a calendar by MIC
	cal := calendar.GetCalendar(mic)
	if cal == nil {
		// Fallback to xnys if not found
		cal = calendar.GetCalendar("xnys")
	}

	if cal == nil {
		log.Printf("WARNING: Failed to load calendar for MIC '%s' and fallback 'xnys'. Using simple fallback (Mon-Fri 09:30-16:00 UTC).", mic)
		// Try load NY location for fallback
		nyLoc, _ := time.LoadLocation("America/New_York")
		if nyLoc == nil {
			nyLoc = time.UTC // Worst case
		}
		return &TradingCalendar{Fallback: true, Timezone: nyLoc}
	}

	return &TradingCalendar{Calendar: cal, Fallback: false, Timezone: cal.Loc}
}

// -----------------------------------------------------------------------------

func (tc *TradingCalendar) IsTradingDay(date time.Time) bool {
	// Normalize to timezone if available
	if tc.Timezone != nil {
		date = date.In(tc.Timezone)
	}

	if tc.Fallback {
		// Simple fallback: Mon-Fri
		weekday := date.Weekday()
		return weekday != time.Saturday && weekday != time.Sunday
	}
	// Library handles IsHoliday / IsBusinessDay
	return tc.Calendar.IsBusinessDay(date)
}

// -----------------------------------------------------------------------------

// IsOpenOnMinute checks if the market is open at a specific minute.
func (tc *TradingCalendar) IsOpenOnMinute(t time.Time) bool {
	// Normalize to timezone if available
	if tc.Timezone != nil {
		t = t.In(tc.Timezone)
	}

	if tc.Fallback {
		if !tc.IsTradingDay(t) {
			return false
		}

		hour := t.Hour()
		minute := t.Minute()

		// 9:30 - 16:00 NY Time
		if (hour > 9 || (hour == 9 && minute >= 30)) && hour < 16 {
			return true
		}
		return false
	}

	return tc.Calendar.IsOpen(t)
}

// -----------------------------------------------------------------------------
// Session windows
// -----------------------------------------------------------------------------

// Regular session hours applied in the calendar's local timezone. The scmhub
// calendars expose open-state checks but not open/close instants, so the
// window bounds use the common cash-session hours, which also match the
// fallback calendar.
const (
	sessionOpenHour    = 9
	sessionOpenMinute  = 30
	sessionCloseHour   = 16
	sessionCloseMinute = 0
)

// -----------------------------------------------------------------------------

// CurrentTradingDay returns the most recent trading day at or before t,
// normalized to the calendar timezone. Looks back at most two weeks.
func (tc *TradingCalendar) CurrentTradingDay(t time.Time) time.Time {
	day := t.In(tc.Timezone)
	for i := 0; i < 14; i++ {
		if tc.IsTradingDay(day) {
			return day
		}
		day = day.AddDate(0, 0, -1)
	}
	return t.In(tc.Timezone)
}

// -----------------------------------------------------------------------------

// PriorTradingDay returns the last trading day strictly before t.
func (tc *TradingCalendar) PriorTradingDay(t time.Time) time.Time {
	return tc.CurrentTradingDay(tc.CurrentTradingDay(t).AddDate(0, 0, -1))
}

// -----------------------------------------------------------------------------

// SessionWindow returns the regular session of the trading day containing t
// (or of the most recent trading day before it) as an inclusive UTC window.
func (tc *TradingCalendar) SessionWindow(t time.Time) models.MTimeWindow {
	return tc.sessionWindowOn(tc.CurrentTradingDay(t))
}

// -----------------------------------------------------------------------------

func (tc *TradingCalendar) sessionWindowOn(day time.Time) models.MTimeWindow {
	d := day.In(tc.Timezone)
	open := time.Date(d.Year(), d.Month(), d.Day(), sessionOpenHour, sessionOpenMinute, 0, 0, tc.Timezone)
	close := time.Date(d.Year(), d.Month(), d.Day(), sessionCloseHour, sessionCloseMinute, 0, 0, tc.Timezone)
	return models.MTimeWindow{Start: open.Unix(), End: close.Unix()}
}

// -----------------------------------------------------------------------------

// SessionMap returns the current and prior session windows for t, keyed by
// the models.Session* constants. The map is handed to the day-profile
// classifier unchanged and used by the facade to resolve prior-session levels.
func (tc *TradingCalendar) SessionMap(t time.Time) map[string]models.MTimeWindow {
	current := tc.CurrentTradingDay(t)
	return map[string]models.MTimeWindow{
		models.SessionCurrent: tc.sessionWindowOn(current),
		models.SessionPrior:   tc.sessionWindowOn(tc.PriorTradingDay(t)),
	}
}
