package utils

import (
	"time"
)

// NavDateLayout is the day-month-year format the external NAV source uses
// for every price entry.
const NavDateLayout = "02-01-2006"

const ShortDashDateLayout = "2006-01-02"

// ParseNavDate parses a DD-MM-YYYY date string from the external source.
func ParseNavDate(value string) (time.Time, error) {
	return time.Parse(NavDateLayout, value)
}

// PeriodStart maps a history period label to its inclusive lower bound
// relative to now. Unknown labels default to one month; "ALL" returns the
// zero time so the scan covers the whole series.
func PeriodStart(period string, now time.Time) time.Time {
	switch period {
	case "1M":
		return now.AddDate(0, -1, 0)
	case "3M":
		return now.AddDate(0, -3, 0)
	case "6M":
		return now.AddDate(0, -6, 0)
	case "1Y":
		return now.AddDate(-1, 0, 0)
	case "3Y":
		return now.AddDate(-3, 0, 0)
	case "5Y":
		return now.AddDate(-5, 0, 0)
	case "ALL":
		return time.Time{}
	default:
		return now.AddDate(0, -1, 0)
	}
}
