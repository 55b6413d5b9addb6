package models

import "time"

// NavPoint is one (scheme, date) price observation. The table is
// append-only; re-ingesting an existing date is a no-op.
type NavPoint struct {
	SchemeCode string    `db:"scheme_code"`
	NavDate    time.Time `db:"nav_date"`
	Nav        float64   `db:"nav"`
}

// LatestNav is the materialized max-date NAV per scheme, maintained
// incrementally at ingestion time so valuation reads stay O(1).
type LatestNav struct {
	SchemeCode string    `db:"scheme_code"`
	Nav        float64   `db:"nav"`
	NavDate    time.Time `db:"nav_date"`
	UpdatedAt  time.Time `db:"updated_at"`
}
