package models

import "time"

// Fund is one mutual fund scheme as known from the external source.
// Rows are created on the first catalog sync and refreshed on every
// ingestion; they are never deleted.
type Fund struct {
	SchemeCode    string     `db:"scheme_code"`
	SchemeName    string     `db:"scheme_name"`
	FundHouse     string     `db:"fund_house"`
	Category      string     `db:"category"`
	InceptionDate *time.Time `db:"inception_date"`
	RawJSON       []byte     `db:"raw_json"`
	UpdatedAt     time.Time  `db:"updated_at"`
}

// FundWithLatestNav joins a fund with its latest known NAV, if any.
type FundWithLatestNav struct {
	Fund
	LatestNav     *float64   `db:"latest_nav"`
	LatestNavDate *time.Time `db:"latest_nav_date"`
}
