package models

import "time"

// Portfolio is the single per-user investment ledger. Uniqueness on
// user_id is enforced at the database level.
type Portfolio struct {
	ID        int       `db:"id"`
	UserID    string    `db:"user_id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}

// Holding is the derived position per (portfolio, scheme): units held and
// the weighted-average cost per unit. It is a cache over the transaction
// log and is deleted when units reach exactly zero.
type Holding struct {
	ID           int       `db:"id"`
	PortfolioID  int       `db:"portfolio_id"`
	SchemeCode   string    `db:"scheme_code"`
	Units        float64   `db:"units"`
	AveragePrice float64   `db:"average_price"`
	CreatedAt    time.Time `db:"created_at"`
}

// HoldingWithNav joins a holding with the fund name and latest NAV for
// valuation reads. Nav fields are nil when no NAV has been ingested yet.
type HoldingWithNav struct {
	SchemeCode    string     `db:"scheme_code"`
	SchemeName    string     `db:"scheme_name"`
	Units         float64    `db:"units"`
	AveragePrice  float64    `db:"average_price"`
	LatestNav     *float64   `db:"latest_nav"`
	LatestNavDate *time.Time `db:"latest_nav_date"`
}
