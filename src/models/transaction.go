package models

import "time"

const (
	TransactionBuy  = "BUY"
	TransactionSell = "SELL"
)

// Transaction is one immutable BUY or SELL event. The transaction log is
// the source of truth for valuation; holdings are derived from it.
type Transaction struct {
	ID           int       `db:"id"`
	PortfolioID  int       `db:"portfolio_id"`
	SchemeCode   string    `db:"scheme_code"`
	Type         string    `db:"type"`
	Units        float64   `db:"units"`
	PricePerUnit float64   `db:"price_per_unit"`
	Amount       float64   `db:"amount"`
	Date         time.Time `db:"date"`
	CreatedAt    time.Time `db:"created_at"`
}

// TransactionWithFund joins a transaction with the fund display name.
type TransactionWithFund struct {
	Transaction
	SchemeName string `db:"scheme_name"`
}
