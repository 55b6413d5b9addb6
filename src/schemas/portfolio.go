package schemas

import (
	"time"

	"mftracker/src/models"
)

// TransactionRequest is the payload for recording a BUY or SELL.
// Date is optional ("2006-01-02"); it defaults to now.
type TransactionRequest struct {
	SchemeCode   string  `json:"schemeCode"`
	Type         string  `json:"type"`
	Units        float64 `json:"units"`
	PricePerUnit float64 `json:"pricePerUnit"`
	Date         string  `json:"date,omitempty"`
}

// HoldingSummary is one valued position in a portfolio summary.
type HoldingSummary struct {
	SchemeCode       string     `json:"schemeCode"`
	SchemeName       string     `json:"schemeName"`
	Units            float64    `json:"units"`
	AveragePrice     float64    `json:"averagePrice"`
	LatestNav        *float64   `json:"latestNav"`
	LatestNavDate    *time.Time `json:"latestNavDate"`
	InvestedValue    float64    `json:"investedValue"`
	CurrentValue     float64    `json:"currentValue"`
	AbsoluteReturn   float64    `json:"absoluteReturn"`
	ReturnPercentage float64    `json:"returnPercentage"`
}

// PortfolioTotals aggregates the valued positions plus the money-weighted
// return over the full transaction history.
type PortfolioTotals struct {
	TotalInvested    float64 `json:"totalInvested"`
	CurrentValue     float64 `json:"currentValue"`
	AbsoluteReturn   float64 `json:"absoluteReturn"`
	ReturnPercentage float64 `json:"returnPercentage"`
	Xirr             float64 `json:"xirr"`
}

type PortfolioSummaryResponse struct {
	Portfolio *models.Portfolio `json:"portfolio"`
	Summary   PortfolioTotals   `json:"summary"`
	Holdings  []HoldingSummary  `json:"holdings"`
}

// TransactionResponse is one ledger entry joined with the fund name.
type TransactionResponse struct {
	ID           int       `json:"id"`
	SchemeCode   string    `json:"schemeCode"`
	SchemeName   string    `json:"schemeName"`
	Type         string    `json:"type"`
	Units        float64   `json:"units"`
	PricePerUnit float64   `json:"pricePerUnit"`
	Amount       float64   `json:"amount"`
	Date         time.Time `json:"date"`
}
