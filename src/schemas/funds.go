package schemas

import "time"

// FundResponse is the catalog listing shape for search and browse.
type FundResponse struct {
	SchemeCode string `json:"schemeCode"`
	SchemeName string `json:"schemeName"`
	FundHouse  string `json:"fundHouse,omitempty"`
	Category   string `json:"category,omitempty"`
}

// FundDetailResponse adds the latest known NAV to the catalog fields.
type FundDetailResponse struct {
	FundResponse
	LatestNav     *float64   `json:"latestNav"`
	LatestNavDate *time.Time `json:"latestNavDate"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// NavPointResponse is one point of a fund's price history.
type NavPointResponse struct {
	Date time.Time `json:"date"`
	Nav  float64   `json:"nav"`
}
