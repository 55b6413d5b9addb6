package mfapi

// SchemeSummary is one entry of the full catalog listing.
type SchemeSummary struct {
	SchemeCode int    `json:"schemeCode"`
	SchemeName string `json:"schemeName"`
}

// SchemeMeta is the metadata block of a per-scheme detail response. A
// response without it carries no usable data.
type SchemeMeta struct {
	FundHouse      string `json:"fund_house"`
	SchemeType     string `json:"scheme_type"`
	SchemeCategory string `json:"scheme_category"`
	SchemeCode     int    `json:"scheme_code"`
	SchemeName     string `json:"scheme_name"`
}

// NavEntry is one raw price observation. Date is DD-MM-YYYY and Nav is a
// string-encoded decimal, both exactly as the source sends them.
type NavEntry struct {
	Date string `json:"date"`
	Nav  string `json:"nav"`
}

// SchemeDetail is the full per-scheme payload: metadata plus the complete
// NAV history, newest first.
type SchemeDetail struct {
	Meta   *SchemeMeta `json:"meta"`
	Data   []NavEntry  `json:"data"`
	Status string      `json:"status"`
}
