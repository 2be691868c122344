package models

// GlobalConfig holds the admin-mutable engine parameters. It is read at the
// start of every operation.
type GlobalConfig struct {
	EntryExpirationSec uint32 `json:"entry_expiration_sec"`
	EntryArchiveSec    uint32 `json:"entry_archive_sec"`
	PriceFreshnessSec  uint32 `json:"price_freshness_sec"`
	PriceRetentionSec  uint32 `json:"price_retention_sec"`
	FeeAccount         string `json:"fee_account"`
	FeeAccountMemo     string `json:"fee_account_memo"`
	CurrencySymbol     string `json:"currency_symbol"`
	PriceSeries        Series `json:"price_series"`
	// Upper bound on contests settled, entries re-checked and entries
	// archived by a single sweep. 0 = no bound.
	MaxRowsPerCall uint32 `json:"max_rows_per_call"`
}
