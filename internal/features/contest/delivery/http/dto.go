package http

import (
	"contest-backend/internal/features/contest/models"
	"contest-backend/internal/features/contest/service"
)

// CurrencyPriceRequest: value is USD per token, e.g. "5.0000".
type CurrencyPriceRequest struct {
	OpenTime    int64  `json:"open_time" binding:"required" example:"1700000000"`
	Value       string `json:"value" binding:"required" example:"5.0000"`
	IntervalSec uint32 `json:"interval_sec" example:"60"`
}

type AssetPriceRequest struct {
	Time  int64  `json:"time" binding:"required" example:"1700000000000"`
	Value string `json:"value" binding:"required" example:"5.0000"`
}

// DepositRequest is the escrow service's notification about an incoming
// transfer for an entry.
type DepositRequest struct {
	EntryID  string `json:"entry_id" binding:"required" example:"entry-42"`
	Quantity string `json:"quantity" binding:"required" example:"2.0000 TON"`
}

type RefundRequest struct {
	To   string `json:"to" binding:"required" example:"EQCD39VS5jcptHL8vMjEXrzGaRcCVYto7HUn4bpAOg8xqB2N"`
	Memo string `json:"memo"`
}

type VoteRequest struct {
	VoterUserID string `json:"voter_user_id" binding:"required" example:"alice"`
}

// SettlementView is a settlement with decimal amounts for display.
type SettlementView struct {
	models.Settlement
	Display map[string]string `json:"display"`
}

type ContestVotesResponse struct {
	ContestID uint64        `json:"contest_id"`
	Votes     []models.Vote `json:"votes"`
	Total     int           `json:"total"`
}

type EntriesResponse struct {
	Entries []models.Entry `json:"entries"`
	Total   int            `json:"total"`
}

type PriceSamplesResponse struct {
	Series  models.Series        `json:"series"`
	Samples []models.PriceSample `json:"samples"`
}

type TransfersResponse struct {
	Transfers []models.TransferRequest `json:"transfers"`
	Total     int                      `json:"total"`
}

// swagger aliases
type (
	EntryInput    = service.EntryInput
	LevelInput    = service.LevelInput
	CategoryInput = service.CategoryInput
	CategoryEdit  = service.CategoryEdit
	ProfileInput  = service.ProfileInput
)
