package models

type TransferReason string

const (
	TransferReasonFee    TransferReason = "fee"
	TransferReasonRefund TransferReason = "refund"
)

// TransferRequest asks the external escrow service to move tokens out of
// escrow. The engine never moves tokens itself.
type TransferRequest struct {
	ID        string         `json:"id"`
	To        string         `json:"to"`
	Amount    int64          `json:"amount"`
	Symbol    string         `json:"symbol"`
	Memo      string         `json:"memo"`
	Reason    TransferReason `json:"reason"`
	ContestID uint64         `json:"contest_id,omitempty"`
	EntryID   string         `json:"entry_id,omitempty"`
	CreatedAt int64          `json:"created_at"`
}

type Payout struct {
	EntryID string `json:"entry_id"`
	UserID  string `json:"user_id"`
	Rank    int    `json:"rank"`
	Votes   uint32 `json:"votes"`
	Amount  int64  `json:"amount"`
}

// Settlement records how a contest's pool was split.
type Settlement struct {
	ContestID uint64 `json:"contest_id"`
	LevelID   string `json:"level_id"`
	// Escrow is the sum of entry amounts held for the contest.
	Escrow    int64 `json:"escrow"`
	GrossPool int64 `json:"gross_pool"`
	Fee       int64 `json:"fee"`
	NetPool   int64 `json:"net_pool"`
	// Remainder is the part of NetPool nobody received.
	Remainder int64    `json:"remainder"`
	ToFee     int64    `json:"to_fee_account"`
	Payouts   []Payout `json:"payouts"`
	SettledAt int64    `json:"settled_at"`
}
