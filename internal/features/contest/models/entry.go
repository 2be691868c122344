package models

// Media holds content hashes of the submitted video renditions and cover.
type Media struct {
	Video720p  string `json:"video_720p,omitempty"`
	Video1080p string `json:"video_1080p,omitempty"`
	Cover      string `json:"cover,omitempty"`
}

// Entry is a user's submission into a level together with its escrow balance.
type Entry struct {
	ID      string `json:"id"`
	UserID  string `json:"user_id"`
	LevelID string `json:"level_id"`
	// 0 until the entry activates
	ContestID        uint64 `json:"contest_id"`
	Amount           int64  `json:"amount"`
	Media            Media  `json:"media"`
	PriceUnavailable bool   `json:"price_unavailable"`
	// funded, but the level had no free contest slot
	ContestLimited bool   `json:"contest_limited"`
	Votes          uint32 `json:"votes"`
	Open           bool   `json:"open"`
	Blocked        bool   `json:"blocked"`
	// Credited is what settlement paid out on account of this entry.
	Credited  int64 `json:"credited"`
	CreatedAt int64 `json:"created_at"`
}

// Expired reports whether an unassigned entry can no longer activate.
func (e Entry) Expired(now int64, expirationSec uint32) bool {
	return now > e.CreatedAt+int64(expirationSec)
}

type Vote struct {
	ID          uint64 `json:"id"`
	ContestID   uint64 `json:"contest_id"`
	EntryID     string `json:"entry_id"`
	VoterUserID string `json:"voter_user_id"`
	CreatedAt   int64  `json:"created_at"`
}
