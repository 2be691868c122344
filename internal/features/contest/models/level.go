package models

// Category groups levels; archived categories accept no new levels or entries.
type Category struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	MaxVideoLength uint32 `json:"max_video_length"`
	Archived       bool   `json:"archived"`
}

// Level is a contest template. Contests snapshot its economic fields at
// creation, so edits only affect contests created afterwards.
type Level struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	CategoryID       string `json:"category_id"`
	Price            uint32 `json:"price"` // USD cents
	ParticipantLimit uint32 `json:"participant_limit"`
	SubmissionPeriod uint32 `json:"submission_period"` // seconds
	VotePeriod       uint32 `json:"vote_period"`       // seconds
	// Fee in tenths of a percent: 45 = 4.5%.
	Fee        uint32   `json:"fee"`
	Prizes     []uint32 `json:"prizes"`
	FixedPrize int64    `json:"fixed_prize"`
	// 0 = unlimited
	AllowedSimultaneousContests uint32 `json:"allowed_simultaneous_contests"`
	VoteStartUTCHour            *uint8 `json:"vote_start_utc_hour,omitempty"`
	Archived                    bool   `json:"archived"`
}

// PrizeTotal returns the sum of the prize percentages.
func (l Level) PrizeTotal() uint32 {
	var total uint32
	for _, p := range l.Prizes {
		total += p
	}
	return total
}
