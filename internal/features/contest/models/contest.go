package models

import "time"

type ContestStatus string

const (
	ContestStatusOpen ContestStatus = "open"
	// Submissions closed (full or period elapsed) and voting has not started yet.
	ContestStatusClosed     ContestStatus = "closed"
	ContestStatusVoting     ContestStatus = "voting"
	ContestStatusSettleable ContestStatus = "settleable"
	ContestStatusSettled    ContestStatus = "settled"
)

// Contest is a concrete instance of a Level. Every economic field is copied
// from the level when the contest is created.
type Contest struct {
	ID               uint64   `json:"id"`
	LevelID          string   `json:"level_id"`
	Price            uint32   `json:"price"`
	ParticipantLimit uint32   `json:"participant_limit"`
	ParticipantCount uint32   `json:"participant_count"`
	SubmissionPeriod uint32   `json:"submission_period"`
	VotePeriod       uint32   `json:"vote_period"`
	Fee              uint32   `json:"fee"`
	Prizes           []uint32 `json:"prizes"`
	FixedPrize       int64    `json:"fixed_prize"`
	CreatedAt        int64    `json:"created_at"`
	VoteStartsAt     int64    `json:"vote_starts_at"`
	Settled          bool     `json:"settled"`
	SettledAt        int64    `json:"settled_at,omitempty"`
}

// NewContest snapshots level at now.
func NewContest(id uint64, level Level, now int64) Contest {
	prizes := make([]uint32, len(level.Prizes))
	copy(prizes, level.Prizes)
	return Contest{
		ID:               id,
		LevelID:          level.ID,
		Price:            level.Price,
		ParticipantLimit: level.ParticipantLimit,
		ParticipantCount: 1,
		SubmissionPeriod: level.SubmissionPeriod,
		VotePeriod:       level.VotePeriod,
		Fee:              level.Fee,
		Prizes:           prizes,
		FixedPrize:       level.FixedPrize,
		CreatedAt:        now,
		VoteStartsAt:     VoteStart(now+int64(level.SubmissionPeriod), level.VoteStartUTCHour),
	}
}

// VoteStart returns submissionEnd, or with hour set the first instant at that
// UTC hour (minute zero) that is not before submissionEnd.
func VoteStart(submissionEnd int64, hour *uint8) int64 {
	if hour == nil {
		return submissionEnd
	}
	t := time.Unix(submissionEnd, 0).UTC()
	start := time.Date(t.Year(), t.Month(), t.Day(), int(*hour), 0, 0, 0, time.UTC)
	if start.Before(t) {
		start = start.AddDate(0, 0, 1)
	}
	return start.Unix()
}

func (c Contest) SubmissionEndsAt() int64 {
	return c.CreatedAt + int64(c.SubmissionPeriod)
}

func (c Contest) VoteEndsAt() int64 {
	return c.VoteStartsAt + int64(c.VotePeriod)
}

// AcceptsEntries reports whether an activating entry may join at now.
func (c Contest) AcceptsEntries(now int64) bool {
	return !c.Settled && c.ParticipantCount < c.ParticipantLimit && now <= c.SubmissionEndsAt()
}

// VotingOpen reports whether now is inside [VoteStartsAt, VoteEndsAt).
func (c Contest) VotingOpen(now int64) bool {
	return !c.Settled && now >= c.VoteStartsAt && now < c.VoteEndsAt()
}

// Settleable reports whether the sweep may settle the contest at now.
func (c Contest) Settleable(now int64) bool {
	return !c.Settled && now >= c.VoteEndsAt()
}

// Running reports whether the contest still counts against the level's
// simultaneous-contest allowance.
func (c Contest) Running(now int64) bool {
	return !c.Settled && now < c.VoteEndsAt()
}

// Status derives the lifecycle stage from now; it is never stored.
func (c Contest) Status(now int64) ContestStatus {
	switch {
	case c.Settled:
		return ContestStatusSettled
	case c.Settleable(now):
		return ContestStatusSettleable
	case c.AcceptsEntries(now):
		return ContestStatusOpen
	case c.VotingOpen(now):
		return ContestStatusVoting
	default:
		return ContestStatusClosed
	}
}
