package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func hour(h uint8) *uint8 { return &h }

func TestVoteStart(t *testing.T) {
	base := time.Date(2024, 3, 10, 14, 30, 0, 0, time.UTC).Unix()

	assert.Equal(t, base, VoteStart(base, nil))

	// later the same day
	want := time.Date(2024, 3, 10, 18, 0, 0, 0, time.UTC).Unix()
	assert.Equal(t, want, VoteStart(base, hour(18)))

	// already past that hour today, so tomorrow
	want = time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC).Unix()
	assert.Equal(t, want, VoteStart(base, hour(9)))

	// exactly on the hour counts
	onHour := time.Date(2024, 3, 10, 14, 0, 0, 0, time.UTC).Unix()
	assert.Equal(t, onHour, VoteStart(onHour, hour(14)))
}

func TestContestLifecycle(t *testing.T) {
	level := Level{
		ID:               "lvl",
		Price:            1000,
		ParticipantLimit: 2,
		SubmissionPeriod: 100,
		VotePeriod:       50,
		Fee:              45,
		Prizes:           []uint32{70, 30},
	}
	c := NewContest(1, level, 1000)

	assert.Equal(t, uint32(1), c.ParticipantCount)
	assert.Equal(t, int64(1100), c.VoteStartsAt)
	assert.Equal(t, int64(1150), c.VoteEndsAt())

	assert.Equal(t, ContestStatusOpen, c.Status(1000))
	assert.True(t, c.AcceptsEntries(1100))
	assert.False(t, c.AcceptsEntries(1101))

	assert.False(t, c.VotingOpen(1099))
	assert.True(t, c.VotingOpen(1100))
	assert.Equal(t, ContestStatusVoting, c.Status(1101))
	assert.True(t, c.VotingOpen(1149))
	assert.False(t, c.VotingOpen(1150))

	assert.Equal(t, ContestStatusSettleable, c.Status(1150))
	assert.True(t, c.Running(1149))
	assert.False(t, c.Running(1150))

	c.ParticipantCount = 2
	assert.False(t, c.AcceptsEntries(1000))
	assert.Equal(t, ContestStatusClosed, c.Status(1000))

	c.Settled = true
	assert.Equal(t, ContestStatusSettled, c.Status(2000))
	assert.False(t, c.Settleable(2000))
}

func TestSnapshotIsIndependentOfLevel(t *testing.T) {
	level := Level{ID: "lvl", ParticipantLimit: 3, Prizes: []uint32{60, 40}}
	c := NewContest(7, level, 0)
	level.Prizes[0] = 100
	assert.Equal(t, []uint32{60, 40}, c.Prizes)
}

func TestSeries(t *testing.T) {
	ts := time.Unix(1700000000, 250_000_000)
	assert.Equal(t, int64(1700000000), SeriesCurrency.Stamp(ts))
	assert.Equal(t, int64(1700000000250), SeriesAsset.Stamp(ts))

	_, err := ParseSeries("bogus")
	assert.Error(t, err)
	s, err := ParseSeries("asset")
	assert.NoError(t, err)
	assert.Equal(t, int64(1000), s.Scale())
}

func TestCallerControls(t *testing.T) {
	p := Profile{ID: "alice", Account: "100"}
	assert.True(t, Caller{Account: "100"}.Controls(p))
	assert.False(t, Caller{Account: "200"}.Controls(p))
	assert.False(t, Caller{}.Controls(Profile{}))
}
