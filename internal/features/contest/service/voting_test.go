package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startContest activates one entry per user in level and returns the shared
// contest id.
func (h *harness) startContest(levelID string, users ...string) uint64 {
	h.t.Helper()
	var contestID uint64
	for _, id := range users {
		caller := h.user(id)
		h.enter(caller, "e-"+id, id, levelID)
		res := h.pay("e-"+id, levelCost)
		require.Equal(h.t, ActivationActivated, res.Status)
		if contestID == 0 {
			contestID = res.ContestID
		}
		require.Equal(h.t, contestID, res.ContestID)
	}
	return contestID
}

func TestVoteWindow(t *testing.T) {
	h := newHarness(t)
	h.price(tokenPrice)
	contestID := h.startContest("lvl", "a", "b")
	voter := h.user("voter")

	_, err := h.eng.Vote(h.ctx, voter, "e-a", "voter")
	assert.ErrorIs(t, err, ErrOutsideVotingWindow)

	h.advance(hourSec)
	v, err := h.eng.Vote(h.ctx, voter, "e-a", "voter")
	require.NoError(t, err)
	assert.Equal(t, contestID, v.ContestID)
	assert.Equal(t, uint32(1), h.entry("e-a").Votes)

	// one vote per contest, whatever the entry
	_, err = h.eng.Vote(h.ctx, voter, "e-b", "voter")
	assert.ErrorIs(t, err, ErrAlreadyVoted)
	_, err = h.eng.Vote(h.ctx, voter, "e-a", "voter")
	assert.ErrorIs(t, err, ErrAlreadyVoted)
	assert.Equal(t, uint32(1), h.entry("e-a").Votes)

	late := h.user("late")
	h.advance(hourSec)
	_, err = h.eng.Vote(h.ctx, late, "e-b", "late")
	assert.ErrorIs(t, err, ErrOutsideVotingWindow)

	votes, err := h.eng.VotesByContest(h.ctx, contestID)
	require.NoError(t, err)
	require.Len(t, votes, 1)
	assert.Equal(t, "e-a", votes[0].EntryID)
}

func TestVoteAcrossContests(t *testing.T) {
	h := newHarness(t)
	h.level(defaultLevel("other"))
	h.price(tokenPrice)
	h.startContest("lvl", "a")
	h.startContest("other", "b")
	voter := h.user("voter")

	h.advance(hourSec)
	_, err := h.eng.Vote(h.ctx, voter, "e-a", "voter")
	require.NoError(t, err)
	_, err = h.eng.Vote(h.ctx, voter, "e-b", "voter")
	require.NoError(t, err)
}

func TestVoteRejections(t *testing.T) {
	h := newHarness(t)
	h.price(tokenPrice)
	h.startContest("lvl", "a")
	voter := h.user("voter")
	stranger := h.user("stranger")

	pending := h.user("pending")
	h.enter(pending, "e-pending", "pending", "lvl")

	h.advance(hourSec)

	_, err := h.eng.Vote(h.ctx, stranger, "e-a", "voter")
	assert.ErrorIs(t, err, ErrNotAccountOwner)

	_, err = h.eng.Vote(h.ctx, voter, "e-pending", "voter")
	assert.ErrorIs(t, err, ErrEntryNotActivated)

	_, err = h.eng.Vote(h.ctx, voter, "missing", "voter")
	assert.ErrorIs(t, err, ErrEntryNotFound)

	_, err = h.eng.Vote(h.ctx, voter, "e-a", "Bad Id")
	assert.Error(t, err)

	_, err = h.eng.BlockEntry(h.ctx, admin, "e-a")
	require.NoError(t, err)
	_, err = h.eng.Vote(h.ctx, voter, "e-a", "voter")
	assert.ErrorIs(t, err, ErrEntryBlocked)
}
