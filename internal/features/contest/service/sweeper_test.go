package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contest-backend/internal/common/validation"
	"contest-backend/internal/features/contest/models"
)

type recordingReporter struct {
	mu   sync.Mutex
	rows []models.Settlement
}

func (r *recordingReporter) SaveSettlements(_ context.Context, rows []models.Settlement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, rows...)
	return nil
}

func (h *harness) castVote(entryID, voterID string) {
	h.t.Helper()
	caller := h.user(voterID)
	_, err := h.eng.Vote(h.ctx, caller, entryID, voterID)
	require.NoError(h.t, err)
}

func (h *harness) sweep() SweepReport {
	h.t.Helper()
	report, err := h.eng.Sweep(h.ctx)
	require.NoError(h.t, err)
	return report
}

func normalizedFeeAccount(t *testing.T) string {
	t.Helper()
	addr, err := validation.NormalizeWalletAddress(feeAccount)
	require.NoError(t, err)
	return addr
}

func TestSettlementSplitsPoolByVotes(t *testing.T) {
	rep := &recordingReporter{}
	h := newHarness(t, WithReporter(rep))
	h.price(tokenPrice)
	contestID := h.startContest("lvl", "a", "b", "c")

	h.advance(hourSec)
	h.castVote("e-a", "v1")
	h.castVote("e-b", "v2")
	h.castVote("e-b", "v3")

	assert.True(t, h.sweep().Empty(), "nothing is settleable during voting")

	h.advance(hourSec)
	report := h.sweep()
	assert.Equal(t, []uint64{contestID}, report.Settled)

	assert.Equal(t, int64(40110), h.winnings("b"))
	assert.Equal(t, int64(17190), h.winnings("a"))
	assert.Equal(t, int64(0), h.winnings("c"))

	fees := h.feeTransfers()
	require.Len(t, fees, 1)
	assert.Equal(t, int64(2700), fees[0].Amount)
	assert.Equal(t, normalizedFeeAccount(t), fees[0].To)
	assert.Equal(t, contestID, fees[0].ContestID)
	assert.Equal(t, "TON", fees[0].Symbol)

	st, err := h.eng.GetSettlement(h.ctx, contestID)
	require.NoError(t, err)
	assert.Equal(t, int64(60000), st.Escrow)
	assert.Equal(t, int64(2700), st.Fee)
	assert.Equal(t, int64(57300), st.NetPool)
	assert.Zero(t, st.Remainder)
	require.Len(t, st.Payouts, 2)
	assert.Equal(t, models.Payout{EntryID: "e-b", UserID: "b", Rank: 1, Votes: 2, Amount: 40110}, st.Payouts[0])
	assert.Equal(t, models.Payout{EntryID: "e-a", UserID: "a", Rank: 2, Votes: 1, Amount: 17190}, st.Payouts[1])

	c, err := h.eng.GetContest(h.ctx, contestID)
	require.NoError(t, err)
	assert.Equal(t, models.ContestStatusSettled, c.Status)

	require.Len(t, rep.rows, 1)
	assert.Equal(t, contestID, rep.rows[0].ContestID)

	// a second sweep is a no-op
	assert.True(t, h.sweep().Empty())
	assert.Equal(t, int64(40110), h.winnings("b"))
	assert.Len(t, h.feeTransfers(), 1)
	assert.Len(t, rep.rows, 1)
}

func TestSettlementSplitsTiedPrizes(t *testing.T) {
	h := newHarness(t)
	duo := defaultLevel("duo")
	duo.ParticipantLimit = 2
	h.level(duo)
	h.price(tokenPrice)
	h.startContest("duo", "a", "b")

	h.advance(hourSec)
	h.castVote("e-a", "v1")
	h.castVote("e-b", "v2")
	h.advance(hourSec)
	h.sweep()

	assert.Equal(t, int64(19100), h.winnings("a"))
	assert.Equal(t, int64(19100), h.winnings("b"))
	fees := h.feeTransfers()
	require.Len(t, fees, 1)
	assert.Equal(t, int64(1800), fees[0].Amount)
}

func TestSettlementRemainderGoesToFeeAccount(t *testing.T) {
	h := newHarness(t)
	h.price(tokenPrice)
	contestID := h.startContest("lvl", "a")

	h.advance(2 * hourSec)
	h.sweep()

	// one entry only takes the first prize: 70% of 19100
	assert.Equal(t, int64(13370), h.winnings("a"))
	st, err := h.eng.GetSettlement(h.ctx, contestID)
	require.NoError(t, err)
	assert.Equal(t, int64(900), st.Fee)
	assert.Equal(t, int64(5730), st.Remainder)
	assert.Equal(t, int64(6630), st.ToFee)

	fees := h.feeTransfers()
	require.Len(t, fees, 1)
	assert.Equal(t, int64(6630), fees[0].Amount)
}

func TestFixedPrizeContest(t *testing.T) {
	h := newHarness(t)
	fixed := defaultLevel("fixed")
	fixed.ParticipantLimit = 2
	fixed.FixedPrize = 100000
	h.level(fixed)
	h.price(tokenPrice)
	h.startContest("fixed", "a", "b")

	h.advance(hourSec)
	h.castVote("e-a", "v1")
	h.castVote("e-a", "v2")
	h.castVote("e-b", "v3")
	h.advance(hourSec)
	h.sweep()

	assert.Equal(t, int64(70000), h.winnings("a"))
	assert.Equal(t, int64(30000), h.winnings("b"))
	fees := h.feeTransfers()
	require.Len(t, fees, 1)
	assert.Equal(t, int64(40000), fees[0].Amount)
}

func TestLevelEditsDoNotAffectRunningContest(t *testing.T) {
	h := newHarness(t)
	h.price(tokenPrice)
	h.startContest("lvl", "a", "b")

	edited := defaultLevel("lvl")
	edited.Fee = 100
	edited.Prizes = []uint32{100}
	_, err := h.eng.EditLevel(h.ctx, admin, "lvl", edited)
	require.NoError(t, err)

	h.advance(hourSec)
	h.castVote("e-a", "v1")
	h.advance(hourSec)
	h.sweep()

	// 4.5% of 40000 and the [70, 30] split still apply
	assert.Len(t, h.feeTransfers(), 1)
	assert.Equal(t, int64(1800), h.feeTransfers()[0].Amount)
	assert.Equal(t, int64(26740), h.winnings("a"))
	assert.Equal(t, int64(11460), h.winnings("b"))
}

func TestBlockEntryClawsBackExactly(t *testing.T) {
	h := newHarness(t)
	duo := defaultLevel("duo")
	duo.ParticipantLimit = 2
	h.level(duo)
	h.price(tokenPrice)

	h.startContest("lvl", "a", "b", "c")
	a := h.user("a")
	h.enter(a, "duo-a", "a", "duo")
	require.Equal(t, ActivationActivated, h.pay("duo-a", levelCost).Status)

	h.advance(hourSec)
	h.castVote("e-a", "v1")
	h.castVote("e-b", "v2")
	h.castVote("e-b", "v3")
	h.advance(hourSec)
	report := h.sweep()
	require.Len(t, report.Settled, 2)

	assert.Equal(t, int64(17190+13370), h.winnings("a"))
	assert.Equal(t, int64(17190), h.entry("e-a").Credited)

	_, err := h.eng.BlockEntry(h.ctx, models.Caller{Account: "acct-a"}, "e-a")
	assert.ErrorIs(t, err, ErrAdminRequired)

	blocked, err := h.eng.BlockEntry(h.ctx, admin, "e-a")
	require.NoError(t, err)
	assert.True(t, blocked.Blocked)
	assert.Zero(t, blocked.Credited)
	assert.Equal(t, int64(13370), h.winnings("a"))
	assert.Equal(t, int64(40110), h.winnings("b"))

	_, err = h.eng.BlockEntry(h.ctx, admin, "e-a")
	assert.ErrorIs(t, err, ErrAlreadyBlocked)
	assert.Equal(t, int64(13370), h.winnings("a"))
}

func TestBlockedEntryExcludedFromRanking(t *testing.T) {
	h := newHarness(t)
	h.price(tokenPrice)
	h.startContest("lvl", "a", "b", "c")

	h.advance(hourSec)
	h.castVote("e-a", "v1")
	h.castVote("e-b", "v2")
	h.castVote("e-b", "v3")
	_, err := h.eng.BlockEntry(h.ctx, admin, "e-b")
	require.NoError(t, err)

	h.advance(hourSec)
	h.sweep()

	// the blocked escrow still counts towards the pool
	assert.Equal(t, int64(40110), h.winnings("a"))
	assert.Equal(t, int64(17190), h.winnings("c"))
	assert.Zero(t, h.winnings("b"))
	assert.Equal(t, int64(2700), h.feeTransfers()[0].Amount)
}

func TestSweepIsBoundedPerCall(t *testing.T) {
	h := newHarness(t)
	cfg, err := h.eng.GlobalConfig(h.ctx)
	require.NoError(t, err)
	cfg.MaxRowsPerCall = 1
	_, err = h.eng.SetGlobalConfig(h.ctx, admin, cfg)
	require.NoError(t, err)

	solo := defaultLevel("solo")
	solo.ParticipantLimit = 1
	h.level(solo)
	h.price(tokenPrice)
	first := h.startContest("solo", "a")
	second := h.startContest("solo", "b")
	require.NotEqual(t, first, second)

	h.advance(2 * hourSec)
	assert.Equal(t, []uint64{first}, h.sweep().Settled)
	assert.Equal(t, []uint64{second}, h.sweep().Settled)
	assert.True(t, h.sweep().Empty())
}

func TestSweepArchivesOldEntries(t *testing.T) {
	h := newHarness(t)
	cfg, err := h.eng.GlobalConfig(h.ctx)
	require.NoError(t, err)
	cfg.EntryArchiveSec = 24 * hourSec
	_, err = h.eng.SetGlobalConfig(h.ctx, admin, cfg)
	require.NoError(t, err)

	slow := defaultLevel("slow")
	slow.VotePeriod = 10 * 24 * hourSec
	h.level(slow)
	h.price(tokenPrice)

	h.startContest("lvl", "b")
	h.startContest("slow", "c")
	alice := h.user("alice")
	h.enter(alice, "e-alice", "alice", "lvl")

	h.advance(24*hourSec + 1)
	report := h.sweep()
	assert.Len(t, report.Settled, 1)
	assert.Equal(t, 2, report.Archived)

	_, err = h.eng.GetEntry(h.ctx, "e-alice")
	assert.ErrorIs(t, err, ErrEntryNotFound)
	_, err = h.eng.GetEntry(h.ctx, "e-b")
	assert.ErrorIs(t, err, ErrEntryNotFound)

	// its contest is still voting
	assert.Equal(t, "slow", h.entry("e-c").LevelID)
}

func TestSweepArchiveDisabled(t *testing.T) {
	h := newHarness(t)
	cfg, err := h.eng.GlobalConfig(h.ctx)
	require.NoError(t, err)
	cfg.EntryArchiveSec = 0
	_, err = h.eng.SetGlobalConfig(h.ctx, admin, cfg)
	require.NoError(t, err)

	alice := h.user("alice")
	h.enter(alice, "e-alice", "alice", "lvl")
	h.advance(365 * 24 * hourSec)
	assert.Zero(t, h.sweep().Archived)
	h.entry("e-alice")
}

func TestSettlementWithoutFeeAccount(t *testing.T) {
	h := newHarness(t)
	cfg, err := h.eng.GlobalConfig(h.ctx)
	require.NoError(t, err)
	cfg.FeeAccount = ""
	_, err = h.eng.SetGlobalConfig(h.ctx, admin, cfg)
	require.NoError(t, err)

	h.price(tokenPrice)
	contestID := h.startContest("lvl", "a")
	h.advance(2 * hourSec)
	h.sweep()

	assert.Empty(t, h.feeTransfers())
	st, err := h.eng.GetSettlement(h.ctx, contestID)
	require.NoError(t, err)
	assert.Equal(t, int64(6630), st.ToFee)
}
