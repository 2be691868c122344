package service

import (
	"context"
	"slices"
	"strings"

	"github.com/google/uuid"

	"contest-backend/internal/common/errors"
	"contest-backend/internal/common/money"
	"contest-backend/internal/features/contest/models"
)

// SweepReport summarises one sweep. An all-zero report is a no-op sweep.
type SweepReport struct {
	Settled     []uint64 `json:"settled"`
	Reactivated int      `json:"reactivated"`
	Archived    int      `json:"archived"`
}

// Empty reports whether the sweep changed nothing.
func (r SweepReport) Empty() bool {
	return len(r.Settled) == 0 && r.Reactivated == 0 && r.Archived == 0
}

// Sweep settles every contest whose vote window has ended, re-checks entries
// waiting for a price and archives aged entries. Each step handles at most
// MaxRowsPerCall rows; anything left over is picked up by the next sweep.
func (e *Engine) Sweep(ctx context.Context) (SweepReport, error) {
	var (
		report      SweepReport
		settlements []models.Settlement
	)
	_, err := e.update(ctx, func(op *opContext) error {
		limit := int(op.cfg.MaxRowsPerCall)

		for _, contest := range op.tx.SettleableContests(op.ts(), limit) {
			st := e.settle(op, contest)
			settlements = append(settlements, st)
			report.Settled = append(report.Settled, contest.ID)
		}

		n, err := e.reactivate(op, limit)
		if err != nil {
			return err
		}
		report.Reactivated = n

		report.Archived = e.archive(op, limit)
		return nil
	})
	if err != nil {
		return SweepReport{}, err
	}

	if !report.Empty() {
		e.log.Info().
			Int("settled", len(report.Settled)).
			Int("reactivated", report.Reactivated).
			Int("archived", report.Archived).
			Msg("Sweep completed")
	}

	if e.reporter != nil && len(settlements) > 0 {
		if err := e.reporter.SaveSettlements(ctx, settlements); err != nil {
			e.log.Error().Err(err).Int("count", len(settlements)).Msg("Failed to report settlements")
		}
	}
	return report, nil
}

// settle pays out one contest and marks it settled.
func (e *Engine) settle(op *opContext, contest models.Contest) models.Settlement {
	entries := op.tx.EntriesByContest(contest.ID)

	var escrow int64
	ranked := make([]models.Entry, 0, len(entries))
	for _, entry := range entries {
		escrow += entry.Amount
		if !entry.Blocked {
			ranked = append(ranked, entry)
		}
	}
	slices.SortStableFunc(ranked, func(a, b models.Entry) int {
		if a.Votes != b.Votes {
			if a.Votes > b.Votes {
				return -1
			}
			return 1
		}
		return strings.Compare(a.ID, b.ID)
	})

	st := models.Settlement{
		ContestID: contest.ID,
		LevelID:   contest.LevelID,
		Escrow:    escrow,
		SettledAt: op.ts(),
	}
	fixed := contest.FixedPrize > 0
	if fixed {
		st.GrossPool = contest.FixedPrize
	} else {
		st.GrossPool = escrow
		st.Fee = money.FeeOf(escrow, contest.Fee)
	}
	st.NetPool = st.GrossPool - st.Fee

	votes := make([]uint32, len(ranked))
	for i, entry := range ranked {
		votes[i] = entry.Votes
	}
	shares := Split(votes, contest.Prizes, st.NetPool)

	var distributed int64
	rank := 0
	for i, entry := range ranked {
		if i == 0 || entry.Votes != ranked[i-1].Votes {
			rank = i + 1
		}
		amount := shares[i]
		if amount == 0 {
			continue
		}
		profile, ok := op.tx.Profile(entry.UserID)
		if !ok {
			e.log.Warn().Str("entry_id", entry.ID).Str("user_id", entry.UserID).Msg("Winner has no profile, share kept as remainder")
			continue
		}
		profile.Winnings += amount
		op.tx.PutProfile(profile)

		entry.Credited += amount
		op.tx.PutEntry(entry)

		distributed += amount
		st.Payouts = append(st.Payouts, models.Payout{
			EntryID: entry.ID,
			UserID:  entry.UserID,
			Rank:    rank,
			Votes:   entry.Votes,
			Amount:  amount,
		})
	}
	st.Remainder = st.NetPool - distributed

	// in fixed-prize mode the whole escrow goes to the fee account
	if fixed {
		st.ToFee = escrow
	} else {
		st.ToFee = st.Fee + st.Remainder
	}
	if st.ToFee > 0 {
		if op.cfg.FeeAccount == "" {
			e.log.Warn().Uint64("contest_id", contest.ID).Int64("amount", st.ToFee).Msg("Fee account is not configured, fee transfer skipped")
		} else {
			op.tx.PutTransfer(models.TransferRequest{
				ID:        uuid.New().String(),
				To:        op.cfg.FeeAccount,
				Amount:    st.ToFee,
				Symbol:    op.cfg.CurrencySymbol,
				Memo:      op.cfg.FeeAccountMemo,
				Reason:    models.TransferReasonFee,
				ContestID: contest.ID,
				CreatedAt: op.ts(),
			})
		}
	}

	contest.Settled = true
	contest.SettledAt = op.ts()
	op.tx.PutContest(contest)
	op.tx.PutSettlement(st)

	e.log.Info().
		Uint64("contest_id", contest.ID).
		Str("gross", money.Format(st.GrossPool, op.cfg.CurrencySymbol)).
		Str("fee", money.Format(st.Fee, op.cfg.CurrencySymbol)).
		Int("winners", len(st.Payouts)).
		Msg("Contest settled")
	return st
}

// reactivate re-runs activation for entries that were waiting for a price or
// for a free contest slot. Flags on entries that can no longer activate are
// cleared so they stop occupying the per-call budget.
func (e *Engine) reactivate(op *opContext, limit int) (int, error) {
	pending := op.tx.PendingActivationEntries()
	if limit > 0 && len(pending) > limit {
		pending = pending[:limit]
	}

	activated := 0
	for _, entry := range pending {
		if entry.ContestID != 0 || entry.Blocked || entry.Expired(op.ts(), op.cfg.EntryExpirationSec) {
			markWaiting(op, &entry, false, false)
			continue
		}
		res, err := e.activate(op, entry)
		if err != nil {
			return activated, err
		}
		if res.Status == ActivationActivated {
			activated++
		}
	}
	return activated, nil
}

// archive deletes entries older than EntryArchiveSec. Entries of contests that
// are not settled yet are kept since their escrow belongs to a pending pool.
// A zero EntryArchiveSec disables archiving.
func (e *Engine) archive(op *opContext, limit int) int {
	if op.cfg.EntryArchiveSec == 0 {
		return 0
	}
	cutoff := op.ts() - int64(op.cfg.EntryArchiveSec)

	archived := 0
	for _, entry := range op.tx.EntriesCreatedBefore(cutoff) {
		if limit > 0 && archived >= limit {
			break
		}
		if entry.ContestID != 0 {
			if c, ok := op.tx.Contest(entry.ContestID); ok && !c.Settled {
				continue
			}
		}
		if entry.ContestID == 0 && entry.Amount > 0 {
			e.log.Warn().
				Str("entry_id", entry.ID).
				Str("amount", money.Format(entry.Amount, op.cfg.CurrencySymbol)).
				Msg("Archiving unrefunded entry")
		}
		op.tx.DeleteEntry(entry.ID)
		archived++
	}
	return archived
}

// BlockEntry claws back what settlement credited for the entry and excludes
// it from further consideration.
func (e *Engine) BlockEntry(ctx context.Context, caller models.Caller, entryID string) (models.Entry, error) {
	if err := requireAdmin(caller); err != nil {
		return models.Entry{}, err
	}

	var (
		blocked    models.Entry
		clawedBack int64
	)
	_, err := e.update(ctx, func(op *opContext) error {
		entry, ok := op.tx.Entry(entryID)
		if !ok {
			return errors.With(ErrEntryNotFound, detail("entry_id", entryID))
		}
		if entry.Blocked {
			return errors.With(ErrAlreadyBlocked, detail("entry_id", entryID))
		}

		if entry.Credited != 0 {
			if profile, ok := op.tx.Profile(entry.UserID); ok {
				profile.Winnings -= entry.Credited
				op.tx.PutProfile(profile)
			}
			clawedBack = entry.Credited
		}

		entry.Credited = 0
		entry.Blocked = true
		entry.Open = false
		op.tx.PutEntry(entry)
		blocked = entry
		return nil
	})
	if err != nil {
		return models.Entry{}, err
	}

	e.log.Info().Str("entry_id", entryID).Int64("clawed_back", clawedBack).Msg("Entry blocked")
	return blocked, nil
}
