package service

import (
	"context"
	"math"

	"github.com/google/uuid"

	"contest-backend/internal/common/errors"
	"contest-backend/internal/common/money"
	"contest-backend/internal/common/validation"
	"contest-backend/internal/features/contest/models"
	"contest-backend/internal/features/contest/store"
	"contest-backend/internal/features/pricing"
)

type EntryInput struct {
	ID      string       `json:"id"`
	UserID  string       `json:"user_id"`
	LevelID string       `json:"level_id"`
	Media   models.Media `json:"media"`
}

// ActivationResult describes what a payment did to its entry. Every status
// is a successful payment: the amount is always recorded.
type ActivationResult struct {
	EntryID        string           `json:"entry_id"`
	Status         ActivationStatus `json:"status"`
	ContestID      uint64           `json:"contest_id,omitempty"`
	Amount         int64            `json:"amount"`
	RequiredTokens int64            `json:"required_tokens,omitempty"`
}

func (in EntryInput) validate() error {
	if err := validation.ValidateID("id", in.ID); err != nil {
		return errors.NewValidationError("id", err.Error())
	}
	if err := validation.ValidateID("user_id", in.UserID); err != nil {
		return errors.NewValidationError("user_id", err.Error())
	}
	if err := validation.ValidateID("level_id", in.LevelID); err != nil {
		return errors.NewValidationError("level_id", err.Error())
	}
	hashes := []struct{ field, hash string }{
		{"media.video_720p", in.Media.Video720p},
		{"media.video_1080p", in.Media.Video1080p},
		{"media.cover", in.Media.Cover},
	}
	for _, h := range hashes {
		if err := validation.ValidateMediaHash(h.hash); err != nil {
			return errors.NewValidationError(h.field, err.Error())
		}
	}
	return nil
}

// Enter creates a new open entry. Inert prior entries of the same user and
// level are superseded; a live one rejects the call.
func (e *Engine) Enter(ctx context.Context, caller models.Caller, in EntryInput) (models.Entry, error) {
	if err := in.validate(); err != nil {
		return models.Entry{}, err
	}

	var created models.Entry
	_, err := e.update(ctx, func(op *opContext) error {
		if _, err := authorizeProfile(&op.tx.Reader, caller, in.UserID); err != nil {
			return err
		}
		if _, exists := op.tx.Entry(in.ID); exists {
			return errors.With(ErrEntryExists, detail("entry_id", in.ID))
		}
		if _, err := enterableLevel(&op.tx.Reader, in.LevelID); err != nil {
			return err
		}

		prior := op.tx.EntriesByUserLevel(in.UserID, in.LevelID)
		for _, p := range prior {
			if p.Open && isLive(&op.tx.Reader, p, op.ts(), op.cfg) {
				return errors.With(ErrLiveEntryExists, detail("entry_id", p.ID))
			}
		}
		for _, p := range prior {
			if p.Open {
				p.Open = false
				op.tx.PutEntry(p)
			}
		}

		created = models.Entry{
			ID:        in.ID,
			UserID:    in.UserID,
			LevelID:   in.LevelID,
			Media:     in.Media,
			Open:      true,
			CreatedAt: op.ts(),
		}
		op.tx.PutEntry(created)
		return nil
	})
	if err != nil {
		return models.Entry{}, err
	}

	e.log.Debug().Str("entry_id", created.ID).Str("user_id", created.UserID).Str("level_id", created.LevelID).Msg("Entry created")
	return created, nil
}

func enterableLevel(r *store.Reader, levelID string) (models.Level, error) {
	level, ok := r.Level(levelID)
	if !ok {
		return models.Level{}, errors.With(ErrLevelNotFound, detail("level_id", levelID))
	}
	if level.Archived {
		return models.Level{}, errors.With(ErrLevelArchived, detail("level_id", levelID))
	}
	if cat, ok := r.Category(level.CategoryID); !ok || cat.Archived {
		return models.Level{}, errors.With(ErrCategoryArchived, detail("category_id", level.CategoryID))
	}
	return level, nil
}

// isLive: an unassigned entry is live until it expires, an assigned one until
// its contest's vote window ends or the contest is settled.
func isLive(r *store.Reader, entry models.Entry, now int64, cfg models.GlobalConfig) bool {
	if !entry.Open || entry.Blocked {
		return false
	}
	if entry.ContestID == 0 {
		return !entry.Expired(now, cfg.EntryExpirationSec)
	}
	c, ok := r.Contest(entry.ContestID)
	if !ok {
		return false
	}
	return c.Running(now)
}

// ApplyPayment records an escrow deposit for entryID and tries to activate it.
func (e *Engine) ApplyPayment(ctx context.Context, entryID string, amount int64, symbol string) (ActivationResult, error) {
	if amount < 0 {
		return ActivationResult{}, errors.NewValidationError("amount", "must not be negative")
	}

	var res ActivationResult
	_, err := e.update(ctx, func(op *opContext) error {
		if symbol != op.cfg.CurrencySymbol {
			return errors.With(ErrCurrencyMismatch, map[string]interface{}{
				"symbol":   symbol,
				"expected": op.cfg.CurrencySymbol,
			})
		}
		entry, ok := op.tx.Entry(entryID)
		if !ok {
			return errors.With(ErrEntryNotFound, detail("entry_id", entryID))
		}

		if entry.Amount > math.MaxInt64-amount {
			return errors.With(ErrAmountOverflow, map[string]interface{}{
				"entry_id": entryID,
				"amount":   amount,
				"escrow":   entry.Amount,
			})
		}
		entry.Amount += amount
		op.tx.PutEntry(entry)

		var err error
		res, err = e.activate(op, entry)
		return err
	})
	if err != nil {
		return ActivationResult{}, err
	}

	e.log.Debug().
		Str("entry_id", entryID).
		Int64("amount", amount).
		Str("status", string(res.Status)).
		Uint64("contest_id", res.ContestID).
		Msg("Payment applied")
	return res, nil
}

// activate assigns an unassigned, unexpired entry to a contest once a fresh
// price shows its escrow covers the contest price.
func (e *Engine) activate(op *opContext, entry models.Entry) (ActivationResult, error) {
	res := ActivationResult{EntryID: entry.ID, Amount: entry.Amount, ContestID: entry.ContestID}
	now := op.ts()

	switch {
	case entry.Blocked:
		res.Status = ActivationBlocked
		return res, nil
	case entry.ContestID != 0:
		res.Status = ActivationAlreadyAssigned
		return res, nil
	case entry.Expired(now, op.cfg.EntryExpirationSec):
		res.Status = ActivationExpired
		return res, nil
	}

	level, ok := op.tx.Level(entry.LevelID)
	if !ok {
		return res, errors.With(ErrLevelNotFound, detail("level_id", entry.LevelID))
	}

	sample, ok := pricing.LatestFresh(op.tx, op.cfg.PriceSeries, op.now, op.cfg.PriceFreshnessSec)
	if !ok {
		markWaiting(op, &entry, true, false)
		res.Status = ActivationPriceMissing
		return res, nil
	}

	contest, found := openContest(&op.tx.Reader, level.ID, now)
	price := level.Price
	if found {
		price = contest.Price
	}
	required, err := money.RequiredTokens(price, sample.Value)
	if err != nil {
		return res, errors.Wrap(err, errors.ErrCodeInternal, "price conversion failed")
	}
	res.RequiredTokens = required

	if entry.Amount < required {
		// ждем доплату, sweep тут не поможет
		markWaiting(op, &entry, false, false)
		res.Status = ActivationInsufficient
		return res, nil
	}

	if found {
		contest.ParticipantCount++
	} else {
		if limit := level.AllowedSimultaneousContests; limit > 0 && runningContests(&op.tx.Reader, level.ID, now) >= limit {
			markWaiting(op, &entry, false, true)
			res.Status = ActivationContestLimit
			return res, nil
		}
		contest = models.NewContest(op.tx.NextID(seqContest), level, now)
		e.log.Info().
			Uint64("contest_id", contest.ID).
			Str("level_id", level.ID).
			Int64("vote_starts_at", contest.VoteStartsAt).
			Msg("Contest created")
	}
	op.tx.PutContest(contest)

	entry.ContestID = contest.ID
	entry.PriceUnavailable = false
	entry.ContestLimited = false
	op.tx.PutEntry(entry)

	res.Status = ActivationActivated
	res.ContestID = contest.ID
	return res, nil
}

// markWaiting records why an unassigned entry did not activate. Flagged
// entries are re-checked by Sweep. Nothing is written when the flags already
// match.
func markWaiting(op *opContext, entry *models.Entry, noPrice, noSlot bool) {
	if entry.PriceUnavailable == noPrice && entry.ContestLimited == noSlot {
		return
	}
	entry.PriceUnavailable = noPrice
	entry.ContestLimited = noSlot
	op.tx.PutEntry(*entry)
}

// openContest returns the lowest-id contest of the level still accepting
// entries.
func openContest(r *store.Reader, levelID string, now int64) (models.Contest, bool) {
	for _, c := range r.ContestsByLevel(levelID) {
		if c.AcceptsEntries(now) {
			return c, true
		}
	}
	return models.Contest{}, false
}

func runningContests(r *store.Reader, levelID string, now int64) uint32 {
	var n uint32
	for _, c := range r.ContestsByLevel(levelID) {
		if c.Running(now) {
			n++
		}
	}
	return n
}

// RefundEntry returns the escrow of an unassigned entry to the address to.
func (e *Engine) RefundEntry(ctx context.Context, caller models.Caller, entryID, to, memo string) (models.TransferRequest, error) {
	addr, err := validation.NormalizeWalletAddress(to)
	if err != nil {
		return models.TransferRequest{}, errors.NewValidationError("to", err.Error())
	}
	if err := validation.ValidateMemo(memo); err != nil {
		return models.TransferRequest{}, errors.NewValidationError("memo", err.Error())
	}

	var transfer models.TransferRequest
	_, err = e.update(ctx, func(op *opContext) error {
		entry, ok := op.tx.Entry(entryID)
		if !ok {
			return errors.With(ErrEntryNotFound, detail("entry_id", entryID))
		}
		owner, ok := op.tx.Profile(entry.UserID)
		if !ok {
			return errors.With(ErrProfileNotFound, detail("profile_id", entry.UserID))
		}
		if !caller.Controls(owner) {
			return ErrNotAccountOwner
		}
		if entry.ContestID != 0 {
			return errors.With(ErrEntryAssigned, detail("contest_id", entry.ContestID))
		}
		if entry.Amount <= 0 {
			return ErrNothingToRefund
		}

		transfer = models.TransferRequest{
			ID:        uuid.New().String(),
			To:        addr,
			Amount:    entry.Amount,
			Symbol:    op.cfg.CurrencySymbol,
			Memo:      memo,
			Reason:    models.TransferReasonRefund,
			EntryID:   entry.ID,
			CreatedAt: op.ts(),
		}
		op.tx.PutTransfer(transfer)

		entry.Amount = 0
		op.tx.PutEntry(entry)
		return nil
	})
	if err != nil {
		return models.TransferRequest{}, err
	}

	e.log.Info().
		Str("entry_id", entryID).
		Str("amount", money.Format(transfer.Amount, transfer.Symbol)).
		Str("to", transfer.To).
		Msg("Entry refunded")
	return transfer, nil
}
