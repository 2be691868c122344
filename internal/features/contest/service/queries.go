package service

import (
	"context"

	"contest-backend/internal/common/errors"
	"contest-backend/internal/features/contest/models"
	"contest-backend/internal/features/contest/store"
	"contest-backend/internal/features/pricing"
)

// ContestView is a contest with its status derived at read time.
type ContestView struct {
	models.Contest
	Status           models.ContestStatus `json:"status"`
	SubmissionEndsAt int64                `json:"submission_ends_at"`
	VoteEndsAt       int64                `json:"vote_ends_at"`
}

func (e *Engine) view(fn func(r *store.Reader) error) error {
	return e.store.View(fn)
}

func (e *Engine) PriceSamples(ctx context.Context, series models.Series, from, to int64) ([]models.PriceSample, error) {
	if _, err := models.ParseSeries(string(series)); err != nil {
		return nil, errors.NewValidationError("series", err.Error())
	}
	var out []models.PriceSample
	err := e.view(func(r *store.Reader) error {
		out = pricing.Range(r, series, from, to)
		return nil
	})
	return out, err
}

func (e *Engine) GetCategory(ctx context.Context, id string) (models.Category, error) {
	var cat models.Category
	err := e.view(func(r *store.Reader) error {
		var ok bool
		if cat, ok = r.Category(id); !ok {
			return errors.With(ErrCategoryNotFound, detail("category_id", id))
		}
		return nil
	})
	return cat, err
}

func (e *Engine) GetLevel(ctx context.Context, id string) (models.Level, error) {
	var level models.Level
	err := e.view(func(r *store.Reader) error {
		var ok bool
		if level, ok = r.Level(id); !ok {
			return errors.With(ErrLevelNotFound, detail("level_id", id))
		}
		return nil
	})
	return level, err
}

func (e *Engine) GetContest(ctx context.Context, id uint64) (ContestView, error) {
	var v ContestView
	err := e.view(func(r *store.Reader) error {
		c, ok := r.Contest(id)
		if !ok {
			return errors.With(ErrContestNotFound, detail("contest_id", id))
		}
		now := e.clock.Now().Unix()
		v = ContestView{
			Contest:          c,
			Status:           c.Status(now),
			SubmissionEndsAt: c.SubmissionEndsAt(),
			VoteEndsAt:       c.VoteEndsAt(),
		}
		return nil
	})
	return v, err
}

func (e *Engine) GetEntry(ctx context.Context, id string) (models.Entry, error) {
	var entry models.Entry
	err := e.view(func(r *store.Reader) error {
		var ok bool
		if entry, ok = r.Entry(id); !ok {
			return errors.With(ErrEntryNotFound, detail("entry_id", id))
		}
		return nil
	})
	return entry, err
}

func (e *Engine) EntriesByUserLevel(ctx context.Context, userID, levelID string) ([]models.Entry, error) {
	var out []models.Entry
	err := e.view(func(r *store.Reader) error {
		out = r.EntriesByUserLevel(userID, levelID)
		return nil
	})
	return out, err
}

func (e *Engine) VotesByContest(ctx context.Context, contestID uint64) ([]models.Vote, error) {
	var out []models.Vote
	err := e.view(func(r *store.Reader) error {
		if _, ok := r.Contest(contestID); !ok {
			return errors.With(ErrContestNotFound, detail("contest_id", contestID))
		}
		out = r.VotesByContest(contestID)
		return nil
	})
	return out, err
}

func (e *Engine) GetProfile(ctx context.Context, id string) (models.Profile, error) {
	var p models.Profile
	err := e.view(func(r *store.Reader) error {
		var ok bool
		if p, ok = r.Profile(id); !ok {
			return errors.With(ErrProfileNotFound, detail("profile_id", id))
		}
		return nil
	})
	return p, err
}

func (e *Engine) ProfileByUsernameHash(ctx context.Context, hash string) (models.Profile, error) {
	var p models.Profile
	err := e.view(func(r *store.Reader) error {
		var ok bool
		if p, ok = r.ProfileByUsernameHash(hash); !ok {
			return errors.With(ErrProfileNotFound, detail("username_hash", hash))
		}
		return nil
	})
	return p, err
}

func (e *Engine) GetSettlement(ctx context.Context, contestID uint64) (models.Settlement, error) {
	var st models.Settlement
	err := e.view(func(r *store.Reader) error {
		var ok bool
		if st, ok = r.Settlement(contestID); !ok {
			return errors.With(ErrContestNotFound, detail("contest_id", contestID)).
				WithDetail("reason", "not settled")
		}
		return nil
	})
	return st, err
}

func (e *Engine) GlobalConfig(ctx context.Context) (models.GlobalConfig, error) {
	var cfg models.GlobalConfig
	err := e.view(func(r *store.Reader) error {
		var ok bool
		if cfg, ok = r.Config(); !ok {
			return ErrConfigMissing
		}
		return nil
	})
	return cfg, err
}

func (e *Engine) Transfers(ctx context.Context) ([]models.TransferRequest, error) {
	var out []models.TransferRequest
	err := e.view(func(r *store.Reader) error {
		out = r.Transfers()
		return nil
	})
	return out, err
}
