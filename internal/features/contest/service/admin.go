package service

import (
	"context"
	"time"

	"contest-backend/internal/common/errors"
	"contest-backend/internal/common/validation"
	"contest-backend/internal/features/contest/models"
	"contest-backend/internal/features/contest/store"
	"contest-backend/internal/features/pricing"
)

type CategoryInput struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	MaxVideoLength uint32 `json:"max_video_length"`
}

type CategoryEdit struct {
	Name           string `json:"name"`
	MaxVideoLength uint32 `json:"max_video_length"`
	Archived       bool   `json:"archived"`
}

type LevelInput struct {
	ID                          string   `json:"id"`
	Name                        string   `json:"name"`
	CategoryID                  string   `json:"category_id"`
	Price                       uint32   `json:"price"`
	ParticipantLimit            uint32   `json:"participant_limit"`
	SubmissionPeriod            uint32   `json:"submission_period"`
	VotePeriod                  uint32   `json:"vote_period"`
	Fee                         uint32   `json:"fee"`
	Prizes                      []uint32 `json:"prizes"`
	FixedPrize                  int64    `json:"fixed_prize"`
	AllowedSimultaneousContests uint32   `json:"allowed_simultaneous_contests"`
	VoteStartUTCHour            *uint8   `json:"vote_start_utc_hour,omitempty"`
	Archived                    bool     `json:"archived"`
}

type ProfileInput struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Account  string `json:"account"`
	Active   bool   `json:"active"`
}

// RecordCurrencyPrice stores a seconds-keyed currency high.
func (e *Engine) RecordCurrencyPrice(ctx context.Context, caller models.Caller, openTime, value int64, intervalSec uint32) (models.PriceSample, error) {
	return e.recordPrice(ctx, caller, models.SeriesCurrency, models.PriceSample{
		OpenTime:    openTime,
		Value:       value,
		IntervalSec: intervalSec,
	})
}

// RecordAssetPrice stores a millis-keyed asset high.
func (e *Engine) RecordAssetPrice(ctx context.Context, caller models.Caller, timeMillis, value int64) (models.PriceSample, error) {
	return e.recordPrice(ctx, caller, models.SeriesAsset, models.PriceSample{OpenTime: timeMillis, Value: value})
}

func (e *Engine) recordPrice(ctx context.Context, caller models.Caller, series models.Series, sample models.PriceSample) (models.PriceSample, error) {
	if err := requireAdmin(caller); err != nil {
		return models.PriceSample{}, err
	}
	var pruned int
	_, err := e.update(ctx, func(op *opContext) error {
		var err error
		pruned, err = pricing.Record(op.tx, series, sample, op.now, op.cfg.PriceRetentionSec)
		return err
	})
	if err != nil {
		return models.PriceSample{}, err
	}
	e.log.Debug().
		Str("series", string(series)).
		Int64("open_time", sample.OpenTime).
		Int64("value", sample.Value).
		Int("pruned", pruned).
		Msg("Price sample recorded")
	return sample, nil
}

func (in CategoryInput) validate() error {
	if err := validation.ValidateID("id", in.ID); err != nil {
		return errors.NewValidationError("id", err.Error())
	}
	if err := validation.ValidateName(in.Name); err != nil {
		return errors.NewValidationError("name", err.Error())
	}
	return nil
}

func (e *Engine) CreateCategory(ctx context.Context, caller models.Caller, in CategoryInput) (models.Category, error) {
	if err := requireAdmin(caller); err != nil {
		return models.Category{}, err
	}
	if err := in.validate(); err != nil {
		return models.Category{}, err
	}

	cat := models.Category{ID: in.ID, Name: in.Name, MaxVideoLength: in.MaxVideoLength}
	_, err := e.update(ctx, func(op *opContext) error {
		if _, exists := op.tx.Category(in.ID); exists {
			return errors.With(ErrCategoryExists, detail("category_id", in.ID))
		}
		op.tx.PutCategory(cat)
		return nil
	})
	if err != nil {
		return models.Category{}, err
	}
	e.log.Info().Str("category_id", cat.ID).Msg("Category created")
	return cat, nil
}

func (e *Engine) EditCategory(ctx context.Context, caller models.Caller, id string, in CategoryEdit) (models.Category, error) {
	if err := requireAdmin(caller); err != nil {
		return models.Category{}, err
	}
	if err := validation.ValidateName(in.Name); err != nil {
		return models.Category{}, errors.NewValidationError("name", err.Error())
	}

	var cat models.Category
	_, err := e.update(ctx, func(op *opContext) error {
		var ok bool
		cat, ok = op.tx.Category(id)
		if !ok {
			return errors.With(ErrCategoryNotFound, detail("category_id", id))
		}
		cat.Name = in.Name
		cat.MaxVideoLength = in.MaxVideoLength
		cat.Archived = in.Archived
		op.tx.PutCategory(cat)
		return nil
	})
	if err != nil {
		return models.Category{}, err
	}
	return cat, nil
}

func (in LevelInput) validate() error {
	if err := validation.ValidateID("id", in.ID); err != nil {
		return errors.NewValidationError("id", err.Error())
	}
	if err := validation.ValidateName(in.Name); err != nil {
		return errors.NewValidationError("name", err.Error())
	}
	if in.ParticipantLimit < 1 {
		return errors.NewValidationError("participant_limit", "must be at least 1")
	}
	if in.VotePeriod == 0 {
		return errors.NewValidationError("vote_period", "must be positive")
	}
	if in.Fee > 1000 {
		return errors.NewValidationError("fee", "cannot exceed 1000 (100%)")
	}
	if len(in.Prizes) == 0 {
		return errors.NewValidationError("prizes", "at least one prize percentage is required")
	}
	var total uint32
	for _, p := range in.Prizes {
		if p == 0 {
			return errors.NewValidationError("prizes", "percentages must be positive")
		}
		total += p
	}
	if total > 100 {
		return errors.NewValidationError("prizes", "percentages cannot add up to more than 100")
	}
	if in.FixedPrize < 0 {
		return errors.NewValidationError("fixed_prize", "must not be negative")
	}
	if in.VoteStartUTCHour != nil && *in.VoteStartUTCHour > 23 {
		return errors.NewValidationError("vote_start_utc_hour", "must be between 0 and 23")
	}
	return nil
}

func (in LevelInput) level() models.Level {
	prizes := make([]uint32, len(in.Prizes))
	copy(prizes, in.Prizes)
	var hour *uint8
	if in.VoteStartUTCHour != nil {
		h := *in.VoteStartUTCHour
		hour = &h
	}
	return models.Level{
		ID:                          in.ID,
		Name:                        in.Name,
		CategoryID:                  in.CategoryID,
		Price:                       in.Price,
		ParticipantLimit:            in.ParticipantLimit,
		SubmissionPeriod:            in.SubmissionPeriod,
		VotePeriod:                  in.VotePeriod,
		Fee:                         in.Fee,
		Prizes:                      prizes,
		FixedPrize:                  in.FixedPrize,
		AllowedSimultaneousContests: in.AllowedSimultaneousContests,
		VoteStartUTCHour:            hour,
		Archived:                    in.Archived,
	}
}

func levelCategory(r *store.Reader, categoryID string) error {
	if _, ok := r.Category(categoryID); !ok {
		return errors.With(ErrCategoryNotFound, detail("category_id", categoryID))
	}
	return nil
}

func (e *Engine) CreateLevel(ctx context.Context, caller models.Caller, in LevelInput) (models.Level, error) {
	if err := requireAdmin(caller); err != nil {
		return models.Level{}, err
	}
	if err := in.validate(); err != nil {
		return models.Level{}, err
	}

	level := in.level()
	level.Archived = false
	_, err := e.update(ctx, func(op *opContext) error {
		if _, exists := op.tx.Level(in.ID); exists {
			return errors.With(ErrLevelExists, detail("level_id", in.ID))
		}
		if err := levelCategory(&op.tx.Reader, in.CategoryID); err != nil {
			return err
		}
		op.tx.PutLevel(level)
		return nil
	})
	if err != nil {
		return models.Level{}, err
	}
	e.log.Info().Str("level_id", level.ID).Str("category_id", level.CategoryID).Msg("Level created")
	return level, nil
}

// EditLevel replaces the level definition. Existing contests keep their
// snapshot.
func (e *Engine) EditLevel(ctx context.Context, caller models.Caller, id string, in LevelInput) (models.Level, error) {
	if err := requireAdmin(caller); err != nil {
		return models.Level{}, err
	}
	in.ID = id
	if err := in.validate(); err != nil {
		return models.Level{}, err
	}

	level := in.level()
	_, err := e.update(ctx, func(op *opContext) error {
		if _, ok := op.tx.Level(id); !ok {
			return errors.With(ErrLevelNotFound, detail("level_id", id))
		}
		if err := levelCategory(&op.tx.Reader, in.CategoryID); err != nil {
			return err
		}
		op.tx.PutLevel(level)
		return nil
	})
	if err != nil {
		return models.Level{}, err
	}
	return level, nil
}

func validateGlobalConfig(cfg *models.GlobalConfig) error {
	if cfg.EntryExpirationSec == 0 {
		return errors.NewValidationError("entry_expiration_sec", "must be positive")
	}
	if cfg.PriceFreshnessSec == 0 {
		return errors.NewValidationError("price_freshness_sec", "must be positive")
	}
	if cfg.PriceRetentionSec == 0 {
		return errors.NewValidationError("price_retention_sec", "must be positive")
	}
	if err := validation.ValidateSymbol(cfg.CurrencySymbol); err != nil {
		return errors.NewValidationError("currency_symbol", err.Error())
	}
	if _, err := models.ParseSeries(string(cfg.PriceSeries)); err != nil {
		return errors.NewValidationError("price_series", err.Error())
	}
	if err := validation.ValidateMemo(cfg.FeeAccountMemo); err != nil {
		return errors.NewValidationError("fee_account_memo", err.Error())
	}
	if cfg.FeeAccount != "" {
		addr, err := validation.NormalizeWalletAddress(cfg.FeeAccount)
		if err != nil {
			return errors.NewValidationError("fee_account", err.Error())
		}
		cfg.FeeAccount = addr
	}
	return nil
}

// SetGlobalConfig replaces the global parameters read by every operation.
func (e *Engine) SetGlobalConfig(ctx context.Context, caller models.Caller, cfg models.GlobalConfig) (models.GlobalConfig, error) {
	if err := requireAdmin(caller); err != nil {
		return models.GlobalConfig{}, err
	}
	if err := validateGlobalConfig(&cfg); err != nil {
		return models.GlobalConfig{}, err
	}
	_, err := e.store.Update(ctx, func(tx *store.Tx) error {
		tx.PutConfig(cfg)
		return nil
	})
	if err != nil {
		return models.GlobalConfig{}, err
	}
	e.log.Info().
		Str("currency", cfg.CurrencySymbol).
		Str("fee_account", cfg.FeeAccount).
		Dur("entry_expiration", time.Duration(cfg.EntryExpirationSec)*time.Second).
		Msg("Global config updated")
	return cfg, nil
}

// SyncProfile mirrors an externally managed profile. Winnings are preserved.
func (e *Engine) SyncProfile(ctx context.Context, caller models.Caller, in ProfileInput) (models.Profile, error) {
	if err := requireAdmin(caller); err != nil {
		return models.Profile{}, err
	}
	if err := validation.ValidateID("id", in.ID); err != nil {
		return models.Profile{}, errors.NewValidationError("id", err.Error())
	}
	if err := validation.ValidateUsername(in.Username); err != nil {
		return models.Profile{}, errors.NewValidationError("username", err.Error())
	}
	if in.Account == "" {
		return models.Profile{}, errors.NewValidationError("account", "cannot be empty")
	}

	var profile models.Profile
	_, err := e.update(ctx, func(op *opContext) error {
		hash := models.HashUsername(in.Username)
		if other, ok := op.tx.ProfileByUsernameHash(hash); ok && other.ID != in.ID {
			return errors.With(ErrUsernameTaken, detail("username", in.Username))
		}
		profile, _ = op.tx.Profile(in.ID)
		profile.ID = in.ID
		profile.Username = in.Username
		profile.UsernameHash = hash
		profile.Account = in.Account
		profile.Active = in.Active
		op.tx.PutProfile(profile)
		return nil
	})
	if err != nil {
		return models.Profile{}, err
	}
	return profile, nil
}
