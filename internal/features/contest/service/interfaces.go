package service

import (
	"context"
	"time"

	"contest-backend/internal/features/contest/models"
)

// ContestService is the full set of engine operations.
type ContestService interface {
	RecordCurrencyPrice(ctx context.Context, caller models.Caller, openTime, value int64, intervalSec uint32) (models.PriceSample, error)
	RecordAssetPrice(ctx context.Context, caller models.Caller, timeMillis, value int64) (models.PriceSample, error)
	CreateCategory(ctx context.Context, caller models.Caller, in CategoryInput) (models.Category, error)
	EditCategory(ctx context.Context, caller models.Caller, id string, in CategoryEdit) (models.Category, error)
	CreateLevel(ctx context.Context, caller models.Caller, in LevelInput) (models.Level, error)
	EditLevel(ctx context.Context, caller models.Caller, id string, in LevelInput) (models.Level, error)
	SetGlobalConfig(ctx context.Context, caller models.Caller, cfg models.GlobalConfig) (models.GlobalConfig, error)
	SyncProfile(ctx context.Context, caller models.Caller, in ProfileInput) (models.Profile, error)

	Enter(ctx context.Context, caller models.Caller, in EntryInput) (models.Entry, error)
	ApplyPayment(ctx context.Context, entryID string, amount int64, symbol string) (ActivationResult, error)
	RefundEntry(ctx context.Context, caller models.Caller, entryID, to, memo string) (models.TransferRequest, error)
	Vote(ctx context.Context, caller models.Caller, entryID, voterUserID string) (models.Vote, error)
	Sweep(ctx context.Context) (SweepReport, error)
	BlockEntry(ctx context.Context, caller models.Caller, entryID string) (models.Entry, error)

	PriceSamples(ctx context.Context, series models.Series, from, to int64) ([]models.PriceSample, error)
	GetCategory(ctx context.Context, id string) (models.Category, error)
	GetLevel(ctx context.Context, id string) (models.Level, error)
	GetContest(ctx context.Context, id uint64) (ContestView, error)
	GetEntry(ctx context.Context, id string) (models.Entry, error)
	EntriesByUserLevel(ctx context.Context, userID, levelID string) ([]models.Entry, error)
	VotesByContest(ctx context.Context, contestID uint64) ([]models.Vote, error)
	GetProfile(ctx context.Context, id string) (models.Profile, error)
	ProfileByUsernameHash(ctx context.Context, hash string) (models.Profile, error)
	GetSettlement(ctx context.Context, contestID uint64) (models.Settlement, error)
	GlobalConfig(ctx context.Context) (models.GlobalConfig, error)
	Transfers(ctx context.Context) ([]models.TransferRequest, error)
}

// Clock is the engine's only source of time.
type Clock interface {
	Now() time.Time
}

// SettlementReporter receives settlement rows after the sweep committed them.
type SettlementReporter interface {
	SaveSettlements(ctx context.Context, settlements []models.Settlement) error
}
