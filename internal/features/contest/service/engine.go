package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"contest-backend/internal/common/errors"
	"contest-backend/internal/common/logger"
	"contest-backend/internal/features/contest/models"
	"contest-backend/internal/features/contest/store"
)

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Engine runs every contest operation as one store transaction.
type Engine struct {
	store    *store.Store
	clock    Clock
	reporter SettlementReporter
	log      zerolog.Logger
}

var _ ContestService = (*Engine)(nil)

type Option func(*Engine)

func WithClock(c Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithReporter hands every committed settlement to r.
func WithReporter(r SettlementReporter) Option {
	return func(e *Engine) { e.reporter = r }
}

func NewEngine(st *store.Store, opts ...Option) *Engine {
	e := &Engine{
		store: st,
		clock: systemClock{},
		log:   logger.Component("contest_engine"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Bootstrap stores defaults as the global config unless one already exists.
func (e *Engine) Bootstrap(ctx context.Context, defaults models.GlobalConfig) error {
	if err := validateGlobalConfig(&defaults); err != nil {
		return err
	}
	_, err := e.store.Update(ctx, func(tx *store.Tx) error {
		if _, ok := tx.Config(); ok {
			return nil
		}
		tx.PutConfig(defaults)
		e.log.Info().
			Str("currency", defaults.CurrencySymbol).
			Str("price_series", string(defaults.PriceSeries)).
			Msg("Global config initialised")
		return nil
	})
	return err
}

// opContext is what every operation sees at the start of its transaction.
type opContext struct {
	tx  *store.Tx
	cfg models.GlobalConfig
	now time.Time
}

func (o *opContext) ts() int64 { return o.now.Unix() }

func (e *Engine) update(ctx context.Context, fn func(op *opContext) error) (store.Changes, error) {
	return e.store.Update(ctx, func(tx *store.Tx) error {
		cfg, ok := tx.Config()
		if !ok {
			return ErrConfigMissing
		}
		return fn(&opContext{tx: tx, cfg: cfg, now: e.clock.Now()})
	})
}

func requireAdmin(caller models.Caller) error {
	if !caller.Admin {
		return ErrAdminRequired
	}
	return nil
}

// authorizeProfile loads profileID and checks the caller acts for it and it
// is active.
func authorizeProfile(r *store.Reader, caller models.Caller, profileID string) (models.Profile, error) {
	p, ok := r.Profile(profileID)
	if !ok {
		return models.Profile{}, errors.With(ErrProfileNotFound, detail("profile_id", profileID))
	}
	if !caller.Controls(p) {
		return models.Profile{}, ErrNotAccountOwner
	}
	if !p.Active {
		return models.Profile{}, errors.With(ErrProfileInactive, detail("profile_id", profileID))
	}
	return p, nil
}
