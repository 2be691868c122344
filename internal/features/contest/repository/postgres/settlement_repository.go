// Package postgres keeps an append-only copy of contest settlements for
// reporting. The engine never reads it back.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"contest-backend/internal/common/errors"
	"contest-backend/internal/features/contest/models"
)

// DB is the subset of pgxpool.Pool the repository uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

const schema = `
CREATE TABLE IF NOT EXISTS contest_settlements (
	contest_id     BIGINT PRIMARY KEY,
	level_id       TEXT NOT NULL,
	escrow         BIGINT NOT NULL,
	gross_pool     BIGINT NOT NULL,
	fee            BIGINT NOT NULL,
	net_pool       BIGINT NOT NULL,
	remainder      BIGINT NOT NULL,
	to_fee_account BIGINT NOT NULL,
	settled_at     TIMESTAMPTZ NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS contest_payouts (
	contest_id BIGINT NOT NULL REFERENCES contest_settlements (contest_id),
	entry_id   TEXT NOT NULL,
	user_id    TEXT NOT NULL,
	rank       INTEGER NOT NULL,
	votes      INTEGER NOT NULL,
	amount     BIGINT NOT NULL,
	PRIMARY KEY (contest_id, entry_id)
);

CREATE INDEX IF NOT EXISTS idx_contest_payouts_user ON contest_payouts (user_id);
`

const insertSettlement = `
	INSERT INTO contest_settlements (
		contest_id, level_id, escrow, gross_pool, fee, net_pool, remainder, to_fee_account, settled_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (contest_id) DO NOTHING
`

const insertPayout = `
	INSERT INTO contest_payouts (contest_id, entry_id, user_id, rank, votes, amount)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (contest_id, entry_id) DO NOTHING
`

type SettlementRepository struct {
	db DB
}

func NewSettlementRepository(db DB) *SettlementRepository {
	return &SettlementRepository{db: db}
}

// EnsureSchema создает таблицы отчетности, если их нет
func (r *SettlementRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return errors.NewDatabaseError("ensure settlement schema", err)
	}
	return nil
}

func settlementBatch(rows []models.Settlement) *pgx.Batch {
	b := &pgx.Batch{}
	for _, st := range rows {
		b.Queue(insertSettlement,
			int64(st.ContestID),
			st.LevelID,
			st.Escrow,
			st.GrossPool,
			st.Fee,
			st.NetPool,
			st.Remainder,
			st.ToFee,
			time.Unix(st.SettledAt, 0).UTC(),
		)
		for _, p := range st.Payouts {
			b.Queue(insertPayout, int64(st.ContestID), p.EntryID, p.UserID, p.Rank, int64(p.Votes), p.Amount)
		}
	}
	return b
}

// SaveSettlements writes settlements and their payouts. Rows already stored
// are skipped, so a retried report is harmless.
func (r *SettlementRepository) SaveSettlements(ctx context.Context, rows []models.Settlement) error {
	if len(rows) == 0 {
		return nil
	}
	b := settlementBatch(rows)

	br := r.db.SendBatch(ctx, b)
	defer br.Close()
	for i := 0; i < b.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			return errors.NewDatabaseError(fmt.Sprintf("save settlements (statement %d)", i), err)
		}
	}
	return nil
}
