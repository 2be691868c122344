// Package redis persists the contest store as one hash per table and
// publishes transfer requests to the escrow stream.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"contest-backend/internal/common/errors"
	"contest-backend/internal/common/logger"
	"contest-backend/internal/features/contest/models"
	"contest-backend/internal/features/contest/store"
	platformredis "contest-backend/internal/platform/redis"
)

// hashWrite is one HSET or HDEL.
type hashWrite struct {
	Key     string
	Field   string
	Value   []byte
	Deleted bool
}

type Repository struct {
	client         *platformredis.Client
	transferStream string
	log            zerolog.Logger
}

func NewRepository(client *platformredis.Client, transferStream string) *Repository {
	return &Repository{
		client:         client,
		transferStream: transferStream,
		log:            logger.Component("contest_redis"),
	}
}

// tables lists every hash the store is split into.
func tables() []string {
	names := []string{
		store.TableCategories,
		store.TableLevels,
		store.TableContests,
		store.TableEntries,
		store.TableVotes,
		store.TableProfiles,
		store.TableTransfers,
		store.TableSettlements,
		store.TableConfig,
		store.TableSequences,
	}
	for _, s := range models.AllSeries {
		names = append(names, store.PriceTable(string(s)))
	}
	return names
}

// encodeChanges turns a transaction's change set into hash writes and the
// transfer payloads to publish.
func encodeChanges(prefix string, changes store.Changes) ([]hashWrite, [][]byte, error) {
	changes = changes.Compact()
	writes := make([]hashWrite, 0, len(changes))
	var transfers [][]byte

	for _, c := range changes {
		w := hashWrite{Key: platformredis.JoinKey(prefix, c.Table), Field: c.Key}
		if c.Deleted {
			w.Deleted = true
			writes = append(writes, w)
			continue
		}
		data, err := json.Marshal(c.Value)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to marshal %s/%s: %w", c.Table, c.Key, err)
		}
		w.Value = data
		writes = append(writes, w)

		if c.Table == store.TableTransfers {
			transfers = append(transfers, data)
		}
	}
	return writes, transfers, nil
}

// Commit is the store's commit hook. Hash writes and stream appends go out
// in a single MULTI/EXEC.
func (r *Repository) Commit(ctx context.Context, changes store.Changes) error {
	writes, transfers, err := encodeChanges(r.client.Key(), changes)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to encode changes")
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, w := range writes {
			if w.Deleted {
				pipe.HDel(ctx, w.Key, w.Field)
				continue
			}
			pipe.HSet(ctx, w.Key, w.Field, w.Value)
		}
		for _, payload := range transfers {
			pipe.XAdd(ctx, &redis.XAddArgs{
				Stream: r.transferStream,
				Values: map[string]interface{}{"type": "transfer", "payload": payload},
			})
		}
		return nil
	})
	if err != nil {
		return errors.NewCacheError("commit", err)
	}

	if len(transfers) > 0 {
		r.log.Debug().Int("count", len(transfers)).Str("stream", r.transferStream).Msg("Transfer requests published")
	}
	return nil
}

// Load reads every table hash and builds a store snapshot.
func (r *Repository) Load(ctx context.Context) (store.Snapshot, error) {
	raw := make(map[string]map[string]string)
	for _, table := range tables() {
		fields, err := r.client.HGetAll(ctx, r.client.Key(table)).Result()
		if err != nil {
			return store.Snapshot{}, errors.NewCacheError("load "+table, err)
		}
		raw[table] = fields
	}

	snap, err := decodeSnapshot(raw)
	if err != nil {
		return store.Snapshot{}, errors.Wrap(err, errors.ErrCodeInternal, "failed to decode stored state")
	}

	r.log.Info().
		Int("contests", len(snap.Contests)).
		Int("entries", len(snap.Entries)).
		Int("profiles", len(snap.Profiles)).
		Bool("configured", snap.Config != nil).
		Msg("Contest state loaded")
	return snap, nil
}

func decodeRows[T any](table string, fields map[string]string) ([]T, error) {
	out := make([]T, 0, len(fields))
	for field, data := range fields {
		var v T
		if err := json.Unmarshal([]byte(data), &v); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s/%s: %w", table, field, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func decodeSnapshot(raw map[string]map[string]string) (store.Snapshot, error) {
	var (
		snap store.Snapshot
		err  error
	)
	if snap.Categories, err = decodeRows[models.Category](store.TableCategories, raw[store.TableCategories]); err != nil {
		return snap, err
	}
	if snap.Levels, err = decodeRows[models.Level](store.TableLevels, raw[store.TableLevels]); err != nil {
		return snap, err
	}
	if snap.Contests, err = decodeRows[models.Contest](store.TableContests, raw[store.TableContests]); err != nil {
		return snap, err
	}
	if snap.Entries, err = decodeRows[models.Entry](store.TableEntries, raw[store.TableEntries]); err != nil {
		return snap, err
	}
	if snap.Votes, err = decodeRows[models.Vote](store.TableVotes, raw[store.TableVotes]); err != nil {
		return snap, err
	}
	if snap.Profiles, err = decodeRows[models.Profile](store.TableProfiles, raw[store.TableProfiles]); err != nil {
		return snap, err
	}
	if snap.Transfers, err = decodeRows[models.TransferRequest](store.TableTransfers, raw[store.TableTransfers]); err != nil {
		return snap, err
	}
	if snap.Settlements, err = decodeRows[models.Settlement](store.TableSettlements, raw[store.TableSettlements]); err != nil {
		return snap, err
	}

	configs, err := decodeRows[models.GlobalConfig](store.TableConfig, raw[store.TableConfig])
	if err != nil {
		return snap, err
	}
	if len(configs) > 0 {
		snap.Config = &configs[0]
	}

	snap.Sequences = make(map[string]uint64, len(raw[store.TableSequences]))
	for name, data := range raw[store.TableSequences] {
		v, err := strconv.ParseUint(data, 10, 64)
		if err != nil {
			return snap, fmt.Errorf("invalid sequence %s: %w", name, err)
		}
		snap.Sequences[name] = v
	}

	snap.Samples = make(map[models.Series][]models.PriceSample, len(models.AllSeries))
	for _, series := range models.AllSeries {
		table := store.PriceTable(string(series))
		samples, err := decodeRows[models.PriceSample](table, raw[table])
		if err != nil {
			return snap, err
		}
		snap.Samples[series] = samples
	}
	return snap, nil
}
