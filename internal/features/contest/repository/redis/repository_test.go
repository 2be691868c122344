package redis

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contest-backend/internal/features/contest/models"
	"contest-backend/internal/features/contest/store"
)

// memoryHashes applies hash writes the way HSET/HDEL would.
type memoryHashes map[string]map[string]string

func (m memoryHashes) apply(writes []hashWrite) {
	for _, w := range writes {
		if w.Deleted {
			delete(m[w.Key], w.Field)
			continue
		}
		if m[w.Key] == nil {
			m[w.Key] = make(map[string]string)
		}
		m[w.Key][w.Field] = string(w.Value)
	}
}

// unprefixed returns the hashes keyed by table name, as Load sees them.
func (m memoryHashes) unprefixed(prefix string) map[string]map[string]string {
	out := make(map[string]map[string]string)
	for _, table := range tables() {
		out[table] = m[prefix+":"+table]
	}
	return out
}

func TestEncodeChangesKeysAndDeletes(t *testing.T) {
	changes := store.Changes{
		{Table: store.TableEntries, Key: "e1", Value: models.Entry{ID: "e1", Amount: 1}},
		{Table: store.TableEntries, Key: "e1", Value: models.Entry{ID: "e1", Amount: 2}},
		{Table: store.TableEntries, Key: "e2", Deleted: true},
		{Table: store.PriceTable("currency"), Key: "1700000000", Value: models.PriceSample{OpenTime: 1700000000, Value: 5}},
	}

	writes, transfers, err := encodeChanges("contest", changes)
	require.NoError(t, err)
	assert.Empty(t, transfers)
	require.Len(t, writes, 3)

	assert.Equal(t, "contest:entry", writes[0].Key)
	assert.Equal(t, "e1", writes[0].Field)
	assert.JSONEq(t, `{"id":"e1","amount":2}`, pick(t, writes[0].Value, "id", "amount"))

	assert.True(t, writes[1].Deleted)
	assert.Nil(t, writes[1].Value)

	assert.Equal(t, "contest:price:currency", writes[2].Key)
}

func TestEncodeChangesPublishesTransfers(t *testing.T) {
	tr := models.TransferRequest{ID: "t1", To: "addr", Amount: 2700, Symbol: "TON", Reason: models.TransferReasonFee, ContestID: 4}
	writes, transfers, err := encodeChanges("", store.Changes{{Table: store.TableTransfers, Key: "t1", Value: tr}})
	require.NoError(t, err)
	require.Len(t, writes, 1)
	assert.Equal(t, "transfer", writes[0].Key)

	require.Len(t, transfers, 1)
	var got models.TransferRequest
	require.NoError(t, json.Unmarshal(transfers[0], &got))
	assert.Equal(t, tr, got)
}

func TestPersistedStateRestores(t *testing.T) {
	const prefix = "contest"
	hashes := memoryHashes{}

	src := store.New()
	src.SetCommitHook(func(_ context.Context, changes store.Changes) error {
		writes, _, err := encodeChanges(prefix, changes)
		if err != nil {
			return err
		}
		hashes.apply(writes)
		return nil
	})

	ctx := context.Background()
	_, err := src.Update(ctx, func(tx *store.Tx) error {
		tx.PutConfig(models.GlobalConfig{CurrencySymbol: "TON", PriceSeries: models.SeriesCurrency})
		tx.PutCategory(models.Category{ID: "video", Name: "Video"})
		tx.PutLevel(models.Level{ID: "lvl", CategoryID: "video", Prizes: []uint32{70, 30}})
		id := tx.NextID("contest")
		tx.PutContest(models.Contest{ID: id, LevelID: "lvl", VoteStartsAt: 100, VotePeriod: 10, ParticipantCount: 1})
		tx.PutEntry(models.Entry{ID: "e1", UserID: "alice", LevelID: "lvl", ContestID: id, Amount: 20000, Open: true})
		tx.PutEntry(models.Entry{ID: "old", UserID: "bob", LevelID: "lvl"})
		tx.PutProfile(models.Profile{ID: "alice", UsernameHash: "h", Winnings: 7})
		tx.PutSample(models.SeriesAsset, models.PriceSample{OpenTime: 1700000000000, Value: 50000})
		return nil
	})
	require.NoError(t, err)

	_, err = src.Update(ctx, func(tx *store.Tx) error {
		tx.DeleteEntry("old")
		return nil
	})
	require.NoError(t, err)

	snap, err := decodeSnapshot(hashes.unprefixed(prefix))
	require.NoError(t, err)
	require.NotNil(t, snap.Config)
	assert.Equal(t, uint64(1), snap.Sequences["contest"])
	assert.Len(t, snap.Entries, 1)

	dst := store.New()
	dst.Restore(snap)
	_, err = dst.Update(ctx, func(tx *store.Tx) error {
		assert.Equal(t, uint64(2), tx.NextID("contest"))
		e, ok := tx.Entry("e1")
		require.True(t, ok)
		assert.Equal(t, int64(20000), e.Amount)
		_, ok = tx.Entry("old")
		assert.False(t, ok)
		assert.Len(t, tx.EntriesByContest(1), 1)
		p, ok := tx.ProfileByUsernameHash("h")
		require.True(t, ok)
		assert.Equal(t, int64(7), p.Winnings)
		assert.True(t, tx.HasSample(models.SeriesAsset, 1700000000000))
		return nil
	})
	require.NoError(t, err)
}

func TestDecodeSnapshotRejectsCorruptRows(t *testing.T) {
	_, err := decodeSnapshot(map[string]map[string]string{
		store.TableEntries: {"e1": "{not json"},
	})
	assert.Error(t, err)

	_, err = decodeSnapshot(map[string]map[string]string{
		store.TableSequences: {"contest": "x"},
	})
	assert.Error(t, err)
}

func pick(t *testing.T, data []byte, keys ...string) string {
	t.Helper()
	var all map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &all))
	out := make(map[string]interface{}, len(keys))
	for _, k := range keys {
		out[k] = all[k]
	}
	b, err := json.Marshal(out)
	require.NoError(t, err)
	return string(b)
}
