// Package store keeps the engine's keyed tables in memory and runs every
// operation as a serialized transaction. A failed operation, or a failed
// commit hook, is undone row by row so no partial write survives.
package store

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"

	"contest-backend/internal/features/contest/models"
)

const configKey = "global"

// CommitHook persists the change set of a transaction before it becomes
// visible. Returning an error rolls the transaction back.
type CommitHook func(ctx context.Context, changes Changes) error

type userLevel struct{ user, level string }

type contestVoter struct {
	contest uint64
	voter   string
}

type Store struct {
	mu   sync.Mutex
	hook CommitHook

	categories  *table[string, models.Category]
	levels      *table[string, models.Level]
	contests    *table[uint64, models.Contest]
	entries     *table[string, models.Entry]
	votes       *table[uint64, models.Vote]
	profiles    *table[string, models.Profile]
	transfers   *table[string, models.TransferRequest]
	settlements *table[uint64, models.Settlement]
	config      *table[string, models.GlobalConfig]
	sequences   *table[string, uint64]
	prices      map[models.Series]*table[int64, models.PriceSample]

	contestsByLevel    index[string, uint64]
	unsettled          map[uint64]struct{}
	entriesByUserLevel index[userLevel, string]
	entriesByContest   index[uint64, string]
	entriesWaiting     map[string]struct{}
	votesByContest     index[uint64, uint64]
	voteByVoter        map[contestVoter]uint64
	profileByHash      map[string]string
}

func New() *Store {
	s := &Store{
		categories:  newTable[string, models.Category](TableCategories),
		levels:      newTable[string, models.Level](TableLevels),
		contests:    newTable[uint64, models.Contest](TableContests),
		entries:     newTable[string, models.Entry](TableEntries),
		votes:       newTable[uint64, models.Vote](TableVotes),
		profiles:    newTable[string, models.Profile](TableProfiles),
		transfers:   newTable[string, models.TransferRequest](TableTransfers),
		settlements: newTable[uint64, models.Settlement](TableSettlements),
		config:      newTable[string, models.GlobalConfig](TableConfig),
		sequences:   newTable[string, uint64](TableSequences),
		prices:      make(map[models.Series]*table[int64, models.PriceSample]),

		contestsByLevel:    make(index[string, uint64]),
		unsettled:          make(map[uint64]struct{}),
		entriesByUserLevel: make(index[userLevel, string]),
		entriesByContest:   make(index[uint64, string]),
		entriesWaiting:     make(map[string]struct{}),
		votesByContest:     make(index[uint64, uint64]),
		voteByVoter:        make(map[contestVoter]uint64),
		profileByHash:      make(map[string]string),
	}

	for _, series := range models.AllSeries {
		s.prices[series] = newTable[int64, models.PriceSample](PriceTable(string(series)))
	}

	s.contests.onAdd = func(id uint64, c models.Contest) {
		s.contestsByLevel.add(c.LevelID, id)
		if !c.Settled {
			s.unsettled[id] = struct{}{}
		}
	}
	s.contests.onRemove = func(id uint64, c models.Contest) {
		s.contestsByLevel.remove(c.LevelID, id)
		delete(s.unsettled, id)
	}

	s.entries.onAdd = func(id string, e models.Entry) {
		s.entriesByUserLevel.add(userLevel{e.UserID, e.LevelID}, id)
		if e.ContestID != 0 {
			s.entriesByContest.add(e.ContestID, id)
		}
		if e.PriceUnavailable || e.ContestLimited {
			s.entriesWaiting[id] = struct{}{}
		}
	}
	s.entries.onRemove = func(id string, e models.Entry) {
		s.entriesByUserLevel.remove(userLevel{e.UserID, e.LevelID}, id)
		if e.ContestID != 0 {
			s.entriesByContest.remove(e.ContestID, id)
		}
		delete(s.entriesWaiting, id)
	}

	s.votes.onAdd = func(id uint64, v models.Vote) {
		s.votesByContest.add(v.ContestID, id)
		s.voteByVoter[contestVoter{v.ContestID, v.VoterUserID}] = id
	}
	s.votes.onRemove = func(id uint64, v models.Vote) {
		s.votesByContest.remove(v.ContestID, id)
		delete(s.voteByVoter, contestVoter{v.ContestID, v.VoterUserID})
	}

	s.profiles.onAdd = func(id string, p models.Profile) {
		if p.UsernameHash != "" {
			s.profileByHash[p.UsernameHash] = id
		}
	}
	s.profiles.onRemove = func(id string, p models.Profile) {
		if s.profileByHash[p.UsernameHash] == id {
			delete(s.profileByHash, p.UsernameHash)
		}
	}

	return s
}

// SetCommitHook installs the persistence hook. Call before serving traffic.
func (s *Store) SetCommitHook(hook CommitHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hook = hook
}

// Update runs fn as one atomic operation and returns what it wrote.
func (s *Store) Update(ctx context.Context, fn func(tx *Tx) error) (Changes, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &Tx{Reader: Reader{s: s}}
	defer func() {
		// паника в fn или хуке не должна оставить половину записей
		if p := recover(); p != nil {
			tx.rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		tx.rollback()
		return nil, err
	}
	if len(tx.changes) > 0 && s.hook != nil {
		if err := s.hook(ctx, tx.changes); err != nil {
			tx.rollback()
			return nil, err
		}
	}
	return tx.changes, nil
}

// View runs a read-only fn against a consistent state.
func (s *Store) View(fn func(r *Reader) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&Reader{s: s})
}

// Snapshot is the full table content, used to restore a durable copy.
type Snapshot struct {
	Categories  []models.Category
	Levels      []models.Level
	Contests    []models.Contest
	Entries     []models.Entry
	Votes       []models.Vote
	Profiles    []models.Profile
	Transfers   []models.TransferRequest
	Settlements []models.Settlement
	Samples     map[models.Series][]models.PriceSample
	Config      *models.GlobalConfig
	Sequences   map[string]uint64
}

// Restore replaces every table with snap. The commit hook is not invoked.
func (s *Store) Restore(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.categories.reset()
	s.levels.reset()
	s.contests.reset()
	s.entries.reset()
	s.votes.reset()
	s.profiles.reset()
	s.transfers.reset()
	s.settlements.reset()
	s.config.reset()
	s.sequences.reset()
	for _, t := range s.prices {
		t.reset()
	}

	for _, c := range snap.Categories {
		s.categories.set(c.ID, c)
	}
	for _, l := range snap.Levels {
		s.levels.set(l.ID, l)
	}
	for _, c := range snap.Contests {
		s.contests.set(c.ID, c)
	}
	for _, e := range snap.Entries {
		s.entries.set(e.ID, e)
	}
	for _, v := range snap.Votes {
		s.votes.set(v.ID, v)
	}
	for _, p := range snap.Profiles {
		s.profiles.set(p.ID, p)
	}
	for _, t := range snap.Transfers {
		s.transfers.set(t.ID, t)
	}
	for _, st := range snap.Settlements {
		s.settlements.set(st.ContestID, st)
	}
	for series, samples := range snap.Samples {
		t, ok := s.prices[series]
		if !ok {
			continue
		}
		for _, sample := range samples {
			t.set(sample.OpenTime, sample)
		}
	}
	if snap.Config != nil {
		s.config.set(configKey, *snap.Config)
	}
	for name, v := range snap.Sequences {
		s.sequences.set(name, v)
	}
}

// Reader exposes the read side of the tables.
type Reader struct {
	s *Store
}

func (r *Reader) Category(id string) (models.Category, bool) { return r.s.categories.get(id) }
func (r *Reader) Level(id string) (models.Level, bool)       { return r.s.levels.get(id) }
func (r *Reader) Contest(id uint64) (models.Contest, bool)   { return r.s.contests.get(id) }
func (r *Reader) Entry(id string) (models.Entry, bool)       { return r.s.entries.get(id) }
func (r *Reader) Vote(id uint64) (models.Vote, bool)         { return r.s.votes.get(id) }
func (r *Reader) Profile(id string) (models.Profile, bool)   { return r.s.profiles.get(id) }

func (r *Reader) Settlement(contestID uint64) (models.Settlement, bool) {
	return r.s.settlements.get(contestID)
}

func (r *Reader) Config() (models.GlobalConfig, bool) {
	return r.s.config.get(configKey)
}

// ContestsByLevel returns the level's contests in id order.
func (r *Reader) ContestsByLevel(levelID string) []models.Contest {
	return r.s.contests.values(r.s.contestsByLevel.members(levelID))
}

// SettleableContests returns unsettled contests whose vote window ended by
// now, earliest end first, at most limit of them (0 = all).
func (r *Reader) SettleableContests(now int64, limit int) []models.Contest {
	var out []models.Contest
	for id := range r.s.unsettled {
		c := r.s.contests.rows[id]
		if c.Settleable(now) {
			out = append(out, c)
		}
	}
	slices.SortFunc(out, func(a, b models.Contest) int {
		if a.VoteEndsAt() != b.VoteEndsAt() {
			return cmp.Compare(a.VoteEndsAt(), b.VoteEndsAt())
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return truncate(out, limit)
}

// EntriesByUserLevel returns every stored entry of (user, level), oldest first.
func (r *Reader) EntriesByUserLevel(userID, levelID string) []models.Entry {
	out := r.s.entries.values(r.s.entriesByUserLevel.members(userLevel{userID, levelID}))
	sortByCreated(out)
	return out
}

// EntriesByContest returns the contest's entries in id order.
func (r *Reader) EntriesByContest(contestID uint64) []models.Entry {
	return r.s.entries.values(r.s.entriesByContest.members(contestID))
}

// PendingActivationEntries returns entries waiting for a fresh price or a
// free contest slot, oldest first.
func (r *Reader) PendingActivationEntries() []models.Entry {
	ids := make([]string, 0, len(r.s.entriesWaiting))
	for id := range r.s.entriesWaiting {
		ids = append(ids, id)
	}
	out := r.s.entries.values(ids)
	sortByCreated(out)
	return out
}

// EntriesCreatedBefore returns entries with createdAt < ts, oldest first.
func (r *Reader) EntriesCreatedBefore(ts int64) []models.Entry {
	var out []models.Entry
	for _, e := range r.s.entries.rows {
		if e.CreatedAt < ts {
			out = append(out, e)
		}
	}
	sortByCreated(out)
	return out
}

func (r *Reader) VoteByContestVoter(contestID uint64, voterUserID string) (models.Vote, bool) {
	id, ok := r.s.voteByVoter[contestVoter{contestID, voterUserID}]
	if !ok {
		return models.Vote{}, false
	}
	return r.s.votes.get(id)
}

// VotesByContest returns the contest's votes in id order.
func (r *Reader) VotesByContest(contestID uint64) []models.Vote {
	return r.s.votes.values(r.s.votesByContest.members(contestID))
}

func (r *Reader) ProfileByUsernameHash(hash string) (models.Profile, bool) {
	id, ok := r.s.profileByHash[hash]
	if !ok {
		return models.Profile{}, false
	}
	return r.s.profiles.get(id)
}

// Transfers returns issued transfer requests, oldest first.
func (r *Reader) Transfers() []models.TransferRequest {
	out := r.s.transfers.values(r.s.transfers.sortedKeys())
	slices.SortStableFunc(out, func(a, b models.TransferRequest) int {
		return cmp.Compare(a.CreatedAt, b.CreatedAt)
	})
	return out
}

// Samples returns the series in ascending openTime.
func (r *Reader) Samples(series models.Series) []models.PriceSample {
	t, ok := r.s.prices[series]
	if !ok {
		return nil
	}
	return t.values(t.sortedKeys())
}

func (r *Reader) HasSample(series models.Series, openTime int64) bool {
	t, ok := r.s.prices[series]
	if !ok {
		return false
	}
	_, exists := t.get(openTime)
	return exists
}

// Tx is the write side of an Update.
type Tx struct {
	Reader
	undo    []func()
	changes Changes
}

func (tx *Tx) rollback() {
	for i := len(tx.undo) - 1; i >= 0; i-- {
		tx.undo[i]()
	}
	tx.undo = nil
	tx.changes = nil
}

func (tx *Tx) PutCategory(c models.Category) { put(tx, tx.s.categories, c.ID, c) }
func (tx *Tx) PutLevel(l models.Level)       { put(tx, tx.s.levels, l.ID, l) }
func (tx *Tx) PutContest(c models.Contest)   { put(tx, tx.s.contests, c.ID, c) }
func (tx *Tx) PutEntry(e models.Entry)       { put(tx, tx.s.entries, e.ID, e) }
func (tx *Tx) PutVote(v models.Vote)         { put(tx, tx.s.votes, v.ID, v) }
func (tx *Tx) PutProfile(p models.Profile)   { put(tx, tx.s.profiles, p.ID, p) }

func (tx *Tx) PutTransfer(t models.TransferRequest) { put(tx, tx.s.transfers, t.ID, t) }

func (tx *Tx) PutSettlement(st models.Settlement) {
	put(tx, tx.s.settlements, st.ContestID, st)
}

func (tx *Tx) PutConfig(cfg models.GlobalConfig) { put(tx, tx.s.config, configKey, cfg) }

// DeleteEntry removes an entry row; it reports whether it existed.
func (tx *Tx) DeleteEntry(id string) bool {
	return remove(tx, tx.s.entries, id)
}

// PutSample stores a sample; unknown series are ignored.
func (tx *Tx) PutSample(series models.Series, sample models.PriceSample) {
	if t, ok := tx.s.prices[series]; ok {
		put(tx, t, sample.OpenTime, sample)
	}
}

func (tx *Tx) DeleteSample(series models.Series, openTime int64) bool {
	t, ok := tx.s.prices[series]
	if !ok {
		return false
	}
	return remove(tx, t, openTime)
}

// NextID returns the next value of a monotonic sequence, starting at 1.
func (tx *Tx) NextID(name string) uint64 {
	cur, _ := tx.s.sequences.get(name)
	next := cur + 1
	put(tx, tx.s.sequences, name, next)
	return next
}

func sortByCreated(entries []models.Entry) {
	slices.SortFunc(entries, func(a, b models.Entry) int {
		if a.CreatedAt != b.CreatedAt {
			return cmp.Compare(a.CreatedAt, b.CreatedAt)
		}
		return strings.Compare(a.ID, b.ID)
	})
}

func truncate[T any](rows []T, limit int) []T {
	if limit > 0 && len(rows) > limit {
		return rows[:limit]
	}
	return rows
}
