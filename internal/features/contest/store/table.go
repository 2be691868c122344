package store

import (
	"cmp"
	"fmt"
	"slices"
)

// table is a keyed row set. onAdd/onRemove keep secondary indexes in step
// with every write, including undo.
type table[K cmp.Ordered, V any] struct {
	name     string
	rows     map[K]V
	onAdd    func(K, V)
	onRemove func(K, V)
}

func newTable[K cmp.Ordered, V any](name string) *table[K, V] {
	return &table[K, V]{name: name, rows: make(map[K]V)}
}

func (t *table[K, V]) get(k K) (V, bool) {
	v, ok := t.rows[k]
	return v, ok
}

func (t *table[K, V]) set(k K, v V) {
	if old, ok := t.rows[k]; ok && t.onRemove != nil {
		t.onRemove(k, old)
	}
	t.rows[k] = v
	if t.onAdd != nil {
		t.onAdd(k, v)
	}
}

func (t *table[K, V]) del(k K) {
	old, ok := t.rows[k]
	if !ok {
		return
	}
	if t.onRemove != nil {
		t.onRemove(k, old)
	}
	delete(t.rows, k)
}

func (t *table[K, V]) reset() {
	for k := range t.rows {
		t.del(k)
	}
}

func (t *table[K, V]) sortedKeys() []K {
	keys := make([]K, 0, len(t.rows))
	for k := range t.rows {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// values returns rows for keys in order, skipping missing ones.
func (t *table[K, V]) values(keys []K) []V {
	out := make([]V, 0, len(keys))
	for _, k := range keys {
		if v, ok := t.rows[k]; ok {
			out = append(out, v)
		}
	}
	return out
}

func put[K cmp.Ordered, V any](tx *Tx, t *table[K, V], k K, v V) {
	old, had := t.rows[k]
	t.set(k, v)
	tx.undo = append(tx.undo, func() {
		if had {
			t.set(k, old)
		} else {
			t.del(k)
		}
	})
	tx.changes = append(tx.changes, Change{Table: t.name, Key: keyString(k), Value: v})
}

func remove[K cmp.Ordered, V any](tx *Tx, t *table[K, V], k K) bool {
	old, had := t.rows[k]
	if !had {
		return false
	}
	t.del(k)
	tx.undo = append(tx.undo, func() { t.set(k, old) })
	tx.changes = append(tx.changes, Change{Table: t.name, Key: keyString(k), Deleted: true})
	return true
}

func keyString[K cmp.Ordered](k K) string {
	return fmt.Sprint(k)
}

// set index helpers

type index[K comparable, M cmp.Ordered] map[K]map[M]struct{}

func (ix index[K, M]) add(k K, m M) {
	set, ok := ix[k]
	if !ok {
		set = make(map[M]struct{})
		ix[k] = set
	}
	set[m] = struct{}{}
}

func (ix index[K, M]) remove(k K, m M) {
	set, ok := ix[k]
	if !ok {
		return
	}
	delete(set, m)
	if len(set) == 0 {
		delete(ix, k)
	}
}

func (ix index[K, M]) members(k K) []M {
	set := ix[k]
	out := make([]M, 0, len(set))
	for m := range set {
		out = append(out, m)
	}
	slices.Sort(out)
	return out
}
