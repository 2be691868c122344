package store

// Table names double as persistence namespaces.
const (
	TableCategories  = "category"
	TableLevels      = "level"
	TableContests    = "contest"
	TableEntries     = "entry"
	TableVotes       = "vote"
	TableProfiles    = "profile"
	TableTransfers   = "transfer"
	TableSettlements = "settlement"
	TableConfig      = "config"
	TableSequences   = "sequence"
	tablePricePrefix = "price:"
)

// PriceTable returns the table name for a price series.
func PriceTable(series string) string {
	return tablePricePrefix + series
}

// Change is one committed row write. Value is nil for deletions.
type Change struct {
	Table   string
	Key     string
	Value   any
	Deleted bool
}

type Changes []Change

// Compact keeps only the final write per row, in the order rows were last
// written.
func (cs Changes) Compact() Changes {
	type rowKey struct{ table, key string }
	last := make(map[rowKey]int, len(cs))
	for i, c := range cs {
		last[rowKey{c.Table, c.Key}] = i
	}
	out := make(Changes, 0, len(last))
	for i, c := range cs {
		if last[rowKey{c.Table, c.Key}] == i {
			out = append(out, c)
		}
	}
	return out
}

// Filter returns changes of one table.
func (cs Changes) Filter(table string) Changes {
	var out Changes
	for _, c := range cs {
		if c.Table == table {
			out = append(out, c)
		}
	}
	return out
}
