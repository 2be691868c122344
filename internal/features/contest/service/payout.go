package service

// Split distributes netPool over entries ranked by votes.
//
// votes must be sorted in descending order. Entries with equal votes form a
// rank group. Walking the groups from the top, each group consumes as many
// consecutive prize slots as it has members (fewer if the list runs out), and
// every member receives floor(netPool * consumed% / (100 * groupSize)).
// Entries past the end of the prize list receive nothing. The result is
// aligned with votes.
func Split(votes []uint32, prizes []uint32, netPool int64) []int64 {
	shares := make([]int64, len(votes))
	if netPool <= 0 {
		return shares
	}

	slot := 0
	for i := 0; i < len(votes) && slot < len(prizes); {
		j := i
		for j < len(votes) && votes[j] == votes[i] {
			j++
		}
		size := j - i
		take := min(size, len(prizes)-slot)

		var pct int64
		for _, p := range prizes[slot : slot+take] {
			pct += int64(p)
		}
		share := netPool * pct / (100 * int64(size))
		for k := i; k < j; k++ {
			shares[k] = share
		}

		slot += take
		i = j
	}
	return shares
}
