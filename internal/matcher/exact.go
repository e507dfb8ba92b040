package matcher

import (
	"slices"
)

// FindExactMatches pairs left-only and right-only items whose keys are equal.
//
// Unmatched items are walked in key order with left items ahead of right items
// on equal keys, so every exact pair is adjacent and a single pass finds them
// all. Comparisons counts the equal-key hits, which makes a second call a no-op.
func (m *Matcher[L, R]) FindExactMatches() Stats {
	stats := NewStats()
	pos := m.positions()
	view := m.unmatchedByKey()

	for i := 0; i < len(view)-1; {
		cur := view[i]
		if cur.kind != KindLeftOnly {
			i++
			continue
		}

		next := view[i+1]
		if next.kind == KindLeftOnly {
			// Look at the new left against its successor next time round.
			i++
			continue
		}

		if next.kind == KindRightOnly && cur.Key() == next.Key() {
			stats.Comparisons++
			stats.Matches++
			m.commit(cur, next, KindExact, 0, pos[cur])
		}

		i += 2
	}

	m.squash()

	return stats
}

// unmatchedByKey returns the single-payload items in natural key order.
func (m *Matcher[L, R]) unmatchedByKey() []*Item[L, R] {
	view := make([]*Item[L, R], 0, len(m.items))

	for _, it := range m.items {
		if it.kind.IsSingle() {
			view = append(view, it)
		}
	}

	slices.SortStableFunc(view, compareNatural[L, R])

	return view
}
