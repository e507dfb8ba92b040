package matcher

import (
	"cmp"
	"slices"
)

// displayRank puts items needing attention first, then matches from the
// loosest to the most certain.
func displayRank(k Kind) int {
	switch k {
	case KindFuzzy:
		return 1
	case KindToken:
		return 2
	case KindManual:
		return 3
	case KindExact:
		return 4
	}

	return 0
}

// SortForDisplay reorders the pool for review: unmatched items first, then
// fuzzy, token, manual and exact matches, each group in key order.
func (m *Matcher[L, R]) SortForDisplay() {
	slices.SortStableFunc(m.items, func(a, b *Item[L, R]) int {
		if c := cmp.Compare(displayRank(a.kind), displayRank(b.kind)); c != 0 {
			return c
		}

		return compareNatural(a, b)
	})

	m.notify(Event[L, R]{Type: EventReset, Index: -1})
}

// Filter returns the items whose left or right key contains text, ignoring
// case. An empty text returns the whole pool.
func (m *Matcher[L, R]) Filter(text string) []*Item[L, R] {
	if text == "" {
		return m.Items()
	}

	var out []*Item[L, R]

	for _, it := range m.items {
		if it.ContainsText(text) {
			out = append(out, it)
		}
	}

	return out
}

// Unmatched lists the single-payload items on one side, in pool order.
func (m *Matcher[L, R]) Unmatched(side Side) []*Item[L, R] {
	want := KindLeftOnly
	if side == SideRight {
		want = KindRightOnly
	}

	var out []*Item[L, R]

	for _, it := range m.items {
		if it.kind == want {
			out = append(out, it)
		}
	}

	return out
}

// Counts tallies the pool by kind.
func (m *Matcher[L, R]) Counts() map[Kind]int {
	counts := make(map[Kind]int)
	for _, it := range m.items {
		counts[it.kind]++
	}

	return counts
}
