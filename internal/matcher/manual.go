package matcher

import (
	"slices"
)

// Split is the result of undoing a match: the original item, now left-only,
// and the new right-only item placed directly after it.
type Split[L, R Payload] struct {
	Left  *Item[L, R]
	Right *Item[L, R]
}

// ForceMatch pairs a left-only and a right-only item as a manual match,
// whatever their similarity. The arguments may come in either order.
func (m *Matcher[L, R]) ForceMatch(a, b *Item[L, R]) error {
	ia, ib := m.Index(a), m.Index(b)
	if ia < 0 || ib < 0 {
		return ErrNotInPool
	}

	if !a.kind.IsSingle() || !b.kind.IsSingle() {
		return ErrAlreadyMatched
	}

	if a.kind == b.kind {
		return ErrSameSide
	}

	left, right, index := a, b, ia
	if a.kind == KindRightOnly {
		left, right, index = b, a, ib
	}

	m.commit(left, right, KindManual, 0, index)
	m.squash()

	return nil
}

// UnMatch splits a matched item back into a left-only and a right-only item.
func (m *Matcher[L, R]) UnMatch(item *Item[L, R]) (Split[L, R], error) {
	index := m.Index(item)
	if index < 0 {
		return Split[L, R]{}, ErrNotInPool
	}

	return m.unMatchAt(index)
}

// UnMatchAt is UnMatch for the item at index.
func (m *Matcher[L, R]) UnMatchAt(index int) (Split[L, R], error) {
	if index < 0 || index >= len(m.items) {
		return Split[L, R]{}, ErrNotInPool
	}

	return m.unMatchAt(index)
}

func (m *Matcher[L, R]) unMatchAt(index int) (Split[L, R], error) {
	item := m.items[index]
	if !item.kind.IsMatch() {
		return Split[L, R]{}, ErrNotMatched
	}

	detached := item.split()
	m.items = slices.Insert(m.items, index+1, detached)

	m.notify(Event[L, R]{Type: EventUpdate, Index: index, Item: item})
	m.notify(Event[L, R]{Type: EventInsert, Index: index + 1, Item: detached})

	return Split[L, R]{Left: item, Right: detached}, nil
}
