package matcher

import (
	"strings"

	"github.com/google/uuid"
)

// Payload is a value from one of the input collections. Key is its stable
// display string, used for sorting, duplicate detection and scoring.
type Payload interface {
	Key() string
}

// Item is one row of the pool: a left payload, a right payload, or both.
type Item[L, R Payload] struct {
	id       uuid.UUID
	left     L
	right    R
	hasLeft  bool
	hasRight bool
	kind     Kind
	score    int
}

func newLeftItem[L, R Payload](left L) *Item[L, R] {
	return &Item[L, R]{id: uuid.New(), left: left, hasLeft: true, kind: KindLeftOnly}
}

func newRightItem[L, R Payload](right R) *Item[L, R] {
	return &Item[L, R]{id: uuid.New(), right: right, hasRight: true, kind: KindRightOnly}
}

func (it *Item[L, R]) ID() uuid.UUID {
	return it.id
}

func (it *Item[L, R]) Left() (L, bool) {
	return it.left, it.hasLeft
}

func (it *Item[L, R]) Right() (R, bool) {
	return it.right, it.hasRight
}

func (it *Item[L, R]) Kind() Kind {
	return it.kind
}

// Score is the similarity of a token or fuzzy match. Exact and manual matches score 0.
func (it *Item[L, R]) Score() int {
	return it.score
}

// Key is the left payload's key when the item has one, otherwise the right payload's.
func (it *Item[L, R]) Key() string {
	if it.hasLeft {
		return it.left.Key()
	}

	if it.hasRight {
		return it.right.Key()
	}

	return ""
}

// LeftKey returns the left payload's key, or "" when there is none.
func (it *Item[L, R]) LeftKey() string {
	if !it.hasLeft {
		return ""
	}

	return it.left.Key()
}

// RightKey returns the right payload's key, or "" when there is none.
func (it *Item[L, R]) RightKey() string {
	if !it.hasRight {
		return ""
	}

	return it.right.Key()
}

// ContainsText reports whether either key contains text, ignoring case.
func (it *Item[L, R]) ContainsText(text string) bool {
	text = strings.ToLower(text)

	return strings.Contains(strings.ToLower(it.LeftKey()), text) ||
		strings.Contains(strings.ToLower(it.RightKey()), text)
}

// sideRank orders left-bearing items before right-only items with the same key.
func (it *Item[L, R]) sideRank() int {
	if it.hasLeft {
		return 0
	}

	return 1
}

// absorb moves other's right payload onto it and retires other.
func (it *Item[L, R]) absorb(other *Item[L, R], kind Kind, score int) {
	it.right = other.right
	it.hasRight = true
	it.kind = kind
	it.score = score

	var zero R

	other.right = zero
	other.hasRight = false
	other.kind = KindRemoved
}

// split detaches the right payload into a new right-only item and resets it
// to left-only.
func (it *Item[L, R]) split() *Item[L, R] {
	detached := newRightItem[L](it.right)

	var zero R

	it.right = zero
	it.hasRight = false
	it.kind = KindLeftOnly
	it.score = 0

	return detached
}
