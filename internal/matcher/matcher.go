package matcher

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pairup/internal/similarity"
)

// DefaultBatchSize is how many comparisons MatrixMatch runs between
// cancellation checks.
const DefaultBatchSize = 1024

// Matcher pairs left and right payloads held in an ordered pool.
//
// The zero value is an empty pool using the default scorer and batch size.
// A Matcher is not safe for concurrent use. Callers serialize every call,
// including reads, and listeners run on the calling goroutine.
type Matcher[L, R Payload] struct {
	items     []*Item[L, R]
	scorer    similarity.Scorer
	batchSize int
	listeners []Listener[L, R]
}

type options struct {
	scorer    similarity.Scorer
	batchSize int
}

type Option func(*options)

// WithScorer replaces the default indel ratio scorer.
func WithScorer(s similarity.Scorer) Option {
	return func(o *options) {
		if s != nil {
			o.scorer = s
		}
	}
}

// WithBatchSize sets how often MatrixMatch checks its context. Values below 1 are ignored.
func WithBatchSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.batchSize = n
		}
	}
}

// New returns an empty Matcher. Use SetData to fill it.
func New[L, R Payload](opts ...Option) *Matcher[L, R] {
	o := options{scorer: similarity.Default(), batchSize: DefaultBatchSize}
	for _, opt := range opts {
		opt(&o)
	}

	return &Matcher[L, R]{scorer: o.scorer, batchSize: o.batchSize}
}

// Build returns a Matcher whose pool holds one item per payload.
func Build[L, R Payload](left []L, right []R, opts ...Option) (*Matcher[L, R], error) {
	m := New[L, R](opts...)
	if err := m.SetData(left, right); err != nil {
		return nil, err
	}

	return m, nil
}

// SetData replaces the pool with one left-only item per left payload and one
// right-only item per right payload, sorted by key. On equal keys the left
// item sorts first, so exact pairs end up adjacent. The existing pool is kept
// if either side holds a duplicate key.
func (m *Matcher[L, R]) SetData(left []L, right []R) error {
	if err := checkDuplicates(SideLeft, left); err != nil {
		return err
	}

	if err := checkDuplicates(SideRight, right); err != nil {
		return err
	}

	items := make([]*Item[L, R], 0, len(left)+len(right))
	for _, l := range left {
		items = append(items, newLeftItem[L, R](l))
	}

	for _, r := range right {
		items = append(items, newRightItem[L](r))
	}

	slices.SortStableFunc(items, compareNatural[L, R])

	m.items = items
	m.notify(Event[L, R]{Type: EventReset, Index: -1})

	return nil
}

func checkDuplicates[P Payload](side Side, payloads []P) error {
	seen := make(map[string]struct{}, len(payloads))

	for _, p := range payloads {
		key := p.Key()
		if _, ok := seen[key]; ok {
			return &DuplicateKeyError{Side: side, Key: key}
		}

		seen[key] = struct{}{}
	}

	return nil
}

func compareNatural[L, R Payload](a, b *Item[L, R]) int {
	if c := strings.Compare(a.Key(), b.Key()); c != 0 {
		return c
	}

	return cmp.Compare(a.sideRank(), b.sideRank())
}

// Subscribe registers l for every later pool change.
func (m *Matcher[L, R]) Subscribe(l Listener[L, R]) {
	m.listeners = append(m.listeners, l)
}

func (m *Matcher[L, R]) notify(ev Event[L, R]) {
	for _, l := range m.listeners {
		l.OnChange(ev)
	}
}

// Items returns a snapshot of the pool in order.
func (m *Matcher[L, R]) Items() []*Item[L, R] {
	return slices.Clone(m.items)
}

func (m *Matcher[L, R]) Len() int {
	return len(m.items)
}

// Index returns the position of item in the pool, or -1.
func (m *Matcher[L, R]) Index(item *Item[L, R]) int {
	return slices.Index(m.items, item)
}

// Lookup finds an item by ID.
func (m *Matcher[L, R]) Lookup(id uuid.UUID) (*Item[L, R], bool) {
	for _, it := range m.items {
		if it.id == id {
			return it, true
		}
	}

	return nil, false
}

// positions maps each item to its index. Valid until the pool changes shape.
func (m *Matcher[L, R]) positions() map[*Item[L, R]]int {
	pos := make(map[*Item[L, R]]int, len(m.items))
	for i, it := range m.items {
		pos[it] = i
	}

	return pos
}

// commit pairs l with r: r's payload moves onto l and r is retired until the
// next squash.
func (m *Matcher[L, R]) commit(l, r *Item[L, R], kind Kind, score int, index int) {
	l.absorb(r, kind, score)

	if kind != KindExact && kind != KindManual {
		slog.Debug("matched",
			"left", l.LeftKey(),
			"right", l.RightKey(),
			"kind", kind,
			"score", score,
		)
	}

	m.notify(Event[L, R]{Type: EventUpdate, Index: index, Item: l})
}

// squash purges removed items. Remove events carry the index each item had
// at the moment of its removal, in pool order.
func (m *Matcher[L, R]) squash() {
	kept := make([]*Item[L, R], 0, len(m.items))

	var removed []Event[L, R]

	for _, it := range m.items {
		if it.kind == KindRemoved {
			removed = append(removed, Event[L, R]{Type: EventRemove, Index: len(kept), Item: it})
			continue
		}

		kept = append(kept, it)
	}

	if len(removed) == 0 {
		return
	}

	m.items = kept

	for _, ev := range removed {
		m.notify(ev)
	}
}

// AutoMatch runs the exact, token and fuzzy passes in that order. Each pass is
// atomic on its own: when a later pass fails, earlier passes stay committed.
func (m *Matcher[L, R]) AutoMatch(ctx context.Context, threshold int) (Stats, error) {
	if err := validateThreshold(threshold); err != nil {
		return Stats{}, err
	}

	stats := m.FindExactMatches()

	token, err := m.FindTokenMatches(ctx, threshold)
	if err != nil {
		return stats, fmt.Errorf("token pass: %w", err)
	}

	stats = stats.Add(token)

	fuzzy, err := m.FindFuzzyMatches(ctx, threshold)
	if err != nil {
		return stats, fmt.Errorf("fuzzy pass: %w", err)
	}

	return stats.Add(fuzzy), nil
}

func validateThreshold(threshold int) error {
	if threshold < 0 || threshold > 100 {
		return fmt.Errorf("%w: got %d", ErrInvalidThreshold, threshold)
	}

	return nil
}
