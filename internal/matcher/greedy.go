package matcher

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/MrJamesThe3rd/pairup/internal/similarity"
)

type comparison[L, R Payload] struct {
	left  *Item[L, R]
	right *Item[L, R]
	score int
}

// FindTokenMatches runs MatrixMatch in token sort mode.
func (m *Matcher[L, R]) FindTokenMatches(ctx context.Context, threshold int) (Stats, error) {
	return m.MatrixMatch(ctx, threshold, similarity.ModeTokenSortRatio)
}

// FindFuzzyMatches runs MatrixMatch in plain ratio mode.
func (m *Matcher[L, R]) FindFuzzyMatches(ctx context.Context, threshold int) (Stats, error) {
	return m.MatrixMatch(ctx, threshold, similarity.ModeRatio)
}

// MatrixMatch scores every unmatched left against every unmatched right, then
// commits pairs best score first until scores fall below threshold. A pair is
// skipped when either side was already taken earlier in the same pass. Equal
// scores keep generation order: left items outer, right items inner, both in
// pool order.
//
// Nothing is committed until every score is known, so a scorer error or a
// cancelled ctx leaves the pool untouched.
func (m *Matcher[L, R]) MatrixMatch(ctx context.Context, threshold int, mode similarity.Mode) (Stats, error) {
	if err := validateThreshold(threshold); err != nil {
		return Stats{}, err
	}

	stats := NewStats()

	var lefts, rights []*Item[L, R]

	for _, it := range m.items {
		switch it.kind {
		case KindLeftOnly:
			lefts = append(lefts, it)
		case KindRightOnly:
			rights = append(rights, it)
		}
	}

	if len(lefts) == 0 || len(rights) == 0 {
		return stats, nil
	}

	scorer, batchSize := m.scorer, m.batchSize
	if scorer == nil {
		scorer = similarity.Default()
	}

	if batchSize < 1 {
		batchSize = DefaultBatchSize
	}

	comparisons := make([]comparison[L, R], 0, len(lefts)*len(rights))

	for _, l := range lefts {
		for _, r := range rights {
			if stats.Comparisons%batchSize == 0 {
				if err := ctx.Err(); err != nil {
					return Stats{}, err
				}
			}

			score, err := scorer.Score(l.LeftKey(), r.RightKey(), mode)
			if err != nil {
				return Stats{}, fmt.Errorf("scoring %q against %q: %w", l.LeftKey(), r.RightKey(), err)
			}

			if score < 0 || score > 100 {
				return Stats{}, fmt.Errorf("scoring %q against %q: %w: %d", l.LeftKey(), r.RightKey(), ErrScoreOutOfRange, score)
			}

			stats.Comparisons++

			comparisons = append(comparisons, comparison[L, R]{left: l, right: r, score: score})
		}
	}

	slices.SortStableFunc(comparisons, func(a, b comparison[L, R]) int {
		return cmp.Compare(b.score, a.score)
	})

	if err := ctx.Err(); err != nil {
		return Stats{}, err
	}

	kind := KindFuzzy
	if mode == similarity.ModeTokenSortRatio {
		kind = KindToken
	}

	pos := m.positions()

	for _, c := range comparisons {
		if c.score < threshold {
			break
		}

		if c.left.kind != KindLeftOnly || c.right.kind != KindRightOnly {
			continue
		}

		stats.Matches++
		m.commit(c.left, c.right, kind, c.score, pos[c.left])
	}

	m.squash()

	return stats, nil
}
