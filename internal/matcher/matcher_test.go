package matcher_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/pairup/internal/matcher"
	"github.com/MrJamesThe3rd/pairup/internal/similarity"
)

type person string

func (p person) Key() string { return string(p) }

type recording string

func (r recording) Key() string { return string(r) }

type pool = matcher.Matcher[person, recording]

type item = matcher.Item[person, recording]

func people(keys ...string) []person {
	out := make([]person, len(keys))
	for i, k := range keys {
		out[i] = person(k)
	}

	return out
}

func recordings(keys ...string) []recording {
	out := make([]recording, len(keys))
	for i, k := range keys {
		out[i] = recording(k)
	}

	return out
}

// scorerFunc adapts a function to similarity.Scorer.
type scorerFunc func(left, right string, mode similarity.Mode) (int, error)

func (f scorerFunc) Score(left, right string, mode similarity.Mode) (int, error) {
	return f(left, right, mode)
}

// tableScorer returns fixed scores per pair and 0 for everything else.
func tableScorer(scores map[[2]string]int) scorerFunc {
	return func(left, right string, _ similarity.Mode) (int, error) {
		return scores[[2]string{left, right}], nil
	}
}

func constScorer(score int) scorerFunc {
	return func(string, string, similarity.Mode) (int, error) {
		return score, nil
	}
}

// describe renders the pool as "kind:left/right:score" rows.
func describe(m *pool) []string {
	items := m.Items()
	out := make([]string, len(items))

	for i, it := range items {
		out[i] = fmt.Sprintf("%s:%s/%s:%d", it.Kind(), it.LeftKey(), it.RightKey(), it.Score())
	}

	return out
}

func find(t *testing.T, m *pool, key string, kind matcher.Kind) *item {
	t.Helper()

	for _, it := range m.Items() {
		if it.Key() == key && it.Kind() == kind {
			return it
		}
	}

	t.Fatalf("no %s item with key %q in %v", kind, key, describe(m))

	return nil
}

func TestBuild_SortsEqualKeysLeftFirst(t *testing.T) {
	m, err := matcher.Build(people("Kojo", "Ama", "Esi"), recordings("Yaw", "Kojo", "Ama"))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"left_only:Ama/:0",
		"right_only:/Ama:0",
		"left_only:Esi/:0",
		"left_only:Kojo/:0",
		"right_only:/Kojo:0",
		"right_only:/Yaw:0",
	}, describe(m))
}

func TestBuild_AdjacencyHoldsForEverySharedKey(t *testing.T) {
	left := people("b", "a", "d", "c", "e")
	right := recordings("e", "c", "a", "z", "b")

	m, err := matcher.Build(left, right)
	require.NoError(t, err)

	items := m.Items()
	for i, it := range items {
		if it.Kind() != matcher.KindRightOnly {
			continue
		}

		for _, l := range left {
			if l.Key() != it.Key() {
				continue
			}

			require.Positive(t, i)
			assert.Equal(t, matcher.KindLeftOnly, items[i-1].Kind())
			assert.Equal(t, it.Key(), items[i-1].Key())
		}
	}
}

func TestBuild_DuplicateKeys(t *testing.T) {
	type testCase struct {
		name     string
		left     []person
		right    []recording
		wantSide matcher.Side
		wantKey  string
	}

	tests := []testCase{
		{name: "Left", left: people("A", "A"), right: nil, wantSide: matcher.SideLeft, wantKey: "A"},
		{name: "Right", left: people("A"), right: recordings("B", "C", "B"), wantSide: matcher.SideRight, wantKey: "B"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := matcher.Build(tt.left, tt.right)
			require.Error(t, err)
			assert.Nil(t, m)
			assert.ErrorIs(t, err, matcher.ErrDuplicateKey)

			var dup *matcher.DuplicateKeyError
			require.True(t, errors.As(err, &dup))
			assert.Equal(t, tt.wantSide, dup.Side)
			assert.Equal(t, tt.wantKey, dup.Key)
		})
	}
}

func TestSetData_FailureKeepsPool(t *testing.T) {
	m, err := matcher.Build(people("X"), recordings("Y"))
	require.NoError(t, err)

	before := describe(m)

	err = m.SetData(people("A", "A"), recordings("B"))
	require.ErrorIs(t, err, matcher.ErrDuplicateKey)
	assert.Equal(t, before, describe(m))
}

func TestFindExactMatches_Scenario(t *testing.T) {
	m, err := matcher.Build(people("Kojo", "Ama", "Esi"), recordings("Kojo", "Ama", "Yaw"))
	require.NoError(t, err)

	stats := m.FindExactMatches()
	assert.Equal(t, 2, stats.Matches)
	assert.Equal(t, 2, stats.Comparisons)
	assert.True(t, stats.Matched())

	assert.Equal(t, []string{
		"exact:Ama/Ama:0",
		"left_only:Esi/:0",
		"exact:Kojo/Kojo:0",
		"right_only:/Yaw:0",
	}, describe(m))
}

func TestFindExactMatches_Idempotent(t *testing.T) {
	m, err := matcher.Build(people("Kojo", "Ama", "Esi"), recordings("Kojo", "Ama", "Yaw", "Esx"))
	require.NoError(t, err)

	first := m.FindExactMatches()
	require.Equal(t, 2, first.Matches)

	after := describe(m)

	second := m.FindExactMatches()
	assert.Zero(t, second.Matches)
	assert.Zero(t, second.Comparisons)
	assert.Equal(t, after, describe(m))
}

func TestFindExactMatches_ConsecutiveLefts(t *testing.T) {
	m, err := matcher.Build(people("a", "b", "c"), recordings("c"))
	require.NoError(t, err)

	stats := m.FindExactMatches()
	assert.Equal(t, 1, stats.Matches)
	assert.Equal(t, []string{"left_only:a/:0", "left_only:b/:0", "exact:c/c:0"}, describe(m))
}

func TestFindExactMatches_AfterUnmatchOutOfOrder(t *testing.T) {
	m, err := matcher.Build(people("Ama", "Kojo"), recordings("Kojo file", "Ama"),
		matcher.WithScorer(tableScorer(map[[2]string]int{{"Ama", "Kojo file"}: 90})))
	require.NoError(t, err)

	_, err = m.FindFuzzyMatches(context.Background(), 80)
	require.NoError(t, err)

	matched := find(t, m, "Ama", matcher.KindFuzzy)
	_, err = m.UnMatch(matched)
	require.NoError(t, err)

	stats := m.FindExactMatches()
	assert.Equal(t, 1, stats.Matches)
	assert.Equal(t, "Ama", find(t, m, "Ama", matcher.KindExact).RightKey())
}

func TestMatrixMatch_FuzzyScenario(t *testing.T) {
	m, err := matcher.Build(people("Kojo"), recordings("kojo.wav"), matcher.WithScorer(constScorer(70)))
	require.NoError(t, err)

	stats, err := m.MatrixMatch(context.Background(), 60, similarity.ModeRatio)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Comparisons)
	assert.Equal(t, 1, stats.Matches)
	assert.Equal(t, []string{"fuzzy:Kojo/kojo.wav:70"}, describe(m))
}

func TestMatrixMatch_TokenMode(t *testing.T) {
	var gotMode similarity.Mode

	scorer := scorerFunc(func(_, _ string, mode similarity.Mode) (int, error) {
		gotMode = mode
		return 88, nil
	})

	m, err := matcher.Build(people("Mensah Kojo"), recordings("Kojo Mensah"), matcher.WithScorer(scorer))
	require.NoError(t, err)

	stats, err := m.FindTokenMatches(context.Background(), 80)
	require.NoError(t, err)

	assert.Equal(t, similarity.ModeTokenSortRatio, gotMode)
	assert.Equal(t, 1, stats.Matches)
	assert.Equal(t, []string{"token:Mensah Kojo/Kojo Mensah:88"}, describe(m))
}

func TestMatrixMatch_ComparisonCount(t *testing.T) {
	m, err := matcher.Build(people("a", "b", "c"), recordings("w", "x", "y", "z"), matcher.WithScorer(constScorer(10)))
	require.NoError(t, err)

	stats, err := m.FindFuzzyMatches(context.Background(), 60)
	require.NoError(t, err)

	assert.Equal(t, 12, stats.Comparisons)
	assert.Zero(t, stats.Matches)
	assert.Equal(t, 7, m.Len())
}

func TestMatrixMatch_EmptySide(t *testing.T) {
	m, err := matcher.Build[person, recording](people("a", "b"), nil, matcher.WithScorer(constScorer(100)))
	require.NoError(t, err)

	stats, err := m.FindFuzzyMatches(context.Background(), 60)
	require.NoError(t, err)
	assert.Zero(t, stats.Comparisons)
	assert.Zero(t, stats.Matches)
}

func TestMatrixMatch_ZeroValueMatcher(t *testing.T) {
	var m matcher.Matcher[person, recording]
	require.NoError(t, m.SetData(people("Kojo Mensah"), recordings("Mensah Kojo")))

	stats, err := m.FindTokenMatches(context.Background(), 90)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Comparisons)
	assert.Equal(t, 1, stats.Matches)
	assert.Equal(t, []string{"token:Kojo Mensah/Mensah Kojo:100"}, describe(&m))
}

func TestMatrixMatch_GreedyBestFirst(t *testing.T) {
	scores := map[[2]string]int{
		{"a", "x"}: 90,
		{"a", "y"}: 80,
		{"b", "x"}: 85,
		{"b", "y"}: 10,
	}

	m, err := matcher.Build(people("a", "b"), recordings("x", "y"), matcher.WithScorer(tableScorer(scores)))
	require.NoError(t, err)

	stats, err := m.FindFuzzyMatches(context.Background(), 50)
	require.NoError(t, err)

	assert.Equal(t, 4, stats.Comparisons)
	assert.Equal(t, 1, stats.Matches)
	assert.Equal(t, []string{
		"fuzzy:a/x:90",
		"left_only:b/:0",
		"right_only:/y:0",
	}, describe(m))
}

func TestMatrixMatch_RightIsNeverReused(t *testing.T) {
	scores := map[[2]string]int{
		{"a", "x"}: 95,
		{"b", "x"}: 90,
		{"c", "x"}: 85,
		{"c", "y"}: 70,
	}

	m, err := matcher.Build(people("a", "b", "c"), recordings("x", "y"), matcher.WithScorer(tableScorer(scores)))
	require.NoError(t, err)

	stats, err := m.FindFuzzyMatches(context.Background(), 60)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Matches)
	assert.Equal(t, []string{
		"fuzzy:a/x:95",
		"left_only:b/:0",
		"fuzzy:c/y:70",
	}, describe(m))
}

func TestMatrixMatch_TiesKeepGenerationOrder(t *testing.T) {
	m, err := matcher.Build(people("a", "b"), recordings("x", "y"), matcher.WithScorer(constScorer(80)))
	require.NoError(t, err)

	_, err = m.FindFuzzyMatches(context.Background(), 80)
	require.NoError(t, err)

	assert.Equal(t, []string{"fuzzy:a/x:80", "fuzzy:b/y:80"}, describe(m))
}

func TestMatrixMatch_MonotonicThreshold(t *testing.T) {
	left := people("alpha", "beta", "gamma", "delta", "epsilon")
	right := recordings("alpah", "bet", "gama", "deltas", "zeta", "eps")
	scorer := similarity.Default()

	prev := -1

	for threshold := 100; threshold >= 0; threshold -= 5 {
		m, err := matcher.Build(left, right, matcher.WithScorer(scorer))
		require.NoError(t, err)

		stats, err := m.FindFuzzyMatches(context.Background(), threshold)
		require.NoError(t, err)

		if prev >= 0 {
			assert.GreaterOrEqual(t, stats.Matches, prev, "threshold %d", threshold)
		}

		prev = stats.Matches
	}
}

func TestMatrixMatch_InvalidThreshold(t *testing.T) {
	m, err := matcher.Build(people("a"), recordings("a"))
	require.NoError(t, err)

	for _, threshold := range []int{-1, 101} {
		_, err := m.FindFuzzyMatches(context.Background(), threshold)
		assert.ErrorIs(t, err, matcher.ErrInvalidThreshold)
	}

	_, err = m.AutoMatch(context.Background(), 150)
	assert.ErrorIs(t, err, matcher.ErrInvalidThreshold)
	assert.Equal(t, []string{"left_only:a/:0", "right_only:/a:0"}, describe(m))
}

func TestMatrixMatch_CancelledBeforeStart(t *testing.T) {
	m, err := matcher.Build(people("a", "b"), recordings("x", "y"), matcher.WithScorer(constScorer(100)))
	require.NoError(t, err)

	before := describe(m)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stats, err := m.FindFuzzyMatches(ctx, 60)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, stats.Matches)
	assert.Equal(t, before, describe(m))
}

func TestMatrixMatch_CancelledBetweenBatches(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := 0
	scorer := scorerFunc(func(string, string, similarity.Mode) (int, error) {
		calls++
		if calls == 3 {
			cancel()
		}

		return 100, nil
	})

	m, err := matcher.Build(people("a", "b", "c"), recordings("x", "y", "z"),
		matcher.WithScorer(scorer), matcher.WithBatchSize(2))
	require.NoError(t, err)

	before := describe(m)

	_, err = m.FindFuzzyMatches(ctx, 60)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 4, calls)
	assert.Equal(t, before, describe(m))
}

func TestMatrixMatch_ScorerErrorLeavesPool(t *testing.T) {
	boom := errors.New("boom")
	scorer := scorerFunc(func(left, right string, _ similarity.Mode) (int, error) {
		if left == "b" && right == "y" {
			return 0, boom
		}

		return 99, nil
	})

	m, err := matcher.Build(people("a", "b"), recordings("x", "y"), matcher.WithScorer(scorer))
	require.NoError(t, err)

	before := describe(m)

	_, err = m.FindTokenMatches(context.Background(), 60)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, before, describe(m))
}

func TestMatrixMatch_ScoreOutOfRange(t *testing.T) {
	m, err := matcher.Build(people("a"), recordings("x"), matcher.WithScorer(constScorer(101)))
	require.NoError(t, err)

	_, err = m.FindFuzzyMatches(context.Background(), 60)
	assert.ErrorIs(t, err, matcher.ErrScoreOutOfRange)
	assert.Equal(t, 2, m.Len())
}

func TestAutoMatch_Conservation(t *testing.T) {
	left := people("Kojo Mensah", "Ama Serwaa", "Esi", "Yaw Boateng", "Akosua")
	right := recordings("Kojo Mensah", "serwaa ama", "Yaw Boateng 2", "Kwame", "Esi")

	m, err := matcher.Build(left, right)
	require.NoError(t, err)

	stats, err := m.AutoMatch(context.Background(), 60)
	require.NoError(t, err)
	assert.Positive(t, stats.Matches)

	seenLeft := map[string]int{}
	seenRight := map[string]int{}

	for _, it := range m.Items() {
		require.NotEqual(t, matcher.KindRemoved, it.Kind())

		if l, ok := it.Left(); ok {
			seenLeft[l.Key()]++
		}

		if r, ok := it.Right(); ok {
			seenRight[r.Key()]++
		}
	}

	for _, l := range left {
		assert.Equal(t, 1, seenLeft[l.Key()], l)
	}

	for _, r := range right {
		assert.Equal(t, 1, seenRight[r.Key()], r)
	}
}

func TestAutoMatch_PassOrder(t *testing.T) {
	scorer := scorerFunc(func(left, right string, mode similarity.Mode) (int, error) {
		switch {
		case mode == similarity.ModeTokenSortRatio && left == "b":
			return 90, nil
		case mode == similarity.ModeRatio && left == "c":
			return 75, nil
		}

		return 0, nil
	})

	m, err := matcher.Build(people("a", "b", "c"), recordings("a", "bb", "cc"), matcher.WithScorer(scorer))
	require.NoError(t, err)

	stats, err := m.AutoMatch(context.Background(), 70)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Matches)
	assert.Equal(t, 1+2*2+1, stats.Comparisons)
	assert.Equal(t, []string{"exact:a/a:0", "token:b/bb:90", "fuzzy:c/cc:75"}, describe(m))
}
