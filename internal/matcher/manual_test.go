package matcher_test

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/pairup/internal/matcher"
)

type recorder struct {
	events []matcher.Event[person, recording]
}

func (r *recorder) OnChange(ev matcher.Event[person, recording]) {
	r.events = append(r.events, ev)
}

func (r *recorder) summary() []string {
	out := make([]string, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Type.String() + "@" + strconv.Itoa(ev.Index)
	}

	return out
}

func TestForceMatch_ThenUnMatch(t *testing.T) {
	m, err := matcher.Build(people("X"), recordings("Y"), matcher.WithScorer(constScorer(0)))
	require.NoError(t, err)

	_, err = m.AutoMatch(context.Background(), 60)
	require.NoError(t, err)
	require.Equal(t, []string{"left_only:X/:0", "right_only:/Y:0"}, describe(m))

	x := find(t, m, "X", matcher.KindLeftOnly)
	y := find(t, m, "Y", matcher.KindRightOnly)

	require.NoError(t, m.ForceMatch(x, y))
	assert.Equal(t, []string{"manual:X/Y:0"}, describe(m))

	split, err := m.UnMatch(x)
	require.NoError(t, err)

	assert.Same(t, x, split.Left)
	assert.Equal(t, matcher.KindLeftOnly, split.Left.Kind())
	assert.Equal(t, matcher.KindRightOnly, split.Right.Kind())
	assert.Equal(t, "Y", split.Right.RightKey())
	assert.Equal(t, []string{"left_only:X/:0", "right_only:/Y:0"}, describe(m))
}

func TestForceMatch_EitherOrder(t *testing.T) {
	m, err := matcher.Build(people("b"), recordings("a"))
	require.NoError(t, err)

	a := find(t, m, "a", matcher.KindRightOnly)
	b := find(t, m, "b", matcher.KindLeftOnly)

	require.NoError(t, m.ForceMatch(a, b))
	assert.Equal(t, []string{"manual:b/a:0"}, describe(m))
}

func TestForceMatch_Errors(t *testing.T) {
	m, err := matcher.Build(people("a", "b", "c"), recordings("a", "y"))
	require.NoError(t, err)

	m.FindExactMatches()

	matched := find(t, m, "a", matcher.KindExact)
	b := find(t, m, "b", matcher.KindLeftOnly)
	c := find(t, m, "c", matcher.KindLeftOnly)
	y := find(t, m, "y", matcher.KindRightOnly)

	other, err := matcher.Build(people("z"), recordings("w"))
	require.NoError(t, err)

	stranger := other.Items()[0]

	type testCase struct {
		name    string
		a, b    *item
		wantErr error
	}

	tests := []testCase{
		{name: "AlreadyMatched", a: matched, b: y, wantErr: matcher.ErrAlreadyMatched},
		{name: "SameSide", a: b, b: c, wantErr: matcher.ErrSameSide},
		{name: "NotInPool", a: stranger, b: y, wantErr: matcher.ErrNotInPool},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := describe(m)

			err := m.ForceMatch(tt.a, tt.b)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, before, describe(m))
		})
	}
}

func TestUnMatch_RestoresPosition(t *testing.T) {
	m, err := matcher.Build(people("a", "b", "c"), recordings("a", "b", "c"))
	require.NoError(t, err)

	m.FindExactMatches()
	require.Equal(t, 3, m.Len())

	split, err := m.UnMatchAt(1)
	require.NoError(t, err)

	assert.Equal(t, 1, m.Index(split.Left))
	assert.Equal(t, 2, m.Index(split.Right))
	assert.Equal(t, []string{
		"exact:a/a:0",
		"left_only:b/:0",
		"right_only:/b:0",
		"exact:c/c:0",
	}, describe(m))

	stats := m.FindExactMatches()
	assert.Equal(t, 1, stats.Matches)
	assert.Equal(t, []string{"exact:a/a:0", "exact:b/b:0", "exact:c/c:0"}, describe(m))
}

func TestUnMatch_Errors(t *testing.T) {
	m, err := matcher.Build(people("a"), recordings("b"))
	require.NoError(t, err)

	_, err = m.UnMatch(m.Items()[0])
	assert.ErrorIs(t, err, matcher.ErrNotMatched)

	_, err = m.UnMatchAt(5)
	assert.ErrorIs(t, err, matcher.ErrNotInPool)

	_, err = m.UnMatchAt(-1)
	assert.ErrorIs(t, err, matcher.ErrNotInPool)

	other, err := matcher.Build(people("a"), recordings("a"))
	require.NoError(t, err)

	_, err = m.UnMatch(other.Items()[0])
	assert.ErrorIs(t, err, matcher.ErrNotInPool)
}

func TestEvents(t *testing.T) {
	m := matcher.New[person, recording]()

	rec := &recorder{}
	m.Subscribe(rec)

	require.NoError(t, m.SetData(people("a", "b"), recordings("a", "b")))
	m.FindExactMatches()

	assert.Equal(t, []string{
		"reset@-1",
		"update@0",
		"update@2",
		"remove@1",
		"remove@2",
	}, rec.summary())

	rec.events = nil

	_, err := m.UnMatchAt(0)
	require.NoError(t, err)
	assert.Equal(t, []string{"update@0", "insert@1"}, rec.summary())
	assert.Equal(t, "a", rec.events[1].Item.RightKey())

	rec.events = nil

	m.SortForDisplay()
	assert.Equal(t, []string{"reset@-1"}, rec.summary())
}

func TestEvents_ListenerFunc(t *testing.T) {
	m, err := matcher.Build(people("a"), recordings("a"))
	require.NoError(t, err)

	var types []matcher.EventType

	m.Subscribe(matcher.ListenerFunc[person, recording](func(ev matcher.Event[person, recording]) {
		types = append(types, ev.Type)
	}))

	m.FindExactMatches()
	assert.Equal(t, []matcher.EventType{matcher.EventUpdate, matcher.EventRemove}, types)
}

func TestStats(t *testing.T) {
	early := time.Now().Add(-time.Second)
	late := time.Now()

	a := matcher.Stats{Comparisons: 1200, Matches: 3, Start: late}
	b := matcher.Stats{Comparisons: 34, Matches: 0, Start: early}

	sum := a.Add(b)
	assert.Equal(t, 1234, sum.Comparisons)
	assert.Equal(t, 3, sum.Matches)
	assert.Equal(t, early, sum.Start)
	assert.True(t, sum.Matched())
	assert.False(t, b.Matched())

	assert.Equal(t, late, matcher.Stats{}.Add(a).Start)
	assert.Contains(t, sum.String(), "cmp:1,234, match:3, time:")
	assert.Zero(t, matcher.Stats{}.Elapsed())
}

func TestSortForDisplay(t *testing.T) {
	scores := map[[2]string]int{{"d", "dd"}: 70, {"e", "ee"}: 95}

	m, err := matcher.Build(people("a", "b", "d", "e", "m"), recordings("a", "dd", "ee", "n", "z"),
		matcher.WithScorer(tableScorer(scores)))
	require.NoError(t, err)

	m.FindExactMatches()

	_, err = m.FindFuzzyMatches(context.Background(), 90)
	require.NoError(t, err)

	_, err = m.FindTokenMatches(context.Background(), 10)
	require.NoError(t, err)

	require.NoError(t, m.ForceMatch(find(t, m, "m", matcher.KindLeftOnly), find(t, m, "n", matcher.KindRightOnly)))

	m.SortForDisplay()

	assert.Equal(t, []string{
		"left_only:b/:0",
		"right_only:/z:0",
		"fuzzy:e/ee:95",
		"token:d/dd:70",
		"manual:m/n:0",
		"exact:a/a:0",
	}, describe(m))

	assert.Equal(t, map[matcher.Kind]int{
		matcher.KindLeftOnly:  1,
		matcher.KindRightOnly: 1,
		matcher.KindFuzzy:     1,
		matcher.KindToken:     1,
		matcher.KindManual:    1,
		matcher.KindExact:     1,
	}, m.Counts())
}

func TestFilterAndUnmatched(t *testing.T) {
	m, err := matcher.Build(people("Kojo", "Ama"), recordings("kojo_01.wav", "yaw.wav"))
	require.NoError(t, err)

	assert.Len(t, m.Filter(""), 4)

	got := m.Filter("KOJO")
	require.Len(t, got, 2)
	assert.Equal(t, "Kojo", got[0].Key())
	assert.Equal(t, "kojo_01.wav", got[1].Key())

	assert.Empty(t, m.Filter("esi"))

	lefts := m.Unmatched(matcher.SideLeft)
	require.Len(t, lefts, 2)
	assert.Equal(t, "Ama", lefts[0].Key())

	rights := m.Unmatched(matcher.SideRight)
	require.Len(t, rights, 2)
	assert.Equal(t, "yaw.wav", rights[1].Key())
}

func TestLookup(t *testing.T) {
	m, err := matcher.Build(people("a"), recordings("b"))
	require.NoError(t, err)

	want := m.Items()[1]

	got, ok := m.Lookup(want.ID())
	require.True(t, ok)
	assert.Same(t, want, got)

	_, ok = m.Lookup(uuid.New())
	assert.False(t, ok)
}

func TestKind_Text(t *testing.T) {
	for _, k := range []matcher.Kind{
		matcher.KindLeftOnly, matcher.KindRightOnly, matcher.KindExact,
		matcher.KindToken, matcher.KindFuzzy, matcher.KindManual,
	} {
		text, err := k.MarshalText()
		require.NoError(t, err)

		var got matcher.Kind
		require.NoError(t, got.UnmarshalText(text))
		assert.Equal(t, k, got)
	}

	_, err := matcher.ParseKind("nope")
	assert.Error(t, err)
}
