package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pairup/internal/association"
	"github.com/MrJamesThe3rd/pairup/internal/matcher"
	"github.com/MrJamesThe3rd/pairup/internal/media"
	"github.com/MrJamesThe3rd/pairup/internal/roster"
)

var (
	ErrNotFound     = errors.New("session not found")
	ErrItemNotFound = errors.New("item not found")
)

type (
	Pool = matcher.Matcher[roster.Recipient, media.File]
	Item = matcher.Item[roster.Recipient, media.File]
)

// Row is a read-only copy of one pool item.
type Row struct {
	ID    uuid.UUID         `json:"id"`
	Kind  matcher.Kind      `json:"kind"`
	Score int               `json:"score"`
	Left  *roster.Recipient `json:"left,omitempty"`
	Right *media.File       `json:"right,omitempty"`
}

// Label is the text shown for one side, or "" when the side is empty.
func (r Row) Label(side matcher.Side) string {
	if side == matcher.SideLeft {
		if r.Left == nil {
			return ""
		}

		return r.Left.Key()
	}

	if r.Right == nil {
		return ""
	}

	return r.Right.Name
}

func rowOf(it *Item) Row {
	row := Row{ID: it.ID(), Kind: it.Kind(), Score: it.Score()}

	if l, ok := it.Left(); ok {
		row.Left = &l
	}

	if r, ok := it.Right(); ok {
		row.Right = &r
	}

	return row
}

// Session is one reconciliation of a roster against a set of recordings.
// All methods are safe for concurrent use.
type Session struct {
	ID        uuid.UUID
	CreatedAt time.Time

	mu    sync.Mutex
	pool  *Pool
	stats matcher.Stats
}

// New builds a session pool. It fails with matcher.ErrDuplicateKey when two
// recipients or two recordings share a key.
func New(recipients []roster.Recipient, files []media.File, opts ...matcher.Option) (*Session, error) {
	pool, err := matcher.Build(recipients, files, opts...)
	if err != nil {
		return nil, fmt.Errorf("building pool: %w", err)
	}

	return &Session{
		ID:        uuid.New(),
		CreatedAt: time.Now(),
		pool:      pool,
	}, nil
}

// AutoMatch runs the automatic passes and adds their work to the session stats.
func (s *Session) AutoMatch(ctx context.Context, threshold int) (matcher.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats, err := s.pool.AutoMatch(ctx, threshold)
	s.stats = s.stats.Add(stats)

	if err != nil {
		return stats, err
	}

	slog.Info("automatch finished",
		"session", s.ID,
		"threshold", threshold,
		"stats", stats.String(),
	)

	return stats, nil
}

// ForceMatch manually pairs two unmatched items, given in either order.
func (s *Session) ForceMatch(leftID, rightID uuid.UUID) (Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.pool.Lookup(leftID)
	if !ok {
		return Row{}, fmt.Errorf("%w: %s", ErrItemNotFound, leftID)
	}

	b, ok := s.pool.Lookup(rightID)
	if !ok {
		return Row{}, fmt.Errorf("%w: %s", ErrItemNotFound, rightID)
	}

	if err := s.pool.ForceMatch(a, b); err != nil {
		return Row{}, err
	}

	kept := a
	if a.Kind() == matcher.KindRemoved {
		kept = b
	}

	return rowOf(kept), nil
}

// UnMatch splits a matched item and returns the two resulting rows.
func (s *Session) UnMatch(itemID uuid.UUID) (Row, Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.pool.Lookup(itemID)
	if !ok {
		return Row{}, Row{}, fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
	}

	split, err := s.pool.UnMatch(it)
	if err != nil {
		return Row{}, Row{}, err
	}

	return rowOf(split.Left), rowOf(split.Right), nil
}

// Rows returns the pool in its current order.
func (s *Session) Rows() []Row {
	s.mu.Lock()
	defer s.mu.Unlock()

	return rowsOf(s.pool.Items())
}

// Filter returns the rows whose recipient or file name contains text.
func (s *Session) Filter(text string) []Row {
	s.mu.Lock()
	defer s.mu.Unlock()

	return rowsOf(s.pool.Filter(text))
}

// Candidates lists the unmatched rows on one side, narrowed by text.
// Recipients match on any of their name parts.
func (s *Session) Candidates(side matcher.Side, text string) []Row {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Row

	for _, it := range s.pool.Unmatched(side) {
		row := rowOf(it)

		switch {
		case text == "":
		case row.Left != nil && !row.Left.ContainsText(text):
			continue
		case row.Right != nil && !strings.Contains(strings.ToLower(row.Right.Name), strings.ToLower(text)):
			continue
		}

		out = append(out, row)
	}

	return out
}

// SortForDisplay puts unmatched rows first and the most certain matches last.
func (s *Session) SortForDisplay() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pool.SortForDisplay()
}

// Summary counts the rows per kind.
func (s *Session) Summary() map[matcher.Kind]int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.pool.Counts()
}

// Stats is the sum of every automatic pass run on this session.
func (s *Session) Stats() matcher.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.stats
}

// Associations lists the matched rows as commit parameters, in pool order.
func (s *Session) Associations() []association.CreateParams {
	s.mu.Lock()
	defer s.mu.Unlock()

	var params []association.CreateParams

	for _, it := range s.pool.Items() {
		if !it.Kind().IsMatch() {
			continue
		}

		r, _ := it.Right()

		params = append(params, association.CreateParams{
			LeftKey:   it.LeftKey(),
			RightKey:  it.RightKey(),
			RightPath: r.Path,
			Kind:      it.Kind(),
			Score:     it.Score(),
		})
	}

	return params
}

func rowsOf(items []*Item) []Row {
	rows := make([]Row, len(items))
	for i, it := range items {
		rows[i] = rowOf(it)
	}

	return rows
}
