package association

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pairup/internal/matcher"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=association
type Repository interface {
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*Association, error)
	FindLatestByLeftKey(ctx context.Context, leftKey string) (*Association, error)

	BeginCommit(ctx context.Context, sessionID uuid.UUID) (CommitTx, error)
}

type CommitTx interface {
	DeleteSession(ctx context.Context, sessionID uuid.UUID) error
	CreateAssociations(ctx context.Context, as []*Association) error
	Commit() error
	Rollback() error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	LeftKey   string
	RightKey  string
	RightPath string
	Kind      matcher.Kind
	Score     int
}

// Commit replaces everything stored for sessionID with params, in one
// transaction. Committing an empty list clears the session.
func (s *Service) Commit(ctx context.Context, sessionID uuid.UUID, params []CreateParams) ([]*Association, error) {
	for _, p := range params {
		if !p.Kind.IsMatch() {
			return nil, fmt.Errorf("%w: %q is %s", ErrUnmatched, p.LeftKey, p.Kind)
		}
	}

	commitTx, err := s.repo.BeginCommit(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("begin commit: %w", err)
	}
	defer commitTx.Rollback()

	if err := commitTx.DeleteSession(ctx, sessionID); err != nil {
		return nil, fmt.Errorf("clear session: %w", err)
	}

	as := paramsToAssociations(sessionID, params)
	if len(as) > 0 {
		if err := commitTx.CreateAssociations(ctx, as); err != nil {
			return nil, fmt.Errorf("create associations: %w", err)
		}
	}

	if err := commitTx.Commit(); err != nil {
		return nil, fmt.Errorf("commit associations: %w", err)
	}

	return as, nil
}

func (s *Service) List(ctx context.Context, sessionID uuid.UUID) ([]*Association, error) {
	return s.repo.ListBySession(ctx, sessionID)
}

// Suggest returns the recording most recently committed for leftKey.
// Returns empty string if there is none.
func (s *Service) Suggest(ctx context.Context, leftKey string) (string, error) {
	a, err := s.repo.FindLatestByLeftKey(ctx, leftKey)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil
		}

		return "", fmt.Errorf("finding suggestion: %w", err)
	}

	return a.RightKey, nil
}

func paramsToAssociations(sessionID uuid.UUID, params []CreateParams) []*Association {
	as := make([]*Association, len(params))
	for i, p := range params {
		as[i] = &Association{
			SessionID: sessionID,
			LeftKey:   p.LeftKey,
			RightKey:  p.RightKey,
			RightPath: p.RightPath,
			Kind:      p.Kind,
			Score:     p.Score,
		}
	}

	return as
}
