package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pairup/internal/association"
	"github.com/MrJamesThe3rd/pairup/internal/matcher"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// Expected column order: id, session_id, left_key, right_key, right_path, kind, score, created_at
func scanAssociation(s scanner) (*association.Association, error) {
	var a association.Association

	var kind string

	if err := s.Scan(
		&a.ID, &a.SessionID, &a.LeftKey, &a.RightKey, &a.RightPath, &kind, &a.Score, &a.CreatedAt,
	); err != nil {
		return nil, err
	}

	k, err := matcher.ParseKind(kind)
	if err != nil {
		return nil, err
	}

	a.Kind = k

	return &a, nil
}

const selectAssociationColumns = `
	id, session_id, left_key, right_key, right_path, kind, score, created_at
`

func (s *Store) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*association.Association, error) {
	query := `SELECT ` + selectAssociationColumns + `
		FROM associations
		WHERE session_id = $1
		ORDER BY left_key ASC`

	rows, err := s.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("listing associations: %w", err)
	}
	defer rows.Close()

	var as []*association.Association

	for rows.Next() {
		a, err := scanAssociation(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning association: %w", err)
		}

		as = append(as, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating associations: %w", err)
	}

	return as, nil
}

func (s *Store) FindLatestByLeftKey(ctx context.Context, leftKey string) (*association.Association, error) {
	query := `SELECT ` + selectAssociationColumns + `
		FROM associations
		WHERE left_key = $1
		ORDER BY created_at DESC
		LIMIT 1`

	a, err := scanAssociation(s.db.QueryRowContext(ctx, query, leftKey))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, association.ErrNotFound
		}

		return nil, fmt.Errorf("finding association: %w", err)
	}

	return a, nil
}

// commitLockKey serializes concurrent commits of the same session.
func commitLockKey(sessionID uuid.UUID) int64 {
	h := fnv.New64a()
	h.Write([]byte("associations"))
	h.Write([]byte{0})
	h.Write(sessionID[:])

	return int64(h.Sum64())
}

type commitTx struct {
	tx *sql.Tx
}

func (s *Store) BeginCommit(ctx context.Context, sessionID uuid.UUID) (association.CommitTx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning commit tx: %w", err)
	}

	if _, err := dbTx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", commitLockKey(sessionID)); err != nil {
		dbTx.Rollback()
		return nil, fmt.Errorf("acquiring commit lock: %w", err)
	}

	return &commitTx{tx: dbTx}, nil
}

func (ct *commitTx) Commit() error   { return ct.tx.Commit() }
func (ct *commitTx) Rollback() error { return ct.tx.Rollback() }

func (ct *commitTx) DeleteSession(ctx context.Context, sessionID uuid.UUID) error {
	if _, err := ct.tx.ExecContext(ctx, `DELETE FROM associations WHERE session_id = $1`, sessionID); err != nil {
		return fmt.Errorf("deleting session associations: %w", err)
	}

	return nil
}

func (ct *commitTx) CreateAssociations(ctx context.Context, as []*association.Association) error {
	query := `
		INSERT INTO associations (id, session_id, left_key, right_key, right_path, kind, score, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING created_at
	`

	for _, a := range as {
		if a.ID == uuid.Nil {
			a.ID = uuid.New()
		}

		err := ct.tx.QueryRowContext(ctx, query,
			a.ID,
			a.SessionID,
			a.LeftKey,
			a.RightKey,
			a.RightPath,
			a.Kind.String(),
			a.Score,
		).Scan(&a.CreatedAt)
		if err != nil {
			return fmt.Errorf("creating association: %w", err)
		}
	}

	return nil
}
