package store

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrStaleTransition reports that a conditional update matched no row because
// the task changed since it was read.
var ErrStaleTransition = errors.New("task changed concurrently")

// MarkComplete records completion of an in-progress task.
func (s *Store) MarkComplete(ctx context.Context, id, actorID string, at time.Time) error {
	return s.applyTransition(ctx, `
		UPDATE tasks
		SET status = 'done', completed_by = ?, completed_at = ?, updated_at = ?
		WHERE id = ? AND status = 'in_progress'
	`, id, actorID, at)
}

// MarkFirstVerified records the first verifier of a completed task.
func (s *Store) MarkFirstVerified(ctx context.Context, id, actorID string, at time.Time) error {
	return s.applyTransition(ctx, `
		UPDATE tasks
		SET first_verified_by = ?, first_verified_at = ?, updated_at = ?
		WHERE id = ? AND status = 'done' AND first_verified_by IS NULL
	`, id, actorID, at)
}

// MarkSecondVerified records the second verifier of a first-verified task.
func (s *Store) MarkSecondVerified(ctx context.Context, id, actorID string, at time.Time) error {
	return s.applyTransition(ctx, `
		UPDATE tasks
		SET second_verified_by = ?, second_verified_at = ?, updated_at = ?
		WHERE id = ? AND status = 'done'
		  AND first_verified_by IS NOT NULL
		  AND second_verified_by IS NULL
	`, id, actorID, at)
}

func (s *Store) applyTransition(ctx context.Context, query, id, actorID string, at time.Time) error {
	if id == "" {
		return fmt.Errorf("id is required")
	}
	if actorID == "" {
		return fmt.Errorf("actor is required")
	}
	stamp := formatTime(at)
	result, err := s.db.ExecContext(ctx, query, actorID, stamp, stamp, id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}
