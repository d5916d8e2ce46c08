package queue

import (
	"context"
	"fmt"
	"time"
)

// ResetStuckProcessing rolls in-flight items back to the stage they entered
// from. Called on daemon startup so a crash mid-stage leaves the item
// runnable instead of stranded.
func (s *Store) ResetStuckProcessing(ctx context.Context) (int64, error) {
	var total int64
	for _, transition := range stageRollbackTransitions {
		res, err := s.execWithRetry(
			ctx,
			`UPDATE queue_items SET status = ?, last_heartbeat = NULL, updated_at = ?
             WHERE status = ?`,
			transition.to,
			time.Now().UTC().Format(time.RFC3339Nano),
			transition.from,
		)
		if err != nil {
			return total, fmt.Errorf("reset %s items: %w", transition.from, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return total, fmt.Errorf("rows affected: %w", err)
		}
		total += affected
	}
	return total, nil
}

// UpdateHeartbeat records liveness for an in-flight item.
func (s *Store) UpdateHeartbeat(ctx context.Context, id int64) error {
	now := time.Now().UTC()
	err := s.execWithoutResultRetry(
		ctx,
		`UPDATE queue_items SET last_heartbeat = ?, updated_at = ? WHERE id = ?`,
		now.Format(time.RFC3339Nano),
		now.Format(time.RFC3339Nano),
		id,
	)
	if err != nil {
		return fmt.Errorf("update heartbeat: %w", err)
	}
	return nil
}

// ReclaimStaleProcessing rolls back in-flight items whose heartbeat is older
// than the timeout. Returns the reclaimed items so the caller can log them.
func (s *Store) ReclaimStaleProcessing(ctx context.Context, timeout time.Duration) ([]*Item, error) {
	cutoff := time.Now().UTC().Add(-timeout).Format(time.RFC3339Nano)
	var reclaimed []*Item
	for _, transition := range stageRollbackTransitions {
		rows, err := s.db.QueryContext(
			ctx,
			`SELECT `+itemColumns+` FROM queue_items
             WHERE status = ? AND last_heartbeat IS NOT NULL AND last_heartbeat < ?`,
			transition.from,
			cutoff,
		)
		if err != nil {
			return reclaimed, fmt.Errorf("find stale %s items: %w", transition.from, err)
		}
		var stale []*Item
		for rows.Next() {
			item, scanErr := scanItem(rows)
			if scanErr != nil {
				rows.Close()
				return reclaimed, fmt.Errorf("scan stale item: %w", scanErr)
			}
			stale = append(stale, item)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return reclaimed, err
		}
		rows.Close()

		for _, item := range stale {
			item.Status = transition.to
			item.LastHeartbeat = nil
			item.SetProgress("", "", 0)
			if err := s.Update(ctx, item); err != nil {
				return reclaimed, fmt.Errorf("reclaim item %d: %w", item.ID, err)
			}
			reclaimed = append(reclaimed, item)
		}
	}
	return reclaimed, nil
}

// FailAllProcessing marks every in-flight item as failed with the given
// reason. Used during daemon shutdown when work cannot be resumed.
func (s *Store) FailAllProcessing(ctx context.Context, reason string) (int64, error) {
	var total int64
	now := time.Now().UTC().Format(time.RFC3339Nano)
	for status := range processingStatuses {
		res, err := s.execWithRetry(
			ctx,
			`UPDATE queue_items SET status = ?, error_message = ?, last_heartbeat = NULL, updated_at = ?
             WHERE status = ?`,
			StatusFailed,
			reason,
			now,
			status,
		)
		if err != nil {
			return total, fmt.Errorf("fail %s items: %w", status, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return total, fmt.Errorf("rows affected: %w", err)
		}
		total += affected
	}
	return total, nil
}
