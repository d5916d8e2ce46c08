package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// NewItemParams captures the caller-supplied fields for a fresh queue item.
type NewItemParams struct {
	JobType         JobType
	ContentType     string
	Title           string
	Command         string
	SourcePath      string
	SourcePostsJSON string
	PlanJSON        string
	Caption         string
	NeedsPublish    bool
	ScheduledAt     *time.Time
	Seed            int64
}

// NewItem inserts a new pending item.
func (s *Store) NewItem(ctx context.Context, params NewItemParams) (*Item, error) {
	if params.JobType == "" {
		return nil, errors.New("job type is required")
	}
	contentType := params.ContentType
	if contentType == "" {
		contentType = "reel"
	}
	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)

	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO queue_items (
            job_type, content_type, title, command, source_path, source_posts_json,
            plan_json, caption, needs_publish, scheduled_at, seed, status,
            created_at, updated_at, progress_stage, progress_percent, progress_message
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(params.JobType),
		contentType,
		nullableString(params.Title),
		nullableString(params.Command),
		nullableString(params.SourcePath),
		nullableString(params.SourcePostsJSON),
		nullableString(params.PlanJSON),
		nullableString(params.Caption),
		boolToInt(params.NeedsPublish),
		nullableTime(params.ScheduledAt),
		params.Seed,
		StatusPending,
		timestamp,
		timestamp,
		nil,
		0.0,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("insert item: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

// GetByID fetches a queue item by identifier.
func (s *Store) GetByID(ctx context.Context, id int64) (*Item, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM queue_items WHERE id = ?`, id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

// Update persists changes to an existing queue item.
func (s *Store) Update(ctx context.Context, item *Item) error {
	if item == nil {
		return errors.New("item is nil")
	}
	item.UpdatedAt = time.Now().UTC()

	err := s.execWithoutResultRetry(
		ctx,
		`UPDATE queue_items SET
            job_type = ?, content_type = ?, title = ?, command = ?, source_path = ?,
            source_posts_json = ?, plan_json = ?, operations_json = ?, caption = ?,
            needs_publish = ?, scheduled_at = ?, seed = ?, status = ?, output_path = ?,
            platform_post_id = ?, error_message = ?, progress_stage = ?,
            progress_percent = ?, progress_message = ?, updated_at = ?, last_heartbeat = ?
        WHERE id = ?`,
		string(item.JobType),
		item.ContentType,
		nullableString(item.Title),
		nullableString(item.Command),
		nullableString(item.SourcePath),
		nullableString(item.SourcePostsJSON),
		nullableString(item.PlanJSON),
		nullableString(item.OperationsJSON),
		nullableString(item.Caption),
		boolToInt(item.NeedsPublish),
		nullableTime(item.ScheduledAt),
		item.Seed,
		item.Status,
		nullableString(item.OutputPath),
		nullableString(item.PlatformPostID),
		nullableString(item.ErrorMessage),
		nullableString(item.ProgressStage),
		item.ProgressPercent,
		nullableString(item.ProgressMessage),
		item.UpdatedAt.Format(time.RFC3339Nano),
		nullableTime(item.LastHeartbeat),
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	return nil
}

// List returns items filtered by the optional statuses, newest first.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Item, error) {
	query := `SELECT ` + itemColumns + ` FROM queue_items`
	args := make([]any, 0, len(statuses))
	if len(statuses) > 0 {
		query += ` WHERE status IN (` + makePlaceholders(len(statuses)) + `)`
		for _, status := range statuses {
			args = append(args, status)
		}
	}
	query += ` ORDER BY id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// NextForStatuses returns the oldest due item matching any of the provided
// statuses. Items whose scheduled_at lies in the future are skipped; this is
// how scheduled publication waits without a separate timer subsystem.
func (s *Store) NextForStatuses(ctx context.Context, statuses ...Status) (*Item, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	placeholders := makePlaceholders(len(statuses))
	args := make([]any, 0, len(statuses)+1)
	for _, status := range statuses {
		args = append(args, status)
	}
	args = append(args, time.Now().UTC().Format(time.RFC3339Nano))

	query := `SELECT ` + itemColumns + ` FROM queue_items
        WHERE status IN (` + placeholders + `)
          AND (scheduled_at IS NULL OR scheduled_at <= ?)
        ORDER BY created_at LIMIT 1`
	row := s.db.QueryRowContext(ctx, query, args...)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

// Retry returns a failed or review item to the start of its pipeline.
func (s *Store) Retry(ctx context.Context, id int64) (*Item, error) {
	item, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("item %d not found", id)
	}
	if item.Status != StatusFailed && item.Status != StatusReview {
		return nil, fmt.Errorf("item %d is %s, only failed or review items can be retried", id, item.Status)
	}
	item.Status = StatusPending
	item.ErrorMessage = ""
	item.SetProgress("", "", 0)
	item.LastHeartbeat = nil
	if err := s.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// Remove deletes a single item.
func (s *Store) Remove(ctx context.Context, id int64) error {
	return s.execWithoutResultRetry(ctx, `DELETE FROM queue_items WHERE id = ?`, id)
}

// Clear removes items; when completedOnly is true only completed items are deleted.
func (s *Store) Clear(ctx context.Context, completedOnly bool) (int64, error) {
	query := `DELETE FROM queue_items`
	args := []any{}
	if completedOnly {
		query += ` WHERE status = ?`
		args = append(args, StatusCompleted)
	}
	res, err := s.execWithRetry(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("clear queue: %w", err)
	}
	return res.RowsAffected()
}

// Health summarizes queue counts by lifecycle state.
func (s *Store) Health(ctx context.Context) (HealthSummary, error) {
	var summary HealthSummary
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM queue_items GROUP BY status`)
	if err != nil {
		return summary, fmt.Errorf("queue health: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var statusStr string
		var count int
		if err := rows.Scan(&statusStr, &count); err != nil {
			return summary, fmt.Errorf("scan health row: %w", err)
		}
		summary.Total += count
		switch Status(statusStr) {
		case StatusPending:
			summary.Pending += count
		case StatusFailed:
			summary.Failed += count
		case StatusReview:
			summary.Review += count
		case StatusCompleted:
			summary.Completed += count
		default:
			if IsProcessingStatus(Status(statusStr)) {
				summary.Processing += count
			}
		}
	}
	return summary, rows.Err()
}
