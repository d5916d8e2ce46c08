package queue

import (
	"database/sql"
	"errors"
	"time"
)

const itemColumns = "id, job_type, content_type, title, command, source_path, source_posts_json, plan_json, operations_json, caption, needs_publish, scheduled_at, seed, status, output_path, platform_post_id, error_message, progress_stage, progress_percent, progress_message, created_at, updated_at, last_heartbeat"

func scanItem(scanner interface{ Scan(dest ...any) error }) (*Item, error) {
	var (
		id               int64
		jobType          string
		contentType      sql.NullString
		title            sql.NullString
		command          sql.NullString
		sourcePath       sql.NullString
		sourcePosts      sql.NullString
		planJSON         sql.NullString
		operationsJSON   sql.NullString
		caption          sql.NullString
		needsPublish     sql.NullInt64
		scheduledRaw     sql.NullString
		seed             sql.NullInt64
		statusStr        string
		outputPath       sql.NullString
		platformPostID   sql.NullString
		errorMessage     sql.NullString
		progressStage    sql.NullString
		progressPercent  sql.NullFloat64
		progressMessage  sql.NullString
		createdRaw       sql.NullString
		updatedRaw       sql.NullString
		lastHeartbeatRaw sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&jobType,
		&contentType,
		&title,
		&command,
		&sourcePath,
		&sourcePosts,
		&planJSON,
		&operationsJSON,
		&caption,
		&needsPublish,
		&scheduledRaw,
		&seed,
		&statusStr,
		&outputPath,
		&platformPostID,
		&errorMessage,
		&progressStage,
		&progressPercent,
		&progressMessage,
		&createdRaw,
		&updatedRaw,
		&lastHeartbeatRaw,
	); err != nil {
		return nil, err
	}

	item := &Item{
		ID:              id,
		JobType:         JobType(jobType),
		ContentType:     contentType.String,
		Title:           title.String,
		Command:         command.String,
		SourcePath:      sourcePath.String,
		SourcePostsJSON: sourcePosts.String,
		PlanJSON:        planJSON.String,
		OperationsJSON:  operationsJSON.String,
		Caption:         caption.String,
		Seed:            seed.Int64,
		Status:          Status(statusStr),
		OutputPath:      outputPath.String,
		PlatformPostID:  platformPostID.String,
		ErrorMessage:    errorMessage.String,
		ProgressStage:   progressStage.String,
		ProgressPercent: progressPercent.Float64,
		ProgressMessage: progressMessage.String,
	}
	if needsPublish.Valid {
		item.NeedsPublish = needsPublish.Int64 != 0
	}
	if scheduledRaw.Valid {
		if scheduled, err := parseTimeString(scheduledRaw.String); err == nil {
			item.ScheduledAt = &scheduled
		}
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		item.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		item.UpdatedAt = updated
	}
	if lastHeartbeatRaw.Valid {
		if heartbeat, err := parseTimeString(lastHeartbeatRaw.String); err == nil {
			item.LastHeartbeat = &heartbeat
		}
	}
	return item, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return value.UTC().Format(time.RFC3339Nano)
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
