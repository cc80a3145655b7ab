package queue

import (
	"database/sql"
	"errors"
	"time"
)

const runColumns = "id, carrier_id, source_path, mode, status, error_message, progress_stage, progress_message, correlation_id, segments_total, segments_done, created_at, updated_at"

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		id              int64
		carrierID       string
		sourcePath      sql.NullString
		mode            sql.NullString
		statusStr       string
		errorMessage    sql.NullString
		progressStage   sql.NullString
		progressMessage sql.NullString
		correlationID   sql.NullString
		segmentsTotal   sql.NullInt64
		segmentsDone    sql.NullInt64
		createdRaw      sql.NullString
		updatedRaw      sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&carrierID,
		&sourcePath,
		&mode,
		&statusStr,
		&errorMessage,
		&progressStage,
		&progressMessage,
		&correlationID,
		&segmentsTotal,
		&segmentsDone,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	run := &Run{
		ID:              id,
		CarrierID:       carrierID,
		SourcePath:      sourcePath.String,
		Mode:            mode.String,
		Status:          Status(statusStr),
		ErrorMessage:    errorMessage.String,
		ProgressStage:   progressStage.String,
		ProgressMessage: progressMessage.String,
		CorrelationID:   correlationID.String,
		SegmentsTotal:   int(segmentsTotal.Int64),
		SegmentsDone:    int(segmentsDone.Int64),
	}

	if created, err := parseTimeString(createdRaw.String); err == nil {
		run.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		run.UpdatedAt = updated
	}
	return run, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
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
