package store

import (
	"database/sql"
	"fmt"
	"time"

	"excelsplit/internal/model"
)

// 运行状态
const (
	RunStatusProcessing = "processing"
	RunStatusSuccess    = "success"
	RunStatusFailed     = "failed"
)

// RunLog 一条运行记录
type RunLog struct {
	ID     int64           `json:"id"`
	Report model.RunReport `json:"report"`

	Status       string     `json:"status"`
	ErrorMessage string     `json:"errorMessage,omitempty"`
	StartedAt    time.Time  `json:"startedAt"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
}

// CreateRunLog 创建运行记录（processing），返回记录 ID
func (s *Store) CreateRunLog(r *model.RunReport) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO run_logs (run_id, input_path, output_path, source_sheet, reference_sheet, result_sheet, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, r.RunID, r.InputPath, r.OutputPath, r.SourceSheet, r.ReferenceSheet, r.ResultSheet, RunStatusProcessing)
	if err != nil {
		return 0, fmt.Errorf("failed to create run log: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run log id: %w", err)
	}
	return id, nil
}

// FinishRunLog 完成运行记录；runErr 非空时记为失败
func (s *Store) FinishRunLog(id int64, r *model.RunReport, runErr error) error {
	status, msg := RunStatusSuccess, ""
	if runErr != nil {
		status, msg = RunStatusFailed, runErr.Error()
	}
	_, err := s.db.Exec(`
		UPDATE run_logs SET
			source_rows = ?,
			result_rows = ?,
			split_rows = ?,
			passthrough_rows = ?,
			duration_ms = ?,
			status = ?,
			error_message = ?,
			completed_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, r.SourceRows, r.ResultRows, r.SplitRows, r.PassThroughRows, r.Duration.Milliseconds(), status, msg, id)
	if err != nil {
		return fmt.Errorf("failed to update run log: %w", err)
	}
	return nil
}

// ListRunLogs 最近的运行记录，按开始时间倒序
func (s *Store) ListRunLogs(limit int) ([]RunLog, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`
		SELECT id, run_id, input_path, output_path, source_sheet, reference_sheet, result_sheet,
			source_rows, result_rows, split_rows, passthrough_rows, duration_ms,
			status, error_message, started_at, completed_at
		FROM run_logs
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query run logs: %w", err)
	}
	defer rows.Close()

	logs := make([]RunLog, 0, limit)
	for rows.Next() {
		var (
			l          RunLog
			durationMS int64
			completed  sql.NullTime
		)
		if err := rows.Scan(
			&l.ID, &l.Report.RunID, &l.Report.InputPath, &l.Report.OutputPath,
			&l.Report.SourceSheet, &l.Report.ReferenceSheet, &l.Report.ResultSheet,
			&l.Report.SourceRows, &l.Report.ResultRows, &l.Report.SplitRows, &l.Report.PassThroughRows,
			&durationMS, &l.Status, &l.ErrorMessage, &l.StartedAt, &completed,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run log: %w", err)
		}
		l.Report.Duration = time.Duration(durationMS) * time.Millisecond
		l.Report.StartedAt = l.StartedAt
		if completed.Valid {
			t := completed.Time
			l.CompletedAt = &t
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
