package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ShayCichocki/scaffold/pkg/models"
)

// ErrNotFound is returned when no journaled execution matches the ID.
var ErrNotFound = errors.New("execution not found")

// RecordExecution upserts a terminal execution record. The full record
// is stored as JSON alongside a few indexed columns for querying.
func (db *DB) RecordExecution(ctx context.Context, exec *models.Execution) error {
	record, err := json.Marshal(exec)
	if err != nil {
		return fmt.Errorf("marshal execution: %w", err)
	}

	var endTime any
	if exec.EndTime != nil {
		endTime = formatTime(*exec.EndTime)
	}
	var stepsCompleted int
	if exec.Result != nil {
		stepsCompleted = exec.Result.StepsCompleted
	}

	db.mu.Lock()
	defer db.mu.Unlock()
	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO executions (id, goal, status, start_time, end_time, steps_completed, record)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			end_time = excluded.end_time,
			steps_completed = excluded.steps_completed,
			record = excluded.record
	`, exec.ID, exec.Goal, string(exec.Status), formatTime(exec.StartTime), endTime, stepsCompleted, string(record))
	if err != nil {
		return fmt.Errorf("record execution: %w", err)
	}
	return nil
}

// GetExecution loads one journaled execution by ID.
func (db *DB) GetExecution(ctx context.Context, id string) (*models.Execution, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	var record string
	err := db.conn.QueryRowContext(ctx,
		"SELECT record FROM executions WHERE id = ?", id).Scan(&record)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get execution: %w", err)
	}

	var exec models.Execution
	if err := json.Unmarshal([]byte(record), &exec); err != nil {
		return nil, fmt.Errorf("unmarshal execution: %w", err)
	}
	return &exec, nil
}

// ListExecutions returns journaled executions, newest first.
func (db *DB) ListExecutions(ctx context.Context, limit int) ([]*models.Execution, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT record FROM executions
		ORDER BY start_time DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list executions: %w", err)
	}
	defer rows.Close()

	var execs []*models.Execution
	for rows.Next() {
		var record string
		if err := rows.Scan(&record); err != nil {
			return nil, fmt.Errorf("scan execution: %w", err)
		}
		var exec models.Execution
		if err := json.Unmarshal([]byte(record), &exec); err != nil {
			return nil, fmt.Errorf("unmarshal execution: %w", err)
		}
		execs = append(execs, &exec)
	}
	return execs, rows.Err()
}
