package state

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/ShayCichocki/scaffold/pkg/models"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "scaffold.db"))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(); err != nil {
		t.Fatalf("Migrate returned error: %v", err)
	}
	return db
}

func sampleExecution(id string, status models.ExecutionStatus) *models.Execution {
	end := time.Now().Round(time.Second)
	return &models.Execution{
		ID:        id,
		Goal:      "study quantum computing",
		Status:    status,
		StartTime: end.Add(-time.Minute),
		EndTime:   &end,
		Subtasks:  []string{id + "-task-0"},
		PlanID:    id + "-plan",
		Result: &models.Result{
			ExecutionID:    id,
			StepsCompleted: 2,
			Results: map[string]map[string]models.TaskOutcome{
				id + "-step-0": {
					id + "-task-0": {Status: models.TaskStatusCompleted},
				},
			},
		},
		Errors: []string{},
	}
}

func TestRecordAndGetExecution(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	want := sampleExecution("exec-1", models.ExecutionStatusCompleted)
	if err := db.RecordExecution(ctx, want); err != nil {
		t.Fatalf("RecordExecution returned error: %v", err)
	}

	got, err := db.GetExecution(ctx, "exec-1")
	if err != nil {
		t.Fatalf("GetExecution returned error: %v", err)
	}
	if got.ID != want.ID || got.Goal != want.Goal || got.Status != want.Status {
		t.Errorf("got %+v", got)
	}
	if got.Result == nil || got.Result.StepsCompleted != 2 {
		t.Errorf("result not round-tripped: %+v", got.Result)
	}
	outcome := got.Result.Results["exec-1-step-0"]["exec-1-task-0"]
	if outcome.Status != models.TaskStatusCompleted {
		t.Errorf("outcome = %+v", outcome)
	}
}

func TestRecordExecution_Upsert(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	exec := sampleExecution("exec-1", models.ExecutionStatusFailed)
	exec.Errors = []string{"decomposition failed"}
	if err := db.RecordExecution(ctx, exec); err != nil {
		t.Fatal(err)
	}
	// A second write for the same ID replaces the record.
	exec.Errors = append(exec.Errors, "retried and failed again")
	if err := db.RecordExecution(ctx, exec); err != nil {
		t.Fatal(err)
	}

	got, err := db.GetExecution(ctx, "exec-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Errors) != 2 {
		t.Errorf("errors = %v", got.Errors)
	}

	execs, err := db.ListExecutions(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(execs) != 1 {
		t.Errorf("got %d executions, want 1", len(execs))
	}
}

func TestGetExecution_NotFound(t *testing.T) {
	db := openTestDB(t)

	_, err := db.GetExecution(context.Background(), "absent")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestListExecutions_NewestFirst(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	older := sampleExecution("exec-old", models.ExecutionStatusCompleted)
	older.StartTime = time.Now().Add(-time.Hour)
	newer := sampleExecution("exec-new", models.ExecutionStatusCompleted)

	if err := db.RecordExecution(ctx, older); err != nil {
		t.Fatal(err)
	}
	if err := db.RecordExecution(ctx, newer); err != nil {
		t.Fatal(err)
	}

	execs, err := db.ListExecutions(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(execs) != 2 || execs[0].ID != "exec-new" || execs[1].ID != "exec-old" {
		t.Errorf("unexpected order: %v, %v", execs[0].ID, execs[1].ID)
	}

	limited, err := db.ListExecutions(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 1 || limited[0].ID != "exec-new" {
		t.Errorf("limit not applied: %+v", limited)
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)
	if err := db.Migrate(); err != nil {
		t.Fatalf("second Migrate returned error: %v", err)
	}
}
