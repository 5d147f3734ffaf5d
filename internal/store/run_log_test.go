package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"excelsplit/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := New(filepath.Join(t.TempDir(), "history", "runs.db"))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestRunLogLifecycle(t *testing.T) {
	st := newTestStore(t)

	ok := &model.RunReport{
		RunID:          "run-1",
		InputPath:      "in.xlsx",
		OutputPath:     "out.xlsx",
		SourceSheet:    "工资",
		ReferenceSheet: "工时",
		ResultSheet:    "拆分结果",
	}
	id, err := st.CreateRunLog(ok)
	if err != nil {
		t.Fatalf("CreateRunLog failed: %v", err)
	}
	ok.SourceRows, ok.ResultRows, ok.SplitRows, ok.PassThroughRows = 3, 5, 2, 1
	ok.Duration = 1500 * time.Millisecond
	if err := st.FinishRunLog(id, ok, nil); err != nil {
		t.Fatalf("FinishRunLog failed: %v", err)
	}

	failed := &model.RunReport{RunID: "run-2", InputPath: "in.xlsx"}
	id2, err := st.CreateRunLog(failed)
	if err != nil {
		t.Fatalf("CreateRunLog failed: %v", err)
	}
	runErr := &model.DataError{Sheet: "工时", Row: 3, Column: "实际出勤", Message: "project hours is zero"}
	if err := st.FinishRunLog(id2, failed, runErr); err != nil {
		t.Fatalf("FinishRunLog failed: %v", err)
	}

	if _, err := st.CreateRunLog(&model.RunReport{RunID: "run-3"}); err != nil {
		t.Fatalf("CreateRunLog failed: %v", err)
	}

	logs, err := st.ListRunLogs(10)
	if err != nil {
		t.Fatalf("ListRunLogs failed: %v", err)
	}
	if len(logs) != 3 {
		t.Fatalf("len(logs)=%d, want 3", len(logs))
	}

	if logs[0].Report.RunID != "run-3" || logs[0].Status != RunStatusProcessing || logs[0].CompletedAt != nil {
		t.Fatalf("logs[0]=%+v", logs[0])
	}
	if logs[1].Status != RunStatusFailed || logs[1].ErrorMessage != runErr.Error() {
		t.Fatalf("logs[1]=%+v", logs[1])
	}
	got := logs[2]
	if got.Status != RunStatusSuccess || got.CompletedAt == nil {
		t.Fatalf("logs[2]=%+v", got)
	}
	if got.Report.ResultRows != 5 || got.Report.SplitRows != 2 || got.Report.Duration != 1500*time.Millisecond {
		t.Fatalf("report=%+v", got.Report)
	}
	if got.Report.ReferenceSheet != "工时" {
		t.Fatalf("ReferenceSheet=%q", got.Report.ReferenceSheet)
	}
}

func TestListRunLogsLimitAndEmpty(t *testing.T) {
	st := newTestStore(t)

	logs, err := st.ListRunLogs(0)
	if err != nil {
		t.Fatalf("ListRunLogs failed: %v", err)
	}
	if logs == nil || len(logs) != 0 {
		t.Fatalf("logs=%v, want empty non-nil slice", logs)
	}

	for _, id := range []string{"a", "b", "c"} {
		if _, err := st.CreateRunLog(&model.RunReport{RunID: id}); err != nil {
			t.Fatalf("CreateRunLog failed: %v", err)
		}
	}
	logs, err = st.ListRunLogs(2)
	if err != nil {
		t.Fatalf("ListRunLogs failed: %v", err)
	}
	if len(logs) != 2 || logs[0].Report.RunID != "c" {
		t.Fatalf("logs=%+v", logs)
	}
}

func TestCreateRunLogDuplicateRunID(t *testing.T) {
	st := newTestStore(t)
	if _, err := st.CreateRunLog(&model.RunReport{RunID: "dup"}); err != nil {
		t.Fatalf("CreateRunLog failed: %v", err)
	}
	_, err := st.CreateRunLog(&model.RunReport{RunID: "dup"})
	if err == nil {
		t.Fatalf("expected unique constraint error")
	}
	if errors.Unwrap(err) == nil {
		t.Fatalf("error should wrap the driver error: %v", err)
	}
}
