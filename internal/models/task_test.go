package models

import (
	"encoding/json"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestTaskStatus_String(t *testing.T) {
	tests := []struct {
		status TaskStatus
		want   string
	}{
		{StatusPending, "pending"},
		{StatusRunning, "running"},
		{StatusCompleted, "completed"},
		{StatusFailed, "failed"},
		{TaskStatus(42), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("TaskStatus(%d).String() = %q, want %q", int(tt.status), got, tt.want)
		}
	}
}

func TestTaskStatus_CanTransitionTo(t *testing.T) {
	all := []TaskStatus{StatusPending, StatusRunning, StatusCompleted, StatusFailed}
	allowed := map[TaskStatus]map[TaskStatus]bool{
		StatusPending: {StatusRunning: true},
		StatusRunning: {StatusCompleted: true, StatusFailed: true},
	}

	for _, from := range all {
		for _, to := range all {
			want := allowed[from][to]
			if got := from.CanTransitionTo(to); got != want {
				t.Errorf("%s -> %s: got %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestTaskStatus_IsTerminal(t *testing.T) {
	if StatusPending.IsTerminal() || StatusRunning.IsTerminal() {
		t.Error("pending and running must not be terminal")
	}
	if !StatusCompleted.IsTerminal() || !StatusFailed.IsTerminal() {
		t.Error("completed and failed must be terminal")
	}
}

func TestParseTaskStatus_Unknown(t *testing.T) {
	if _, err := ParseTaskStatus("paused"); err == nil {
		t.Error("expected error for unknown status")
	}
}

func TestTaskStatus_TextEncoding(t *testing.T) {
	rec := TaskRecord{TaskID: "T1", Status: StatusFailed, Result: "boom"}

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("json.Marshal: %v", err)
	}
	if string(data) != `{"task_id":"T1","status":"failed","result":"boom"}` {
		t.Errorf("unexpected JSON: %s", data)
	}

	var decoded TaskRecord
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("json.Unmarshal: %v", err)
	}
	if decoded != rec {
		t.Errorf("decoded = %+v, want %+v", decoded, rec)
	}

	out, err := yaml.Marshal(rec)
	if err != nil {
		t.Fatalf("yaml.Marshal: %v", err)
	}
	var fromYAML TaskRecord
	if err := yaml.Unmarshal(out, &fromYAML); err != nil {
		t.Fatalf("yaml.Unmarshal: %v", err)
	}
	if fromYAML.Status != StatusFailed {
		t.Errorf("yaml status = %s, want failed", fromYAML.Status)
	}
}
