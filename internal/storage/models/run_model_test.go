package models

import (
	"testing"
	"time"
)

func TestRunModel_BeforeInsert(t *testing.T) {
	r := &RunModel{ID: "run-1", WorkflowID: "wf-1"}

	if err := r.BeforeInsert(nil); err != nil {
		t.Fatalf("BeforeInsert returned error: %v", err)
	}

	if r.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
	if r.UpdatedAt.IsZero() {
		t.Error("expected UpdatedAt to be set")
	}
	if r.StartedAt.IsZero() {
		t.Error("expected StartedAt to default to now when unset")
	}
	if r.Input == nil {
		t.Error("expected Input to default to an empty map")
	}
}

func TestRunModel_BeforeInsert_PreservesExplicitStartedAt(t *testing.T) {
	r := &RunModel{}
	r.BeforeInsert(nil)
	firstStart := r.StartedAt

	r2 := &RunModel{StartedAt: firstStart.Add(-time.Hour)}
	if err := r2.BeforeInsert(nil); err != nil {
		t.Fatalf("BeforeInsert returned error: %v", err)
	}
	if !r2.StartedAt.Equal(firstStart.Add(-time.Hour)) {
		t.Error("expected an explicit StartedAt to survive BeforeInsert")
	}
}

func TestRunModel_BeforeUpdate(t *testing.T) {
	r := &RunModel{}
	before := r.UpdatedAt
	if err := r.BeforeUpdate(nil); err != nil {
		t.Fatalf("BeforeUpdate returned error: %v", err)
	}
	if !r.UpdatedAt.After(before) {
		t.Error("expected BeforeUpdate to refresh UpdatedAt")
	}
}

func TestRunModel_IsTerminal(t *testing.T) {
	cases := map[string]bool{
		"PENDING":   false,
		"RUNNING":   false,
		"PAUSED":    false,
		"COMPLETED": true,
		"FAILED":    true,
		"CANCELED":  true,
	}
	for status, want := range cases {
		r := &RunModel{Status: status}
		if got := r.IsTerminal(); got != want {
			t.Errorf("status %s: IsTerminal() = %v, want %v", status, got, want)
		}
	}
}

func TestRunModel_MarkPaused(t *testing.T) {
	r := &RunModel{Status: "RUNNING"}
	r.MarkPaused()
	if r.Status != "PAUSED" {
		t.Errorf("expected status PAUSED, got %s", r.Status)
	}
}

func TestRunModel_TableName(t *testing.T) {
	if (RunModel{}).TableName() != "runs" {
		t.Errorf("expected table name %q, got %q", "runs", (RunModel{}).TableName())
	}
}
