package job

import (
	"errors"
	"testing"
)

func TestStatusIsValid(t *testing.T) {
	valid := []Status{StatusPending, StatusProcessing, StatusCompleted, StatusFailed, StatusCancelled}
	for _, s := range valid {
		if !s.IsValid() {
			t.Errorf("expected %s to be valid", s)
		}
	}
	if Status("unknown").IsValid() {
		t.Error("expected unknown status to be invalid")
	}
}

func TestStatusIsTerminal(t *testing.T) {
	tests := []struct {
		status   Status
		terminal bool
	}{
		{StatusPending, false},
		{StatusProcessing, false},
		{StatusCompleted, true},
		{StatusFailed, true},
		{StatusCancelled, true},
	}

	for _, tt := range tests {
		if got := tt.status.IsTerminal(); got != tt.terminal {
			t.Errorf("IsTerminal(%s) = %v, want %v", tt.status, got, tt.terminal)
		}
	}
}

func TestTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    Status
		to      Status
		wantErr bool
	}{
		{"pending to processing", StatusPending, StatusProcessing, false},
		{"pending to cancelled", StatusPending, StatusCancelled, false},
		{"pending to completed", StatusPending, StatusCompleted, true},
		{"pending to failed", StatusPending, StatusFailed, true},
		{"processing to completed", StatusProcessing, StatusCompleted, false},
		{"processing to failed", StatusProcessing, StatusFailed, false},
		{"processing to cancelled", StatusProcessing, StatusCancelled, false},
		{"processing to pending", StatusProcessing, StatusPending, true},
		{"completed to processing", StatusCompleted, StatusProcessing, true},
		{"completed to failed", StatusCompleted, StatusFailed, true},
		{"failed to processing", StatusFailed, StatusProcessing, true},
		{"cancelled to processing", StatusCancelled, StatusProcessing, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := New("a lake", 5)
			j.Status = tt.from

			err := j.TransitionTo(tt.to)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidTransition) {
					t.Errorf("expected ErrInvalidTransition, got %v", err)
				}
				if j.Status != tt.from {
					t.Errorf("status changed on invalid transition: %s", j.Status)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if j.Status != tt.to {
				t.Errorf("expected status %s, got %s", tt.to, j.Status)
			}
		})
	}
}

func TestNew(t *testing.T) {
	j := New("a lake", 8)

	if j.ID == "" {
		t.Error("expected generated ID")
	}
	if j.Status != StatusPending {
		t.Errorf("expected pending status, got %s", j.Status)
	}
	if j.Progress != 0 {
		t.Errorf("expected zero progress, got %d", j.Progress)
	}
	if j.DurationSec != 8 {
		t.Errorf("expected duration 8, got %d", j.DurationSec)
	}
}

func TestComplete(t *testing.T) {
	j := New("a lake", 5)
	if err := j.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	j.UpdateProgress(70)

	if err := j.Complete("artifact-1", "minimax"); err != nil {
		t.Fatalf("complete: %v", err)
	}

	if j.Status != StatusCompleted {
		t.Errorf("expected completed, got %s", j.Status)
	}
	if j.Progress != 100 {
		t.Errorf("expected progress 100, got %d", j.Progress)
	}
	if j.ArtifactID != "artifact-1" {
		t.Errorf("expected artifact reference, got %q", j.ArtifactID)
	}
	if j.ModelUsed != "minimax" {
		t.Errorf("expected model recorded, got %q", j.ModelUsed)
	}
	if j.Error != "" {
		t.Errorf("expected no error on completed job, got %q", j.Error)
	}
	if j.CompletedAt.IsZero() {
		t.Error("expected CompletedAt to be stamped")
	}
}

func TestFail(t *testing.T) {
	j := New("a lake", 5)
	if err := j.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	j.UpdateProgress(70)
	j.ArtifactID = "stale"

	if err := j.Fail("all providers failed"); err != nil {
		t.Fatalf("fail: %v", err)
	}

	if j.Status != StatusFailed {
		t.Errorf("expected failed, got %s", j.Status)
	}
	if j.Error != "all providers failed" {
		t.Errorf("expected error message, got %q", j.Error)
	}
	if j.Progress != 0 {
		t.Errorf("expected progress reset to 0, got %d", j.Progress)
	}
	if j.ArtifactID != "" {
		t.Errorf("expected artifact reference cleared, got %q", j.ArtifactID)
	}
}

func TestCompleteFromPendingFails(t *testing.T) {
	j := New("a lake", 5)

	if err := j.Complete("artifact-1", "minimax"); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
	if j.ArtifactID != "" {
		t.Error("expected no artifact on rejected completion")
	}
}

func TestUpdateProgress(t *testing.T) {
	j := New("a lake", 5)

	j.UpdateProgress(30)
	if j.Progress != 30 {
		t.Errorf("expected 30, got %d", j.Progress)
	}

	// Progress never moves backwards.
	j.UpdateProgress(10)
	if j.Progress != 30 {
		t.Errorf("expected 30 after lower update, got %d", j.Progress)
	}

	// 100 is reserved for completion.
	j.UpdateProgress(100)
	if j.Progress != 99 {
		t.Errorf("expected cap at 99, got %d", j.Progress)
	}
}

func TestClone(t *testing.T) {
	j := New("a lake", 5)
	j.SetEnhancedPrompt("a lake, cinematic")

	c := j.Clone()
	c.Status = StatusProcessing
	c.Progress = 50

	if j.Status != StatusPending || j.Progress != 0 {
		t.Error("mutating the clone must not affect the original")
	}
	if c.EnhancedPrompt != j.EnhancedPrompt {
		t.Error("expected enhanced prompt to be copied")
	}
}

func TestEnhancePrompt(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		want   string
		stable bool
	}{
		{"plain prompt gets suffix", "a calm lake", "a calm lake, " + promptStyleSuffix, false},
		{"already styled prompt untouched", "a lake, cinematic wide shot", "a lake, cinematic wide shot", true},
		{"whitespace trimmed", "  a lake  ", "a lake, " + promptStyleSuffix, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EnhancePrompt(tt.in)
			if got != tt.want {
				t.Errorf("EnhancePrompt(%q) = %q, want %q", tt.in, got, tt.want)
			}
			// Deterministic: same input, same output.
			if again := EnhancePrompt(tt.in); again != got {
				t.Errorf("expected deterministic enhancement, got %q then %q", got, again)
			}
		})
	}
}
