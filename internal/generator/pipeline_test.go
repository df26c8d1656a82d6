package generator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
)

// fakeGenerator returns a canned result or error and records its calls.
type fakeGenerator struct {
	name  string
	err   error
	calls int
}

func (f *fakeGenerator) Name() string { return f.name }

func (f *fakeGenerator) Generate(_ context.Context, _ string, _ Options) (Result, error) {
	f.calls++
	if f.err != nil {
		return Result{}, f.err
	}
	return Result{VideoPath: "/tmp/" + f.name + ".mp4", Provider: f.name}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPipeline_FirstProviderSucceeds(t *testing.T) {
	first := &fakeGenerator{name: "minimax"}
	second := &fakeGenerator{name: "replicate"}
	p := NewPipeline(discardLogger(), first, second)

	result, attempts, err := p.Generate(context.Background(), "a lake", "", Options{DurationSec: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Provider != "minimax" {
		t.Errorf("expected provider minimax, got %s", result.Provider)
	}
	if len(attempts) != 0 {
		t.Errorf("expected no failed attempts, got %d", len(attempts))
	}
	if second.calls != 0 {
		t.Error("expected second provider to be skipped")
	}
}

func TestPipeline_FallsThroughOnFailure(t *testing.T) {
	first := &fakeGenerator{name: "minimax", err: errors.New("rate limited")}
	second := &fakeGenerator{name: "replicate"}
	p := NewPipeline(discardLogger(), first, second)

	result, attempts, err := p.Generate(context.Background(), "a lake", "", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Provider != "replicate" {
		t.Errorf("expected provider replicate, got %s", result.Provider)
	}
	if len(attempts) != 1 || attempts[0].Provider != "minimax" {
		t.Errorf("expected one failed attempt for minimax, got %+v", attempts)
	}
}

func TestPipeline_AllProvidersFail(t *testing.T) {
	first := &fakeGenerator{name: "minimax", err: errors.New("timeout")}
	second := &fakeGenerator{name: "replicate", err: errors.New("no output")}
	p := NewPipeline(discardLogger(), first, second)

	_, attempts, err := p.Generate(context.Background(), "a lake", "", Options{})

	var exhausted *ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected ExhaustedError, got %v", err)
	}
	if len(exhausted.Attempts) != 2 {
		t.Fatalf("expected 2 attempts in error, got %d", len(exhausted.Attempts))
	}
	if len(attempts) != 2 {
		t.Errorf("expected 2 attempts returned, got %d", len(attempts))
	}
	if exhausted.Attempts[0].Provider != "minimax" || exhausted.Attempts[1].Provider != "replicate" {
		t.Errorf("unexpected attempt order: %+v", exhausted.Attempts)
	}
}

func TestPipeline_PreferredProviderMovesToFront(t *testing.T) {
	first := &fakeGenerator{name: "minimax"}
	second := &fakeGenerator{name: "replicate"}
	p := NewPipeline(discardLogger(), first, second)

	result, _, err := p.Generate(context.Background(), "a lake", "replicate", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Provider != "replicate" {
		t.Errorf("expected provider replicate, got %s", result.Provider)
	}
	if first.calls != 0 {
		t.Error("expected minimax to be skipped when replicate succeeds first")
	}
}

func TestPipeline_PreferredStillFallsThrough(t *testing.T) {
	first := &fakeGenerator{name: "minimax"}
	second := &fakeGenerator{name: "replicate", err: errors.New("boom")}
	p := NewPipeline(discardLogger(), first, second)

	result, attempts, err := p.Generate(context.Background(), "a lake", "replicate", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Provider != "minimax" {
		t.Errorf("expected fallthrough to minimax, got %s", result.Provider)
	}
	if len(attempts) != 1 || attempts[0].Provider != "replicate" {
		t.Errorf("expected failed replicate attempt first, got %+v", attempts)
	}
}

func TestPipeline_UnknownPreferredKeepsOrder(t *testing.T) {
	first := &fakeGenerator{name: "minimax"}
	second := &fakeGenerator{name: "replicate"}
	p := NewPipeline(discardLogger(), first, second)

	result, _, err := p.Generate(context.Background(), "a lake", "does-not-exist", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Provider != "minimax" {
		t.Errorf("expected default order to hold, got %s", result.Provider)
	}
}

func TestPipeline_ContextCancelled(t *testing.T) {
	first := &fakeGenerator{name: "minimax"}
	p := NewPipeline(discardLogger(), first)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := p.Generate(ctx, "a lake", "", Options{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if first.calls != 0 {
		t.Error("expected no provider calls after cancellation")
	}
}

func TestPipeline_Providers(t *testing.T) {
	p := NewPipeline(discardLogger(),
		&fakeGenerator{name: "minimax"},
		&fakeGenerator{name: "replicate"},
		&fakeGenerator{name: "fallback"},
	)

	names := p.Providers()
	want := []string{"minimax", "replicate", "fallback"}
	if len(names) != len(want) {
		t.Fatalf("expected %d providers, got %d", len(want), len(names))
	}
	for i, n := range want {
		if names[i] != n {
			t.Errorf("provider %d: expected %s, got %s", i, n, names[i])
		}
	}
}

func TestExhaustedError_Message(t *testing.T) {
	err := &ExhaustedError{Attempts: []Attempt{
		{Provider: "minimax", Err: errors.New("timeout after 180s")},
		{Provider: "replicate", Err: errors.New("no output")},
	}}

	msg := err.Error()
	for _, want := range []string{"minimax", "timeout after 180s", "replicate", "no output"} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected error message to contain %q, got %q", want, msg)
		}
	}
}
