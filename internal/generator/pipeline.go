package generator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Attempt records one failed provider try within a pipeline run.
type Attempt struct {
	Provider string
	Err      error
}

// ExhaustedError is returned when every candidate provider failed.
type ExhaustedError struct {
	Attempts []Attempt
}

func (e *ExhaustedError) Error() string {
	if len(e.Attempts) == 0 {
		return "no video providers available"
	}
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, fmt.Sprintf("%s: %v", a.Provider, a.Err))
	}
	return "all providers failed: " + strings.Join(parts, "; ")
}

// Pipeline tries registered providers in order until one produces a clip.
// Registration order defines the default priority; a per-request preferred
// provider is moved to the front without dropping the others, so the
// request still falls through the remaining candidates on failure.
type Pipeline struct {
	generators []Generator
	logger     *slog.Logger
}

// NewPipeline creates a pipeline over the given providers, tried in the
// order given.
func NewPipeline(logger *slog.Logger, generators ...Generator) *Pipeline {
	return &Pipeline{generators: generators, logger: logger}
}

// Providers returns the registered provider names in priority order.
func (p *Pipeline) Providers() []string {
	names := make([]string, 0, len(p.generators))
	for _, g := range p.generators {
		names = append(names, g.Name())
	}
	return names
}

// Generate runs the candidates in order and returns the first success along
// with the failed attempts that preceded it. A non-empty preferred name
// moves that provider to the front; an unknown name leaves the order
// unchanged. When every candidate fails the error is an *ExhaustedError
// carrying the full attempt log.
func (p *Pipeline) Generate(ctx context.Context, prompt, preferred string, opts Options) (Result, []Attempt, error) {
	candidates := p.order(preferred)

	var attempts []Attempt
	for _, g := range candidates {
		if err := ctx.Err(); err != nil {
			return Result{}, attempts, fmt.Errorf("generation aborted: %w", err)
		}

		result, err := g.Generate(ctx, prompt, opts)
		if err == nil {
			p.logger.Info("video generated",
				"provider", g.Name(),
				"failed_attempts", len(attempts),
			)
			return result, attempts, nil
		}

		p.logger.Warn("provider failed, trying next",
			"provider", g.Name(),
			"error", err,
		)
		attempts = append(attempts, Attempt{Provider: g.Name(), Err: err})
	}

	return Result{}, attempts, &ExhaustedError{Attempts: attempts}
}

// order returns the candidate list with the preferred provider, if known,
// moved to the front.
func (p *Pipeline) order(preferred string) []Generator {
	if preferred == "" {
		return p.generators
	}

	ordered := make([]Generator, 0, len(p.generators))
	var found bool
	for _, g := range p.generators {
		if g.Name() == preferred {
			ordered = append([]Generator{g}, ordered...)
			found = true
			continue
		}
		ordered = append(ordered, g)
	}
	if !found {
		return p.generators
	}
	return ordered
}
