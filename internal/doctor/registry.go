package doctor

import (
	"context"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Registry manages health checkers and fixers
type Registry struct {
	mu       sync.RWMutex
	checkers []HealthChecker
	fixers   map[string]Fixer
}

// NewRegistry creates a new Registry
func NewRegistry() *Registry {
	return &Registry{
		fixers: make(map[string]Fixer),
	}
}

// RegisterChecker registers a health checker. Results are reported in
// registration order.
func (r *Registry) RegisterChecker(checkers ...HealthChecker) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.checkers = append(r.checkers, checkers...)
}

// RegisterFixer registers a fixer
func (r *Registry) RegisterFixer(fixers ...Fixer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, f := range fixers {
		r.fixers[f.ID()] = f
	}
}

// RunAll executes all registered health checkers concurrently
func (r *Registry) RunAll(ctx context.Context) []CheckResult {
	r.mu.RLock()
	checkers := slices.Clone(r.checkers)
	r.mu.RUnlock()

	return runCheckers(ctx, checkers)
}

// RunCategories executes the checkers belonging to any of categories.
func (r *Registry) RunCategories(ctx context.Context, categories []Category) []CheckResult {
	if len(categories) == 0 {
		return r.RunAll(ctx)
	}

	r.mu.RLock()
	checkers := make([]HealthChecker, 0, len(r.checkers))

	for _, c := range r.checkers {
		if slices.Contains(categories, c.Category()) {
			checkers = append(checkers, c)
		}
	}
	r.mu.RUnlock()

	return runCheckers(ctx, checkers)
}

func runCheckers(ctx context.Context, checkers []HealthChecker) []CheckResult {
	results := make([]CheckResult, len(checkers))
	g, gctx := errgroup.WithContext(ctx)

	for i, checker := range checkers {
		g.Go(func() error {
			result := checker.Check(gctx)
			result.Category = checker.Category()
			results[i] = result

			return nil
		})
	}

	_ = g.Wait()

	return results
}

// Fixer returns the fixer registered under id.
//
//nolint:ireturn // Fixer interface for polymorphism
func (r *Registry) Fixer(id string) (Fixer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.fixers[id]

	return f, ok
}

// CheckerCount returns the number of registered checkers
func (r *Registry) CheckerCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.checkers)
}

// FixOutcome is the result of applying one fixer.
type FixOutcome struct {
	FixID string
	Check string
	Err   error
}

// ApplyFixes runs the fixer of every failing result that has one. Each fixer
// runs at most once even when several results share it.
func (r *Registry) ApplyFixes(ctx context.Context, results []CheckResult) []FixOutcome {
	var outcomes []FixOutcome

	seen := make(map[string]bool)

	for _, res := range results {
		if res.IsPassed() || !res.HasFix() || seen[res.FixID] {
			continue
		}

		seen[res.FixID] = true

		f, ok := r.Fixer(res.FixID)
		if !ok {
			continue
		}

		outcomes = append(outcomes, FixOutcome{
			FixID: res.FixID,
			Check: res.Name,
			Err:   f.Fix(ctx),
		})
	}

	return outcomes
}
