// Package analyzer drives the full resolution of a project: it fans the
// discovered assignments out to their resolvers, isolates per-resolver
// failures, and records the outcome in the state store.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/depscan/internal/discovery"
	"github.com/leapstack-labs/depscan/internal/resolver"
	"github.com/leapstack-labs/depscan/internal/state"
)

// ResolverResult is the outcome of one resolver over its assigned files.
// Exactly one of Result and Err is meaningful.
type ResolverResult struct {
	Resolver string
	Files    []string
	Result   resolver.Result
	Err      error
	Duration time.Duration
}

// Run is the outcome of analyzing one project.
type Run struct {
	ID         string
	ProjectDir string
	StartedAt  time.Time
	Duration   time.Duration
	Results    []ResolverResult
}

// Merged combines the result maps of all successful resolvers. Keys never
// collide because discovery assigns each definition file to a single
// resolver.
func (r *Run) Merged() resolver.Result {
	merged := make(resolver.Result)
	for _, rr := range r.Results {
		if rr.Err != nil {
			continue
		}
		for file, graph := range rr.Result {
			merged[file] = graph
		}
	}
	return merged
}

// Failed returns the results of resolvers that did not complete.
func (r *Run) Failed() []ResolverResult {
	var failed []ResolverResult
	for _, rr := range r.Results {
		if rr.Err != nil {
			failed = append(failed, rr)
		}
	}
	return failed
}

// Analyzer resolves discovered assignments and records run history.
type Analyzer struct {
	store       state.Store
	logger      *slog.Logger
	concurrency int
}

// NewAnalyzer creates an analyzer. The store may be nil, in which case no
// history is recorded. Concurrency <= 0 defaults to the number of CPUs.
func NewAnalyzer(store state.Store, logger *slog.Logger, concurrency int) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}
	return &Analyzer{store: store, logger: logger, concurrency: concurrency}
}

// Analyze resolves every assignment concurrently. A failing resolver does
// not stop the others; its error is captured in the corresponding
// ResolverResult. Analyze itself only fails on context cancellation or a
// store error.
func (a *Analyzer) Analyze(ctx context.Context, projectDir string, assignments []discovery.Assignment) (*Run, error) {
	run := &Run{
		ID:         uuid.New().String(),
		ProjectDir: projectDir,
		StartedAt:  time.Now().UTC(),
		Results:    make([]ResolverResult, len(assignments)),
	}

	var stored *state.Run
	if a.store != nil {
		var err error
		stored, err = a.store.CreateRun(projectDir)
		if err != nil {
			return nil, fmt.Errorf("failed to record run: %w", err)
		}
		run.ID = stored.ID
	}

	a.logger.Info("analysis started",
		"run_id", run.ID,
		"project_dir", projectDir,
		"resolvers", len(assignments),
		"concurrency", a.concurrency)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)

	for i, assignment := range assignments {
		g.Go(func() error {
			name := assignment.Resolver.Details().Name
			orch := resolver.NewOrchestrator(assignment.Resolver, a.logger.With("resolver", name))

			start := time.Now()
			result, err := orch.ResolveDependencies(gctx, projectDir, assignment.Files)
			run.Results[i] = ResolverResult{
				Resolver: name,
				Files:    assignment.Files,
				Result:   result,
				Err:      err,
				Duration: time.Since(start),
			}

			// Cancellation is the only error that stops the other resolvers.
			if err != nil && gctx.Err() != nil {
				return gctx.Err()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if a.store != nil {
			_ = a.store.CompleteRun(run.ID, state.RunStatusFailed, err.Error())
		}
		return nil, err
	}

	run.Duration = time.Since(run.StartedAt)

	if err := a.record(run); err != nil {
		return nil, err
	}

	failed := run.Failed()
	for _, rr := range failed {
		a.logger.Error("resolver failed",
			"run_id", run.ID,
			"resolver", rr.Resolver,
			"error", rr.Err)
	}

	a.logger.Info("analysis completed",
		"run_id", run.ID,
		"resolvers", len(run.Results),
		"failed", len(failed),
		"duration", run.Duration.Round(time.Millisecond).String())

	return run, nil
}

// record persists the per-file outcomes and closes the stored run.
func (a *Analyzer) record(run *Run) error {
	if a.store == nil {
		return nil
	}

	for _, rr := range run.Results {
		if rr.Err != nil {
			res := &state.Resolution{
				RunID:          run.ID,
				Resolver:       rr.Resolver,
				DefinitionFile: failedFile(rr),
				Status:         state.ResolutionStatusFailed,
				Error:          rr.Err.Error(),
				DurationMS:     rr.Duration.Milliseconds(),
			}
			if err := a.store.RecordResolution(res); err != nil {
				return fmt.Errorf("failed to record resolution: %w", err)
			}
			continue
		}

		for file, graph := range rr.Result {
			res := &state.Resolution{
				RunID:          run.ID,
				Resolver:       rr.Resolver,
				DefinitionFile: file,
				Status:         state.ResolutionStatusSuccess,
				Packages:       int64(graph.PackageCount()),
				Edges:          int64(graph.EdgeCount()),
				DurationMS:     rr.Duration.Milliseconds(),
			}
			if err := a.store.RecordResolution(res); err != nil {
				return fmt.Errorf("failed to record resolution: %w", err)
			}
		}
	}

	status := state.RunStatusCompleted
	errMsg := ""
	if failed := run.Failed(); len(failed) > 0 {
		status = state.RunStatusFailed
		errMsg = fmt.Sprintf("%d resolver(s) failed", len(failed))
	}

	if err := a.store.CompleteRun(run.ID, status, errMsg); err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	return nil
}

// failedFile extracts the definition file a resolution error points at,
// if the error carries one.
func failedFile(rr ResolverResult) string {
	var rerr *resolver.ResolutionError
	if errors.As(rr.Err, &rerr) {
		return rerr.DefinitionFile
	}
	if len(rr.Files) > 0 {
		return rr.Files[0]
	}
	return ""
}
