package resolver

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"time"
)

// Orchestrator drives one resolution run: it iterates definition files in
// input order, invokes the resolver, times each step, and aggregates the
// per-file results. Execution is sequential; interleaving external-tool
// state from concurrent invocations that share caches or lock files is what
// this avoids. A higher-level driver that wants concurrency must give each
// call its own result map.
type Orchestrator struct {
	resolver Resolver
	logger   *slog.Logger
}

// NewOrchestrator creates an orchestrator owned by a single resolver.
func NewOrchestrator(r Resolver, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{resolver: r, logger: logger}
}

// ResolveDependencies resolves every definition file in input order and
// returns a result containing exactly one entry per input file. Any failure,
// in preparation or in a single file's resolution, aborts the whole batch:
// no partial result is ever returned. The elapsed time per file is logged
// for observability only.
func (o *Orchestrator) ResolveDependencies(ctx context.Context, projectDir string, definitionFiles []string) (Result, error) {
	name := o.resolver.Details().Name

	if err := o.resolver.PrepareResolution(ctx); err != nil {
		var perr *PrerequisiteError
		if errors.As(err, &perr) {
			return nil, err
		}
		return nil, &PrerequisiteError{Resolver: name, Err: err}
	}

	result := make(Result, len(definitionFiles))

	for _, definitionFile := range definitionFiles {
		workingDir := filepath.Dir(definitionFile)

		start := time.Now()
		err := o.resolver.ResolveOne(ctx, projectDir, workingDir, definitionFile, result)
		elapsed := time.Since(start)

		if err != nil {
			var rerr *ResolutionError
			if errors.As(err, &rerr) {
				return nil, err
			}
			return nil, &ResolutionError{Resolver: name, DefinitionFile: definitionFile, Err: err}
		}

		o.logger.Info("resolved definition file",
			"resolver", name,
			"definition_file", definitionFile,
			"duration", elapsed.Round(time.Millisecond).String())
	}

	return result, nil
}
