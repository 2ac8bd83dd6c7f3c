package resolver

import "fmt"

// ConfigurationError reports an invalid glob pattern at matcher construction.
type ConfigurationError struct {
	Pattern string
	Message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %q", e.Message, e.Pattern)
}

// PrerequisiteError reports a missing or misconfigured external dependency
// detected by PrepareResolution.
type PrerequisiteError struct {
	Resolver string
	Err      error
}

func (e *PrerequisiteError) Error() string {
	return fmt.Sprintf("prerequisite check failed for %s: %v", e.Resolver, e.Err)
}

func (e *PrerequisiteError) Unwrap() error {
	return e.Err
}

// ResolutionError reports a failed resolution of a single definition file:
// manifest parse failure, unresolvable graph, or tool invocation failure.
type ResolutionError struct {
	Resolver       string
	DefinitionFile string
	Err            error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("%s failed to resolve %s: %v", e.Resolver, e.DefinitionFile, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// NotImplementedError reports a resolver stub lacking real resolution logic.
// It must be raised explicitly; silently leaving the accumulator unchanged is
// not a valid implementation.
type NotImplementedError struct {
	DefinitionFile string
}

func (e *NotImplementedError) Error() string {
	return fmt.Sprintf("dependency resolution not implemented (definition file %s)", e.DefinitionFile)
}
