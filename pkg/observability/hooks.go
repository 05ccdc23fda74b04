// Package observability provides hooks for following command execution.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific backends. The executor reports progress through
// [ExecutionHooks]; consumers such as the terminal progress view implement
// the interface and either pass it to the executor directly or register it
// globally at startup.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetExecutionHooks(&myHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Execution().OnMemberStart(ctx, runID, member)
//	// ... run the command ...
//	observability.Execution().OnMemberComplete(ctx, runID, member, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Execution Hooks
// =============================================================================

// ExecutionHooks receives events while a plan is executed. Member events of
// a parallel batch arrive from several goroutines at once.
type ExecutionHooks interface {
	// Run events
	OnRunStart(ctx context.Context, runID string, batches [][]string)
	OnRunComplete(ctx context.Context, runID string, duration time.Duration, err error)

	// Batch events
	OnBatchStart(ctx context.Context, runID string, index int, members []string)
	OnBatchComplete(ctx context.Context, runID string, index int, duration time.Duration, err error)

	// Member events
	OnMemberStart(ctx context.Context, runID, member string)
	OnMemberComplete(ctx context.Context, runID, member string, duration time.Duration, err error)
}

// =============================================================================
// No-op Implementation
// =============================================================================

// NoopExecutionHooks is a no-op implementation of ExecutionHooks.
type NoopExecutionHooks struct{}

func (NoopExecutionHooks) OnRunStart(context.Context, string, [][]string)              {}
func (NoopExecutionHooks) OnRunComplete(context.Context, string, time.Duration, error) {}
func (NoopExecutionHooks) OnBatchStart(context.Context, string, int, []string)         {}
func (NoopExecutionHooks) OnBatchComplete(context.Context, string, int, time.Duration, error) {
}
func (NoopExecutionHooks) OnMemberStart(context.Context, string, string) {}
func (NoopExecutionHooks) OnMemberComplete(context.Context, string, string, time.Duration, error) {
}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	executionHooks ExecutionHooks = NoopExecutionHooks{}
	hooksMu        sync.RWMutex
)

// SetExecutionHooks registers custom execution hooks.
// This should be called once at application startup before any execution.
func SetExecutionHooks(h ExecutionHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		executionHooks = h
	}
}

// Execution returns the registered execution hooks.
func Execution() ExecutionHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return executionHooks
}

// Reset restores the hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	executionHooks = NoopExecutionHooks{}
}
