package executor

import "context"

// Executor defines the interface for executing external commands
type Executor interface {
	// Execute runs name with args and returns everything it wrote to stdout.
	Execute(ctx context.Context, name string, args ...string) ([]byte, error)
	// ExecuteInDir is Execute with the working directory set to dir.
	ExecuteInDir(ctx context.Context, dir string, name string, args ...string) ([]byte, error)
}
