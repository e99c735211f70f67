package orchestrator

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
)

// MasterMigrator converges the master database schema to head.
type MasterMigrator interface {
	Migrate(ctx context.Context, dbURL string) error
}

// ExecRunner invokes an external migration runner CLI (for example the
// alembic wrapper the Python stack ships) and propagates its exit code
// unchanged. Schema migrations are never retried here: a partial application
// may require manual inspection, so rewriting the failure would only hide it.
type ExecRunner struct {
	// Command is the runner argv, e.g. ["alembic", "upgrade", "head"].
	Command []string

	// Stdout and Stderr default to the process streams.
	Stdout io.Writer
	Stderr io.Writer
}

func (r *ExecRunner) Migrate(ctx context.Context, dbURL string) error {
	if len(r.Command) == 0 {
		return &PreconditionError{Missing: "migration runner command"}
	}
	if dbURL == "" {
		return &PreconditionError{Missing: "ALEMBIC_DB_URL or DATABASE_URL"}
	}

	cmd := exec.CommandContext(ctx, r.Command[0], r.Command[1:]...)
	// The runner reads the connection URL from the environment, same as the
	// shell wrappers it replaces.
	cmd.Env = append(os.Environ(),
		"ALEMBIC_DB_URL="+dbURL,
		"DATABASE_URL="+dbURL,
	)
	cmd.Stdout = r.stdout()
	cmd.Stderr = r.stderr()

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &ExternalToolError{Command: r.Command[0], Code: exitErr.ExitCode(), Err: err}
		}
		return &ExternalToolError{Command: r.Command[0], Code: 1, Err: err}
	}
	return nil
}

func (r *ExecRunner) stdout() io.Writer {
	if r.Stdout != nil {
		return r.Stdout
	}
	return os.Stdout
}

func (r *ExecRunner) stderr() io.Writer {
	if r.Stderr != nil {
		return r.Stderr
	}
	return os.Stderr
}
