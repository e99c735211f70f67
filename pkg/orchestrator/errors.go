package orchestrator

import (
	"errors"
	"fmt"
)

// PreconditionError reports a missing credential or argument. It is raised
// before any network or subprocess side effect, so a failed precondition
// always means zero external work was done.
type PreconditionError struct {
	Missing string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s is required", e.Missing)
}

// ExternalToolError reports a nonzero exit from a wrapped CLI. The exit code
// is propagated verbatim, never translated.
type ExternalToolError struct {
	Command string
	Code    int
	Err     error
}

func (e *ExternalToolError) Error() string {
	return fmt.Sprintf("%s exited with code %d", e.Command, e.Code)
}

func (e *ExternalToolError) Unwrap() error {
	return e.Err
}

// RemoteRequestError reports a non-200 response from the admin API. The raw
// body is kept for the operator; no partial-success interpretation is
// attempted.
type RemoteRequestError struct {
	Status int
	Body   []byte
}

func (e *RemoteRequestError) Error() string {
	return fmt.Sprintf("request failed: status=%d body=%s", e.Status, e.Body)
}

// ExitCode maps an error to the process exit code. External tool failures
// pass their exit code through unchanged; every other failure is 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var toolErr *ExternalToolError
	if errors.As(err, &toolErr) && toolErr.Code > 0 {
		return toolErr.Code
	}
	return 1
}
