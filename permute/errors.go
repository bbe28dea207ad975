package permute

import (
	"fmt"

	"github.com/pkg/errors"
)

// TransportError reports a non-nil return from the collective
// transport. Any such failure is fatal to the call; the engine makes
// no guarantee about the state of its buffers afterward.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("permute: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Cause lets errors.Cause (github.com/pkg/errors) reach the
// underlying transport error.
func (e *TransportError) Cause() error { return e.Err }

func wrapTransport(op string, err error) error {
	if err == nil {
		return nil
	}
	return &TransportError{Op: op, Err: errors.WithStack(err)}
}

// InvariantError reports a condition that can only arise from a bug
// in the engine itself, never from caller input.
type InvariantError struct {
	Detail string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("permute: invariant violated: %s", e.Detail)
}

// InputError reports a problem with the caller-supplied n or process
// group, detected before any collective runs.
type InputError struct {
	Detail string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("permute: invalid input: %s", e.Detail)
}
