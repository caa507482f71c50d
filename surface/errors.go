package surface

import (
	"fmt"

	"github.com/pkg/errors"
)

// ProtocolErrorCode identifies the class of client misbehavior a
// ProtocolError reports. The concrete numeric values clients see over
// the wire are assigned by the transport layer, not here.
type ProtocolErrorCode int

const (
	ErrCodeInvalidTransform ProtocolErrorCode = iota
	ErrCodeInvalidScale
	ErrCodeInvalidOffset
	ErrCodeRoleConflict
	ErrCodeBadParent
	ErrCodeInvalidSize
)

// ProtocolError reports a client-triggered violation of the surface
// protocol contract (as opposed to a local resource failure). Callers
// at the transport layer map Code to whatever wire error number their
// protocol uses.
type ProtocolError struct {
	Code ProtocolErrorCode
	Err  error
}

func (e *ProtocolError) Error() string { return e.Err.Error() }
func (e *ProtocolError) Unwrap() error { return e.Err }

func protoErr(code ProtocolErrorCode, format string, args ...interface{}) error {
	return &ProtocolError{Code: code, Err: fmt.Errorf(format, args...)}
}

// ErrNoMemory is returned when a synced extension's shadow-state
// allocation fails (see Extension.CreateState). It mirrors the
// collaborator's convention of treating allocation failure as a
// recoverable, logged condition rather than a panic.
var ErrNoMemory = errors.New("surface: failed to allocate synced extension state")
