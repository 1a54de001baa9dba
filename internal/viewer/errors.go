package viewer

import (
	"errors"
	"fmt"

	"github.com/Faultbox/meshview/internal/gpu"
	"github.com/Faultbox/meshview/internal/mesh"
	"github.com/Faultbox/meshview/internal/mesh/obj"
)

// ErrClosed is reported by a session closed before it finished loading.
var ErrClosed = errors.New("session closed")

// ErrorKind classifies why a session failed.
type ErrorKind int

// Error kinds
const (
	Unknown ErrorKind = iota
	ContextUnavailable
	ShaderCompileError
	AssetNotFound
	ParseError
	BufferUploadError
	AttributeMismatch
)

var kindNames = map[ErrorKind]string{
	Unknown:            "unknown",
	ContextUnavailable: "context unavailable",
	ShaderCompileError: "shader compile error",
	AssetNotFound:      "asset not found",
	ParseError:         "parse error",
	BufferUploadError:  "buffer upload error",
	AttributeMismatch:  "attribute mismatch",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is a session failure. Failures are local to their session.
type Error struct {
	Kind    ErrorKind
	Surface string
	Path    string
	Err     error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s on %s", e.Kind, e.Surface)
	if e.Path != "" {
		msg += ": " + e.Path
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of a session error, or Unknown.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

// programKind classifies a failure from the program cache.
func programKind(err error) ErrorKind {
	if errors.Is(err, gpu.ErrAttributeMismatch) {
		return AttributeMismatch
	}
	return ShaderCompileError
}

// loadKind classifies a failure from the mesh loader.
func loadKind(err error) ErrorKind {
	switch {
	case errors.Is(err, obj.ErrParse), errors.Is(err, mesh.ErrInvalid):
		return ParseError
	default:
		return AssetNotFound
	}
}

// bindKind classifies a failure while creating GPU buffers or bindings.
func bindKind(err error) ErrorKind {
	if errors.Is(err, gpu.ErrAttributeMismatch) {
		return AttributeMismatch
	}
	return BufferUploadError
}
