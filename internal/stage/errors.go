package stage

import (
	"errors"
	"fmt"
	"io/fs"
)

// Error kinds returned by Stage. Match them with errors.Is.
var (
	// ErrEmptyConfiguration indicates no configuration identifier was supplied.
	ErrEmptyConfiguration = errors.New("configuration must not be empty")

	// ErrDirectoryCreateFailed indicates the runtime directory could not be created
	// for a reason other than it already existing.
	ErrDirectoryCreateFailed = errors.New("directory create failed")

	// ErrSourceNotFound indicates the compiled artifact does not exist.
	ErrSourceNotFound = errors.New("source not found")

	// ErrCopyFailed indicates any other I/O failure while copying the artifact.
	ErrCopyFailed = errors.New("copy failed")
)

// Causes wrapped in an ErrCopyFailed Error when the copy is refused before writing.
var (
	// ErrNotRegularFile indicates the source exists but is not a regular file.
	ErrNotRegularFile = errors.New("not a regular file")

	// ErrSameFile indicates the destination resolves to the source itself.
	ErrSameFile = errors.New("source and destination are the same file")
)

// Error is a staging failure tied to the path that caused it.
type Error struct {
	Kind error
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%v: %s", e.Kind, e.Path)
	}
	// PathError already carries the path; print only its cause.
	cause := e.Err
	if pe, ok := cause.(*fs.PathError); ok {
		cause = pe.Err
	}
	return fmt.Sprintf("%v: %s: %v", e.Kind, e.Path, cause)
}

// Unwrap exposes both the kind and the underlying cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(kind error, path string, err error) *Error {
	return &Error{Kind: kind, Path: path, Err: err}
}
