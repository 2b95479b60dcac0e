package transform

import (
	"errors"
	"fmt"
)

// TransformError captures the failing file and plugin alongside the
// originating error.
type TransformError struct {
	Path   string
	Plugin string
	Err    error
}

func (e *TransformError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Plugin != "" {
		return fmt.Sprintf("transform: %s plugin=%s: %v", e.Path, e.Plugin, e.Err)
	}
	return fmt.Sprintf("transform: %s: %v", e.Path, e.Err)
}

func (e *TransformError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func wrapTransformError(path, plugin string, err error) error {
	if err == nil {
		return nil
	}
	var tErr *TransformError
	if errors.As(err, &tErr) {
		return err
	}
	return &TransformError{Path: path, Plugin: plugin, Err: err}
}
