package transpile

import (
	"errors"
	"fmt"
)

// ErrNoComparator is returned when module compilation must be version-gated
// but no host version comparator was supplied.
var ErrNoComparator = errors.New("transpile: version comparator not configured")

// ConfigError captures the configuration stage alongside the originating
// error.
type ConfigError struct {
	Stage string
	Key   string
	Err   error
}

func (e *ConfigError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Key != "" {
		return fmt.Sprintf("transpile: %s key=%q: %v", e.Stage, e.Key, e.Err)
	}
	return fmt.Sprintf("transpile: %s: %v", e.Stage, e.Err)
}

func (e *ConfigError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func wrapConfigError(stage, key string, err error) error {
	if err == nil {
		return nil
	}
	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) {
		return err
	}
	return &ConfigError{Stage: stage, Key: key, Err: err}
}
