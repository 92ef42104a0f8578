package dataset

import (
	"errors"
	"fmt"
	"os"
)

// LoadError reports a fatal failure reading one dataset. It is the single
// error shape every loader failure is surfaced as.
type LoadError struct {
	Dataset Name
	Path    string
	Line    int // 0 when the failure is not tied to a row
	Err     error
}

func (e *LoadError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("dataset %s: %s line %d: %v", e.Dataset, e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("dataset %s: %s: %v", e.Dataset, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Missing reports whether the dataset file does not exist.
func (e *LoadError) Missing() bool {
	return errors.Is(e.Err, os.ErrNotExist)
}

// AsLoadError extracts a *LoadError from an error chain.
func AsLoadError(err error) (*LoadError, bool) {
	var le *LoadError
	if errors.As(err, &le) {
		return le, true
	}
	return nil, false
}
