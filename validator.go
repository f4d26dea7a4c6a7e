package gristle

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// validator handles validation of command inputs
type validator struct{}

// newValidator creates a new validator instance
func newValidator() *validator {
	return &validator{}
}

// validatePath validates a single input file path
func (v *validator) validatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("path cannot be empty")
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return fmt.Errorf("failed to stat path %s: %w", path, err)
	}

	if info.IsDir() {
		return fmt.Errorf("%s is a directory, not a file", path)
	}
	return nil
}

// validateColumn checks a 0-based column index
func (v *validator) validateColumn(column int) error {
	if column < 0 {
		return fmt.Errorf("%w: %d (columns are numbered from 0)", ErrInvalidColumn, column)
	}
	return nil
}

// validateHints checks the attributes a caller fixed by hand
func (v *validator) validateHints(hints Hints) error {
	if hints.Delimiter == "" {
		return nil
	}
	if err := hints.Dialect().Validate(); err != nil {
		return fmt.Errorf("invalid dialect hints: %w", err)
	}
	return nil
}
