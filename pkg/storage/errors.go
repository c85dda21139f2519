package storage

import (
	"fmt"

	"github.com/JaimeStill/cliprank/pkg/faults"
)

var (
	// ErrNotFound indicates the requested blob does not exist.
	ErrNotFound = fmt.Errorf("blob %w", faults.ErrNotFound)
	// ErrEmptyKey indicates an empty storage key was provided.
	ErrEmptyKey = fmt.Errorf("%w: storage key must not be empty", faults.ErrValidation)
	// ErrInvalidKey indicates the storage key contains a path traversal segment.
	ErrInvalidKey = fmt.Errorf("%w: storage key contains invalid path segment", faults.ErrValidation)
)
