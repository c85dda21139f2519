package criteria

import (
	"fmt"

	"github.com/JaimeStill/cliprank/pkg/faults"
)

// Domain errors for criteria operations.
var (
	ErrNotFound     = fmt.Errorf("criterion %w", faults.ErrNotFound)
	ErrDuplicate    = fmt.Errorf("%w: criterion name already exists", faults.ErrValidation)
	ErrUnknownType  = fmt.Errorf("%w: unknown criterion type", faults.ErrValidation)
	ErrInvalid      = fmt.Errorf("%w: invalid criterion", faults.ErrValidation)
	ErrInvalidInput = fmt.Errorf("%w: invalid request", faults.ErrValidation)
)
