package judgments

import (
	"fmt"

	"github.com/JaimeStill/cliprank/pkg/faults"
)

// Domain errors for judgment operations.
var (
	ErrInvalidValue = fmt.Errorf("%w: invalid rating value", faults.ErrValidation)
	ErrInvalidRange = fmt.Errorf("%w: start date is after end date", faults.ErrValidation)
	ErrInvalidDate  = fmt.Errorf("%w: invalid date", faults.ErrValidation)
	ErrNotFound     = fmt.Errorf("judgment %w", faults.ErrNotFound)
	ErrDuplicate    = fmt.Errorf("%w: judgment already exists", faults.ErrValidation)
)
