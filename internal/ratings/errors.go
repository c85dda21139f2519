package ratings

import (
	"fmt"

	"github.com/JaimeStill/cliprank/pkg/faults"
)

// Domain errors for rating operations.
var (
	ErrSelfRating     = fmt.Errorf("%w: users cannot rate their own clips", faults.ErrForbidden)
	ErrInvalidUser    = fmt.Errorf("%w: user id and username are required", faults.ErrValidation)
	ErrInvalidID      = fmt.Errorf("%w: invalid id", faults.ErrValidation)
	ErrInvalidCaller  = fmt.Errorf("%w: caller header is not a user id", faults.ErrValidation)
	ErrCallerMismatch = fmt.Errorf("%w: caller header does not match the rated user", faults.ErrForbidden)
)
