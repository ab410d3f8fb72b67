package interval

import "errors"

// ErrInvalidThreshold indicates a merge threshold outside [0, MaxThreshold].
var ErrInvalidThreshold = errors.New("invalid merge threshold")
