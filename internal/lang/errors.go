package lang

import "errors"

// ErrInvalid indicates an unsupported language code.
var ErrInvalid = errors.New("invalid language code")
