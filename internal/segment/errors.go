package segment

import "errors"

// ErrOutputDir indicates the output directory could not be created.
// It is the only error that aborts an extraction.
var ErrOutputDir = errors.New("cannot create output directory")

// ErrSegmentsFailed indicates one or more segments could not be cut.
var ErrSegmentsFailed = errors.New("segment extraction failed")
