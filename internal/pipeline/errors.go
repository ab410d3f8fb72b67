package pipeline

import "errors"

// ErrFileNotFound indicates the input path does not exist or is a directory.
var ErrFileNotFound = errors.New("input file not found")

// ErrFileTooLarge indicates the input exceeds MaxInputSize.
var ErrFileTooLarge = errors.New("input file too large")

// ErrUnsupportedFormat indicates an extension outside SupportedExtensions.
var ErrUnsupportedFormat = errors.New("unsupported input format")

// ErrBusy indicates another run holds the work directory.
var ErrBusy = errors.New("work directory in use by another run")

// ErrPathConflict indicates the work directory overlaps the input or the archive.
var ErrPathConflict = errors.New("work directory overlaps input or output")
