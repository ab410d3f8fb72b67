package ffmpeg

import "errors"

// ErrNotFound indicates no usable ffmpeg binary could be located.
var ErrNotFound = errors.New("ffmpeg not found")

// ErrCutFailed indicates ffmpeg could not stream-copy a segment.
var ErrCutFailed = errors.New("segment cut failed")

// ErrAudioExtractFailed indicates ffmpeg could not extract the audio track.
var ErrAudioExtractFailed = errors.New("audio extraction failed")

// ErrProbeFailed indicates the media duration could not be determined.
var ErrProbeFailed = errors.New("media probe failed")
