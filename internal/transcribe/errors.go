package transcribe

import "errors"

// ErrTranscriptionFailed wraps every backend failure. The underlying cause
// (apierr sentinels, exec errors) stays in the chain.
var ErrTranscriptionFailed = errors.New("transcription failed")

// ErrInvalidModelSize indicates a model size other than tiny or base.
var ErrInvalidModelSize = errors.New("invalid model size")

// ErrWhisperNotFound indicates the whisper CLI is not installed.
var ErrWhisperNotFound = errors.New("whisper CLI not found")
