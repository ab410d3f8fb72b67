package cli

import "errors"

// CLI-specific sentinel errors.
// These are validation/usage errors that don't belong to domain packages.

var (
	// ErrAPIKeyMissing indicates OPENAI_API_KEY environment variable is not set.
	ErrAPIKeyMissing = errors.New("OPENAI_API_KEY environment variable not set")

	// ErrUnsupportedProvider indicates a transcription provider other than
	// whisper or openai.
	ErrUnsupportedProvider = errors.New("unsupported transcription provider")
)
