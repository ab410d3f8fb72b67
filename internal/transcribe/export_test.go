package transcribe

import "context"

// Exports for black-box tests.

// AudioTranscriber exposes the client interface so tests can mock it.
type AudioTranscriber = audioTranscriber

// NewTestOpenAITranscriber builds an OpenAITranscriber around a mock client
// and a fake audio extractor.
func NewTestOpenAITranscriber(
	client audioTranscriber,
	extract func(ctx context.Context, ffmpegPath, src, dst string) error,
	opts ...OpenAIOption,
) *OpenAITranscriber {
	return newOpenAITranscriber(client, "/usr/bin/ffmpeg", append([]OpenAIOption{withAudioExtractor(extract)}, opts...)...)
}

// WithRunCmd exposes command injection for WhisperCLI.
func WithRunCmd(fn func(ctx context.Context, name string, args []string) ([]byte, error)) WhisperOption {
	return withRunCmd(fn)
}

var (
	ParseWhisperJSON  = parseWhisperJSON
	FromAudioResponse = fromAudioResponse
)
