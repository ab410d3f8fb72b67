package transcribe

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/alnah/go-speechcut/internal/apierr"
	"github.com/alnah/go-speechcut/internal/ffmpeg"
)

// Default retry configuration for the hosted API.
const (
	defaultMaxRetries = 5
	defaultBaseDelay  = 1 * time.Second
	defaultMaxDelay   = 30 * time.Second
)

// audioTranscriber is the subset of *openai.Client used here.
type audioTranscriber interface {
	CreateTranscription(ctx context.Context, req openai.AudioRequest) (openai.AudioResponse, error)
}

// audioExtractFn writes the audio track of src to dst.
type audioExtractFn func(ctx context.Context, ffmpegPath, src, dst string) error

// Compile-time interface compliance checks.
var (
	_ Transcriber      = (*OpenAITranscriber)(nil)
	_ audioTranscriber = (*openai.Client)(nil)
)

// OpenAITranscriber transcribes with OpenAI's whisper-1 model, the only
// hosted model that returns word timestamps. The video's audio track is
// extracted first so uploads stay small.
type OpenAITranscriber struct {
	client       audioTranscriber
	ffmpegPath   string
	extractAudio audioExtractFn
	retry        apierr.RetryConfig
	log          *zap.Logger
}

// OpenAIOption configures an OpenAITranscriber.
type OpenAIOption func(*OpenAITranscriber)

// WithMaxRetries sets the maximum number of retries.
func WithMaxRetries(n int) OpenAIOption {
	return func(t *OpenAITranscriber) {
		if n >= 0 {
			t.retry.MaxRetries = n
		}
	}
}

// WithRetryDelays sets the base and max delays for exponential backoff.
func WithRetryDelays(base, maxDelay time.Duration) OpenAIOption {
	return func(t *OpenAITranscriber) {
		if base > 0 {
			t.retry.BaseDelay = base
		}
		if maxDelay > 0 {
			t.retry.MaxDelay = maxDelay
		}
	}
}

// WithOpenAILogger sets the logger.
func WithOpenAILogger(l *zap.Logger) OpenAIOption {
	return func(t *OpenAITranscriber) {
		if l != nil {
			t.log = l
		}
	}
}

// withAudioExtractor replaces ffmpeg audio extraction (for testing).
func withAudioExtractor(fn audioExtractFn) OpenAIOption {
	return func(t *OpenAITranscriber) { t.extractAudio = fn }
}

// NewOpenAITranscriber creates an OpenAITranscriber. ffmpegPath is used to
// extract the audio track before upload.
func NewOpenAITranscriber(client *openai.Client, ffmpegPath string, opts ...OpenAIOption) *OpenAITranscriber {
	return newOpenAITranscriber(client, ffmpegPath, opts...)
}

func newOpenAITranscriber(client audioTranscriber, ffmpegPath string, opts ...OpenAIOption) *OpenAITranscriber {
	t := &OpenAITranscriber{
		client:       client,
		ffmpegPath:   ffmpegPath,
		extractAudio: ffmpeg.ExtractAudio,
		retry: apierr.RetryConfig{
			MaxRetries: defaultMaxRetries,
			BaseDelay:  defaultBaseDelay,
			MaxDelay:   defaultMaxDelay,
		},
		log: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Transcribe extracts audio from mediaPath, uploads it, and returns the
// transcript with words distributed into their segments.
// Transient API errors are retried with exponential backoff.
func (t *OpenAITranscriber) Transcribe(ctx context.Context, mediaPath string, opts Options) (Transcript, error) {
	tmpDir, err := os.MkdirTemp("", "speechcut-audio-*")
	if err != nil {
		return Transcript{}, fmt.Errorf("%w: create temp dir: %w", ErrTranscriptionFailed, err)
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	audioPath := filepath.Join(tmpDir, "audio.ogg")
	if err := t.extractAudio(ctx, t.ffmpegPath, mediaPath, audioPath); err != nil {
		return Transcript{}, fmt.Errorf("%w: %w", ErrTranscriptionFailed, err)
	}

	req := openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: audioPath,
		Format:   openai.AudioResponseFormatVerboseJSON,
		Language: opts.Language.BaseCode(),
		TimestampGranularities: []openai.TranscriptionTimestampGranularity{
			openai.TranscriptionTimestampGranularityWord,
			openai.TranscriptionTimestampGranularitySegment,
		},
	}

	cfg := t.retry
	cfg.OnRetry = func(attempt int, delay time.Duration, err error) {
		t.log.Warn("transcription request failed, retrying",
			zap.Int("attempt", attempt), zap.Duration("delay", delay), zap.Error(err))
	}

	resp, err := apierr.RetryWithBackoff(ctx, cfg, func() (openai.AudioResponse, error) {
		resp, err := t.client.CreateTranscription(ctx, req)
		if err != nil {
			return openai.AudioResponse{}, apierr.Classify(err)
		}
		return resp, nil
	}, apierr.IsRetryable)
	if err != nil {
		return Transcript{}, fmt.Errorf("%w: %w", ErrTranscriptionFailed, err)
	}

	return fromAudioResponse(resp), nil
}

// fromAudioResponse converts a verbose_json response. The API returns words
// as a flat list next to the segments; each word is attached to the first
// segment that ends after the word starts.
func fromAudioResponse(resp openai.AudioResponse) Transcript {
	t := Transcript{Language: resp.Language, Duration: resp.Duration}

	for _, s := range resp.Segments {
		t.Segments = append(t.Segments, Segment{Start: s.Start, End: s.End, Text: strings.TrimSpace(s.Text)})
	}
	if len(t.Segments) == 0 && len(resp.Words) > 0 {
		t.Segments = []Segment{{Start: 0, End: resp.Duration, Text: strings.TrimSpace(resp.Text)}}
	}

	seg := 0
	for _, w := range resp.Words {
		for seg < len(t.Segments)-1 && w.Start >= t.Segments[seg].End {
			seg++
		}
		start, end := w.Start, w.End
		t.Segments[seg].Words = append(t.Segments[seg].Words, Word{
			Text:  strings.TrimSpace(w.Word),
			Start: &start,
			End:   &end,
		})
	}
	return t
}
