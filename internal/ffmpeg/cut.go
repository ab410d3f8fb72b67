package ffmpeg

import (
	"context"
	"fmt"

	"github.com/alnah/go-speechcut/internal/format"
)

// StreamCutter extracts a time range of a media file without re-encoding.
// It satisfies segment.Cutter.
type StreamCutter struct {
	ffmpegPath string
	executor   *Executor
}

// CutterOption configures a StreamCutter.
type CutterOption func(*StreamCutter)

// WithCutterExecutor sets the executor used to run ffmpeg (for testing).
func WithCutterExecutor(e *Executor) CutterOption {
	return func(c *StreamCutter) { c.executor = e }
}

// NewStreamCutter creates a StreamCutter for the given ffmpeg binary.
func NewStreamCutter(ffmpegPath string, opts ...CutterOption) (*StreamCutter, error) {
	if ffmpegPath == "" {
		return nil, fmt.Errorf("ffmpegPath cannot be empty: %w", ErrNotFound)
	}
	c := &StreamCutter{
		ffmpegPath: ffmpegPath,
		executor:   getDefaultExecutor(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Cut writes [start, start+duration) of source to output using stream copy.
// An existing output file is overwritten.
func (c *StreamCutter) Cut(ctx context.Context, source string, start, duration float64, output string) error {
	stderr, err := c.executor.RunOutput(ctx, c.ffmpegPath, cutArgs(source, start, duration, output))
	if err != nil {
		if msg := lastLine(stderr); msg != "" {
			return fmt.Errorf("%w: %s: %v: %s", ErrCutFailed, output, err, msg)
		}
		return fmt.Errorf("%w: %s: %v", ErrCutFailed, output, err)
	}
	return nil
}

// cutArgs builds the ffmpeg arguments for a stream-copy cut.
// -ss precedes -i so ffmpeg seeks on the input instead of decoding up to start.
func cutArgs(source string, start, duration float64, output string) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-ss", format.Seconds(start),
		"-i", source,
		"-t", format.Seconds(duration),
		"-c", "copy",
		output,
	}
}
