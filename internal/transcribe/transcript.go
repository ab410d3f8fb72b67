// Package transcribe produces word-level timestamps for a media file and
// converts them into speech intervals.
//
// Two backends are provided: WhisperCLI runs the local openai-whisper
// command, and OpenAITranscriber calls the hosted whisper-1 model.
package transcribe

import (
	"context"
	"fmt"
	"strings"

	"github.com/alnah/go-speechcut/internal/interval"
	"github.com/alnah/go-speechcut/internal/lang"
)

// Model sizes accepted by the local backend.
const (
	ModelTiny = "tiny"
	ModelBase = "base"

	DefaultModelSize = ModelBase
)

// ParseModelSize validates s. Empty means DefaultModelSize.
func ParseModelSize(s string) (string, error) {
	switch size := strings.ToLower(strings.TrimSpace(s)); size {
	case "":
		return DefaultModelSize, nil
	case ModelTiny, ModelBase:
		return size, nil
	}
	return "", fmt.Errorf("%w: %q (use %s or %s)", ErrInvalidModelSize, s, ModelTiny, ModelBase)
}

// Options configures one transcription.
type Options struct {
	// ModelSize selects the local whisper model. The hosted backend ignores it.
	ModelSize string

	// Language hints the spoken language. Zero value means auto-detect.
	Language lang.Language
}

// Word is one recognized word. Start and End are nil when the recognizer
// could not align the word in time.
type Word struct {
	Text  string
	Start *float64
	End   *float64
}

// Segment is a recognizer segment, usually a sentence or phrase.
type Segment struct {
	Start float64
	End   float64
	Text  string
	Words []Word
}

// Transcript is the full recognizer output for one file.
type Transcript struct {
	Language string
	Duration float64 // seconds, 0 if unknown
	Segments []Segment
}

// WordCount returns the number of words across all segments.
func (t Transcript) WordCount() int {
	n := 0
	for _, s := range t.Segments {
		n += len(s.Words)
	}
	return n
}

// Transcriber converts a media file into a timestamped transcript.
type Transcriber interface {
	Transcribe(ctx context.Context, mediaPath string, opts Options) (Transcript, error)
}

// SpeechIntervals returns one interval per word carrying both timestamps,
// in transcript order. Words missing either timestamp are dropped.
func SpeechIntervals(t Transcript) []interval.Interval {
	out := make([]interval.Interval, 0, t.WordCount())
	for _, seg := range t.Segments {
		for _, w := range seg.Words {
			if w.Start == nil || w.End == nil {
				continue
			}
			out = append(out, interval.Interval{Start: *w.Start, End: *w.End})
		}
	}
	return out
}
