// Package segment cuts merged speech intervals out of a media file.
//
// Each valid interval becomes one file named by its 1-based position in the
// interval list (segment_001.mp4, segment_002.mp4, ...). A failing cut is
// recorded and the batch carries on, so callers always get every segment
// that could be produced.
package segment

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/alnah/go-speechcut/internal/interval"
)

// namePrefix and indexWidth define output file names. Indices above 999
// simply use more digits.
const (
	namePrefix = "segment_"
	indexWidth = 3
)

// Cutter extracts [start, start+duration) seconds of source into output
// without re-encoding. *ffmpeg.StreamCutter implements it.
type Cutter interface {
	Cut(ctx context.Context, source string, start, duration float64, output string) error
}

// Segment is one file written by Extract.
type Segment struct {
	Index    int // 1-based position in the interval list
	Interval interval.Interval
	Path     string
}

// Failure records a segment whose cut failed.
type Failure struct {
	Index    int
	Interval interval.Interval
	Err      error
}

// Result is the outcome of one extraction.
type Result struct {
	Segments []Segment
	Failed   []Failure
	Skipped  []int // indices of intervals with End <= Start
}

// FailedIndices returns the indices of failed segments, in order.
func (r Result) FailedIndices() []int {
	out := make([]int, len(r.Failed))
	for i, f := range r.Failed {
		out[i] = f.Index
	}
	return out
}

// Err returns nil when every cut succeeded. Otherwise it returns an error
// wrapping ErrSegmentsFailed and each individual failure.
func (r Result) Err() error {
	if len(r.Failed) == 0 {
		return nil
	}
	errs := make([]error, 0, len(r.Failed)+1)
	errs = append(errs, fmt.Errorf("%w: %d of %d segments (indices %v)",
		ErrSegmentsFailed, len(r.Failed), len(r.Failed)+len(r.Segments), r.FailedIndices()))
	for _, f := range r.Failed {
		errs = append(errs, fmt.Errorf("segment %d %s: %w", f.Index, f.Interval, f.Err))
	}
	return errors.Join(errs...)
}

// Extractor writes one file per interval using a Cutter.
type Extractor struct {
	cutter   Cutter
	mkdirAll func(path string, perm os.FileMode) error
	progress func(done, total int)
	log      *zap.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithProgress sets a callback invoked after every interval is handled
// (cut, failed, or skipped). total is the length of the interval list.
func WithProgress(fn func(done, total int)) Option {
	return func(e *Extractor) { e.progress = fn }
}

// WithLogger sets the logger used for per-segment records.
func WithLogger(l *zap.Logger) Option {
	return func(e *Extractor) {
		if l != nil {
			e.log = l
		}
	}
}

// withMkdirAll replaces directory creation (for testing).
func withMkdirAll(fn func(path string, perm os.FileMode) error) Option {
	return func(e *Extractor) { e.mkdirAll = fn }
}

// NewExtractor creates an Extractor around cutter.
func NewExtractor(cutter Cutter, opts ...Option) *Extractor {
	e := &Extractor{
		cutter:   cutter,
		mkdirAll: os.MkdirAll,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract cuts every valid interval of source into outputDir.
//
// outputDir is created if missing; existing contents are left alone.
// The returned error is non-nil when outputDir cannot be created or ctx is
// done; in the latter case the partial Result is returned with ctx.Err().
// Per-segment failures are reported through Result.Failed and Result.Err.
// Cuts run one at a time, in interval order.
func (e *Extractor) Extract(ctx context.Context, source string, intervals []interval.Interval, outputDir string) (Result, error) {
	if err := e.mkdirAll(outputDir, 0o750); err != nil {
		return Result{}, fmt.Errorf("%w: %s: %w", ErrOutputDir, outputDir, err)
	}

	ext := strings.ToLower(filepath.Ext(source))
	total := len(intervals)
	var res Result

	for i, iv := range intervals {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		index := i + 1

		if !iv.Valid() {
			res.Skipped = append(res.Skipped, index)
			e.log.Debug("skipping empty interval", zap.Int("index", index), zap.Stringer("interval", iv))
			e.report(index, total)
			continue
		}

		out := filepath.Join(outputDir, FileName(index, ext))
		if err := e.cutter.Cut(ctx, source, iv.Start, iv.Duration(), out); err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			res.Failed = append(res.Failed, Failure{Index: index, Interval: iv, Err: err})
			e.log.Warn("segment failed", zap.Int("index", index), zap.Stringer("interval", iv), zap.Error(err))
		} else {
			res.Segments = append(res.Segments, Segment{Index: index, Interval: iv, Path: out})
			e.log.Debug("segment written", zap.Int("index", index), zap.String("path", out))
		}
		e.report(index, total)
	}

	return res, nil
}

func (e *Extractor) report(done, total int) {
	if e.progress != nil {
		e.progress(done, total)
	}
}

// FileName returns the output file name for the segment at index.
func FileName(index int, ext string) string {
	return fmt.Sprintf("%s%0*d%s", namePrefix, indexWidth, index, ext)
}
