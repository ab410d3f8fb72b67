// Package pipeline runs one speech extraction job end to end: validate the
// input, transcribe it, merge word intervals, cut segments, and zip them.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-speechcut/internal/archive"
	"github.com/alnah/go-speechcut/internal/ffmpeg"
	"github.com/alnah/go-speechcut/internal/interval"
	"github.com/alnah/go-speechcut/internal/segment"
	"github.com/alnah/go-speechcut/internal/transcribe"
)

// Phase names a stage of a run, reported through WithPhaseHook.
type Phase string

// Phases in execution order.
const (
	PhaseTranscribe Phase = "transcribe"
	PhaseExtract    Phase = "extract"
	PhaseArchive    Phase = "archive"
)

// Job describes one run.
type Job struct {
	Input          string
	Output         string // archive path
	WorkDir        string // parent of the per-run segment directory
	MergeThreshold float64
	Transcribe     transcribe.Options
}

// Report summarizes a run. It is filled as far as the run got.
type Report struct {
	JobID          string
	Input          string
	InputBytes     int64
	SourceDuration float64 // seconds, 0 if unknown
	FFmpegMajor    int     // 0 if unknown
	Language       string
	Words          int // words with both timestamps
	Merged         []interval.Interval
	SpeechTime     float64
	Extraction     segment.Result
	Archive        archive.Info
	Elapsed        time.Duration
}

// durationProbeFn returns the duration of a media file in seconds.
type durationProbeFn func(ctx context.Context, ffmpegPath, path string) (float64, error)

// versionCheckFn returns ffmpeg's major version, 0 if unknown.
type versionCheckFn func(ctx context.Context, ffmpegPath string) int

// zipFn packages a directory into an archive.
type zipFn func(ctx context.Context, srcDir, dest string) (archive.Info, error)

// Runner executes jobs. Create one with New.
type Runner struct {
	ffmpegPath   string
	transcriber  transcribe.Transcriber
	cutter       segment.Cutter
	probe        durationProbeFn
	checkVersion versionCheckFn
	zip          zipFn
	stat         statFn
	newID        func() string
	log          *zap.Logger
	progress     func(done, total int)
	onPhase      func(Phase)
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger. Each run adds a "job" field.
func WithLogger(l *zap.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.log = l
		}
	}
}

// WithProgress sets the per-segment progress callback.
func WithProgress(fn func(done, total int)) Option {
	return func(r *Runner) { r.progress = fn }
}

// WithPhaseHook sets a callback invoked when a phase starts.
func WithPhaseHook(fn func(Phase)) Option {
	return func(r *Runner) { r.onPhase = fn }
}

// New creates a Runner. ffmpegPath is used for the duration probe and the
// version check; transcriber and cutter do the real work.
func New(ffmpegPath string, transcriber transcribe.Transcriber, cutter segment.Cutter, opts ...Option) *Runner {
	r := &Runner{
		ffmpegPath:   ffmpegPath,
		transcriber:  transcriber,
		cutter:       cutter,
		probe:        ffmpeg.ProbeDuration,
		checkVersion: ffmpeg.NewVersionChecker().Check,
		zip:          archive.Zip,
		stat:         os.Stat,
		newID:        uuid.NewString,
		log:          zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes job.
//
// Input errors are returned before any work. A transcription failure aborts
// the run. Segment failures do not: the archive is still written and the
// returned error wraps segment.ErrSegmentsFailed. Segments are cut into a
// fresh run directory inside the work directory. That run directory is
// removed on every path once the lock is held; the work directory itself is
// removed only if this run created it and it is empty.
func (r *Runner) Run(ctx context.Context, job Job) (Report, error) {
	started := time.Now()
	rep := Report{JobID: r.newID(), Input: job.Input}
	log := r.log.With(zap.String("job", rep.JobID))

	if err := validateInput(job.Input, r.stat); err != nil {
		return rep, err
	}
	if info, err := r.stat(job.Input); err == nil {
		rep.InputBytes = info.Size()
	}
	if err := interval.ValidateThreshold(job.MergeThreshold); err != nil {
		return rep, err
	}

	if err := ValidatePaths(job.Input, job.Output, job.WorkDir); err != nil {
		return rep, err
	}

	unlock, err := lockWorkDir(job.WorkDir)
	if err != nil {
		return rep, err
	}
	defer unlock()

	runDir, cleanup, err := makeRunDir(job.WorkDir)
	if err != nil {
		return rep, err
	}
	defer func() {
		if err := cleanup(); err != nil {
			log.Warn("work directory cleanup failed", zap.String("dir", runDir), zap.Error(err))
		}
	}()

	log.Info("job started",
		zap.String("input", job.Input),
		zap.Float64("threshold", job.MergeThreshold),
		zap.String("model", job.Transcribe.ModelSize))

	tr, err := r.transcribeWithProbe(ctx, job, &rep, log)
	if err != nil {
		return rep, err
	}

	raw := transcribe.SpeechIntervals(tr)
	rep.Language = tr.Language
	rep.Words = len(raw)
	rep.Merged = interval.Merge(raw, job.MergeThreshold)
	rep.SpeechTime = interval.Total(rep.Merged)
	log.Info("intervals merged", zap.Int("words", len(raw)), zap.Int("segments", len(rep.Merged)))

	r.phase(PhaseExtract)
	ex := segment.NewExtractor(r.cutter, segment.WithLogger(log), segment.WithProgress(r.progress))
	res, err := ex.Extract(ctx, job.Input, rep.Merged, runDir)
	rep.Extraction = res
	if err != nil {
		return rep, err
	}

	r.phase(PhaseArchive)
	info, err := r.zip(ctx, runDir, job.Output)
	if err != nil {
		return rep, err
	}
	rep.Archive = info
	rep.Elapsed = time.Since(started)

	log.Info("job finished",
		zap.Int("written", len(res.Segments)),
		zap.Int("failed", len(res.Failed)),
		zap.String("archive", info.Path),
		zap.Duration("elapsed", rep.Elapsed))

	return rep, res.Err()
}

// transcribeWithProbe runs transcription alongside the ffmpeg version check
// and the duration probe. Only a transcription error fails the group.
func (r *Runner) transcribeWithProbe(ctx context.Context, job Job, rep *Report, log *zap.Logger) (transcribe.Transcript, error) {
	r.phase(PhaseTranscribe)

	var tr transcribe.Transcript
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rep.FFmpegMajor = r.checkVersion(gctx, r.ffmpegPath)
		d, err := r.probe(gctx, r.ffmpegPath, job.Input)
		if err != nil {
			if !errors.Is(gctx.Err(), context.Canceled) {
				log.Warn("duration probe failed", zap.Error(err))
			}
			return nil
		}
		rep.SourceDuration = d
		return nil
	})

	g.Go(func() error {
		var err error
		tr, err = r.transcriber.Transcribe(gctx, job.Input, job.Transcribe)
		return err
	})

	if err := g.Wait(); err != nil {
		return transcribe.Transcript{}, err
	}
	if rep.SourceDuration == 0 {
		rep.SourceDuration = tr.Duration
	}
	return tr, nil
}

func (r *Runner) phase(p Phase) {
	if r.onPhase != nil {
		r.onPhase(p)
	}
}

// lockWorkDir takes an exclusive advisory lock on <workDir>.lock. The
// returned func releases it and removes the lock file.
func lockWorkDir(workDir string) (func(), error) {
	path := filepath.Clean(workDir) + ".lock"
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("%w: %w", segment.ErrOutputDir, err)
	}

	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBusy, path)
	}
	return func() {
		_ = os.Remove(path)
		_ = lock.Unlock()
	}, nil
}

// makeRunDir creates a fresh run directory under workDir. The returned
// cleanup removes the run directory and, when workDir did not exist before,
// workDir too if nothing else was put in it.
func makeRunDir(workDir string) (string, func() error, error) {
	_, statErr := os.Stat(workDir)
	created := errors.Is(statErr, os.ErrNotExist)

	if err := os.MkdirAll(workDir, 0o750); err != nil {
		return "", nil, fmt.Errorf("%w: %s: %w", segment.ErrOutputDir, workDir, err)
	}
	runDir, err := os.MkdirTemp(workDir, "run-")
	if err != nil {
		return "", nil, fmt.Errorf("%w: %s: %w", segment.ErrOutputDir, workDir, err)
	}

	cleanup := func() error {
		if err := os.RemoveAll(runDir); err != nil {
			return err
		}
		if created {
			if err := os.Remove(workDir); err != nil && !errors.Is(err, os.ErrNotExist) && !isNotEmpty(workDir) {
				return err
			}
		}
		return nil
	}
	return runDir, cleanup, nil
}

// isNotEmpty reports whether dir still has entries.
func isNotEmpty(dir string) bool {
	entries, err := os.ReadDir(dir)
	return err == nil && len(entries) > 0
}
