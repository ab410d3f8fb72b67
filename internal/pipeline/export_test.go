package pipeline

import (
	"context"
	"os"

	"github.com/alnah/go-speechcut/internal/archive"
)

// Options and helpers exposed to black-box tests.

func WithProbe(fn func(ctx context.Context, ffmpegPath, path string) (float64, error)) Option {
	return func(r *Runner) { r.probe = fn }
}

func WithVersionCheck(fn func(ctx context.Context, ffmpegPath string) int) Option {
	return func(r *Runner) { r.checkVersion = fn }
}

func WithZip(fn func(ctx context.Context, srcDir, dest string) (archive.Info, error)) Option {
	return func(r *Runner) { r.zip = fn }
}

func WithStat(fn func(name string) (os.FileInfo, error)) Option {
	return func(r *Runner) { r.stat = fn }
}

func WithIDGenerator(fn func() string) Option {
	return func(r *Runner) { r.newID = fn }
}

func ValidateInputWith(path string, stat func(name string) (os.FileInfo, error)) error {
	return validateInput(path, stat)
}

var LockWorkDir = lockWorkDir
