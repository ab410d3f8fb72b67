package pipeline

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/alnah/go-speechcut/internal/format"
)

// MaxInputSize is the largest accepted input file, in bytes.
const MaxInputSize int64 = 100 << 20

// SupportedExtensions lists accepted input containers, lower-case.
var SupportedExtensions = []string{".mp4", ".mkv", ".avi", ".mov"}

// statFn abstracts os.Stat for tests.
type statFn func(name string) (os.FileInfo, error)

// ValidateInput checks, in order, that path exists as a regular file, has a
// supported extension, and is at most MaxInputSize bytes.
func ValidateInput(path string) error {
	return validateInput(path, os.Stat)
}

func validateInput(path string, stat statFn) error {
	info, err := stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}
	if err != nil {
		return fmt.Errorf("cannot access %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrFileNotFound, path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !slices.Contains(SupportedExtensions, ext) {
		return fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedFormat, ext, strings.Join(SupportedExtensions, ", "))
	}

	if info.Size() > MaxInputSize {
		return fmt.Errorf("%w: %s is %s, limit is %s",
			ErrFileTooLarge, filepath.Base(path), format.Size(info.Size()), format.Size(MaxInputSize))
	}
	return nil
}

// ValidatePaths rejects a work directory that is, or contains, the input's
// location or the archive path, and an archive path that contains workDir.
func ValidatePaths(input, output, workDir string) error {
	absWork, err := filepath.Abs(workDir)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", workDir, err)
	}
	absInput, err := filepath.Abs(input)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", input, err)
	}
	absOutput, err := filepath.Abs(output)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", output, err)
	}

	if within(absInput, absWork) {
		return fmt.Errorf("%w: %s contains the input %s", ErrPathConflict, workDir, input)
	}
	if within(absOutput, absWork) {
		return fmt.Errorf("%w: archive %s is inside %s", ErrPathConflict, output, workDir)
	}
	if within(absWork, absOutput) {
		return fmt.Errorf("%w: %s is inside the archive path %s", ErrPathConflict, workDir, output)
	}
	return nil
}

// within reports whether path equals dir or lies below it. Both are absolute.
func within(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
