package ffmpeg

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"go.uber.org/zap"
)

const (
	// binaryName is the base name of the ffmpeg binary looked up on PATH.
	binaryName = "ffmpeg"

	// minFFmpegMajorVersion is the minimum recommended ffmpeg version.
	// Older builds mis-handle -ss before -i with stream copy on some containers.
	minFFmpegMajorVersion = 4
)

// EnvFFmpegPath overrides PATH lookup with an explicit ffmpeg binary.
const EnvFFmpegPath = "FFMPEG_PATH"

// ---------------------------------------------------------------------------
// Resolver - testable FFmpeg resolution with dependency injection
// ---------------------------------------------------------------------------

// Resolver finds the ffmpeg binary.
type Resolver struct {
	stat fileStatter
	env  envProvider
	goos string
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithFileStatter sets the file statter implementation.
func WithFileStatter(s fileStatter) ResolverOption {
	return func(res *Resolver) { res.stat = s }
}

// WithEnvProvider sets the environment provider implementation.
func WithEnvProvider(e envProvider) ResolverOption {
	return func(res *Resolver) { res.env = e }
}

// WithPlatform sets the target OS (for testing install instructions).
func WithPlatform(goos string) ResolverOption {
	return func(res *Resolver) { res.goos = goos }
}

// NewResolver creates a Resolver with the given options.
// Uses production defaults if no options are provided.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		stat: osFileStatter{},
		env:  osEnvProvider{},
		goos: runtime.GOOS,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve finds ffmpeg using the following precedence:
//  1. FFMPEG_PATH environment variable (error if set but invalid)
//  2. System PATH
func (r *Resolver) Resolve(_ context.Context) (string, error) {
	if envPath := strings.TrimSpace(r.env.Getenv(EnvFFmpegPath)); envPath != "" {
		if _, err := r.stat.Stat(envPath); err != nil {
			return "", fmt.Errorf("%w: %s is set to %q but binary not found",
				ErrNotFound, EnvFFmpegPath, envPath)
		}
		return envPath, nil
	}

	if path, err := r.env.LookPath(binaryName); err == nil {
		return path, nil
	}

	return "", fmt.Errorf("%w in PATH\n\n%s", ErrNotFound, r.manualInstallInstructions())
}

// manualInstallInstructions returns platform-specific instructions.
func (r *Resolver) manualInstallInstructions() string {
	switch r.goos {
	case "darwin":
		return `To install FFmpeg:
  brew install ffmpeg

Or set FFMPEG_PATH to your ffmpeg binary.`
	case "linux":
		return `To install FFmpeg:
  Ubuntu/Debian: sudo apt install ffmpeg
  Fedora:        sudo dnf install ffmpeg
  Arch:          sudo pacman -S ffmpeg

Or set FFMPEG_PATH to your ffmpeg binary.`
	case "windows":
		return `To install FFmpeg:
  winget install ffmpeg

Or set FFMPEG_PATH to your ffmpeg.exe.`
	default:
		return `Download FFmpeg from https://ffmpeg.org/download.html
Or set FFMPEG_PATH to your ffmpeg binary.`
	}
}

// Resolve finds ffmpeg using a resolver with production defaults.
func Resolve(ctx context.Context) (string, error) {
	return NewResolver().Resolve(ctx)
}

// ---------------------------------------------------------------------------
// VersionChecker - minimum version warning
// ---------------------------------------------------------------------------

// VersionChecker verifies FFmpeg version requirements.
type VersionChecker struct {
	executor *Executor
	log      *zap.Logger
}

// VersionCheckerOption configures a VersionChecker.
type VersionCheckerOption func(*VersionChecker)

// WithVersionExecutor sets the executor for running FFmpeg.
func WithVersionExecutor(e *Executor) VersionCheckerOption {
	return func(vc *VersionChecker) { vc.executor = e }
}

// WithVersionLogger sets the logger that receives the version warning.
func WithVersionLogger(l *zap.Logger) VersionCheckerOption {
	return func(vc *VersionChecker) { vc.log = l }
}

// NewVersionChecker creates a VersionChecker with the given options.
func NewVersionChecker(opts ...VersionCheckerOption) *VersionChecker {
	vc := &VersionChecker{
		executor: getDefaultExecutor(),
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(vc)
	}
	return vc
}

// Check logs a warning if ffmpeg is older than the recommended version.
// It never fails; it returns the detected major version, or 0 if unknown.
func (vc *VersionChecker) Check(ctx context.Context, ffmpegPath string) int {
	output, err := vc.executor.RunOutput(ctx, ffmpegPath, []string{"-version"})
	if err != nil && output == "" {
		return 0
	}

	major := parseMajorVersion(output)
	if major == 0 {
		return 0
	}

	if major < minFFmpegMajorVersion {
		vc.log.Warn("ffmpeg version below recommended minimum",
			zap.Int("detected", major),
			zap.Int("recommended", minFFmpegMajorVersion))
	}
	return major
}

// parseMajorVersion extracts N from "ffmpeg version N.x..." or "ffmpeg version nN.x...".
func parseMajorVersion(output string) int {
	first, _, _ := strings.Cut(output, "\n")
	if first == "" {
		return 0
	}

	var major int
	if _, err := fmt.Sscanf(first, "ffmpeg version %d", &major); err == nil {
		return major
	}
	if _, err := fmt.Sscanf(first, "ffmpeg version n%d", &major); err == nil {
		return major
	}
	return 0
}
