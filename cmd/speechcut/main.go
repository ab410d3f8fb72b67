package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/alnah/go-speechcut/internal/apierr"
	"github.com/alnah/go-speechcut/internal/archive"
	"github.com/alnah/go-speechcut/internal/cli"
	"github.com/alnah/go-speechcut/internal/config"
	"github.com/alnah/go-speechcut/internal/ffmpeg"
	"github.com/alnah/go-speechcut/internal/interrupt"
	"github.com/alnah/go-speechcut/internal/interval"
	"github.com/alnah/go-speechcut/internal/lang"
	"github.com/alnah/go-speechcut/internal/logging"
	"github.com/alnah/go-speechcut/internal/pipeline"
	"github.com/alnah/go-speechcut/internal/segment"
	"github.com/alnah/go-speechcut/internal/transcribe"
)

// Injected at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

// Exit codes.
const (
	ExitOK            = 0
	ExitGeneral       = 1
	ExitUsage         = 2
	ExitSetup         = 3
	ExitValidation    = 4
	ExitTranscription = 5
	ExitExtraction    = 6
	ExitInterrupt     = interrupt.ExitInterrupt
)

func main() {
	// Load .env file if present (ignore error if missing).
	_ = godotenv.Load()

	// First Ctrl+C cancels and cleans up, second one exits immediately.
	handler, ctx := interrupt.NewHandler(context.Background())

	// Create the CLI environment with production defaults.
	env := cli.DefaultEnv()

	rootCmd := newRootCmd(env)
	err := rootCmd.ExecuteContext(ctx)
	interrupted := handler.WasInterrupted()
	handler.Stop()

	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	if interrupted {
		os.Exit(ExitInterrupt)
	}
	os.Exit(exitCode(err))
}

// newRootCmd builds the command tree.
func newRootCmd(env *cli.Env) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "speechcut",
		Short:   "Cut the spoken parts of a video into clips",
		Version: fmt.Sprintf("%s (commit: %s)", version, commit),
		// Silence Cobra's default error/usage printing; we handle it ourselves.
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	rootCmd.AddCommand(cli.ExtractCmd(env))
	rootCmd.AddCommand(cli.ConfigCmd(env))

	return rootCmd
}

// exitCode maps errors to exit codes.
func exitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	// Check for context cancellation (interrupt).
	if errors.Is(err, context.Canceled) {
		return ExitInterrupt
	}

	// Usage errors (ExitUsage = 2): Cobra flag/arg parsing errors.
	// Cobra doesn't expose typed errors, so we check for known error message patterns.
	if isCobraUsageError(err) {
		return ExitUsage
	}

	// Setup errors (ExitSetup = 3).
	if errors.Is(err, ffmpeg.ErrNotFound) || errors.Is(err, transcribe.ErrWhisperNotFound) ||
		errors.Is(err, cli.ErrAPIKeyMissing) || errors.Is(err, pipeline.ErrBusy) {
		return ExitSetup
	}

	// Validation errors (ExitValidation = 4).
	if errors.Is(err, pipeline.ErrFileNotFound) || errors.Is(err, pipeline.ErrFileTooLarge) ||
		errors.Is(err, pipeline.ErrUnsupportedFormat) || errors.Is(err, pipeline.ErrPathConflict) ||
		errors.Is(err, interval.ErrInvalidThreshold) ||
		errors.Is(err, transcribe.ErrInvalidModelSize) || errors.Is(err, lang.ErrInvalid) ||
		errors.Is(err, cli.ErrUnsupportedProvider) || errors.Is(err, config.ErrUnknownKey) ||
		errors.Is(err, config.ErrInvalidValue) || errors.Is(err, logging.ErrInvalidOption) {
		return ExitValidation
	}

	// Transcription errors (ExitTranscription = 5).
	if errors.Is(err, transcribe.ErrTranscriptionFailed) || errors.Is(err, apierr.ErrRateLimit) ||
		errors.Is(err, apierr.ErrQuotaExceeded) || errors.Is(err, apierr.ErrTimeout) ||
		errors.Is(err, apierr.ErrServer) || errors.Is(err, apierr.ErrAuthFailed) ||
		errors.Is(err, apierr.ErrBadRequest) {
		return ExitTranscription
	}

	// Extraction errors (ExitExtraction = 6).
	if errors.Is(err, segment.ErrSegmentsFailed) || errors.Is(err, segment.ErrOutputDir) ||
		errors.Is(err, ffmpeg.ErrCutFailed) || errors.Is(err, archive.ErrArchiveFailed) {
		return ExitExtraction
	}

	return ExitGeneral
}

// cobraUsageErrorPatterns contains error message substrings that indicate Cobra usage errors.
// Cobra doesn't expose typed errors, so string matching is the only reliable approach.
var cobraUsageErrorPatterns = []string{
	"required flag",             // Missing required flag
	"unknown flag",              // Flag doesn't exist
	"unknown shorthand",         // Short flag doesn't exist
	"unknown command",           // Subcommand doesn't exist
	"flag needs an argument",    // Flag provided without value
	"invalid argument",          // Invalid flag value type
	"if any flags in the group", // Mutually exclusive flag violation
	"accepts ",                  // Wrong number of arguments (e.g., "accepts 1 arg(s)")
	"requires at least",         // Too few arguments
	"requires at most",          // Too many arguments
}

// isCobraUsageError checks if an error is a Cobra usage/parsing error.
func isCobraUsageError(err error) bool {
	if err == nil {
		return false
	}
	errMsg := err.Error()
	for _, pattern := range cobraUsageErrorPatterns {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}
	return false
}
