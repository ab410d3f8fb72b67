package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/alnah/go-speechcut/internal/apierr"
	"github.com/alnah/go-speechcut/internal/archive"
	"github.com/alnah/go-speechcut/internal/cli"
	"github.com/alnah/go-speechcut/internal/config"
	"github.com/alnah/go-speechcut/internal/ffmpeg"
	"github.com/alnah/go-speechcut/internal/interval"
	"github.com/alnah/go-speechcut/internal/lang"
	"github.com/alnah/go-speechcut/internal/logging"
	"github.com/alnah/go-speechcut/internal/pipeline"
	"github.com/alnah/go-speechcut/internal/segment"
	"github.com/alnah/go-speechcut/internal/transcribe"
)

// allSentinelErrors lists every sentinel that reaches main with its exit code.
var allSentinelErrors = []struct {
	err      error
	name     string
	exitCode int
}{
	// Setup errors (ExitSetup = 3)
	{ffmpeg.ErrNotFound, "ffmpeg.ErrNotFound", ExitSetup},
	{transcribe.ErrWhisperNotFound, "transcribe.ErrWhisperNotFound", ExitSetup},
	{cli.ErrAPIKeyMissing, "cli.ErrAPIKeyMissing", ExitSetup},
	{pipeline.ErrBusy, "pipeline.ErrBusy", ExitSetup},

	// Validation errors (ExitValidation = 4)
	{pipeline.ErrFileNotFound, "pipeline.ErrFileNotFound", ExitValidation},
	{pipeline.ErrFileTooLarge, "pipeline.ErrFileTooLarge", ExitValidation},
	{pipeline.ErrUnsupportedFormat, "pipeline.ErrUnsupportedFormat", ExitValidation},
	{pipeline.ErrPathConflict, "pipeline.ErrPathConflict", ExitValidation},
	{interval.ErrInvalidThreshold, "interval.ErrInvalidThreshold", ExitValidation},
	{transcribe.ErrInvalidModelSize, "transcribe.ErrInvalidModelSize", ExitValidation},
	{lang.ErrInvalid, "lang.ErrInvalid", ExitValidation},
	{cli.ErrUnsupportedProvider, "cli.ErrUnsupportedProvider", ExitValidation},
	{config.ErrUnknownKey, "config.ErrUnknownKey", ExitValidation},
	{config.ErrInvalidValue, "config.ErrInvalidValue", ExitValidation},
	{logging.ErrInvalidOption, "logging.ErrInvalidOption", ExitValidation},

	// Transcription errors (ExitTranscription = 5)
	{transcribe.ErrTranscriptionFailed, "transcribe.ErrTranscriptionFailed", ExitTranscription},
	{apierr.ErrRateLimit, "apierr.ErrRateLimit", ExitTranscription},
	{apierr.ErrQuotaExceeded, "apierr.ErrQuotaExceeded", ExitTranscription},
	{apierr.ErrTimeout, "apierr.ErrTimeout", ExitTranscription},
	{apierr.ErrServer, "apierr.ErrServer", ExitTranscription},
	{apierr.ErrAuthFailed, "apierr.ErrAuthFailed", ExitTranscription},
	{apierr.ErrBadRequest, "apierr.ErrBadRequest", ExitTranscription},

	// Extraction errors (ExitExtraction = 6)
	{segment.ErrSegmentsFailed, "segment.ErrSegmentsFailed", ExitExtraction},
	{segment.ErrOutputDir, "segment.ErrOutputDir", ExitExtraction},
	{ffmpeg.ErrCutFailed, "ffmpeg.ErrCutFailed", ExitExtraction},
	{archive.ErrArchiveFailed, "archive.ErrArchiveFailed", ExitExtraction},
}

// TestExitCode_MapsAllErrors verifies that exitCode() maps every sentinel,
// directly and wrapped.
func TestExitCode_MapsAllErrors(t *testing.T) {
	for _, tc := range allSentinelErrors {
		t.Run(tc.name+"_direct", func(t *testing.T) {
			if got := exitCode(tc.err); got != tc.exitCode {
				t.Errorf("exitCode(%s) = %d, want %d", tc.name, got, tc.exitCode)
			}
		})

		t.Run(tc.name+"_wrapped", func(t *testing.T) {
			wrapped := fmt.Errorf("level2: %w", fmt.Errorf("level1: %w", tc.err))
			if got := exitCode(wrapped); got != tc.exitCode {
				t.Errorf("exitCode(wrapped %s) = %d, want %d", tc.name, got, tc.exitCode)
			}
		})
	}

	t.Run("nil_error", func(t *testing.T) {
		if got := exitCode(nil); got != ExitOK {
			t.Errorf("exitCode(nil) = %d, want %d (ExitOK)", got, ExitOK)
		}
	})

	t.Run("unknown_error", func(t *testing.T) {
		if got := exitCode(errors.New("some unexpected error")); got != ExitGeneral {
			t.Errorf("exitCode(unknown) = %d, want %d (ExitGeneral)", got, ExitGeneral)
		}
	})

	t.Run("context_canceled_wrapped", func(t *testing.T) {
		wrapped := fmt.Errorf("operation interrupted: %w", context.Canceled)
		if got := exitCode(wrapped); got != ExitInterrupt {
			t.Errorf("exitCode(wrapped context.Canceled) = %d, want %d (ExitInterrupt)", got, ExitInterrupt)
		}
	})
}

// TestExitCode_TranscriptionKeepsAPICause checks the chain a backend produces.
func TestExitCode_TranscriptionKeepsAPICause(t *testing.T) {
	err := fmt.Errorf("%w: %w", transcribe.ErrTranscriptionFailed, fmt.Errorf("giving up: %w", apierr.ErrRateLimit))
	if got := exitCode(err); got != ExitTranscription {
		t.Errorf("exitCode() = %d, want %d", got, ExitTranscription)
	}
}

// TestExitCode_SegmentFailuresJoined checks the joined error from a partial run.
func TestExitCode_SegmentFailuresJoined(t *testing.T) {
	res := segment.Result{
		Segments: []segment.Segment{{Index: 1}},
		Failed: []segment.Failure{
			{Index: 2, Err: fmt.Errorf("%w: moov atom not found", ffmpeg.ErrCutFailed)},
		},
	}
	if got := exitCode(res.Err()); got != ExitExtraction {
		t.Errorf("exitCode() = %d, want %d", got, ExitExtraction)
	}
}

// TestExitCode_CobraErrors verifies that Cobra flag errors are mapped to ExitUsage.
// Uses real Cobra errors rather than fabricated strings for robustness.
func TestExitCode_CobraErrors(t *testing.T) {
	tests := []struct {
		name  string
		setup func(cmd *cobra.Command)
		args  []string
	}{
		{
			name: "required_flag_missing",
			setup: func(cmd *cobra.Command) {
				cmd.Flags().String("required", "", "a required flag")
				_ = cmd.MarkFlagRequired("required")
			},
			args: []string{},
		},
		{
			name:  "unknown_flag",
			setup: func(cmd *cobra.Command) {},
			args:  []string{"--nonexistent"},
		},
		{
			name:  "unknown_shorthand",
			setup: func(cmd *cobra.Command) {},
			args:  []string{"-x"},
		},
		{
			name: "flag_needs_argument",
			setup: func(cmd *cobra.Command) {
				cmd.Flags().String("name", "", "a flag requiring value")
			},
			args: []string{"--name"},
		},
		{
			name: "invalid_argument_type",
			setup: func(cmd *cobra.Command) {
				cmd.Flags().Int("count", 0, "an integer flag")
			},
			args: []string{"--count", "notanumber"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cmd := &cobra.Command{
				Use:           "test",
				SilenceErrors: true,
				SilenceUsage:  true,
				RunE: func(cmd *cobra.Command, args []string) error {
					return nil
				},
			}
			tc.setup(cmd)
			cmd.SetArgs(tc.args)

			err := cmd.Execute()
			if err == nil {
				t.Fatal("Execute() error = nil, want usage error")
			}
			if got := exitCode(err); got != ExitUsage {
				t.Errorf("exitCode(%q) = %d, want %d (ExitUsage)", err, got, ExitUsage)
			}
		})
	}
}

// TestRootCmd_Usage exercises the real command tree.
func TestRootCmd_Usage(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "extract without file", args: []string{"extract"}},
		{name: "threshold not a number", args: []string{"extract", "-t", "x", "a.mp4"}},
		{name: "config get without key", args: []string{"config", "get"}},
		{name: "unknown subcommand", args: []string{"cut", "a.mp4"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			env := cli.NewEnv(cli.WithStdout(io.Discard), cli.WithStderr(io.Discard))
			cmd := newRootCmd(env)
			cmd.SetArgs(tc.args)
			cmd.SetOut(io.Discard)
			cmd.SetErr(io.Discard)

			err := cmd.ExecuteContext(context.Background())
			if err == nil {
				t.Fatal("Execute() error = nil, want usage error")
			}
			if got := exitCode(err); got != ExitUsage {
				t.Errorf("exitCode(%q) = %d, want %d", err, got, ExitUsage)
			}
		})
	}
}

func TestRootCmd_Subcommands(t *testing.T) {
	cmd := newRootCmd(cli.NewEnv())
	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	joined := strings.Join(names, ",")
	for _, want := range []string{"extract", "config"} {
		if !strings.Contains(joined, want) {
			t.Errorf("root command missing %q (have %s)", want, joined)
		}
	}
}
