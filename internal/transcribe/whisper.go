package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// EnvWhisperPath overrides PATH lookup of the whisper CLI.
const EnvWhisperPath = "WHISPER_PATH"

const whisperBinary = "whisper"

// FindWhisper locates the whisper CLI: WHISPER_PATH first, then PATH.
func FindWhisper(getenv func(string) string, lookPath func(string) (string, error)) (string, error) {
	if p := strings.TrimSpace(getenv(EnvWhisperPath)); p != "" {
		return p, nil
	}
	p, err := lookPath(whisperBinary)
	if err != nil {
		return "", fmt.Errorf("%w: install it with 'pip install -U openai-whisper' or set %s",
			ErrWhisperNotFound, EnvWhisperPath)
	}
	return p, nil
}

// runCmdFn runs a command and returns its combined output.
type runCmdFn func(ctx context.Context, name string, args []string) ([]byte, error)

func defaultRunCmd(ctx context.Context, name string, args []string) ([]byte, error) {
	// #nosec G204 -- binary comes from FindWhisper, args are built by this package
	cmd := exec.CommandContext(ctx, name, args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()
	return out.Bytes(), err
}

// Compile-time interface compliance check.
var _ Transcriber = (*WhisperCLI)(nil)

// WhisperCLI transcribes with the local openai-whisper command on CPU.
type WhisperCLI struct {
	binary string
	device string
	run    runCmdFn
	log    *zap.Logger
}

// WhisperOption configures a WhisperCLI.
type WhisperOption func(*WhisperCLI)

// WithDevice sets the torch device (default "cpu").
func WithDevice(device string) WhisperOption {
	return func(w *WhisperCLI) {
		if device != "" {
			w.device = device
		}
	}
}

// WithWhisperLogger sets the logger.
func WithWhisperLogger(l *zap.Logger) WhisperOption {
	return func(w *WhisperCLI) {
		if l != nil {
			w.log = l
		}
	}
}

// withRunCmd replaces command execution (for testing).
func withRunCmd(fn runCmdFn) WhisperOption {
	return func(w *WhisperCLI) { w.run = fn }
}

// NewWhisperCLI creates a WhisperCLI running binary.
func NewWhisperCLI(binary string, opts ...WhisperOption) *WhisperCLI {
	w := &WhisperCLI{
		binary: binary,
		device: "cpu",
		run:    defaultRunCmd,
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Transcribe runs whisper with word timestamps on mediaPath. whisper decodes
// the video itself through ffmpeg, so no separate audio extraction is needed.
func (w *WhisperCLI) Transcribe(ctx context.Context, mediaPath string, opts Options) (Transcript, error) {
	size, err := ParseModelSize(opts.ModelSize)
	if err != nil {
		return Transcript{}, err
	}

	outDir, err := os.MkdirTemp("", "speechcut-whisper-*")
	if err != nil {
		return Transcript{}, fmt.Errorf("%w: create temp dir: %w", ErrTranscriptionFailed, err)
	}
	defer func() { _ = os.RemoveAll(outDir) }()

	args := w.args(mediaPath, size, outDir, opts)
	w.log.Debug("running whisper", zap.String("binary", w.binary), zap.Strings("args", args))

	out, err := w.run(ctx, w.binary, args)
	if err != nil {
		if msg := lastLine(string(out)); msg != "" {
			return Transcript{}, fmt.Errorf("%w: whisper: %w: %s", ErrTranscriptionFailed, err, msg)
		}
		return Transcript{}, fmt.Errorf("%w: whisper: %w", ErrTranscriptionFailed, err)
	}

	stem := strings.TrimSuffix(filepath.Base(mediaPath), filepath.Ext(mediaPath))
	data, err := os.ReadFile(filepath.Join(outDir, stem+".json")) // #nosec G304 -- path inside our temp dir
	if err != nil {
		return Transcript{}, fmt.Errorf("%w: read whisper output: %w", ErrTranscriptionFailed, err)
	}
	return parseWhisperJSON(data)
}

func (w *WhisperCLI) args(mediaPath, size, outDir string, opts Options) []string {
	args := []string{
		mediaPath,
		"--model", size,
		"--word_timestamps", "True",
		"--output_format", "json",
		"--output_dir", outDir,
		"--device", w.device,
		"--verbose", "False",
	}
	if w.device == "cpu" {
		args = append(args, "--fp16", "False")
	}
	if code := opts.Language.BaseCode(); code != "" {
		args = append(args, "--language", code)
	}
	return args
}

// whisperOutput mirrors the JSON written by whisper --output_format json.
type whisperOutput struct {
	Language string `json:"language"`
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
		Words []struct {
			Word  string   `json:"word"`
			Start *float64 `json:"start"`
			End   *float64 `json:"end"`
		} `json:"words"`
	} `json:"segments"`
}

func parseWhisperJSON(data []byte) (Transcript, error) {
	var raw whisperOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return Transcript{}, fmt.Errorf("%w: parse whisper output: %w", ErrTranscriptionFailed, err)
	}

	t := Transcript{Language: raw.Language, Segments: make([]Segment, 0, len(raw.Segments))}
	for _, s := range raw.Segments {
		seg := Segment{Start: s.Start, End: s.End, Text: strings.TrimSpace(s.Text)}
		for _, rw := range s.Words {
			seg.Words = append(seg.Words, Word{Text: strings.TrimSpace(rw.Word), Start: rw.Start, End: rw.End})
		}
		t.Segments = append(t.Segments, seg)
		t.Duration = max(t.Duration, s.End)
	}
	return t, nil
}

// lastLine returns the last non-empty line of command output.
func lastLine(output string) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			return l
		}
	}
	return ""
}
