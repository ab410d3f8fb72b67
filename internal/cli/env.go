package cli

import (
	"context"
	"io"
	"os"
	"os/exec"

	"github.com/mattn/go-isatty"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/alnah/go-speechcut/internal/config"
	"github.com/alnah/go-speechcut/internal/ffmpeg"
	"github.com/alnah/go-speechcut/internal/pipeline"
	"github.com/alnah/go-speechcut/internal/segment"
	"github.com/alnah/go-speechcut/internal/transcribe"
)

// EnvOpenAIAPIKey is the environment variable holding the OpenAI API key.
const EnvOpenAIAPIKey = "OPENAI_API_KEY"

// Env holds injectable dependencies for CLI commands.
// This is the central injection point for testing CLI commands in isolation.
//
// Env must not be nil when passed to command functions. Use DefaultEnv()
// or NewEnv() to create a valid instance.
type Env struct {
	// I/O and environment
	Stdout     io.Writer
	Stderr     io.Writer
	Getenv     func(string) string
	IsTerminal func(w io.Writer) bool

	// Factories for domain objects
	FFmpegResolver     FFmpegResolver
	ConfigLoader       ConfigLoader
	TranscriberFactory TranscriberFactory
	CutterFactory      CutterFactory
	RunnerFactory      RunnerFactory
}

// FFmpegResolver resolves the path to the FFmpeg binary.
type FFmpegResolver interface {
	Resolve(ctx context.Context) (string, error)
}

// ConfigLoader loads configuration (file, then environment).
type ConfigLoader interface {
	Load() (config.Config, error)
}

// TranscriberFactory creates the transcription backends.
type TranscriberFactory interface {
	NewWhisper(getenv func(string) string, log *zap.Logger) (transcribe.Transcriber, error)
	NewOpenAI(apiKey, ffmpegPath string, log *zap.Logger) transcribe.Transcriber
}

// CutterFactory creates segment cutters.
type CutterFactory interface {
	NewCutter(ffmpegPath string) (segment.Cutter, error)
}

// JobRunner executes one extraction job.
type JobRunner interface {
	Run(ctx context.Context, job pipeline.Job) (pipeline.Report, error)
}

// RunHooks carries the observers a command attaches to a run.
type RunHooks struct {
	Log      *zap.Logger
	Progress func(done, total int)
	Phase    func(pipeline.Phase)
}

// RunnerFactory creates job runners.
type RunnerFactory interface {
	NewRunner(ffmpegPath string, tr transcribe.Transcriber, cutter segment.Cutter, hooks RunHooks) JobRunner
}

// EnvOption configures an Env.
type EnvOption func(*Env)

// WithStdout sets the stdout writer.
func WithStdout(w io.Writer) EnvOption {
	return func(e *Env) {
		e.Stdout = w
	}
}

// WithStderr sets the stderr writer.
func WithStderr(w io.Writer) EnvOption {
	return func(e *Env) {
		e.Stderr = w
	}
}

// WithGetenv sets the environment variable getter.
func WithGetenv(fn func(string) string) EnvOption {
	return func(e *Env) {
		e.Getenv = fn
	}
}

// WithTerminalCheck sets the function deciding whether a writer is a terminal.
func WithTerminalCheck(fn func(w io.Writer) bool) EnvOption {
	return func(e *Env) {
		e.IsTerminal = fn
	}
}

// WithFFmpegResolver sets the FFmpeg resolver.
func WithFFmpegResolver(r FFmpegResolver) EnvOption {
	return func(e *Env) {
		e.FFmpegResolver = r
	}
}

// WithConfigLoader sets the config loader.
func WithConfigLoader(l ConfigLoader) EnvOption {
	return func(e *Env) {
		e.ConfigLoader = l
	}
}

// WithTranscriberFactory sets the transcriber factory.
func WithTranscriberFactory(f TranscriberFactory) EnvOption {
	return func(e *Env) {
		e.TranscriberFactory = f
	}
}

// WithCutterFactory sets the cutter factory.
func WithCutterFactory(f CutterFactory) EnvOption {
	return func(e *Env) {
		e.CutterFactory = f
	}
}

// WithRunnerFactory sets the runner factory.
func WithRunnerFactory(f RunnerFactory) EnvOption {
	return func(e *Env) {
		e.RunnerFactory = f
	}
}

// DefaultEnv returns an Env with production defaults.
func DefaultEnv() *Env {
	return &Env{
		Stdout:             os.Stdout,
		Stderr:             os.Stderr,
		Getenv:             os.Getenv,
		IsTerminal:         isTerminal,
		FFmpegResolver:     ffmpeg.NewResolver(),
		ConfigLoader:       &defaultConfigLoader{},
		TranscriberFactory: &defaultTranscriberFactory{},
		CutterFactory:      &defaultCutterFactory{},
		RunnerFactory:      &defaultRunnerFactory{},
	}
}

// NewEnv creates an Env with the given options applied to defaults.
func NewEnv(opts ...EnvOption) *Env {
	env := DefaultEnv()
	for _, opt := range opts {
		opt(env)
	}
	return env
}

// isTerminal reports whether w is a terminal (including Cygwin/MSYS ptys).
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// ---------------------------------------------------------------------------
// Default implementations - delegate to real packages
// ---------------------------------------------------------------------------

// defaultConfigLoader implements ConfigLoader using the config package.
type defaultConfigLoader struct{}

func (defaultConfigLoader) Load() (config.Config, error) {
	return config.Load()
}

// defaultTranscriberFactory builds the local whisper CLI and OpenAI backends.
type defaultTranscriberFactory struct{}

func (defaultTranscriberFactory) NewWhisper(getenv func(string) string, log *zap.Logger) (transcribe.Transcriber, error) {
	binary, err := transcribe.FindWhisper(getenv, exec.LookPath)
	if err != nil {
		return nil, err
	}
	return transcribe.NewWhisperCLI(binary, transcribe.WithWhisperLogger(log)), nil
}

func (defaultTranscriberFactory) NewOpenAI(apiKey, ffmpegPath string, log *zap.Logger) transcribe.Transcriber {
	client := openai.NewClient(apiKey)
	return transcribe.NewOpenAITranscriber(client, ffmpegPath, transcribe.WithOpenAILogger(log))
}

// defaultCutterFactory creates ffmpeg stream-copy cutters.
type defaultCutterFactory struct{}

func (defaultCutterFactory) NewCutter(ffmpegPath string) (segment.Cutter, error) {
	return ffmpeg.NewStreamCutter(ffmpegPath)
}

// defaultRunnerFactory creates pipeline runners.
type defaultRunnerFactory struct{}

func (defaultRunnerFactory) NewRunner(ffmpegPath string, tr transcribe.Transcriber, cutter segment.Cutter, hooks RunHooks) JobRunner {
	return pipeline.New(ffmpegPath, tr, cutter,
		pipeline.WithLogger(hooks.Log),
		pipeline.WithProgress(hooks.Progress),
		pipeline.WithPhaseHook(hooks.Phase),
	)
}

// Compile-time interface verification.
var (
	_ FFmpegResolver     = (*ffmpeg.Resolver)(nil)
	_ ConfigLoader       = (*defaultConfigLoader)(nil)
	_ TranscriberFactory = (*defaultTranscriberFactory)(nil)
	_ CutterFactory      = (*defaultCutterFactory)(nil)
	_ RunnerFactory      = (*defaultRunnerFactory)(nil)
	_ JobRunner          = (*pipeline.Runner)(nil)
)
