package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alnah/go-speechcut/internal/config"
	"github.com/alnah/go-speechcut/internal/interval"
	"github.com/alnah/go-speechcut/internal/lang"
	"github.com/alnah/go-speechcut/internal/logging"
	"github.com/alnah/go-speechcut/internal/pipeline"
	"github.com/alnah/go-speechcut/internal/segment"
	"github.com/alnah/go-speechcut/internal/transcribe"
)

// Flag names. They match the config keys so precedence can be resolved by name.
const (
	flagModelSize = config.KeyModelSize
	flagThreshold = "threshold"
	flagProvider  = config.KeyProvider
	flagLanguage  = config.KeyLanguage
	flagOutput    = config.KeyOutput
	flagWorkDir   = config.KeyWorkDir
	flagLogLevel  = config.KeyLogLevel
	flagLogFormat = config.KeyLogFormat
)

// extractFlags holds raw flag values before they are merged with config.
type extractFlags struct {
	modelSize string
	threshold float64
	provider  string
	language  string
	output    string
	workDir   string
	logLevel  string
	logFormat string
}

// extractOptions are the validated settings for one run.
type extractOptions struct {
	modelSize string
	threshold float64
	provider  string
	language  lang.Language
	output    string
	workDir   string
	logLevel  string
	logFormat string
}

// ExtractCmd creates the extract command.
// The env parameter provides injectable dependencies for testing.
func ExtractCmd(env *Env) *cobra.Command {
	var flags extractFlags

	cmd := &cobra.Command{
		Use:   "extract <video-file>",
		Short: "Extract speech segments from a video",
		Long: `Extract the spoken parts of a video into a zip archive of clips.

The video is transcribed with word timestamps, words closer than the merge
threshold are joined into segments, and each segment is cut from the source
with stream copy (no re-encoding). Clips are named segment_001.<ext>,
segment_002.<ext>, ... in time order.

Transcription uses the local whisper CLI by default, or the OpenAI API with
--provider openai (requires OPENAI_API_KEY).

Supported formats: mp4, mkv, avi, mov (up to 100 MiB)`,
		Example: `  speechcut extract talk.mp4
  speechcut extract talk.mp4 --threshold 0.5 --model-size tiny
  speechcut extract interview.mkv -o clips.zip -l fr
  speechcut extract lecture.mov --provider openai`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd.Context(), env, args[0], flags, cmd.Flags().Changed)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.modelSize, flagModelSize, "m", transcribe.DefaultModelSize, "Whisper model size: tiny, base")
	f.VarP(newThresholdValue(interval.DefaultThreshold, &flags.threshold), flagThreshold, "t",
		fmt.Sprintf("Max gap in seconds joined into one segment (%.1f-%.1f)", 0.0, interval.MaxThreshold))
	f.StringVar(&flags.provider, flagProvider, config.DefaultProvider, "Transcription provider: whisper, openai")
	f.StringVarP(&flags.language, flagLanguage, "l", "", "Spoken language (ISO 639-1 code, e.g., en, fr, pt-BR)")
	f.StringVarP(&flags.output, flagOutput, "o", config.DefaultOutput, "Archive path")
	f.StringVar(&flags.workDir, flagWorkDir, config.DefaultWorkDir, "Parent of the per-run segment directory (must not hold the input or archive)")
	f.StringVar(&flags.logLevel, flagLogLevel, "", "Log level: debug, info, warn, error (default warn)")
	f.StringVar(&flags.logFormat, flagLogFormat, "", "Log format: console, json (default console)")

	return cmd
}

// resolveExtractOptions merges flags with cfg. A flag set on the command line
// wins, then the config value (file, then environment), then the flag default.
func resolveExtractOptions(flags extractFlags, changed func(string) bool, cfg config.Config) (extractOptions, error) {
	pick := func(name, flagValue string) string {
		if changed(name) {
			return flagValue
		}
		if v := cfg.Get(name); v != "" {
			return v
		}
		return flagValue
	}

	var opts extractOptions
	var err error

	if opts.modelSize, err = transcribe.ParseModelSize(pick(flagModelSize, flags.modelSize)); err != nil {
		return extractOptions{}, err
	}

	opts.threshold = flags.threshold
	if !changed(flagThreshold) && cfg.MergeThreshold != nil {
		opts.threshold = *cfg.MergeThreshold
	}
	if err := interval.ValidateThreshold(opts.threshold); err != nil {
		return extractOptions{}, err
	}

	if opts.provider, err = parseProvider(pick(flagProvider, flags.provider)); err != nil {
		return extractOptions{}, err
	}
	if opts.language, err = lang.Parse(pick(flagLanguage, flags.language)); err != nil {
		return extractOptions{}, err
	}

	opts.output = config.ExpandPath(pick(flagOutput, flags.output))
	opts.workDir = config.ExpandPath(pick(flagWorkDir, flags.workDir))
	opts.logLevel = pick(flagLogLevel, flags.logLevel)
	opts.logFormat = pick(flagLogFormat, flags.logFormat)
	return opts, nil
}

// parseProvider validates a provider name, case-insensitively.
func parseProvider(s string) (string, error) {
	switch p := strings.ToLower(strings.TrimSpace(s)); p {
	case config.ProviderWhisper, config.ProviderOpenAI:
		return p, nil
	}
	return "", fmt.Errorf("%w: %q (use %s or %s)", ErrUnsupportedProvider, s, config.ProviderWhisper, config.ProviderOpenAI)
}

// runExtract executes the extract command.
// Validation order: options -> input file -> paths -> API key -> ffmpeg -> backends.
func runExtract(ctx context.Context, env *Env, input string, flags extractFlags, changed func(string) bool) error {
	// === VALIDATION (fail-fast) ===

	cfg, err := env.ConfigLoader.Load()
	if err != nil {
		fmt.Fprintf(env.Stderr, "Warning: failed to load config: %v\n", err)
		cfg = config.Config{}
	}

	opts, err := resolveExtractOptions(flags, changed, cfg)
	if err != nil {
		return err
	}

	log, err := logging.New(logging.Options{Level: opts.logLevel, Format: opts.logFormat, Writer: env.Stderr})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if err := pipeline.ValidateInput(input); err != nil {
		return err
	}
	if err := pipeline.ValidatePaths(input, opts.output, opts.workDir); err != nil {
		return err
	}

	var apiKey string
	if opts.provider == config.ProviderOpenAI {
		apiKey = env.Getenv(EnvOpenAIAPIKey)
		if apiKey == "" {
			return fmt.Errorf("%w (set it with: export %s=sk-...)", ErrAPIKeyMissing, EnvOpenAIAPIKey)
		}
	}

	// === SETUP ===

	ffmpegPath, err := env.FFmpegResolver.Resolve(ctx)
	if err != nil {
		return err
	}

	var tr transcribe.Transcriber
	switch opts.provider {
	case config.ProviderOpenAI:
		tr = env.TranscriberFactory.NewOpenAI(apiKey, ffmpegPath, log)
	default:
		if tr, err = env.TranscriberFactory.NewWhisper(env.Getenv, log); err != nil {
			return err
		}
	}

	cutter, err := env.CutterFactory.NewCutter(ffmpegPath)
	if err != nil {
		return err
	}

	// === RUN ===

	progress := newExtractProgress(env.Stderr, env.IsTerminal(env.Stderr))
	runner := env.RunnerFactory.NewRunner(ffmpegPath, tr, cutter, RunHooks{
		Log:      log,
		Progress: progress.Update,
		Phase: func(p pipeline.Phase) {
			progress.Finish()
			fmt.Fprintln(env.Stderr, phaseMessage(p, opts))
		},
	})

	rep, err := runner.Run(ctx, pipeline.Job{
		Input:          input,
		Output:         opts.output,
		WorkDir:        opts.workDir,
		MergeThreshold: opts.threshold,
		Transcribe:     transcribe.Options{ModelSize: opts.modelSize, Language: opts.language},
	})
	progress.Finish()

	// Segment failures still produce an archive worth reporting.
	if err != nil && !errors.Is(err, segment.ErrSegmentsFailed) {
		return err
	}

	fmt.Fprintln(env.Stdout, renderReport(rep, env.IsTerminal(env.Stdout)))

	if err != nil {
		return err
	}
	fmt.Fprintf(env.Stderr, "Done: %s\n", rep.Archive.Path)
	return nil
}

// phaseMessage returns the status line printed when a phase starts.
func phaseMessage(p pipeline.Phase, opts extractOptions) string {
	switch p {
	case pipeline.PhaseTranscribe:
		if opts.provider == config.ProviderOpenAI {
			return "Transcribing (openai)..."
		}
		return fmt.Sprintf("Transcribing (whisper, model %s)...", opts.modelSize)
	case pipeline.PhaseExtract:
		return "Extracting segments..."
	case pipeline.PhaseArchive:
		return fmt.Sprintf("Writing %s...", opts.output)
	}
	return string(p)
}
