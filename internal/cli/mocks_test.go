package cli

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/alnah/go-speechcut/internal/config"
	"github.com/alnah/go-speechcut/internal/pipeline"
	"github.com/alnah/go-speechcut/internal/segment"
	"github.com/alnah/go-speechcut/internal/transcribe"
)

// ---------------------------------------------------------------------------
// Mock FFmpegResolver
// ---------------------------------------------------------------------------

type mockFFmpegResolver struct {
	ResolveFunc func(ctx context.Context) (string, error)

	mu           sync.Mutex
	resolveCalls int
}

func (m *mockFFmpegResolver) Resolve(ctx context.Context) (string, error) {
	m.mu.Lock()
	m.resolveCalls++
	m.mu.Unlock()

	if m.ResolveFunc != nil {
		return m.ResolveFunc(ctx)
	}
	return "/usr/bin/ffmpeg", nil
}

func (m *mockFFmpegResolver) ResolveCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resolveCalls
}

// ---------------------------------------------------------------------------
// Mock ConfigLoader
// ---------------------------------------------------------------------------

type mockConfigLoader struct {
	LoadFunc func() (config.Config, error)

	mu        sync.Mutex
	loadCalls int
}

func (m *mockConfigLoader) Load() (config.Config, error) {
	m.mu.Lock()
	m.loadCalls++
	m.mu.Unlock()

	if m.LoadFunc != nil {
		return m.LoadFunc()
	}
	return config.Config{}, nil
}

// ---------------------------------------------------------------------------
// Mock TranscriberFactory
// ---------------------------------------------------------------------------

type mockTranscriberFactory struct {
	NewWhisperFunc func(getenv func(string) string, log *zap.Logger) (transcribe.Transcriber, error)

	mu           sync.Mutex
	whisperCalls int
	openAIKeys   []string
}

func (m *mockTranscriberFactory) NewWhisper(getenv func(string) string, log *zap.Logger) (transcribe.Transcriber, error) {
	m.mu.Lock()
	m.whisperCalls++
	m.mu.Unlock()

	if m.NewWhisperFunc != nil {
		return m.NewWhisperFunc(getenv, log)
	}
	return &mockTranscriber{}, nil
}

func (m *mockTranscriberFactory) NewOpenAI(apiKey, ffmpegPath string, log *zap.Logger) transcribe.Transcriber {
	m.mu.Lock()
	m.openAIKeys = append(m.openAIKeys, apiKey)
	m.mu.Unlock()
	return &mockTranscriber{}
}

func (m *mockTranscriberFactory) WhisperCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.whisperCalls
}

func (m *mockTranscriberFactory) OpenAIKeys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.openAIKeys...)
}

type mockTranscriber struct{}

func (m *mockTranscriber) Transcribe(ctx context.Context, mediaPath string, opts transcribe.Options) (transcribe.Transcript, error) {
	return transcribe.Transcript{}, nil
}

// ---------------------------------------------------------------------------
// Mock CutterFactory
// ---------------------------------------------------------------------------

type mockCutterFactory struct {
	NewCutterFunc func(ffmpegPath string) (segment.Cutter, error)

	mu    sync.Mutex
	paths []string
}

func (m *mockCutterFactory) NewCutter(ffmpegPath string) (segment.Cutter, error) {
	m.mu.Lock()
	m.paths = append(m.paths, ffmpegPath)
	m.mu.Unlock()

	if m.NewCutterFunc != nil {
		return m.NewCutterFunc(ffmpegPath)
	}
	return &mockCutter{}, nil
}

type mockCutter struct{}

func (m *mockCutter) Cut(ctx context.Context, source string, start, duration float64, output string) error {
	return nil
}

// ---------------------------------------------------------------------------
// Mock RunnerFactory + JobRunner
// ---------------------------------------------------------------------------

// mockRunnerFactory hands out a runner that replays RunFunc. The hooks passed
// by the command are available to RunFunc so tests can drive progress.
type mockRunnerFactory struct {
	RunFunc func(ctx context.Context, job pipeline.Job, hooks RunHooks) (pipeline.Report, error)

	mu         sync.Mutex
	jobs       []pipeline.Job
	ffmpegPath string
}

func (m *mockRunnerFactory) NewRunner(ffmpegPath string, tr transcribe.Transcriber, cutter segment.Cutter, hooks RunHooks) JobRunner {
	m.mu.Lock()
	m.ffmpegPath = ffmpegPath
	m.mu.Unlock()
	return &mockRunner{factory: m, hooks: hooks}
}

func (m *mockRunnerFactory) Jobs() []pipeline.Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]pipeline.Job(nil), m.jobs...)
}

type mockRunner struct {
	factory *mockRunnerFactory
	hooks   RunHooks
}

func (r *mockRunner) Run(ctx context.Context, job pipeline.Job) (pipeline.Report, error) {
	r.factory.mu.Lock()
	r.factory.jobs = append(r.factory.jobs, job)
	r.factory.mu.Unlock()

	if r.factory.RunFunc != nil {
		return r.factory.RunFunc(ctx, job, r.hooks)
	}
	return pipeline.Report{Input: job.Input}, nil
}

// Compile-time interface verification.
var (
	_ FFmpegResolver     = (*mockFFmpegResolver)(nil)
	_ ConfigLoader       = (*mockConfigLoader)(nil)
	_ TranscriberFactory = (*mockTranscriberFactory)(nil)
	_ CutterFactory      = (*mockCutterFactory)(nil)
	_ RunnerFactory      = (*mockRunnerFactory)(nil)
)
