package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// ---------------------------------------------------------------------------
// syncBuffer - thread-safe bytes.Buffer for concurrent test output
// ---------------------------------------------------------------------------

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (n int, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// Compile-time check that syncBuffer implements io.Writer.
var _ io.Writer = (*syncBuffer)(nil)

// ---------------------------------------------------------------------------
// testMocks - convenience struct for grouping all mocks
// ---------------------------------------------------------------------------

type testMocks struct {
	ffmpegResolver *mockFFmpegResolver
	configLoader   *mockConfigLoader
	transcriber    *mockTranscriberFactory
	cutter         *mockCutterFactory
	runner         *mockRunnerFactory
	stdout         *syncBuffer
	stderr         *syncBuffer
}

// testEnv creates an Env with all dependencies mocked and non-terminal
// output. getenv may be nil.
func testEnv(getenv func(string) string) (*Env, *testMocks) {
	if getenv == nil {
		getenv = staticEnv(nil)
	}
	mocks := &testMocks{
		ffmpegResolver: &mockFFmpegResolver{},
		configLoader:   &mockConfigLoader{},
		transcriber:    &mockTranscriberFactory{},
		cutter:         &mockCutterFactory{},
		runner:         &mockRunnerFactory{},
		stdout:         &syncBuffer{},
		stderr:         &syncBuffer{},
	}
	env := NewEnv(
		WithStdout(mocks.stdout),
		WithStderr(mocks.stderr),
		WithGetenv(getenv),
		WithTerminalCheck(func(io.Writer) bool { return false }),
		WithFFmpegResolver(mocks.ffmpegResolver),
		WithConfigLoader(mocks.configLoader),
		WithTranscriberFactory(mocks.transcriber),
		WithCutterFactory(mocks.cutter),
		WithRunnerFactory(mocks.runner),
	)
	return env, mocks
}

// staticEnv returns a getenv function that returns values from the given map.
func staticEnv(env map[string]string) func(string) string {
	return func(key string) string {
		return env[key]
	}
}

// noneChanged reports every flag as left at its default.
func noneChanged(string) bool { return false }

// changedSet reports the named flags as set on the command line.
func changedSet(names ...string) func(string) bool {
	return func(name string) bool {
		for _, n := range names {
			if n == name {
				return true
			}
		}
		return false
	}
}

// defaultFlags mirrors the defaults registered by ExtractCmd.
func defaultFlags() extractFlags {
	return extractFlags{
		modelSize: "base",
		threshold: 0.3,
		provider:  "whisper",
		output:    "speech_segments.zip",
		workDir:   "output_segments",
	}
}

// createTestVideo creates a small file with the given name in a temp dir.
func createTestVideo(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("fake video content"), 0o600); err != nil {
		t.Fatalf("failed to create test video: %v", err)
	}
	return path
}
