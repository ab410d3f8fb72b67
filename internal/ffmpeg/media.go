package ffmpeg

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
)

// audioEncodingArgs converts any input to mono 16 kHz Opus.
// 24 kbps keeps 100 MiB of video well below transcription upload limits.
func audioEncodingArgs() []string {
	return []string{
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "libopus",
		"-b:a", "24k",
	}
}

// ExtractAudio writes the audio track of src to dst (an .ogg path).
func (e *Executor) ExtractAudio(ctx context.Context, ffmpegPath, src, dst string) error {
	args := append([]string{"-y", "-hide_banner", "-loglevel", "error", "-i", src}, audioEncodingArgs()...)
	args = append(args, dst)

	stderr, err := e.RunOutput(ctx, ffmpegPath, args)
	if err != nil {
		if msg := lastLine(stderr); msg != "" {
			return fmt.Errorf("%w: %v: %s", ErrAudioExtractFailed, err, msg)
		}
		return fmt.Errorf("%w: %v", ErrAudioExtractFailed, err)
	}
	return nil
}

// ProbeDuration returns the container duration of path in seconds.
// ffmpeg without an output file exits non-zero after printing the input
// header, so the exit status is ignored whenever output was produced.
func (e *Executor) ProbeDuration(ctx context.Context, ffmpegPath, path string) (float64, error) {
	output, err := e.RunOutput(ctx, ffmpegPath, []string{"-hide_banner", "-i", path})
	if err != nil && output == "" {
		return 0, fmt.Errorf("%w: %v", ErrProbeFailed, err)
	}
	return parseDuration(output)
}

// ExtractAudio writes the audio track of src to dst using the default executor.
func ExtractAudio(ctx context.Context, ffmpegPath, src, dst string) error {
	return getDefaultExecutor().ExtractAudio(ctx, ffmpegPath, src, dst)
}

// ProbeDuration returns the duration of path in seconds using the default executor.
func ProbeDuration(ctx context.Context, ffmpegPath, path string) (float64, error) {
	return getDefaultExecutor().ProbeDuration(ctx, ffmpegPath, path)
}

// durationRe matches ffmpeg's input header, e.g. "Duration: 00:05:23.45".
var durationRe = regexp.MustCompile(`Duration:\s*(\d+):(\d+):(\d+(?:\.\d+)?)`)

// parseDuration extracts the input duration, in seconds, from ffmpeg stderr.
func parseDuration(output string) (float64, error) {
	m := durationRe.FindStringSubmatch(output)
	if m == nil {
		return 0, fmt.Errorf("%w: no duration in ffmpeg output", ErrProbeFailed)
	}
	h, _ := strconv.Atoi(m[1])
	mm, _ := strconv.Atoi(m[2])
	sec, err := strconv.ParseFloat(m[3], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrProbeFailed, err)
	}
	return float64(h)*3600 + float64(mm)*60 + sec, nil
}
