package cli

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alnah/go-speechcut/internal/archive"
	"github.com/alnah/go-speechcut/internal/pipeline"
	"github.com/alnah/go-speechcut/internal/segment"
)

// ---------------------------------------------------------------------------
// renderReport
// ---------------------------------------------------------------------------

func TestRenderReport(t *testing.T) {
	t.Parallel()

	rep := pipeline.Report{
		JobID:          "b3c1",
		Input:          "talk.mp4",
		InputBytes:     5 << 20,
		SourceDuration: 120,
		Language:       "en",
		Words:          240,
		SpeechTime:     90,
		Extraction: segment.Result{
			Segments: []segment.Segment{{Index: 1}, {Index: 2}, {Index: 4}},
			Failed:   []segment.Failure{{Index: 3, Err: errors.New("x")}},
			Skipped:  []int{5},
		},
		Archive: archive.Info{Path: "speech_segments.zip", Files: 3, Bytes: 3 << 20},
		Elapsed: 1500 * time.Millisecond,
	}

	tests := []struct {
		name   string
		styled bool
		border string
	}{
		{name: "plain", styled: false, border: "+"},
		{name: "styled", styled: true, border: "╭"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out := renderReport(rep, tt.styled)
			for _, want := range []string{
				"talk.mp4 (5.0 MiB)",
				"3 of 4 written",
				"01:30.000 / 02:00.000 (75.0%)",
				"speech_segments.zip (3 files, 3.0 MiB)",
				"1.5s",
				"b3c1",
				tt.border,
			} {
				if !strings.Contains(out, want) {
					t.Errorf("renderReport() missing %q:\n%s", want, out)
				}
			}
		})
	}
}

func TestRenderReport_EmptyRun(t *testing.T) {
	t.Parallel()

	out := renderReport(pipeline.Report{Input: "quiet.mp4"}, false)
	for _, want := range []string{"0 of 0 written", "none", "00:00.000"} {
		if !strings.Contains(out, want) {
			t.Errorf("renderReport() missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "%") {
		t.Errorf("renderReport() shows a ratio without a source duration:\n%s", out)
	}
}

func TestIndexList(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   []int
		want string
	}{
		{nil, "none"},
		{[]int{7}, "7"},
		{[]int{1, 3, 12}, "1, 3, 12"},
	}
	for _, tt := range tests {
		if got := indexList(tt.in); got != tt.want {
			t.Errorf("indexList(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
