package summarizer

import (
	"strings"
	"testing"
	"time"

	"github.com/user/apngview/pkg/apng"
)

func animatedSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		Source:      SourceInfo{Path: "spinner.png", FileSize: 1024 * 1024},
		Image: ImageInfo{
			Width: 10, Height: 10, BitDepth: 8, Animated: true,
			FrameCount: 3, FirstFrameHidden: true,
			RepeatCount: apng.RepeatInfinite, TotalDurationMs: 300,
		},
		Frames: []FrameInfo{
			{Index: 0, Width: 10, Height: 10, DurationMs: 100, Dispose: "none", Blend: "source", Hidden: true},
			{Index: 1, X: 2, Y: 2, Width: 6, Height: 6, DurationMs: 200, Dispose: "background", Blend: "over"},
			{Index: 2, Width: 10, Height: 10, DurationMs: 100, Dispose: "previous", Blend: "source"},
		},
		Decode: DecodeInfo{Streaming: true, WindowSize: 2, PeakFrames: 2, Restarts: 1, ElapsedMs: 12},
	}
}

func TestMarkdownFormatter_Format_Basic(t *testing.T) {
	result := NewMarkdownFormatter().Format(animatedSummary())

	checks := []string{
		"# Animation Summary",
		"spinner.png",
		"1.00 MB",
		"| Canvas | 10 x 10 |",
		"| Frames | 3 |",
		"| Default Image | hidden |",
		"| Repeat | infinite |",
		"| Duration | 300 ms |",
		"| 0* | 0,0 | 10x10 | 100 ms | none | source |",
		"| 1 | 2,2 | 6x6 | 200 ms | background | over |",
		"| Window | 2 |",
		"| Peak frames | 2 |",
		"| Restarts | 1 |",
		"2024-01-15 10:30:00",
	}
	for _, check := range checks {
		if !strings.Contains(result, check) {
			t.Errorf("expected output to contain %q\n%s", check, result)
		}
	}
}

func TestMarkdownFormatter_Still(t *testing.T) {
	summary := &Summary{
		GeneratedAt: time.Now(),
		Image:       ImageInfo{Width: 4, Height: 4, BitDepth: 8, FrameCount: 1},
		Frames:      []FrameInfo{{Index: 0, Width: 4, Height: 4, DurationMs: -1, Dispose: "none", Blend: "source"}},
	}

	result := NewMarkdownFormatter().Format(summary)

	if strings.Contains(result, "| Repeat |") {
		t.Error("still image should not report repeat")
	}
	if !strings.Contains(result, "| Animated | no |") {
		t.Error("expected 'Animated | no'")
	}
	if !strings.Contains(result, "| infinite |") {
		t.Error("expected infinite delay for a still frame")
	}
	if strings.Contains(result, "## Decode") {
		t.Error("decode section is only shown for streams")
	}
	if strings.Contains(result, "## Source") {
		t.Error("source section needs a path")
	}
}

func TestMarkdownFormatter_WithTranslator(t *testing.T) {
	translator := func(key string) string {
		translations := map[string]string{
			"Animation Summary": "アニメーション概要",
			"Frames":            "フレーム",
			"infinite":          "無限",
		}
		if v, ok := translations[key]; ok {
			return v
		}
		return key
	}

	result := NewMarkdownFormatter(WithTranslator(translator)).Format(animatedSummary())

	for _, want := range []string{"アニメーション概要", "## フレーム", "| Repeat | 無限 |"} {
		if !strings.Contains(result, want) {
			t.Errorf("expected translated %q", want)
		}
	}
}

func TestMarkdownFormatter_WithVersion(t *testing.T) {
	result := NewMarkdownFormatter(WithVersion("v1.2.0")).Format(animatedSummary())

	if !strings.Contains(result, "v1.2.0") {
		t.Error("expected output to contain version 'v1.2.0'")
	}
}

func TestTextFormatter_Format(t *testing.T) {
	result := NewTextFormatter().Format(animatedSummary())

	checks := []string{
		"spinner.png (1.00 MB)",
		"10x10, 8-bit",
		"3 (first is hidden)",
		"Repeat:    infinite",
		"Duration:  300 ms",
		"Stream:    window 2, peak 2 frames, 1 restarts",
		"background",
	}
	for _, check := range checks {
		if !strings.Contains(result, check) {
			t.Errorf("expected output to contain %q\n%s", check, result)
		}
	}
	if lines := strings.Count(result, "\n"); lines != 9 {
		t.Errorf("expected 9 lines, got %d\n%s", lines, result)
	}
	if !strings.Contains(result, "*   0") {
		t.Errorf("expected hidden frame marker\n%s", result)
	}
}

func TestTextFormatter_Still(t *testing.T) {
	summary := &Summary{Image: ImageInfo{Width: 4, Height: 4, BitDepth: 16, FrameCount: 1}}
	result := NewTextFormatter().Format(summary)

	if !strings.Contains(result, "still image") {
		t.Errorf("expected still image line\n%s", result)
	}
	if strings.Contains(result, "Repeat") {
		t.Error("still image should not report repeat")
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{100, "100 B"},
		{1024, "1.00 KB"},
		{1536, "1.50 KB"},
		{1024 * 1024, "1.00 MB"},
		{1024 * 1024 * 1024, "1.00 GB"},
		{1536 * 1024 * 1024, "1.50 GB"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := formatBytes(tt.bytes)
			if got != tt.want {
				t.Errorf("formatBytes(%d) = %q, want %q", tt.bytes, got, tt.want)
			}
		})
	}
}
