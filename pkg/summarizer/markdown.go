package summarizer

import (
	"fmt"
	"strings"

	"github.com/user/apngview/pkg/apng"
)

// MarkdownFormatter renders a Summary as a Markdown document.
type MarkdownFormatter struct {
	translate func(string) string
	version   string
}

// MarkdownOption configures a MarkdownFormatter.
type MarkdownOption func(*MarkdownFormatter)

// WithTranslator sets the function used to translate headings and labels.
func WithTranslator(t func(string) string) MarkdownOption {
	return func(f *MarkdownFormatter) {
		f.translate = t
	}
}

// WithVersion adds the tool version to the footer.
func WithVersion(v string) MarkdownOption {
	return func(f *MarkdownFormatter) {
		f.version = v
	}
}

// NewMarkdownFormatter creates a MarkdownFormatter.
func NewMarkdownFormatter(opts ...MarkdownOption) *MarkdownFormatter {
	f := &MarkdownFormatter{
		translate: func(s string) string { return s },
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format implements Formatter.
func (f *MarkdownFormatter) Format(s *Summary) string {
	t := f.translate
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", t("Animation Summary"))

	if s.Source.Path != "" {
		fmt.Fprintf(&b, "## %s\n\n", t("Source"))
		fmt.Fprintf(&b, "| %s | %s |\n|---|---|\n", t("Item"), t("Value"))
		fmt.Fprintf(&b, "| %s | %s |\n", t("File"), s.Source.Path)
		fmt.Fprintf(&b, "| %s | %s |\n\n", t("File Size"), formatBytes(s.Source.FileSize))
	}

	fmt.Fprintf(&b, "## %s\n\n", t("Image"))
	fmt.Fprintf(&b, "| %s | %s |\n|---|---|\n", t("Item"), t("Value"))
	fmt.Fprintf(&b, "| %s | %d x %d |\n", t("Canvas"), s.Image.Width, s.Image.Height)
	fmt.Fprintf(&b, "| %s | %d |\n", t("Bit Depth"), s.Image.BitDepth)
	fmt.Fprintf(&b, "| %s | %s |\n", t("Animated"), t(yesNo(s.Image.Animated)))
	fmt.Fprintf(&b, "| %s | %d |\n", t("Frames"), s.Image.FrameCount)
	if s.Image.FirstFrameHidden {
		fmt.Fprintf(&b, "| %s | %s |\n", t("Default Image"), t("hidden"))
	}
	if s.Image.Animated {
		fmt.Fprintf(&b, "| %s | %s |\n", t("Repeat"), formatRepeat(s.Image.RepeatCount, t))
		fmt.Fprintf(&b, "| %s | %d ms |\n", t("Duration"), s.Image.TotalDurationMs)
	}
	b.WriteString("\n")

	if len(s.Frames) > 0 {
		fmt.Fprintf(&b, "## %s\n\n", t("Frames"))
		fmt.Fprintf(&b, "| # | %s | %s | %s | %s | %s |\n", t("Offset"), t("Size"), t("Delay"), t("Dispose"), t("Blend"))
		b.WriteString("|---|---|---|---|---|---|\n")
		for _, fr := range s.Frames {
			index := fmt.Sprintf("%d", fr.Index)
			if fr.Hidden {
				index += "*"
			}
			fmt.Fprintf(&b, "| %s | %d,%d | %dx%d | %s | %s | %s |\n",
				index, fr.X, fr.Y, fr.Width, fr.Height, formatDelay(fr.DurationMs, t), fr.Dispose, fr.Blend)
		}
		b.WriteString("\n")
	}

	if s.Decode.Streaming {
		fmt.Fprintf(&b, "## %s\n\n", t("Decode"))
		fmt.Fprintf(&b, "| %s | %s |\n|---|---|\n", t("Item"), t("Value"))
		fmt.Fprintf(&b, "| %s | %d |\n", t("Window"), s.Decode.WindowSize)
		fmt.Fprintf(&b, "| %s | %d |\n", t("Peak frames"), s.Decode.PeakFrames)
		fmt.Fprintf(&b, "| %s | %d |\n", t("Restarts"), s.Decode.Restarts)
		fmt.Fprintf(&b, "| %s | %d ms |\n\n", t("Elapsed"), s.Decode.ElapsedMs)
	}

	footer := fmt.Sprintf("%s: %s", t("Generated"), s.GeneratedAt.Format("2006-01-02 15:04:05"))
	if f.version != "" {
		footer += fmt.Sprintf(" (apngview %s)", f.version)
	}
	fmt.Fprintf(&b, "---\n\n%s\n", footer)

	return b.String()
}

// TextFormatter renders a Summary as aligned plain text for terminals.
type TextFormatter struct{}

// NewTextFormatter creates a TextFormatter.
func NewTextFormatter() *TextFormatter {
	return &TextFormatter{}
}

// Format implements Formatter.
func (f *TextFormatter) Format(s *Summary) string {
	var b strings.Builder
	id := func(s string) string { return s }

	if s.Source.Path != "" {
		fmt.Fprintf(&b, "%-10s %s (%s)\n", "File:", s.Source.Path, formatBytes(s.Source.FileSize))
	}
	fmt.Fprintf(&b, "%-10s %dx%d, %d-bit\n", "Canvas:", s.Image.Width, s.Image.Height, s.Image.BitDepth)
	if s.Decode.Streaming {
		fmt.Fprintf(&b, "%-10s window %d, peak %d frames, %d restarts\n",
			"Stream:", s.Decode.WindowSize, s.Decode.PeakFrames, s.Decode.Restarts)
	}
	if !s.Image.Animated {
		fmt.Fprintf(&b, "%-10s still image\n", "Frames:")
		return b.String()
	}

	frames := fmt.Sprintf("%d", s.Image.FrameCount)
	if s.Image.FirstFrameHidden {
		frames += " (first is hidden)"
	}
	fmt.Fprintf(&b, "%-10s %s\n", "Frames:", frames)
	fmt.Fprintf(&b, "%-10s %s\n", "Repeat:", formatRepeat(s.Image.RepeatCount, id))
	fmt.Fprintf(&b, "%-10s %d ms\n", "Duration:", s.Image.TotalDurationMs)

	for _, fr := range s.Frames {
		mark := " "
		if fr.Hidden {
			mark = "*"
		}
		fmt.Fprintf(&b, "%s%4d  %4d,%-4d %4dx%-4d %8s  %-10s %s\n",
			mark, fr.Index, fr.X, fr.Y, fr.Width, fr.Height, formatDelay(fr.DurationMs, id), fr.Dispose, fr.Blend)
	}
	return b.String()
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func formatRepeat(n int, t func(string) string) string {
	if n == apng.RepeatInfinite {
		return t("infinite")
	}
	return fmt.Sprintf("%d", n)
}

func formatDelay(ms int, t func(string) string) string {
	if ms < 0 {
		return t("infinite")
	}
	return fmt.Sprintf("%d ms", ms)
}

// formatBytes renders a byte count with a binary unit.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit && exp < 2; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(n)/float64(div), "KMG"[exp])
}

var (
	_ Formatter = (*MarkdownFormatter)(nil)
	_ Formatter = (*TextFormatter)(nil)
)
