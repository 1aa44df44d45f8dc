package summarizer

// Formatter renders a Summary for the info command: the text formatter for
// the terminal, the Markdown formatter for --summary files.
type Formatter interface {
	Format(summary *Summary) string
}

// FormatFunc lets a plain function serve as a Formatter.
type FormatFunc func(summary *Summary) string

// Format calls f.
func (f FormatFunc) Format(summary *Summary) string {
	return f(summary)
}
