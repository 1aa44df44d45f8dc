package ports

// FileSystem is how the CLI, the export stage, the debug sink and the
// summary writer touch disk. Input APNGs are read whole; exported frames,
// contact sheets and summaries are written whole.
type FileSystem interface {
	// ReadFile reads the entire contents of a file.
	ReadFile(path string) ([]byte, error)

	// WriteFile replaces path with data. Implementations should make the
	// write atomic so a frame or sheet is never seen half written, and
	// create missing parent directories.
	WriteFile(path string, data []byte) error

	// MkdirAll creates a directory and all parent directories.
	MkdirAll(path string) error

	// Exists reports whether a file or directory exists.
	Exists(path string) (bool, error)

	// Remove deletes a file or empty directory.
	Remove(path string) error
}
