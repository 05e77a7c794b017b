package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/reab5555/AI-Data-Cleaner/internal/model"
)

// Report file names inside a report directory.
const (
	MarkdownFile = "report.md"
	JSONFile     = "report.json"
)

// SaveDir creates dir if needed and writes the Markdown and JSON reports
// into it. It returns the paths written.
func SaveDir(dir string, summary *model.Summary, version string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}

	files := []struct {
		name  string
		write func(f *os.File) Writer
	}{
		{MarkdownFile, func(f *os.File) Writer { return NewMarkdownWriter(f) }},
		{JSONFile, func(f *os.File) Writer { return NewFullJSONWriter(f, version, WithPrettyPrint()) }},
	}

	paths := make([]string, 0, len(files))
	for _, file := range files {
		path := filepath.Join(dir, file.name)
		f, err := os.Create(path) // #nosec G304 -- path is built from the report directory
		if err != nil {
			return paths, fmt.Errorf("failed to create %s: %w", path, err)
		}
		if _, err := file.write(f).Write(summary); err != nil {
			_ = f.Close()
			return paths, fmt.Errorf("failed to write %s: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return paths, fmt.Errorf("failed to close %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
