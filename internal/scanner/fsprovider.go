package scanner

import (
	"context"
	"os"
	"path/filepath"
)

// osProvider serves the local filesystem as a file tree
type osProvider struct{}

// NewFileTreeProvider returns a provider backed by the local filesystem.
func NewFileTreeProvider() FileTreeProvider {
	return osProvider{}
}

func (osProvider) List(_ context.Context, locator string) ([]Entry, error) {
	dirEntries, err := os.ReadDir(locator)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, e := range dirEntries {
		entries = append(entries, Entry{
			Name:    e.Name(),
			Locator: filepath.Join(locator, e.Name()),
			IsDir:   e.IsDir(),
		})
	}
	return entries, nil
}
