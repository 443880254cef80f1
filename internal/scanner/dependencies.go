package scanner

import "context"

// Entry is a single child of a folder as reported by a file tree provider
type Entry struct {
	// Name is the display name of the entry
	Name string

	// Locator is an opaque reference usable for listing (folders) or
	// playback and frame extraction (files)
	Locator string

	IsDir bool
}

// FileTreeProvider abstracts the file tree being scanned
type FileTreeProvider interface {
	List(ctx context.Context, locator string) ([]Entry, error)
}
