// Package storage owns the on-disk layout of generated content: where
// thumbnail images and the cache index live.
package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prateektimer/course-library/internal/config"
	"github.com/prateektimer/course-library/internal/model"
)

const mediaPerms = 0755

// Manager is responsible for management of generated content on a disk
type Manager struct {
	dirs config.Directories
}

// NewManager creates Manager and base directory layout
func NewManager(dirs config.Directories) (*Manager, error) {
	m := &Manager{
		dirs: dirs,
	}

	if err := os.MkdirAll(dirs.Thumbnails, mediaPerms); err != nil {
		return nil, fmt.Errorf("create thumbnails directory failed: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(dirs.CacheIndex), mediaPerms); err != nil {
		return nil, fmt.Errorf("create cache index directory failed: %w", err)
	}

	return m, nil
}

// ThumbnailPath composes the deterministic image path of an owner. The same
// owner always maps to the same file.
func (m *Manager) ThumbnailPath(ownerID model.ID) string {
	return filepath.Join(m.dirs.Thumbnails, fmt.Sprintf("%s_thumb.png", ownerID))
}

// PlaceholderPath composes the path of a generated placeholder image.
func (m *Manager) PlaceholderPath(ownerID model.ID) string {
	return filepath.Join(m.dirs.Thumbnails, fmt.Sprintf("%s_placeholder.png", ownerID))
}

// IndexPath is the location of the thumbnail index database.
func (m *Manager) IndexPath() string {
	return m.dirs.CacheIndex
}
