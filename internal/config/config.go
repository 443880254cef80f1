package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Configuration represents entire service configuration
type Configuration struct {
	// MongoDB connection string
	Database string `yaml:"database"`

	// Directories are paths to generated content
	Directories Directories `yaml:"directories"`

	// Scan controls how course folders are interpreted
	Scan Scan `yaml:"scan"`

	// Thumbnails controls generation of cached preview images
	Thumbnails Thumbnails `yaml:"thumbnails"`
}

type Directories struct {
	// Thumbnails is where generated images are stored
	Thumbnails string `yaml:"thumbnails"`

	// CacheIndex is the path of the thumbnail index database
	CacheIndex string `yaml:"cache-index"`
}

type Scan struct {
	// Extensions are file suffixes considered playable video, compared
	// case-insensitively
	Extensions []string `yaml:"extensions"`
}

type Thumbnails struct {
	// Ffmpeg is the frame extractor binary
	Ffmpeg string `yaml:"ffmpeg"`

	// Font is an optional TTF used for placeholder images
	Font string `yaml:"font"`
}

var config Configuration

// Load opens and parses configuration file
func Load(configFilePath string) error {
	data, err := os.ReadFile(configFilePath)
	if err != nil {
		return fmt.Errorf("read configuration failed: %w", err)
	}

	loaded := Configuration{}
	if err = yaml.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("parse configuration failed: %w", err)
	}
	loaded.setDefaults()

	config = loaded
	return nil
}

// Config returns loaded configuration
func Config() Configuration {
	return config
}

func (c *Configuration) setDefaults() {
	if len(c.Scan.Extensions) == 0 {
		c.Scan.Extensions = []string{".mp4"}
	}
	for i, ext := range c.Scan.Extensions {
		if !strings.HasPrefix(ext, ".") {
			c.Scan.Extensions[i] = "." + ext
		}
	}
	if c.Thumbnails.Ffmpeg == "" {
		c.Thumbnails.Ffmpeg = "ffmpeg"
	}
}
