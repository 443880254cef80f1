package thumbs

import (
	"context"

	"github.com/prateektimer/course-library/internal/model"
)

// FrameExtractor pulls a representative still frame out of a video file
type FrameExtractor interface {
	ExtractFrame(ctx context.Context, locator string) ([]byte, error)
}

// Paths composes deterministic image locations per owner
type Paths interface {
	ThumbnailPath(ownerID model.ID) string
	PlaceholderPath(ownerID model.ID) string
	IndexPath() string
}
