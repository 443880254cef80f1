package library

import (
	"context"

	"github.com/prateektimer/course-library/internal/model"
	"github.com/prateektimer/course-library/internal/notify"
	"github.com/prateektimer/course-library/internal/scanner"
	"github.com/prateektimer/course-library/internal/schedule"
)

// Database requires some methods for load and store library data
type Database interface {
	ListCourses(ctx context.Context) ([]*model.Course, error)
	GetCourse(ctx context.Context, id model.ID) (*model.Course, error)
	UpsertCourses(ctx context.Context, courses []*model.Course) error
	UpsertVideos(ctx context.Context, videos []model.Video) error
	DeleteCourses(ctx context.Context, ids []model.ID) error
	SetCourseThumbnail(ctx context.Context, id model.ID, path string) error

	GetVideo(ctx context.Context, id model.ID) (*model.Video, error)
	UpdateVideoCompletion(ctx context.Context, id model.ID, isComplete bool) error

	SetRootLocation(ctx context.Context, locator string) error
	GetRootLocation(ctx context.Context) (*model.RootLocation, error)
}

// Scanner produces an ordered candidate library from a root folder
type Scanner interface {
	Scan(ctx context.Context, root string) ([]scanner.CandidateCourse, error)
}

// Thumbnails is the derived-image cache keyed by owner id
type Thumbnails interface {
	GetOrCreate(ctx context.Context, ownerID model.ID, locator string) (string, error)
	Invalidate(ownerID model.ID)
}

// Placeholders renders stand-in images for owners without a thumbnail
type Placeholders interface {
	Render(ownerID model.ID, name string) (string, error)
}

// Scheduler runs background tasks with group cancellation
type Scheduler interface {
	Add(t *schedule.Task) bool
	Cancel(group string)
}

// Publisher delivers change events to out-of-process consumers
type Publisher interface {
	Publish(ctx context.Context, event notify.Event)
}
