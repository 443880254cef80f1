package library

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/prateektimer/course-library/internal/api"
	"github.com/prateektimer/course-library/internal/lock"
	"github.com/prateektimer/course-library/internal/model"
	"github.com/prateektimer/course-library/internal/notify"
	"github.com/prateektimer/course-library/internal/thumbs"
	"go-micro.dev/v4/logger"
	"google.golang.org/protobuf/types/known/emptypb"
)

// Service is the library API handler and the owner of scan-and-merge cycles
type Service struct {
	db           Database
	scan         Scanner
	th           Thumbnails
	placeholders Placeholders
	sched        Scheduler
	lk           lock.Locker
	pub          Publisher

	// scanGen invalidates superseded scans at their commit step
	scanGen atomic.Uint64

	mu        sync.Mutex
	observers map[uint64]chan []*model.Course
	nextObs   uint64
}

// Settings holds all dependencies of service
type Settings struct {
	Database     Database
	Scanner      Scanner
	Thumbnails   Thumbnails
	Placeholders Placeholders
	Scheduler    Scheduler
	Locker       lock.Locker
	Publisher    Publisher
}

func NewService(settings Settings) *Service {
	return &Service{
		db:           settings.Database,
		scan:         settings.Scanner,
		th:           settings.Thumbnails,
		placeholders: settings.Placeholders,
		sched:        settings.Scheduler,
		lk:           settings.Locker,
		pub:          settings.Publisher,
		observers:    map[uint64]chan []*model.Course{},
	}
}

// Initialize restores the persisted library state and, if a root folder was
// selected before, queues a synchronization against it.
func (s *Service) Initialize(ctx context.Context) error {
	courses, err := s.db.ListCourses(ctx)
	if err != nil {
		return fmt.Errorf("load courses failed: %w", err)
	}
	for _, course := range courses {
		logger.Debugf("Course found: %s (%d videos)", course.Name, len(course.Videos))
	}
	logger.Infof("Library loaded: %d courses", len(courses))

	root, err := s.db.GetRootLocation(ctx)
	if err != nil {
		return fmt.Errorf("load root location failed: %w", err)
	}
	if root == nil {
		logger.Warn("No root folder selected yet")
		return nil
	}

	s.scheduleScan(root.Locator)
	return nil
}

// SelectRoot replaces the granted root folder and kicks off a scan of it.
func (s *Service) SelectRoot(ctx context.Context, req *api.SelectRootRequest, _ *emptypb.Empty) error {
	logger.Infof("SelectRoot: %s", req.Locator)

	if err := s.db.SetRootLocation(ctx, req.Locator); err != nil {
		err = fmt.Errorf("store root location failed: %w", err)
		logger.Error(err)
		return err
	}
	s.pub.Publish(ctx, notify.Event{Kind: notify.KindRootChanged})

	s.scheduleScan(req.Locator)
	return nil
}

// StartScan schedules a scan of the current root. A scan already in flight is
// superseded: its merge will be discarded at the commit step.
func (s *Service) StartScan(ctx context.Context, _ *api.StartScanRequest, _ *emptypb.Empty) error {
	logger.Info("StartScan")

	root, err := s.db.GetRootLocation(ctx)
	if err != nil {
		err = fmt.Errorf("load root location failed: %w", err)
		logger.Error(err)
		return err
	}
	if root == nil {
		return ErrNoRoot
	}

	s.scheduleScan(root.Locator)
	return nil
}

// ListCourses returns the whole library in natural order.
func (s *Service) ListCourses(ctx context.Context, _ *api.ListCoursesRequest, resp *api.ListCoursesResponse) error {
	courses, err := s.db.ListCourses(ctx)
	if err != nil {
		err = fmt.Errorf("load courses failed: %w", err)
		logger.Error(err)
		return err
	}

	resp.Courses = make([]*api.Course, 0, len(courses))
	for _, course := range courses {
		resp.Courses = append(resp.Courses, courseToAPI(course))
	}
	return nil
}

// GetCourse returns one course, absence is a nil Course, not an error.
func (s *Service) GetCourse(ctx context.Context, req *api.GetCourseRequest, resp *api.GetCourseResponse) error {
	course, err := s.db.GetCourse(ctx, model.ID(req.Id))
	if err != nil {
		err = fmt.Errorf("load course failed: %w", err)
		logger.Error(err)
		return err
	}
	if course != nil {
		resp.Course = courseToAPI(course)
	}
	return nil
}

// SetVideoCompletion flips the watched flag of a video. Safe against a merge
// running concurrently: the owning course is locked for the duration of the
// write.
func (s *Service) SetVideoCompletion(ctx context.Context, req *api.SetVideoCompletionRequest, _ *emptypb.Empty) error {
	logger.Infof("SetVideoCompletion: %s/%s -> %v", req.CourseId, req.VideoId, req.IsComplete)

	courseID := model.ID(req.CourseId)
	videoID := model.ID(req.VideoId)

	unlock, err := s.lk.ContextLock(ctx, courseID)
	if err != nil {
		return err
	}
	defer unlock.Unlock()

	video, err := s.db.GetVideo(ctx, videoID)
	if err != nil {
		err = fmt.Errorf("load video failed: %w", err)
		logger.Error(err)
		return err
	}
	if video == nil || video.CourseID != courseID {
		return ErrNotFound
	}

	if err = s.db.UpdateVideoCompletion(ctx, videoID, req.IsComplete); err != nil {
		err = fmt.Errorf("update completion failed: %w", err)
		logger.Error(err)
		return err
	}

	s.pub.Publish(ctx, notify.Event{
		Kind:     notify.KindVideoCompletion,
		CourseID: courseID.String(),
		VideoID:  videoID.String(),
	})
	s.broadcast(ctx)
	return nil
}

// GetThumbnail resolves the cached image of an owner, computing it on first
// request. On soft failure the response carries a rendered placeholder
// instead of a path.
func (s *Service) GetThumbnail(ctx context.Context, req *api.GetThumbnailRequest, resp *api.GetThumbnailResponse) error {
	path, err := s.th.GetOrCreate(ctx, model.ID(req.OwnerId), req.Locator)
	if err == nil {
		resp.Path = path
		return nil
	}
	if !errors.Is(err, thumbs.ErrNoThumbnail) {
		logger.Errorf("Thumbnail of %s failed: %s", req.OwnerId, err)
		return err
	}

	logger.Warnf("Thumbnail of %s unavailable: %s", req.OwnerId, err)
	placeholder, err := s.placeholders.Render(model.ID(req.OwnerId), req.Name)
	if err != nil {
		logger.Warnf("Placeholder of %s failed: %s", req.OwnerId, err)
		return nil
	}
	resp.Placeholder = placeholder
	return nil
}

// Observe subscribes to merged-library updates. The returned cancel func must
// be called to release the subscription. Slow consumers miss intermediate
// snapshots, never get partial ones.
func (s *Service) Observe() (<-chan []*model.Course, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextObs
	s.nextObs++
	ch := make(chan []*model.Course, 1)
	s.observers[id] = ch

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.observers[id]; ok {
			delete(s.observers, id)
			close(ch)
		}
	}
}

// broadcast pushes a fresh ordered snapshot to every observer.
func (s *Service) broadcast(ctx context.Context) {
	courses, err := s.db.ListCourses(ctx)
	if err != nil {
		logger.Warnf("Load courses for broadcast failed: %s", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.observers {
		select {
		case ch <- courses:
		default:
			// replace the stale pending snapshot
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- courses:
			default:
			}
		}
	}
}

func courseToAPI(course *model.Course) *api.Course {
	result := &api.Course{
		Id:            course.ID.String(),
		Name:          course.Name,
		ThumbnailPath: course.ThumbnailPath,
		Videos:        make([]*api.Video, 0, len(course.Videos)),
	}
	for i := range course.Videos {
		video := &course.Videos[i]
		result.Videos = append(result.Videos, &api.Video{
			Id:         video.ID.String(),
			Locator:    video.Locator,
			Position:   video.Position,
			IsComplete: video.IsComplete,
		})
	}
	return result
}
