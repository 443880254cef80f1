package library

import (
	"context"
	"errors"
	"fmt"

	"github.com/prateektimer/course-library/internal/model"
	"github.com/prateektimer/course-library/internal/notify"
	"github.com/prateektimer/course-library/internal/schedule"
	"go-micro.dev/v4/logger"
)

const scanGroup = "scan"
const prewarmGroup = "prewarm"

// scheduleScan supersedes any scan in flight and queues a new one. The old
// scan may still be running, its merge is discarded at the commit step.
func (s *Service) scheduleScan(root string) {
	gen := s.scanGen.Add(1)
	s.sched.Cancel(prewarmGroup)
	s.sched.Cancel(scanGroup)

	task := schedule.Task{
		Group: scanGroup,
		Fn: func(ctx context.Context) schedule.Result {
			if err := s.runScan(ctx, gen, root); err != nil {
				logger.Errorf("Scan of '%s' failed: %s", root, err)
				// a failed commit is usually a transient database
				// problem, the merge is worth redoing
				if errors.Is(err, ErrSyncFailed) {
					return schedule.Result{Result: schedule.OpResultRetry}
				}
			}
			return schedule.Result{Result: schedule.OpResultDone}
		},
	}
	s.sched.Add(task.Immediately())
}

// runScan walks the root, reconciles the candidates against persisted state
// and commits the merge, unless a newer scan superseded this one.
func (s *Service) runScan(ctx context.Context, gen uint64, root string) error {
	candidates, err := s.scan.Scan(ctx, root)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrScanFailed, err)
	}

	persisted, err := s.db.ListCourses(ctx)
	if err != nil {
		return fmt.Errorf("%w: load persisted library: %s", ErrScanFailed, err)
	}

	merge := reconcile(candidates, persisted)

	// check-in: an abandoned scan must not commit on top of a newer one
	if s.scanGen.Load() != gen {
		logger.Infof("Scan of '%s' superseded, merge discarded", root)
		return nil
	}

	if err = s.commit(ctx, &merge); err != nil {
		return err
	}

	logger.Infof("Library synchronized: %d courses (%d added, %d updated, %d removed)",
		len(merge.Courses), len(merge.Added), len(merge.Updated), len(merge.Removed))

	s.notifyMerge(ctx, &merge)
	s.broadcast(ctx)
	s.schedulePrewarm(&merge)
	return nil
}

// commit writes the merged library at course granularity: a course and its
// videos commit together, courses strictly before their videos, so no video
// ever references an uncommitted course. A failed course write aborts the
// rest of the merge, committed courses stay and the next scan repairs the
// difference by name rematch.
func (s *Service) commit(ctx context.Context, merge *mergeResult) error {
	for _, course := range merge.Courses {
		if err := s.commitCourse(ctx, course); err != nil {
			return fmt.Errorf("%w: course '%s': %s", ErrSyncFailed, course.Name, err)
		}
	}

	for _, id := range merge.Removed {
		unlock := s.lk.Lock(id)
		err := s.db.DeleteCourses(ctx, []model.ID{id})
		unlock.Unlock()
		if err != nil {
			return fmt.Errorf("%w: remove course %s: %s", ErrSyncFailed, id, err)
		}
	}

	for _, owner := range merge.StaleOwners {
		s.th.Invalidate(owner)
	}
	return nil
}

func (s *Service) commitCourse(ctx context.Context, course *model.Course) error {
	// the course lock keeps a concurrent completion toggle from
	// interleaving with the rewrite of its videos
	unlock, err := s.lk.ContextLock(ctx, course.ID)
	if err != nil {
		return err
	}
	defer unlock.Unlock()

	if err = s.db.UpsertCourses(ctx, []*model.Course{course}); err != nil {
		return err
	}
	return s.db.UpsertVideos(ctx, course.Videos)
}

// notifyMerge fires one event per affected entity
func (s *Service) notifyMerge(ctx context.Context, merge *mergeResult) {
	for _, id := range merge.Added {
		s.pub.Publish(ctx, notify.Event{Kind: notify.KindCourseAdded, CourseID: id.String()})
	}
	for _, id := range merge.Updated {
		s.pub.Publish(ctx, notify.Event{Kind: notify.KindCourseUpdated, CourseID: id.String()})
	}
	for _, id := range merge.Removed {
		s.pub.Publish(ctx, notify.Event{Kind: notify.KindCourseRemoved, CourseID: id.String()})
	}
}

// schedulePrewarm queues idle-time thumbnail generation for every merged
// course, so the first library screen has images ready. Failures are soft
// and not retried.
func (s *Service) schedulePrewarm(merge *mergeResult) {
	for _, course := range merge.Courses {
		if len(course.Videos) == 0 {
			continue
		}
		id, locator, name := course.ID, course.Videos[0].Locator, course.Name

		task := schedule.Task{
			Group: prewarmGroup,
			Fn: func(ctx context.Context) schedule.Result {
				path, err := s.th.GetOrCreate(ctx, id, locator)
				if err != nil {
					logger.Debugf("Prewarm thumbnail of '%s' failed: %s", name, err)
					return schedule.Result{Result: schedule.OpResultDone}
				}
				if err = s.db.SetCourseThumbnail(ctx, id, path); err != nil {
					logger.Warnf("Store thumbnail path of '%s' failed: %s", name, err)
				}
				return schedule.Result{Result: schedule.OpResultDone}
			},
		}
		s.sched.Add(task.WhenIdle())
	}
}
