package migration

import (
	"context"
	"path"
	"sort"

	"github.com/prateektimer/course-library/internal/model"
	"github.com/prateektimer/course-library/internal/natsort"
	"go-micro.dev/v4/logger"
)

// migrateDatabaseV0ToV1 backfills the explicit playback position on video
// records created before the field existed. Order is reconstructed the same
// way a scan would produce it: natural comparison of file names.
func (m *Migrator) migrateDatabaseV0ToV1(ctx context.Context) error {
	courses, err := m.Database.ListCourses(ctx)
	if err != nil {
		return err
	}

	for _, course := range courses {
		videos := course.Videos
		sort.SliceStable(videos, func(i, j int) bool {
			return natsort.Less(path.Base(videos[i].Locator), path.Base(videos[j].Locator))
		})

		update := make([]model.Video, 0, len(videos))
		for position := range videos {
			if videos[position].Position == position {
				continue
			}
			videos[position].Position = position
			update = append(update, videos[position])
		}
		if len(update) == 0 {
			continue
		}

		if err = m.Database.UpsertVideos(ctx, update); err != nil {
			return err
		}
		logger.Infof("Course '%s': restored order of %d videos", course.Name, len(update))
	}

	return nil
}
