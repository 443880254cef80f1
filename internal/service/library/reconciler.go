package library

import (
	"path"

	"github.com/antzucaro/matchr"
	"github.com/prateektimer/course-library/internal/model"
	"github.com/prateektimer/course-library/internal/scanner"
	"go-micro.dev/v4/logger"
)

// renameDistance is the Levenshtein threshold below which a removed/added
// course pair is reported as a probable rename. Diagnostics only, identity is
// never correlated fuzzily.
const renameDistance = 5

// mergeResult is the outcome of reconciling a scan against persisted state
type mergeResult struct {
	// Courses is the merged library in scan order, ids and completion
	// flags carried over wherever a correlation was found
	Courses []*model.Course

	// Added and Updated are course ids for change notifications; a
	// matched course is Updated only if its content actually differs
	Added   []model.ID
	Updated []model.ID

	// Removed are persisted course ids with no matching candidate
	Removed []model.ID

	// StaleOwners are ids whose cached thumbnails must be invalidated:
	// removed courses and every video that disappeared
	StaleOwners []model.ID
}

// reconcile merges a freshly scanned candidate library with the persisted
// one. Names are the only durable correlation key across scans: a candidate
// course adopts the id of the persisted course with the same name, and within
// a matched course a video adopts id and completion of the persisted video
// with the same locator (or, for providers with unstable locators, the same
// base filename). Everything else gets fresh identity.
func reconcile(candidates []scanner.CandidateCourse, persisted []*model.Course) mergeResult {
	result := mergeResult{}

	byName := make(map[string]*model.Course, len(persisted))
	for _, course := range persisted {
		byName[course.Name] = course
	}

	matched := make(map[model.ID]struct{}, len(persisted))
	for i := range candidates {
		candidate := &candidates[i]

		previous := byName[candidate.Name]
		course := mergeCourse(candidate, previous)
		result.Courses = append(result.Courses, course)

		if previous == nil {
			result.Added = append(result.Added, course.ID)
			continue
		}

		matched[previous.ID] = struct{}{}
		if changed(previous, course) {
			result.Updated = append(result.Updated, course.ID)
		}
		for _, stale := range staleVideos(previous, course) {
			result.StaleOwners = append(result.StaleOwners, stale)
		}
	}

	for _, course := range persisted {
		if _, ok := matched[course.ID]; ok {
			continue
		}
		result.Removed = append(result.Removed, course.ID)
		result.StaleOwners = append(result.StaleOwners, course.ID)
		for _, video := range course.Videos {
			result.StaleOwners = append(result.StaleOwners, video.ID)
		}
		reportProbableRename(course.Name, candidates, byName)
	}

	return result
}

// mergeCourse builds the merged course record, reusing identity and user
// state of previous where videos correlate.
func mergeCourse(candidate *scanner.CandidateCourse, previous *model.Course) *model.Course {
	course := &model.Course{
		Name: candidate.Name,
	}

	byLocator := map[string]*model.Video{}
	byFileName := map[string]*model.Video{}
	if previous != nil {
		course.ID = previous.ID
		course.ThumbnailPath = previous.ThumbnailPath
		for i := range previous.Videos {
			video := &previous.Videos[i]
			byLocator[video.Locator] = video
			byFileName[path.Base(video.Locator)] = video
		}
	} else {
		course.ID = model.NewID()
	}

	course.Videos = make([]model.Video, 0, len(candidate.Videos))
	for position, cv := range candidate.Videos {
		video := model.Video{
			CourseID: course.ID,
			Locator:  cv.Locator,
			Position: position,
		}

		match := byLocator[cv.Locator]
		if match == nil {
			match = byFileName[cv.Name]
		}
		if match != nil {
			video.ID = match.ID
			video.IsComplete = match.IsComplete
		} else {
			video.ID = model.NewID()
		}

		course.Videos = append(course.Videos, video)
	}

	return course
}

// changed reports whether a matched course differs from its previous record
// in anything worth a notification.
func changed(previous, merged *model.Course) bool {
	if len(previous.Videos) != len(merged.Videos) {
		return true
	}
	for i := range merged.Videos {
		p, m := &previous.Videos[i], &merged.Videos[i]
		if p.ID != m.ID || p.Locator != m.Locator || p.Position != m.Position {
			return true
		}
	}
	return false
}

// staleVideos lists previous videos which no longer exist in the merged
// course.
func staleVideos(previous, merged *model.Course) []model.ID {
	kept := make(map[model.ID]struct{}, len(merged.Videos))
	for i := range merged.Videos {
		kept[merged.Videos[i].ID] = struct{}{}
	}

	var stale []model.ID
	for i := range previous.Videos {
		if _, ok := kept[previous.Videos[i].ID]; !ok {
			stale = append(stale, previous.Videos[i].ID)
		}
	}
	return stale
}

// reportProbableRename logs when a removed course is suspiciously close to a
// brand-new candidate. A rename on disk is delete+add and resets progress,
// which is worth surfacing in diagnostics.
func reportProbableRename(removed string, candidates []scanner.CandidateCourse, byName map[string]*model.Course) {
	for i := range candidates {
		name := candidates[i].Name
		if _, existed := byName[name]; existed {
			continue
		}
		if matchr.Levenshtein(removed, name) <= renameDistance {
			logger.Infof("Course '%s' looks renamed to '%s', progress starts over", removed, name)
			return
		}
	}
}
