package library

import (
	"testing"

	"github.com/prateektimer/course-library/internal/model"
	"github.com/prateektimer/course-library/internal/scanner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candidates(courses ...scanner.CandidateCourse) []scanner.CandidateCourse {
	return courses
}

func course(name string, videos ...string) scanner.CandidateCourse {
	c := scanner.CandidateCourse{Name: name, Locator: "root/" + name}
	for _, v := range videos {
		c.Videos = append(c.Videos, scanner.CandidateVideo{Name: v, Locator: c.Locator + "/" + v})
	}
	return c
}

func TestReconcileFreshLibrary(t *testing.T) {
	merge := reconcile(candidates(
		course("Go Basics", "01.mp4", "02.mp4"),
		course("Advanced Go", "intro.mp4"),
	), nil)

	require.Len(t, merge.Courses, 2)
	assert.Len(t, merge.Added, 2)
	assert.Empty(t, merge.Updated)
	assert.Empty(t, merge.Removed)

	basics := merge.Courses[0]
	assert.Equal(t, "Go Basics", basics.Name)
	assert.NotEmpty(t, basics.ID)
	require.Len(t, basics.Videos, 2)
	for i, video := range basics.Videos {
		assert.Equal(t, basics.ID, video.CourseID)
		assert.Equal(t, i, video.Position)
		assert.False(t, video.IsComplete)
	}
}

func TestReconcileIdempotent(t *testing.T) {
	tree := candidates(course("Go Basics", "01.mp4", "02.mp4"), course("Docker", "a.mp4"))

	first := reconcile(tree, nil)
	second := reconcile(tree, first.Courses)

	require.Len(t, second.Courses, 2)
	assert.Empty(t, second.Added)
	assert.Empty(t, second.Updated)
	assert.Empty(t, second.Removed)
	assert.Empty(t, second.StaleOwners)

	for i := range first.Courses {
		assert.Equal(t, first.Courses[i].ID, second.Courses[i].ID)
		require.Equal(t, len(first.Courses[i].Videos), len(second.Courses[i].Videos))
		for j := range first.Courses[i].Videos {
			assert.Equal(t, first.Courses[i].Videos[j].ID, second.Courses[i].Videos[j].ID)
		}
	}
}

func TestReconcileKeepsCompletion(t *testing.T) {
	tree := candidates(course("Go Basics", "01.mp4", "02.mp4"))

	first := reconcile(tree, nil)
	first.Courses[0].Videos[0].IsComplete = true
	watchedID := first.Courses[0].Videos[0].ID

	second := reconcile(tree, first.Courses)

	require.Len(t, second.Courses, 1)
	assert.Equal(t, watchedID, second.Courses[0].Videos[0].ID)
	assert.True(t, second.Courses[0].Videos[0].IsComplete)
	assert.False(t, second.Courses[0].Videos[1].IsComplete)
}

func TestReconcileRenameIsDeleteAndAdd(t *testing.T) {
	first := reconcile(candidates(course("Go Basics", "01.mp4")), nil)
	first.Courses[0].Videos[0].IsComplete = true
	oldID := first.Courses[0].ID

	second := reconcile(candidates(course("Go Basics 2024", "01.mp4")), first.Courses)

	require.Len(t, second.Courses, 1)
	renamed := second.Courses[0]
	assert.NotEqual(t, oldID, renamed.ID)
	assert.False(t, renamed.Videos[0].IsComplete)
	assert.Equal(t, []model.ID{oldID}, second.Removed)
	assert.Contains(t, second.StaleOwners, oldID)
}

func TestReconcileRemovedCourseCascades(t *testing.T) {
	first := reconcile(candidates(course("Go Basics", "01.mp4", "02.mp4"), course("Docker", "a.mp4")), nil)
	removed := first.Courses[1]

	second := reconcile(candidates(course("Go Basics", "01.mp4", "02.mp4")), first.Courses)

	assert.Equal(t, []model.ID{removed.ID}, second.Removed)
	assert.Contains(t, second.StaleOwners, removed.ID)
	for _, video := range removed.Videos {
		assert.Contains(t, second.StaleOwners, video.ID)
	}
}

func TestReconcileNewVideoInExistingCourse(t *testing.T) {
	first := reconcile(candidates(course("Go Basics", "01.mp4")), nil)
	first.Courses[0].Videos[0].IsComplete = true

	second := reconcile(candidates(course("Go Basics", "01.mp4", "02.mp4")), first.Courses)

	require.Len(t, second.Courses, 1)
	assert.Equal(t, first.Courses[0].ID, second.Courses[0].ID)
	assert.Equal(t, []model.ID{second.Courses[0].ID}, second.Updated)

	videos := second.Courses[0].Videos
	require.Len(t, videos, 2)
	assert.Equal(t, first.Courses[0].Videos[0].ID, videos[0].ID)
	assert.True(t, videos[0].IsComplete)
	assert.False(t, videos[1].IsComplete)
}

func TestReconcileRemovedVideoInvalidatesThumbnail(t *testing.T) {
	first := reconcile(candidates(course("Go Basics", "01.mp4", "02.mp4")), nil)
	droppedID := first.Courses[0].Videos[1].ID

	second := reconcile(candidates(course("Go Basics", "01.mp4")), first.Courses)

	assert.Equal(t, []model.ID{droppedID}, second.StaleOwners)
	assert.NotContains(t, second.Removed, first.Courses[0].ID)
}

func TestReconcileMatchesByFileNameWhenLocatorChanges(t *testing.T) {
	first := reconcile(candidates(course("Go Basics", "01.mp4")), nil)
	first.Courses[0].Videos[0].IsComplete = true
	// providers may issue a fresh locator on every grant
	first.Courses[0].Videos[0].Locator = "content://grant-1/Go Basics/01.mp4"

	second := reconcile(candidates(course("Go Basics", "01.mp4")), first.Courses)

	assert.Equal(t, first.Courses[0].Videos[0].ID, second.Courses[0].Videos[0].ID)
	assert.True(t, second.Courses[0].Videos[0].IsComplete)
}

func TestReconcilePositionsFollowScanOrder(t *testing.T) {
	merge := reconcile(candidates(course("Go Basics", "a.mp4", "b.mp4", "c.mp4")), nil)

	for i, video := range merge.Courses[0].Videos {
		assert.Equal(t, i, video.Position)
	}
}
