package db

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/prateektimer/course-library/internal/model"
	"github.com/prateektimer/course-library/internal/natsort"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ListCourses returns all persisted courses with their videos ordered by
// playback position, courses in natural name order.
func (d *Database) ListCourses(ctx context.Context) ([]*model.Course, error) {
	ctx, cancel := context.WithTimeout(ctx, databaseTimeout)
	defer cancel()

	cur, err := d.courses.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("fetch courses failed: %w", err)
	}

	var courses []*model.Course
	if err = cur.All(ctx, &courses); err != nil {
		return nil, fmt.Errorf("decode courses failed: %w", err)
	}

	sort.SliceStable(courses, func(i, j int) bool {
		return natsort.Less(courses[i].Name, courses[j].Name)
	})

	for _, course := range courses {
		course.Videos, err = d.getVideos(ctx, course.ID)
		if err != nil {
			return nil, err
		}
	}

	return courses, nil
}

// GetCourse returns a course with its videos, nil if no such course exists.
func (d *Database) GetCourse(ctx context.Context, id model.ID) (*model.Course, error) {
	ctx, cancel := context.WithTimeout(ctx, databaseTimeout)
	defer cancel()

	result := d.courses.FindOne(ctx, bson.D{{Key: "_id", Value: id.String()}})
	if errors.Is(result.Err(), mongo.ErrNoDocuments) {
		return nil, nil
	}
	if result.Err() != nil {
		return nil, fmt.Errorf("fetch course failed: %w", result.Err())
	}

	course := model.Course{}
	if err := result.Decode(&course); err != nil {
		return nil, fmt.Errorf("decode course record failed: %w", err)
	}

	var err error
	course.Videos, err = d.getVideos(ctx, course.ID)
	if err != nil {
		return nil, err
	}

	return &course, nil
}

// UpsertCourses replaces or inserts course records. Videos are stored
// separately and must be written after their courses.
func (d *Database) UpsertCourses(ctx context.Context, courses []*model.Course) error {
	if len(courses) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, databaseTimeout)
	defer cancel()

	models := make([]mongo.WriteModel, 0, len(courses))
	for _, course := range courses {
		filter := bson.D{{Key: "_id", Value: course.ID.String()}}
		models = append(models, mongo.NewReplaceOneModel().SetFilter(filter).SetReplacement(course).SetUpsert(true))
	}

	if _, err := d.courses.BulkWrite(ctx, models); err != nil {
		return fmt.Errorf("upsert courses failed: %w", err)
	}
	return nil
}

// DeleteCourses removes courses and cascades removal of their videos. Videos
// go first so no video ever references a missing course.
func (d *Database) DeleteCourses(ctx context.Context, ids []model.ID) error {
	if len(ids) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, databaseTimeout)
	defer cancel()

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, id.String())
	}

	filter := bson.D{{Key: "courseid", Value: bson.D{{Key: "$in", Value: keys}}}}
	if _, err := d.videos.DeleteMany(ctx, filter); err != nil {
		return fmt.Errorf("delete course videos failed: %w", err)
	}

	filter = bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: keys}}}}
	if _, err := d.courses.DeleteMany(ctx, filter); err != nil {
		return fmt.Errorf("delete courses failed: %w", err)
	}
	return nil
}

// SetCourseThumbnail records the generated thumbnail path of a course.
func (d *Database) SetCourseThumbnail(ctx context.Context, id model.ID, path string) error {
	ctx, cancel := context.WithTimeout(ctx, databaseTimeout)
	defer cancel()

	filter := bson.D{{Key: "_id", Value: id.String()}}
	update := bson.D{{Key: "$set", Value: bson.D{{Key: "thumbnailpath", Value: path}}}}
	_, err := d.courses.UpdateOne(ctx, filter, update)
	return err
}
