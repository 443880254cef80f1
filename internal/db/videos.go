package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/prateektimer/course-library/internal/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (d *Database) getVideos(ctx context.Context, courseID model.ID) ([]model.Video, error) {
	filter := bson.D{{Key: "courseid", Value: courseID.String()}}
	opts := options.Find().SetSort(bson.D{{Key: "position", Value: 1}})

	cur, err := d.videos.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("fetch videos failed: %w", err)
	}

	var videos []model.Video
	if err = cur.All(ctx, &videos); err != nil {
		return nil, fmt.Errorf("decode videos failed: %w", err)
	}
	return videos, nil
}

// GetVideo returns a single video record, nil if no such video exists.
func (d *Database) GetVideo(ctx context.Context, id model.ID) (*model.Video, error) {
	ctx, cancel := context.WithTimeout(ctx, databaseTimeout)
	defer cancel()

	result := d.videos.FindOne(ctx, bson.D{{Key: "_id", Value: id.String()}})
	if errors.Is(result.Err(), mongo.ErrNoDocuments) {
		return nil, nil
	}
	if result.Err() != nil {
		return nil, fmt.Errorf("fetch video failed: %w", result.Err())
	}

	video := model.Video{}
	if err := result.Decode(&video); err != nil {
		return nil, fmt.Errorf("decode video record failed: %w", err)
	}
	return &video, nil
}

// UpsertVideos writes identity and ordering of video records. Callers must
// have written the owning courses already. The completion flag is seeded only
// on insert: it belongs to the user, and a toggle committed while a merge was
// being computed must not be overwritten by the merge's older snapshot.
func (d *Database) UpsertVideos(ctx context.Context, videos []model.Video) error {
	if len(videos) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, databaseTimeout)
	defer cancel()

	models := make([]mongo.WriteModel, 0, len(videos))
	for i := range videos {
		filter := bson.D{{Key: "_id", Value: videos[i].ID.String()}}
		update := bson.D{
			{Key: "$set", Value: bson.D{
				{Key: "courseid", Value: videos[i].CourseID.String()},
				{Key: "locator", Value: videos[i].Locator},
				{Key: "position", Value: videos[i].Position},
			}},
			{Key: "$setOnInsert", Value: bson.D{
				{Key: "iscomplete", Value: videos[i].IsComplete},
			}},
		}
		models = append(models, mongo.NewUpdateOneModel().SetFilter(filter).SetUpdate(update).SetUpsert(true))
	}

	if _, err := d.videos.BulkWrite(ctx, models); err != nil {
		return fmt.Errorf("upsert videos failed: %w", err)
	}
	return nil
}

// UpdateVideoCompletion flips the user-controlled watched flag of one video.
func (d *Database) UpdateVideoCompletion(ctx context.Context, id model.ID, isComplete bool) error {
	ctx, cancel := context.WithTimeout(ctx, databaseTimeout)
	defer cancel()

	filter := bson.D{{Key: "_id", Value: id.String()}}
	update := bson.D{{Key: "$set", Value: bson.D{{Key: "iscomplete", Value: isComplete}}}}

	result, err := d.videos.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("update completion failed: %w", err)
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
