package db

import (
	"context"
	"errors"

	"github.com/prateektimer/course-library/internal/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SetRootLocation replaces the single root folder record.
func (d *Database) SetRootLocation(ctx context.Context, locator string) error {
	ctx, cancel := context.WithTimeout(ctx, databaseTimeout)
	defer cancel()

	record := model.RootLocation{ID: model.RootLocationID, Locator: locator}
	opts := options.Replace().SetUpsert(true)
	filter := bson.D{{Key: "_id", Value: model.RootLocationID}}

	_, err := d.root.ReplaceOne(ctx, filter, &record, opts)
	return err
}

// GetRootLocation returns the granted root folder, nil if none was selected
// yet.
func (d *Database) GetRootLocation(ctx context.Context) (*model.RootLocation, error) {
	ctx, cancel := context.WithTimeout(ctx, databaseTimeout)
	defer cancel()

	result := d.root.FindOne(ctx, bson.D{{Key: "_id", Value: model.RootLocationID}})
	if errors.Is(result.Err(), mongo.ErrNoDocuments) {
		return nil, nil
	}
	if result.Err() != nil {
		return nil, result.Err()
	}

	record := model.RootLocation{}
	if err := result.Decode(&record); err != nil {
		return nil, err
	}
	return &record, nil
}
