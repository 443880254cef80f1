package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Version of database schema
const Version = 1

type Database struct {
	cli     *mongo.Client
	db      *mongo.Database
	courses *mongo.Collection
	videos  *mongo.Collection
	root    *mongo.Collection
	meta    *mongo.Collection
}

const databaseTimeout = 40 * time.Second

// Connect creates database connection
func Connect(uri string) (*Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), databaseTimeout)
	defer cancel()

	cli, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to db failed: %w", err)
	}

	if err = cli.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("connect to db failed: %w", err)
	}

	lib := cli.Database("course-library")
	d := &Database{
		cli:     cli,
		db:      lib,
		courses: lib.Collection("courses"),
		videos:  lib.Collection("videos"),
		root:    lib.Collection("root"),
		meta:    lib.Collection("meta"),
	}

	if err = d.createIndexes(ctx); err != nil {
		return nil, fmt.Errorf("create indexes failed: %w", err)
	}

	return d, nil
}

func (d *Database) createIndexes(ctx context.Context) error {
	index := mongo.IndexModel{Keys: bson.D{{Key: "courseid", Value: 1}}}
	_, err := d.videos.Indexes().CreateOne(ctx, index)
	return err
}

// Close terminates the connection, the Database is unusable afterwards
func (d *Database) Close(ctx context.Context) error {
	return d.cli.Disconnect(ctx)
}
