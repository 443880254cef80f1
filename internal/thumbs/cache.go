// Package thumbs maintains the derived thumbnail images: one cached still
// frame per course or video, computed at most once and reused until the owner
// disappears.
package thumbs

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/prateektimer/course-library/internal/model"
	"go-micro.dev/v4/logger"
	bolt "go.etcd.io/bbolt"
	"golang.org/x/sync/singleflight"
)

// ErrNoThumbnail is a soft failure: the owner stays usable, just without an
// image. It is not retried until the next explicit request.
var ErrNoThumbnail = errors.New("no thumbnail available")

var indexBucket = []byte("thumbs")

const imagePerms = 0644

// Cache computes and stores thumbnail images keyed by owner id. Entries are
// recorded in a bbolt index so nothing is recomputed across restarts.
type Cache struct {
	extractor FrameExtractor
	paths     Paths
	index     *bolt.DB

	group singleflight.Group
}

func NewCache(extractor FrameExtractor, paths Paths) (*Cache, error) {
	index, err := bolt.Open(paths.IndexPath(), 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("open thumbnail index failed: %w", err)
	}

	err = index.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(indexBucket)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create thumbnail index bucket failed: %w", err)
	}

	return &Cache{
		extractor: extractor,
		paths:     paths,
		index:     index,
	}, nil
}

// GetOrCreate returns the cached image path of the owner, computing it from
// locator on the first request. Concurrent requests for the same owner are
// coalesced into a single extraction, requests for distinct owners run in
// parallel. Extraction failure is reported as ErrNoThumbnail and is not
// recorded, so a later request may retry.
func (c *Cache) GetOrCreate(ctx context.Context, ownerID model.ID, locator string) (string, error) {
	if path, ok := c.lookup(ownerID); ok {
		return path, nil
	}

	result, err, _ := c.group.Do(ownerID.String(), func() (interface{}, error) {
		// a coalesced waiter may arrive right after the winner stored
		// the entry
		if path, ok := c.lookup(ownerID); ok {
			return path, nil
		}
		return c.compute(ctx, ownerID, locator)
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

// Invalidate drops the owner's entry and image, e.g. when reconciliation
// removed the owner.
func (c *Cache) Invalidate(ownerID model.ID) {
	err := c.index.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(indexBucket).Delete([]byte(ownerID))
	})
	if err != nil {
		logger.Warnf("Drop thumbnail index entry of %s failed: %s", ownerID, err)
	}

	for _, path := range []string{c.paths.ThumbnailPath(ownerID), c.paths.PlaceholderPath(ownerID)} {
		if err = os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Warnf("Remove thumbnail of %s failed: %s", ownerID, err)
		}
	}
}

func (c *Cache) Close() error {
	return c.index.Close()
}

func (c *Cache) lookup(ownerID model.ID) (string, bool) {
	var path string
	_ = c.index.View(func(tx *bolt.Tx) error {
		if value := tx.Bucket(indexBucket).Get([]byte(ownerID)); value != nil {
			path = string(value)
		}
		return nil
	})
	if path == "" {
		return "", false
	}

	// the image may have been swept from disk behind our back
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	return path, true
}

func (c *Cache) compute(ctx context.Context, ownerID model.ID, locator string) (string, error) {
	frame, err := c.extractor.ExtractFrame(ctx, locator)
	if err != nil {
		return "", fmt.Errorf("%w: extract frame of %s failed: %s", ErrNoThumbnail, ownerID, err)
	}

	path := c.paths.ThumbnailPath(ownerID)
	if err = os.WriteFile(path, frame, imagePerms); err != nil {
		return "", fmt.Errorf("%w: store image failed: %s", ErrNoThumbnail, err)
	}

	err = c.index.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(indexBucket).Put([]byte(ownerID), []byte(path))
	})
	if err != nil {
		return "", fmt.Errorf("%w: index image failed: %s", ErrNoThumbnail, err)
	}

	return path, nil
}
