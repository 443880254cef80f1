package thumbs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/prateektimer/course-library/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testPaths struct {
	dir string
}

func (p testPaths) ThumbnailPath(ownerID model.ID) string {
	return filepath.Join(p.dir, fmt.Sprintf("%s_thumb.png", ownerID))
}

func (p testPaths) PlaceholderPath(ownerID model.ID) string {
	return filepath.Join(p.dir, fmt.Sprintf("%s_placeholder.png", ownerID))
}

func (p testPaths) IndexPath() string {
	return filepath.Join(p.dir, "thumbs.db")
}

type fakeExtractor struct {
	calls   atomic.Int32
	fail    bool
	barrier chan struct{}
}

func (f *fakeExtractor) ExtractFrame(_ context.Context, locator string) ([]byte, error) {
	f.calls.Add(1)
	if f.barrier != nil {
		<-f.barrier
	}
	if f.fail {
		return nil, errors.New("corrupt stream")
	}
	return []byte("frame of " + locator), nil
}

func newTestCache(t *testing.T, extractor FrameExtractor) *Cache {
	t.Helper()
	cache, err := NewCache(extractor, testPaths{dir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })
	return cache
}

func TestGetOrCreateComputesOnce(t *testing.T) {
	extractor := &fakeExtractor{}
	cache := newTestCache(t, extractor)
	owner := model.NewID()

	first, err := cache.GetOrCreate(context.Background(), owner, "file:///v.mp4")
	require.NoError(t, err)

	second, err := cache.GetOrCreate(context.Background(), owner, "file:///v.mp4")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.EqualValues(t, 1, extractor.calls.Load())

	data, err := os.ReadFile(first)
	require.NoError(t, err)
	assert.Equal(t, "frame of file:///v.mp4", string(data))
}

func TestCoalescing(t *testing.T) {
	extractor := &fakeExtractor{barrier: make(chan struct{})}
	cache := newTestCache(t, extractor)
	owner := model.NewID()

	const waiters = 10
	paths := make([]string, waiters)
	errs := make([]error, waiters)

	var started, wg sync.WaitGroup
	started.Add(waiters)
	wg.Add(waiters)
	for i := 0; i < waiters; i++ {
		i := i
		go func() {
			defer wg.Done()
			started.Done()
			paths[i], errs[i] = cache.GetOrCreate(context.Background(), owner, "file:///v.mp4")
		}()
	}

	started.Wait()
	close(extractor.barrier)
	wg.Wait()

	for i := 0; i < waiters; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, paths[0], paths[i])
	}
	assert.EqualValues(t, 1, extractor.calls.Load())
}

func TestFailureIsSoftAndRetryable(t *testing.T) {
	extractor := &fakeExtractor{fail: true}
	cache := newTestCache(t, extractor)
	owner := model.NewID()

	_, err := cache.GetOrCreate(context.Background(), owner, "file:///broken.mp4")
	assert.ErrorIs(t, err, ErrNoThumbnail)

	// a failure is not cached, the next explicit request tries again
	extractor.fail = false
	path, err := cache.GetOrCreate(context.Background(), owner, "file:///broken.mp4")
	require.NoError(t, err)
	assert.FileExists(t, path)
	assert.EqualValues(t, 2, extractor.calls.Load())
}

func TestInvalidate(t *testing.T) {
	extractor := &fakeExtractor{}
	cache := newTestCache(t, extractor)
	owner := model.NewID()

	path, err := cache.GetOrCreate(context.Background(), owner, "file:///v.mp4")
	require.NoError(t, err)
	require.FileExists(t, path)

	cache.Invalidate(owner)
	assert.NoFileExists(t, path)

	_, err = cache.GetOrCreate(context.Background(), owner, "file:///v.mp4")
	require.NoError(t, err)
	assert.EqualValues(t, 2, extractor.calls.Load())
}

func TestIndexSurvivesReopen(t *testing.T) {
	extractor := &fakeExtractor{}
	paths := testPaths{dir: t.TempDir()}
	owner := model.NewID()

	cache, err := NewCache(extractor, paths)
	require.NoError(t, err)
	path, err := cache.GetOrCreate(context.Background(), owner, "file:///v.mp4")
	require.NoError(t, err)
	require.NoError(t, cache.Close())

	reopened, err := NewCache(extractor, paths)
	require.NoError(t, err)
	defer reopened.Close()

	again, err := reopened.GetOrCreate(context.Background(), owner, "file:///v.mp4")
	require.NoError(t, err)
	assert.Equal(t, path, again)
	assert.EqualValues(t, 1, extractor.calls.Load())
}

func TestPlaceholderDeterministic(t *testing.T) {
	paths := testPaths{dir: t.TempDir()}
	renderer := NewPlaceholderRenderer(paths, "")
	owner := model.NewID()

	first, err := renderer.Render(owner, "Go Basics")
	require.NoError(t, err)
	assert.FileExists(t, first)

	second, err := renderer.Render(owner, "Go Basics")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
