package scanner

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTree is an in-memory FileTreeProvider, keyed by folder locator
type fakeTree struct {
	mu       sync.Mutex
	folders  map[string][]Entry
	broken   map[string]bool
	listings map[string]int
}

func newFakeTree() *fakeTree {
	return &fakeTree{
		folders:  map[string][]Entry{},
		broken:   map[string]bool{},
		listings: map[string]int{},
	}
}

func (f *fakeTree) addFolder(parent, name string) string {
	locator := parent + "/" + name
	f.folders[parent] = append(f.folders[parent], Entry{Name: name, Locator: locator, IsDir: true})
	if _, ok := f.folders[locator]; !ok {
		f.folders[locator] = []Entry{}
	}
	return locator
}

func (f *fakeTree) addFile(parent, name string) {
	f.folders[parent] = append(f.folders[parent], Entry{Name: name, Locator: parent + "/" + name})
}

func (f *fakeTree) List(_ context.Context, locator string) ([]Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listings[locator]++
	if f.broken[locator] {
		return nil, errors.New("permission denied")
	}
	entries, ok := f.folders[locator]
	if !ok {
		return nil, errors.New("no such folder")
	}
	return entries, nil
}

func TestScanOrdersNaturally(t *testing.T) {
	tree := newFakeTree()
	// provider returns folders and files out of order on purpose
	c10 := tree.addFolder("root", "Lecture 10")
	c2 := tree.addFolder("root", "Lecture 2")
	tree.addFile(c10, "part 10.mp4")
	tree.addFile(c10, "part 2.mp4")
	tree.addFile(c2, "b.mp4")
	tree.addFile(c2, "a.mp4")

	courses, err := New(tree, []string{".mp4"}).Scan(context.Background(), "root")
	require.NoError(t, err)
	require.Len(t, courses, 2)

	assert.Equal(t, "Lecture 2", courses[0].Name)
	assert.Equal(t, "Lecture 10", courses[1].Name)
	assert.Equal(t, []CandidateVideo{
		{Name: "a.mp4", Locator: c2 + "/a.mp4"},
		{Name: "b.mp4", Locator: c2 + "/b.mp4"},
	}, courses[0].Videos)
	assert.Equal(t, "part 2.mp4", courses[1].Videos[0].Name)
	assert.Equal(t, "part 10.mp4", courses[1].Videos[1].Name)
}

func TestScanDropsEmptyCourses(t *testing.T) {
	tree := newFakeTree()
	notes := tree.addFolder("root", "Notes")
	tree.addFile(notes, "readme.txt")
	tree.addFile(notes, "image.png")
	course := tree.addFolder("root", "Go Basics")
	tree.addFile(course, "01.mp4")

	courses, err := New(tree, []string{".mp4"}).Scan(context.Background(), "root")
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "Go Basics", courses[0].Name)
}

func TestScanExtensionFilter(t *testing.T) {
	tree := newFakeTree()
	course := tree.addFolder("root", "Mixed")
	tree.addFile(course, "clip.MP4")
	tree.addFile(course, "clip.mkv")
	tree.addFile(course, "notes.pdf")

	courses, err := New(tree, []string{".mp4"}).Scan(context.Background(), "root")
	require.NoError(t, err)
	require.Len(t, courses, 1)
	require.Len(t, courses[0].Videos, 1)
	assert.Equal(t, "clip.MP4", courses[0].Videos[0].Name)

	courses, err = New(tree, []string{".mp4", ".mkv"}).Scan(context.Background(), "root")
	require.NoError(t, err)
	assert.Len(t, courses[0].Videos, 2)
}

func TestScanSkipsUnreadableFolder(t *testing.T) {
	tree := newFakeTree()
	locked := tree.addFolder("root", "Locked")
	tree.broken[locked] = true
	course := tree.addFolder("root", "Open")
	tree.addFile(course, "01.mp4")

	courses, err := New(tree, []string{".mp4"}).Scan(context.Background(), "root")
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "Open", courses[0].Name)
}

func TestScanUnreadableRoot(t *testing.T) {
	tree := newFakeTree()
	tree.broken["root"] = true

	_, err := New(tree, []string{".mp4"}).Scan(context.Background(), "root")
	assert.ErrorIs(t, err, ErrRootUnreadable)
}

// ctxTree fails folder listings once the context is done, the way a real
// provider would
type ctxTree struct {
	inner *fakeTree
}

func (c ctxTree) List(ctx context.Context, locator string) ([]Entry, error) {
	if locator != "root" {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
	return c.inner.List(ctx, locator)
}

func TestScanCancelled(t *testing.T) {
	tree := newFakeTree()
	course := tree.addFolder("root", "Course")
	tree.addFile(course, "01.mp4")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(ctxTree{inner: tree}, []string{".mp4"}).Scan(ctx, "root")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScanDoesNotTraverseDeeper(t *testing.T) {
	tree := newFakeTree()
	course := tree.addFolder("root", "Course")
	tree.addFile(course, "01.mp4")
	nested := tree.addFolder(course, "Extras")
	tree.addFile(nested, "bonus.mp4")

	courses, err := New(tree, []string{".mp4"}).Scan(context.Background(), "root")
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Len(t, courses[0].Videos, 1)
	assert.Zero(t, tree.listings[nested])
}
