package scanner

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/prateektimer/course-library/internal/natsort"
	"go-micro.dev/v4/logger"
	"golang.org/x/sync/errgroup"
)

const maxParallelListings = 8

// ErrRootUnreadable fails the whole scan: the granted root folder cannot be
// listed anymore.
var ErrRootUnreadable = errors.New("root folder is not readable")

// CandidateVideo is an uncommitted video discovered by a scan
type CandidateVideo struct {
	Name    string
	Locator string
}

// CandidateCourse is an uncommitted course discovered by a scan. It always
// contains at least one video.
type CandidateCourse struct {
	Name    string
	Locator string
	Videos  []CandidateVideo
}

// Scanner walks direct subfolders of a root and produces an ordered candidate
// library
type Scanner struct {
	provider   FileTreeProvider
	extensions map[string]struct{}
}

func New(provider FileTreeProvider, extensions []string) *Scanner {
	s := &Scanner{
		provider:   provider,
		extensions: map[string]struct{}{},
	}
	for _, ext := range extensions {
		s.extensions[strings.ToLower(ext)] = struct{}{}
	}
	return s
}

// Scan lists direct subfolders of root and their video files. Deeper nesting
// is not traversed. Subfolders which cannot be listed are skipped, an
// unreadable root fails the scan. Provider enumeration order is not trusted:
// courses and videos are ordered by natural name comparison before emitting.
func (s *Scanner) Scan(ctx context.Context, root string) ([]CandidateCourse, error) {
	entries, err := s.provider.List(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrRootUnreadable, err)
	}

	var folders []Entry
	for _, e := range entries {
		if e.IsDir {
			folders = append(folders, e)
		}
	}
	sort.SliceStable(folders, func(i, j int) bool {
		return natsort.Less(folders[i].Name, folders[j].Name)
	})

	candidates := make([]*CandidateCourse, len(folders))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelListings)
	for i := range folders {
		i := i
		g.Go(func() error {
			course, err := s.scanFolder(gCtx, folders[i])
			if err != nil {
				// an unreadable folder is skipped, a cancelled scan
				// is abandoned
				if gCtx.Err() != nil {
					return gCtx.Err()
				}
				logger.Warnf("Skip folder '%s': %s", folders[i].Name, err)
				return nil
			}
			candidates[i] = course
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		return nil, err
	}

	result := make([]CandidateCourse, 0, len(candidates))
	for _, c := range candidates {
		if c != nil {
			result = append(result, *c)
		}
	}
	return result, nil
}

// scanFolder collects qualifying videos of a single course folder. A folder
// without any returns nil and never reaches reconciliation.
func (s *Scanner) scanFolder(ctx context.Context, folder Entry) (*CandidateCourse, error) {
	entries, err := s.provider.List(ctx, folder.Locator)
	if err != nil {
		return nil, fmt.Errorf("list folder failed: %w", err)
	}

	var videos []CandidateVideo
	for _, e := range entries {
		if e.IsDir || !s.isVideo(e.Name) {
			continue
		}
		videos = append(videos, CandidateVideo{Name: e.Name, Locator: e.Locator})
	}
	if len(videos) == 0 {
		return nil, nil
	}

	sort.SliceStable(videos, func(i, j int) bool {
		return natsort.Less(videos[i].Name, videos[j].Name)
	})

	return &CandidateCourse{Name: folder.Name, Locator: folder.Locator, Videos: videos}, nil
}

func (s *Scanner) isVideo(name string) bool {
	_, ok := s.extensions[strings.ToLower(path.Ext(name))]
	return ok
}
