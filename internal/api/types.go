// Package api defines the request and response types of the course-library
// RPC surface consumed by presentation clients.
package api

type SelectRootRequest struct {
	Locator string
}

type StartScanRequest struct{}

type Course struct {
	Id            string
	Name          string
	ThumbnailPath string
	Videos        []*Video
}

type Video struct {
	Id         string
	Locator    string
	Position   int
	IsComplete bool
}

type ListCoursesRequest struct{}

type ListCoursesResponse struct {
	Courses []*Course
}

type GetCourseRequest struct {
	Id string
}

// GetCourseResponse carries a nil Course when no such course exists, absence
// is not an error.
type GetCourseResponse struct {
	Course *Course
}

type SetVideoCompletionRequest struct {
	CourseId   string
	VideoId    string
	IsComplete bool
}

type GetThumbnailRequest struct {
	OwnerId string

	// Locator of the video to extract a frame from
	Locator string

	// Name of the owner, used for placeholder rendering
	Name string
}

// GetThumbnailResponse carries the cached image path, or an empty Path and a
// generated Placeholder when no thumbnail could be produced.
type GetThumbnailResponse struct {
	Path        string
	Placeholder string
}
