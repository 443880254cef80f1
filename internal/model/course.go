package model

// Course represents one folder of instructional videos tracked as a unit of
// progress
type Course struct {
	ID ID `bson:"_id"`

	// Name is derived from the folder name and is the correlation key
	// across rescans
	Name string

	// ThumbnailPath points to a cached representative frame, empty until
	// generated
	ThumbnailPath string

	// Videos are ordered by playback position
	Videos []Video `bson:"-"`
}

// Video is a single playable file inside a course
type Video struct {
	ID       ID `bson:"_id"`
	CourseID ID

	// Locator is an opaque reference to the underlying file
	Locator string

	// Position is the playback order within the course
	Position int

	// IsComplete is user-controlled watched state
	IsComplete bool
}
