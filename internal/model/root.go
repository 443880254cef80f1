package model

// RootLocationID is the key of the single root location record.
const RootLocationID = "root"

// RootLocation holds the last folder the user granted access to. At most one
// record lives at a time, replace-on-set.
type RootLocation struct {
	ID      string `bson:"_id"`
	Locator string
}

// MetaInfo describes versions of the service and database schema.
type MetaInfo struct {
	ID              string `bson:"_id"`
	Version         string
	DatabaseVersion int
}
