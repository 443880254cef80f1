package model

import "github.com/google/uuid"

// ID is a stable opaque identifier of a course or a video. It survives
// rescans for as long as the entity can be correlated with its previous
// record by name.
type ID string

func NewID() ID {
	return ID(uuid.NewString())
}

func (id ID) String() string {
	return string(id)
}
