package models

import "github.com/google/uuid"

// Entity is any individually identified, independently timestamped item of a
// keyed collection.
type Entity interface {
	EntityID() string
	Stamp() int64
}

// NewID returns a random identifier. Ids share a single tombstone namespace
// across every entity kind, so they must be globally unique.
func NewID() string {
	return uuid.NewString()
}
