package models

import "github.com/google/uuid"

// newID returns a fresh identifier for a record about to be created.
func newID() string {
	return uuid.NewString()
}
