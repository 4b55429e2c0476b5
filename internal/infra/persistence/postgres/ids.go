package postgres

import (
	"github.com/google/uuid"
)

// newID returns a time-ordered UUID so primary key inserts stay index friendly.
func newID() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}

	return id
}

func ensureID(id uuid.UUID) uuid.UUID {
	if id == uuid.Nil {
		return newID()
	}

	return id
}
