package domain

import (
	"errors"

	"github.com/google/uuid"
)

// ID is the opaque identifier shared by every document and sub-document.
type ID string

var ErrInvalidID = errors.New("invalid id")

// NewID returns a fresh random identifier.
func NewID() ID {
	return ID(uuid.NewString())
}

// ParseID validates caller supplied text as an identifier.
func ParseID(s string) (ID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return "", ErrInvalidID
	}
	return ID(u.String()), nil
}

func (id ID) String() string {
	return string(id)
}

func (id ID) IsZero() bool {
	return id == ""
}
