package model

import (
	"crypto/sha256"
	"encoding/hex"
)

// EntityID is a content-addressed identifier for model entities.
// Callers may supply their own stable ids; ids minted by the engine
// are derived from entity content so that repeated runs over the same
// input produce the same ids.
type EntityID string

// NewEntityID derives an EntityID from a seed string.
func NewEntityID(seed string) EntityID {
	sum := sha256.Sum256([]byte(seed))
	return EntityID(hex.EncodeToString(sum[:]))
}

// Short returns a 12-character prefix for display.
func (id EntityID) Short() string {
	if len(id) <= 12 {
		return string(id)
	}
	return string(id[:12])
}

// IsZero reports whether the id is unset.
func (id EntityID) IsZero() bool {
	return id == ""
}
