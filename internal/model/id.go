package model

import (
	"math/big"

	"github.com/google/uuid"
)

const idLength = 9

// NewID returns a short base-36 identifier drawn from a random UUID.
// Nine characters give ~46 bits, plenty for a single user's task list.
func NewID() string {
	u := uuid.New()
	encoded := new(big.Int).SetBytes(u[:]).Text(36)
	for len(encoded) < idLength {
		encoded = "0" + encoded
	}
	return encoded[len(encoded)-idLength:]
}
