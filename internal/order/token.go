package order

import (
	"encoding/base64"

	"github.com/google/uuid"
)

// RandomTokens generates opaque redemption tokens: the standard base64
// encoding of a random UUIDv4's 16 bytes (24 characters).
//
// Stateless and safe for concurrent use.
type RandomTokens struct{}

// Generate returns a new token. Panics if the system random source fails.
func (RandomTokens) Generate() string {
	id := uuid.Must(uuid.NewRandom())
	return base64.StdEncoding.EncodeToString(id[:])
}
