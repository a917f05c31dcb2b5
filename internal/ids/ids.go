package ids

import "github.com/google/uuid"

// NewID returns a random identifier for correlating requests in logs.
func NewID() string {
	return uuid.NewString()
}
