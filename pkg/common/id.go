package common

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// GenerateID generates a unique ID with the given prefix.
// Format: prefix-timestamp-random
func GenerateID(prefix string) string {
	return fmt.Sprintf("%s-%d-%s", prefix, time.Now().UnixMilli(), uuid.NewString()[:8])
}

// GenerateSyncJobID generates a unique sync job ID.
func GenerateSyncJobID() string {
	return GenerateID("sync")
}
