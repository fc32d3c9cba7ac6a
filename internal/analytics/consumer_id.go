package analytics

import (
	"fmt"
	"os"

	"github.com/google/uuid"
)

// NewConsumerID returns a unique consumer name for the stream group.
func NewConsumerID() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "worker"
	}
	return fmt.Sprintf("%s-%d-%s", host, os.Getpid(), uuid.NewString()[:8])
}
