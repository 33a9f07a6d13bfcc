package cache

import (
	"strconv"
	"strings"
)

const (
	GlobalKeyPrefix = "dqindex"
)

// GenerateCacheKey generates a cache key for a given service, object type, and identifier.
func GenerateCacheKey(serviceName, objectType, identifier string) string {
	return strings.Join([]string{GlobalKeyPrefix, serviceName, objectType, identifier}, ":")
}

// SubmissionKey is the cache key of one stored submission's retrieval response.
// A resubmission gets a new id, so an entry never goes stale; it only stops
// being read.
func SubmissionKey(submissionID int64) string {
	return GenerateCacheKey("submission", "detail", strconv.FormatInt(submissionID, 10))
}
