package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// TaskKey returns the cache key for task metadata fetched from the task service.
func (r *CacheKeyStruct) TaskKey(taskID int64) string {
	return fmt.Sprintf("task:%d:meta", taskID)
}

// CohortOverviewKey returns the cache key for a cohort's integrity overview.
// Detailed and summary variants are cached separately.
func (r *CacheKeyStruct) CohortOverviewKey(cohortID int64, details bool) string {
	if details {
		return fmt.Sprintf("cohort:%d:overview:detailed", cohortID)
	}
	return fmt.Sprintf("cohort:%d:overview", cohortID)
}

// SessionEventsChannel returns the Pub/Sub channel carrying live proctor
// events for an integrity session.
func (r *CacheKeyStruct) SessionEventsChannel(sessionUUID string) string {
	return fmt.Sprintf("integrity:session:%s:events", sessionUUID)
}

var CacheKey = NewCacheKeyStruct()
