package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// PaperSnapshotKey returns the cache key for a paper snapshot
func (r *CacheKeyStruct) PaperSnapshotKey(paperID string) string {
	return fmt.Sprintf("paper:%s:snapshot", paperID)
}

// PaperStatsKey returns the cache key for a paper's result statistics
func (r *CacheKeyStruct) PaperStatsKey(paperID string) string {
	return fmt.Sprintf("paper:%s:stats", paperID)
}

// CandidateActiveSessionKey returns the cache key for a candidate's active session
func (r *CacheKeyStruct) CandidateActiveSessionKey(candidateID int) string {
	return fmt.Sprintf("candidate:%d:active_session", candidateID)
}

var CacheKey = NewCacheKeyStruct()
