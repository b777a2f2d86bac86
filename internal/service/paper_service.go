package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/firegate/examcore/internal/config"
	"github.com/firegate/examcore/internal/model"
	"github.com/firegate/examcore/internal/repository"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// snapshotTTL bounds how stale a cached paper snapshot may get. Paper
// authoring happens in an external service, so the cache is refreshed by
// expiry rather than by invalidation hooks.
const snapshotTTL = 5 * time.Minute

// PaperService is the snapshot fast lane: it serves paper snapshots from
// Redis and falls back to PostgreSQL on a miss, self-healing the cache.
type PaperService struct {
	papers *repository.PaperRepository
	rdb    *redis.Client
	log    zerolog.Logger
}

// NewPaperService creates a new PaperService.
func NewPaperService(papers *repository.PaperRepository, rdb *redis.Client, log zerolog.Logger) *PaperService {
	return &PaperService{
		papers: papers,
		rdb:    rdb,
		log:    log.With().Str("component", "paper_service").Logger(),
	}
}

// ResolveSnapshot returns the paper snapshot for an id. The cached copy
// includes canonical answers and is server-side only; handlers must
// never echo it to candidates.
func (s *PaperService) ResolveSnapshot(ctx context.Context, paperID uuid.UUID) (*model.ExamPaperSnapshot, error) {
	key := config.CacheKey.PaperSnapshotKey(paperID.String())

	data, err := s.rdb.Get(ctx, key).Bytes()
	if err == nil {
		var paper model.ExamPaperSnapshot
		if err := json.Unmarshal(data, &paper); err == nil {
			return &paper, nil
		}
		// Corrupt cache entry: drop it and fall through to the database.
		s.rdb.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		// A Redis outage must not take the exam engine down.
		s.log.Warn().Err(err).Str("paper_id", paperID.String()).Msg("Snapshot cache read failed")
	}

	paper, err := s.papers.GetSnapshot(ctx, paperID)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(paper); err == nil {
		if err := s.rdb.Set(ctx, key, payload, snapshotTTL).Err(); err != nil {
			s.log.Warn().Err(err).Str("paper_id", paperID.String()).Msg("Snapshot cache write failed")
		}
	}

	return paper, nil
}
