package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/placement-portal-api/internal/models"
)

const verdictVersionKey = "eligibility:version"

// CacheService stores eligibility verdicts under a version-prefixed key.
// Every registry mutation bumps the version, which invalidates all cached
// verdicts at once: a stale verdict must never survive a range edit, because
// the verdict decides admission. A nil client disables caching entirely.
type CacheService struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCacheService constructs the cache wrapper.
func NewCacheService(client *redis.Client, ttl time.Duration, logger *zap.Logger) *CacheService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CacheService{client: client, ttl: ttl, logger: logger}
}

// GetVerdict returns a cached verdict when present.
func (s *CacheService) GetVerdict(ctx context.Context, prn string, collegeID *string) (*models.EligibilityVerdict, bool) {
	if s == nil || s.client == nil {
		return nil, false
	}
	key, err := s.verdictKey(ctx, prn, collegeID)
	if err != nil {
		return nil, false
	}
	raw, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	var verdict models.EligibilityVerdict
	if err := json.Unmarshal(raw, &verdict); err != nil {
		return nil, false
	}
	return &verdict, true
}

// SetVerdict caches a verdict under the current version.
func (s *CacheService) SetVerdict(ctx context.Context, prn string, collegeID *string, verdict *models.EligibilityVerdict) {
	if s == nil || s.client == nil || verdict == nil {
		return
	}
	key, err := s.verdictKey(ctx, prn, collegeID)
	if err != nil {
		return
	}
	raw, err := json.Marshal(verdict)
	if err != nil {
		return
	}
	if err := s.client.Set(ctx, key, raw, s.ttl).Err(); err != nil {
		s.logger.Warn("failed to cache eligibility verdict", zap.Error(err))
	}
}

// Invalidate bumps the version key, orphaning every cached verdict. Old
// entries expire through their TTL.
func (s *CacheService) Invalidate(ctx context.Context) {
	if s == nil || s.client == nil {
		return
	}
	if err := s.client.Incr(ctx, verdictVersionKey).Err(); err != nil {
		s.logger.Warn("failed to invalidate eligibility cache", zap.Error(err))
	}
}

func (s *CacheService) verdictKey(ctx context.Context, prn string, collegeID *string) (string, error) {
	version, err := s.client.Get(ctx, verdictVersionKey).Int64()
	if err != nil && err != redis.Nil {
		return "", err
	}
	college := "global"
	if collegeID != nil && *collegeID != "" {
		college = *collegeID
	}
	return fmt.Sprintf("eligibility:v%d:%s:%s", version, college, prn), nil
}
