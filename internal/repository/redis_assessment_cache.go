package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/godilite/role-report/internal/models"
	"github.com/godilite/role-report/pkg/cache"
)

const (
	assessmentKeyPrefix = "assessment:"
	assessmentTTL       = 14 * 24 * time.Hour
)

// RedisAssessmentCache adapts the shared Redis cache to the assessment
// cache interface. Entries expire so a stale workshop cohort ages out.
type RedisAssessmentCache struct {
	cache *cache.Cache
}

func NewRedisAssessmentCache(c *cache.Cache) *RedisAssessmentCache {
	return &RedisAssessmentCache{cache: c}
}

func (r *RedisAssessmentCache) Get(ctx context.Context, signature string) (models.RoleAssessment, bool, error) {
	var a models.RoleAssessment
	err := r.cache.Get(ctx, assessmentKeyPrefix+signature, &a)
	if errors.Is(err, redis.Nil) {
		return models.RoleAssessment{}, false, nil
	}
	if err != nil {
		return models.RoleAssessment{}, false, fmt.Errorf("redis assessment lookup: %w", err)
	}
	return a, true, nil
}

func (r *RedisAssessmentCache) Put(ctx context.Context, signature string, assessment models.RoleAssessment) error {
	if err := r.cache.Set(ctx, assessmentKeyPrefix+signature, assessment, assessmentTTL); err != nil {
		return fmt.Errorf("redis assessment store: %w", err)
	}
	return nil
}
