package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"go_4_learn_progress/internal/model"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss はキャッシュに値が無いことを表します
var ErrCacheMiss = errors.New("cache miss")

// CurriculumCache はコース構造 (モジュール・レッスン付き) のキャッシュ。
// コース構造はこのサービスからは更新されないため、TTL による失効のみ。
type CurriculumCache interface {
	GetCourseTree(ctx context.Context, courseID uuid.UUID) (*model.Course, error)
	SetCourseTree(ctx context.Context, course *model.Course) error
	Invalidate(ctx context.Context, courseID uuid.UUID) error
}

// redisCurriculumCache はコース構造を JSON で1キーに格納します。
// key: curriculum:course:{courseID}
type redisCurriculumCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCurriculumCache(client *redis.Client, ttl time.Duration) CurriculumCache {
	return &redisCurriculumCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *redisCurriculumCache) GetCourseTree(ctx context.Context, courseID uuid.UUID) (*model.Course, error) {
	raw, err := c.client.Get(ctx, courseKey(courseID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("redisCurriculumCache.GetCourseTree: %w", err)
	}
	var course model.Course
	if err := json.Unmarshal(raw, &course); err != nil {
		// 壊れたエントリはミス扱い
		return nil, ErrCacheMiss
	}
	return &course, nil
}

func (c *redisCurriculumCache) SetCourseTree(ctx context.Context, course *model.Course) error {
	raw, err := json.Marshal(course)
	if err != nil {
		return fmt.Errorf("redisCurriculumCache.SetCourseTree: %w", err)
	}
	if err := c.client.Set(ctx, courseKey(course.CourseID), raw, c.ttlWithJitter()).Err(); err != nil {
		return fmt.Errorf("redisCurriculumCache.SetCourseTree: %w", err)
	}
	return nil
}

func (c *redisCurriculumCache) Invalidate(ctx context.Context, courseID uuid.UUID) error {
	return c.client.Del(ctx, courseKey(courseID)).Err()
}

// ttlWithJitter は一斉失効を避けるため TTL に最大10%の揺らぎを加えます
func (c *redisCurriculumCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitter := time.Duration(rand.Int63n(int64(c.ttl/10) + 1))
	return c.ttl + jitter
}

func courseKey(courseID uuid.UUID) string {
	return "curriculum:course:" + courseID.String()
}

// nopCurriculumCache は Redis 未設定時に使うキャッシュ (常にミス)
type nopCurriculumCache struct{}

func NewNopCurriculumCache() CurriculumCache {
	return nopCurriculumCache{}
}

func (nopCurriculumCache) GetCourseTree(context.Context, uuid.UUID) (*model.Course, error) {
	return nil, ErrCacheMiss
}

func (nopCurriculumCache) SetCourseTree(context.Context, *model.Course) error { return nil }

func (nopCurriculumCache) Invalidate(context.Context, uuid.UUID) error { return nil }
