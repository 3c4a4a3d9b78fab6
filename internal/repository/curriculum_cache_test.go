package repository

import (
	"context"
	"testing"
	"time"

	"go_4_learn_progress/internal/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRedisCurriculumCache(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestRedis(t)
	cache := NewRedisCurriculumCache(client, time.Minute)

	moduleID := uuid.New()
	course := &model.Course{
		CourseID: uuid.New(),
		Title:    "キャッシュ",
		Modules: []model.Module{{
			ModuleID: moduleID,
			Title:    "M1",
			Position: 1,
			Lessons:  []model.Lesson{{LessonID: uuid.New(), ModuleID: moduleID, Title: "L1", Position: 1}},
		}},
	}

	_, err := cache.GetCourseTree(ctx, course.CourseID)
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, cache.SetCourseTree(ctx, course))
	key := "curriculum:course:" + course.CourseID.String()
	assert.True(t, mr.Exists(key))
	ttl := mr.TTL(key)
	assert.GreaterOrEqual(t, ttl, time.Minute)
	assert.LessOrEqual(t, ttl, time.Minute+6*time.Second)

	got, err := cache.GetCourseTree(ctx, course.CourseID)
	require.NoError(t, err)
	assert.Equal(t, course.Title, got.Title)
	require.Len(t, got.Modules, 1)
	assert.Equal(t, course.Modules[0].Lessons[0].LessonID, got.Modules[0].Lessons[0].LessonID)

	// TTL 経過で失効する
	mr.FastForward(2 * time.Minute)
	_, err = cache.GetCourseTree(ctx, course.CourseID)
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, cache.SetCourseTree(ctx, course))
	require.NoError(t, cache.Invalidate(ctx, course.CourseID))
	_, err = cache.GetCourseTree(ctx, course.CourseID)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisCurriculumCache_CorruptEntryIsMiss(t *testing.T) {
	mr, client := newTestRedis(t)
	cache := NewRedisCurriculumCache(client, time.Minute)
	courseID := uuid.New()

	require.NoError(t, mr.Set("curriculum:course:"+courseID.String(), "{not json"))
	_, err := cache.GetCourseTree(context.Background(), courseID)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisCurriculumCache_ServerDown(t *testing.T) {
	mr, client := newTestRedis(t)
	cache := NewRedisCurriculumCache(client, time.Minute)
	mr.Close()

	_, err := cache.GetCourseTree(context.Background(), uuid.New())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}

func TestNopCurriculumCache(t *testing.T) {
	ctx := context.Background()
	cache := NewNopCurriculumCache()
	course := &model.Course{CourseID: uuid.New()}

	require.NoError(t, cache.SetCourseTree(ctx, course))
	_, err := cache.GetCourseTree(ctx, course.CourseID)
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.NoError(t, cache.Invalidate(ctx, course.CourseID))
}
