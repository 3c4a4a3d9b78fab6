package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go_4_learn_progress/internal/model"
	"go_4_learn_progress/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestFlattenCourse(t *testing.T) {
	m1, m2, m3 := uuid.New(), uuid.New(), uuid.New()
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	course := &model.Course{
		CourseID: uuid.New(),
		Modules: []model.Module{
			{ModuleID: m3, Title: "M3", Position: 3, Lessons: []model.Lesson{{LessonID: c, Title: "c", Position: 1}}},
			{ModuleID: m2, Title: "M2", Position: 2},
			{ModuleID: m1, Title: "M1", Position: 1, Lessons: []model.Lesson{
				{LessonID: b, Title: "b", Position: 2},
				{LessonID: a, Title: "a", Position: 1},
			}},
		},
	}

	seq := FlattenCourse(course)
	require.Len(t, seq, 3, "レッスンのないモジュールは現れない")
	assert.Equal(t, []uuid.UUID{a, b, c}, []uuid.UUID{seq[0].LessonID, seq[1].LessonID, seq[2].LessonID})
	for i, e := range seq {
		assert.Equal(t, i, e.Index)
	}
	assert.Equal(t, m1, seq[0].ModuleID)
	assert.Equal(t, "M3", seq[2].ModuleTitle)

	assert.Empty(t, FlattenCourse(&model.Course{}))
	assert.NotNil(t, FlattenCourse(&model.Course{}), "空のシーケンスは nil ではなく空スライス")
}

func TestFlattenCourse_TieBreakByID(t *testing.T) {
	m := uuid.MustParse("00000000-0000-4000-8000-000000000001")
	low := uuid.MustParse("00000000-0000-4000-8000-0000000000aa")
	high := uuid.MustParse("00000000-0000-4000-8000-0000000000bb")
	course := &model.Course{Modules: []model.Module{{ModuleID: m, Lessons: []model.Lesson{
		{LessonID: high, Position: 1},
		{LessonID: low, Position: 1},
	}}}}

	seq := FlattenCourse(course)
	require.Len(t, seq, 2)
	assert.Equal(t, low, seq[0].LessonID)
	assert.Equal(t, high, seq[1].LessonID)
}

func TestResolveNeighbors(t *testing.T) {
	m1, m2, empty := uuid.New(), uuid.New(), uuid.New()
	l1, l2, l3 := uuid.New(), uuid.New(), uuid.New()
	course := &model.Course{Modules: []model.Module{
		{ModuleID: m1, Position: 1, Lessons: []model.Lesson{{LessonID: l1, Position: 1}, {LessonID: l2, Position: 2}}},
		{ModuleID: empty, Position: 2},
		{ModuleID: m2, Position: 3, Lessons: []model.Lesson{{LessonID: l3, Position: 1}}},
	}}

	t.Run("先頭は前が nil", func(t *testing.T) {
		n, err := ResolveNeighbors(course, nil, l1)
		require.NoError(t, err)
		assert.Nil(t, n.Previous)
		require.NotNil(t, n.Next)
		assert.Equal(t, l2, n.Next.LessonID)
	})

	t.Run("モジュールを跨いで次へ (空モジュールは飛ばす)", func(t *testing.T) {
		n, err := ResolveNeighbors(course, &m1, l2)
		require.NoError(t, err)
		assert.Equal(t, l1, n.Previous.LessonID)
		require.NotNil(t, n.Next)
		assert.Equal(t, l3, n.Next.LessonID)
		assert.Equal(t, m2, n.Next.ModuleID)
	})

	t.Run("末尾は次が nil", func(t *testing.T) {
		n, err := ResolveNeighbors(course, &m2, l3)
		require.NoError(t, err)
		assert.Nil(t, n.Next)
		assert.Equal(t, l2, n.Previous.LessonID)
	})

	t.Run("コースにないレッスン", func(t *testing.T) {
		_, err := ResolveNeighbors(course, nil, uuid.New())
		requireAppError(t, err, model.ErrNotFound, codeLessonNotFound)
	})

	t.Run("コースにないモジュール", func(t *testing.T) {
		other := uuid.New()
		_, err := ResolveNeighbors(course, &other, l1)
		requireAppError(t, err, model.ErrNotFound, codeModuleNotFound)
	})

	t.Run("別モジュールのレッスン", func(t *testing.T) {
		_, err := ResolveNeighbors(course, &m2, l1)
		requireAppError(t, err, model.ErrNotFound, codeLessonNotFound)
	})
}

func Test_curriculumService_GetSequence(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	seq, err := env.curriculum.GetSequence(ctx, courseA)
	require.NoError(t, err)
	require.Len(t, seq, 3)
	assert.Equal(t, lesson1, seq[0].LessonID)
	assert.Equal(t, lesson2, seq[1].LessonID)
	assert.Equal(t, lesson3, seq[2].LessonID)

	_, err = env.curriculum.GetSequence(ctx, uuid.New())
	requireAppError(t, err, model.ErrNotFound, codeCourseNotFound)

	n, err := env.curriculum.GetNeighbors(ctx, courseA, nil, lesson2)
	require.NoError(t, err)
	assert.Equal(t, module3, n.Next.ModuleID)

	_, err = env.curriculum.GetNeighbors(ctx, courseA, &module2, lesson2)
	requireAppError(t, err, model.ErrNotFound, codeLessonNotFound)
}

func Test_curriculumService_CourseTreeUsesCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	cache := repository.NewRedisCurriculumCache(client, time.Minute)

	env := newTestEnv(t, cache)
	ctx := context.Background()

	course, err := env.curriculum.CourseTree(ctx, courseA)
	require.NoError(t, err)
	require.Len(t, course.Modules, 3)
	assert.True(t, mr.Exists("curriculum:course:"+courseA.String()))

	// DB側を変えてもTTL内はキャッシュから返る
	require.NoError(t, env.db.Where("lesson_id = ?", lesson3).Delete(&model.Lesson{}).Error)
	seq, err := env.curriculum.GetSequence(ctx, courseA)
	require.NoError(t, err)
	assert.Len(t, seq, 3)

	// キャッシュ障害時はDBから読む
	mr.Close()
	seq, err = env.curriculum.GetSequence(ctx, courseA)
	require.NoError(t, err)
	assert.Len(t, seq, 2)
}

// slowCurriculumRepository はコースツリーの読み込みを delay だけ遅らせます
type slowCurriculumRepository struct {
	repository.CurriculumRepository
	delay   time.Duration
	calls   atomic.Int32
	started chan struct{}
	once    sync.Once
}

func (r *slowCurriculumRepository) FindCourseTree(ctx context.Context, db *gorm.DB, courseID uuid.UUID) (*model.Course, error) {
	r.calls.Add(1)
	r.once.Do(func() { close(r.started) })
	select {
	case <-time.After(r.delay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return r.CurriculumRepository.FindCourseTree(ctx, db, courseID)
}

func Test_curriculumService_CourseTreeSharedLoadIgnoresCallerCancel(t *testing.T) {
	env := newTestEnv(t, nil)
	repo := &slowCurriculumRepository{
		CurriculumRepository: repository.NewGormCurriculumRepository(),
		delay:                200 * time.Millisecond,
		started:              make(chan struct{}),
	}
	svc := NewCurriculumService(env.db, repo, repository.NewNopCurriculumCache())

	ctxA, cancelA := context.WithCancel(context.Background())
	defer cancelA()
	errA := make(chan error, 1)
	go func() {
		_, err := svc.CourseTree(ctxA, courseA)
		errA <- err
	}()

	select {
	case <-repo.started:
	case <-time.After(time.Second):
		t.Fatal("コースツリーの読み込みが始まらない")
	}

	type result struct {
		course *model.Course
		err    error
	}
	resB := make(chan result, 1)
	go func() {
		c, err := svc.CourseTree(context.Background(), courseA)
		resB <- result{course: c, err: err}
	}()

	// B が同じ読み込みに合流してから A をキャンセルする
	time.Sleep(30 * time.Millisecond)
	cancelA()

	select {
	case err := <-errA:
		assert.ErrorIs(t, err, context.Canceled, "キャンセルした呼び出し元は自分の ctx で戻る")
	case <-time.After(150 * time.Millisecond):
		t.Fatal("キャンセルした呼び出し元が読み込み完了まで待たされた")
	}

	b := <-resB
	require.NoError(t, b.err, "他の呼び出し元は影響を受けない")
	assert.Len(t, b.course.Modules, 3)
	assert.EqualValues(t, 1, repo.calls.Load(), "読み込みは1回に共有される")
}
