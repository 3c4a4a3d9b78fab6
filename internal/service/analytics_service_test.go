package service

import (
	"context"
	"testing"

	"go_4_learn_progress/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_analyticsService_CompareTests(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	cmp, err := env.analytics.CompareTests(ctx, enrollA, courseA)
	require.NoError(t, err)
	assert.False(t, cmp.Ready)
	assert.Equal(t, model.PreTestIncomplete, cmp.Reason)
	assert.Equal(t, msgPreTestIncomplete, cmp.Message)

	// 事前テスト: 1/2 正解 → 50
	firstPre := takeQuiz(t, env, quizPre, enrollA, optionAnswer(preQ1, preQ1Good))
	// 2回目の事前テストは比較に使わない
	takeQuiz(t, env, quizPre, enrollA, optionAnswer(preQ1, preQ1Good), optionAnswer(preQ2, preQ2Good))

	cmp, err = env.analytics.CompareTests(ctx, enrollA, courseA)
	require.NoError(t, err)
	assert.False(t, cmp.Ready)
	assert.Equal(t, model.PostTestIncomplete, cmp.Reason)
	assert.Equal(t, msgPostTestIncomplete, cmp.Message)
	require.NotNil(t, cmp.PreTest)
	assert.Equal(t, firstPre.AttemptID, cmp.PreTest.AttemptID)

	// 事後テスト: 1回目 0点、2回目 (最新) 満点
	takeQuiz(t, env, quizPost, enrollA)
	latestPost := takeQuiz(t, env, quizPost, enrollA, optionAnswer(postQ1, postQ1Good), optionAnswer(postQ2, postQ2Good))

	cmp, err = env.analytics.CompareTests(ctx, enrollA, courseA)
	require.NoError(t, err)
	assert.True(t, cmp.Ready)
	assert.Empty(t, cmp.Reason)
	assert.Equal(t, 50.0, cmp.PreTest.Score)
	assert.Equal(t, latestPost.AttemptID, cmp.PostTest.AttemptID)
	assert.Equal(t, 100.0, cmp.PostTest.Score)
	require.NotNil(t, cmp.Comparison)
	assert.Equal(t, 50.0, cmp.Comparison.Improvement)
	assert.Equal(t, 100.0, cmp.Comparison.ImprovementPercentage)
}

func Test_analyticsService_CompareTests_NotConfigured(t *testing.T) {
	env := newTestEnv(t, nil)

	_, err := env.analytics.CompareTests(context.Background(), enrollB, courseB)
	requireAppError(t, err, model.ErrNotFound, codeTestsNotSet)

	_, err = env.analytics.CompareTests(context.Background(), enrollB, courseA)
	requireAppError(t, err, model.ErrNotFound, codeEnrollmentMissing)
}

func TestCompareScores(t *testing.T) {
	tests := []struct {
		name    string
		pre     float64
		post    float64
		wantImp float64
		wantPct float64
	}{
		{name: "伸びあり", pre: 40, post: 70, wantImp: 30, wantPct: 75},
		{name: "倍以上はクランプ", pre: 20, post: 90, wantImp: 70, wantPct: 100},
		{name: "低下は0%", pre: 80, post: 60, wantImp: -20, wantPct: 0},
		{name: "事前0点で伸びあり", pre: 0, post: 50, wantImp: 50, wantPct: 100},
		{name: "両方0点", pre: 0, post: 0, wantImp: 0, wantPct: 0},
		{name: "小数は2桁", pre: 33.33, post: 66.67, wantImp: 33.34, wantPct: 100},
		{name: "端数の伸び率", pre: 66.67, post: 77.78, wantImp: 11.11, wantPct: 16.66},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CompareScores(tt.pre, tt.post)
			assert.InDelta(t, tt.wantImp, got.Improvement, 0.001)
			assert.InDelta(t, tt.wantPct, got.ImprovementPercentage, 0.001)
		})
	}
}
