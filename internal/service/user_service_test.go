package service

import (
	"testing"

	"secaware_backend/internal/model"
	"secaware_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelForXP(t *testing.T) {
	assert.Equal(t, 1, model.LevelForXP(0))
	assert.Equal(t, 1, model.LevelForXP(99))
	assert.Equal(t, 2, model.LevelForXP(100))
	assert.Equal(t, 3, model.LevelForXP(250))
	assert.Equal(t, 1, model.LevelForXP(-5))
}

func TestLevelDerivedFromLedger(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice")
	module := env.createModule(t, 1)
	section := env.createSection(t, module.ID, 1)

	// 答对 10 题跨过 100 XP，等级随账本推导
	for i := 1; i <= 10; i++ {
		q := env.createQuestion(t, section.ID, i, 0)
		result, err := env.progressSvc.SubmitAnswer(user.ID, q.ID, 0)
		require.NoError(t, err)
		assert.Equal(t, model.LevelForXP(result.TotalXP), result.Level)
	}

	assert.Equal(t, 100, env.totalXP(t, user.ID))
	stats, err := env.userSvc.GetStatistics(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Level)
}

func TestGetStatisticsUsesStricterThreshold(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "bob")
	module := env.createModule(t, 1)
	section := env.createSection(t, module.ID, 1)
	questions := make([]*model.Question, 4)
	for i := range questions {
		questions[i] = env.createQuestion(t, section.ID, i+1, 0)
	}

	// 3/4 = 75%：解锁阈值通过，统计阈值不通过
	for _, q := range questions[:3] {
		_, err := env.progressSvc.SubmitAnswer(user.ID, q.ID, 0)
		require.NoError(t, err)
	}

	overviews, err := env.moduleSvc.ListSections(user.ID, module.ID)
	require.NoError(t, err)
	assert.True(t, overviews[0].Completed)

	stats, err := env.userSvc.GetStatistics(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.SectionsCompleted)
	assert.Equal(t, 0, stats.QuizzesPassed)
	assert.Equal(t, 1, stats.ModulesStarted)
	assert.Equal(t, 0, stats.ModulesCompleted)

	// 补齐最后一题后两个口径都满足
	_, err = env.progressSvc.SubmitAnswer(user.ID, questions[3].ID, 0)
	require.NoError(t, err)

	stats, err = env.userSvc.GetStatistics(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.SectionsCompleted)
	assert.Equal(t, 1, stats.QuizzesPassed)
	assert.Equal(t, 1, stats.ModulesCompleted)
}

func TestGetStatisticsCountsContentItems(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "carol")
	module := env.createModule(t, 1)
	section := env.createSection(t, module.ID, 1)
	i1 := env.createContent(t, section.ID, 1)
	env.createContent(t, section.ID, 2)

	require.NoError(t, env.progressSvc.MarkContentComplete(user.ID, i1.ID))

	stats, err := env.userSvc.GetStatistics(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.ContentItemsCompleted)
	assert.Equal(t, 1, stats.ModulesStarted)
	assert.Equal(t, 0, stats.SectionsCompleted)

	_, err = env.userSvc.GetStatistics(9999)
	assert.ErrorIs(t, err, util.ErrUserNotFound)
}

func TestGetLeaderboardFallsBackToDatabase(t *testing.T) {
	env := newTestEnv(t)
	low := env.createUser(t, "low")
	mid := env.createUser(t, "mid")
	top := env.createUser(t, "top")

	require.NoError(t, env.users.AddXP(low.ID, 10))
	require.NoError(t, env.users.AddXP(mid.ID, 120))
	require.NoError(t, env.users.AddXP(top.ID, 300))

	entries, err := env.userSvc.GetLeaderboard(2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, top.ID, entries[0].UserID)
	assert.Equal(t, 300, entries[0].TotalXP)
	assert.Equal(t, 4, entries[0].Level)
	assert.Equal(t, mid.ID, entries[1].UserID)
}

func TestSetDisabled(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "dave")

	require.NoError(t, env.userSvc.SetDisabled(user.ID, true))

	reloaded, err := env.users.FindByID(user.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.Disabled)

	assert.ErrorIs(t, env.userSvc.SetDisabled(9999, true), util.ErrUserNotFound)
}

func TestAddXPRejectsNonPositiveDelta(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "erin")

	require.NoError(t, env.users.AddXP(user.ID, 50))
	require.NoError(t, env.users.AddXP(user.ID, 0))
	require.NoError(t, env.users.AddXP(user.ID, -30))

	// 账本只增不减
	assert.Equal(t, 50, env.totalXP(t, user.ID))
}
