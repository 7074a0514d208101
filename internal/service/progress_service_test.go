package service

import (
	"testing"

	"secaware_backend/internal/model"
	"secaware_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitAnswerAwardsXPOnce(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice")
	module := env.createModule(t, 1)
	section := env.createSection(t, module.ID, 1)
	question := env.createQuestion(t, section.ID, 1, 0)

	result, err := env.progressSvc.SubmitAnswer(user.ID, question.ID, 0)
	require.NoError(t, err)
	assert.True(t, result.IsCorrect)
	assert.Equal(t, util.QuestionXPReward, result.XPAwarded)
	assert.False(t, result.AlreadyAwarded)
	assert.Equal(t, util.QuestionXPReward, result.TotalXP)
	assert.Equal(t, 1, result.Level)

	// 重复答对不再发放
	result, err = env.progressSvc.SubmitAnswer(user.ID, question.ID, 0)
	require.NoError(t, err)
	assert.True(t, result.IsCorrect)
	assert.Equal(t, 0, result.XPAwarded)
	assert.True(t, result.AlreadyAwarded)
	assert.Equal(t, util.QuestionXPReward, result.TotalXP)
	assert.Equal(t, util.QuestionXPReward, env.totalXP(t, user.ID))
}

func TestSubmitAnswerWrongThenCorrect(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "bob")
	module := env.createModule(t, 1)
	section := env.createSection(t, module.ID, 1)
	question := env.createQuestion(t, section.ID, 1, 0)

	result, err := env.progressSvc.SubmitAnswer(user.ID, question.ID, 1)
	require.NoError(t, err)
	assert.False(t, result.IsCorrect)
	assert.Equal(t, 0, result.XPAwarded)
	assert.Equal(t, question.CorrectAnswer, result.CorrectAnswer)
	assert.Equal(t, "解析", result.Explanation)
	assert.Equal(t, 0, env.totalXP(t, user.ID))

	// 错误之后答对，正常发放一次
	result, err = env.progressSvc.SubmitAnswer(user.ID, question.ID, 0)
	require.NoError(t, err)
	assert.True(t, result.IsCorrect)
	assert.Equal(t, util.QuestionXPReward, result.XPAwarded)
	assert.Equal(t, util.QuestionXPReward, env.totalXP(t, user.ID))
}

func TestSubmitAnswerCorrectnessIsSticky(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "carol")
	module := env.createModule(t, 1)
	section := env.createSection(t, module.ID, 1)
	question := env.createQuestion(t, section.ID, 1, 0)

	_, err := env.progressSvc.SubmitAnswer(user.ID, question.ID, 0)
	require.NoError(t, err)

	// 已答对的记录不会被后续错误提交覆盖
	result, err := env.progressSvc.SubmitAnswer(user.ID, question.ID, 2)
	require.NoError(t, err)
	assert.True(t, result.IsCorrect)
	assert.True(t, result.AlreadyAwarded)
	assert.Equal(t, 0, result.XPAwarded)

	attempt, err := env.attempts.FindByUserAndQuestion(user.ID, question.ID)
	require.NoError(t, err)
	assert.True(t, attempt.IsCorrect)
	assert.Equal(t, util.QuestionXPReward, attempt.XPAwarded)
}

func TestSubmitAnswerInvalidIndexRejectedBeforeWrite(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "dave")
	module := env.createModule(t, 1)
	section := env.createSection(t, module.ID, 1)
	question := env.createQuestion(t, section.ID, 1, 0)

	_, err := env.progressSvc.SubmitAnswer(user.ID, question.ID, 3)
	assert.ErrorIs(t, err, util.ErrInvalidAnswerIndex)

	_, err = env.progressSvc.SubmitAnswer(user.ID, question.ID, -1)
	assert.ErrorIs(t, err, util.ErrInvalidAnswerIndex)

	// 拒绝发生在任何写入之前
	_, err = env.attempts.FindByUserAndQuestion(user.ID, question.ID)
	assert.Error(t, err)
	assert.Equal(t, 0, env.totalXP(t, user.ID))
}

func TestSubmitAnswerUnknownQuestion(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "erin")

	_, err := env.progressSvc.SubmitAnswer(user.ID, 9999, 0)
	assert.ErrorIs(t, err, util.ErrQuestionNotFound)
}

func TestSubmitAnswerSectionAggregate(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "frank")
	module := env.createModule(t, 1)
	section := env.createSection(t, module.ID, 1)
	q1 := env.createQuestion(t, section.ID, 1, 0)
	env.createQuestion(t, section.ID, 2, 1)

	result, err := env.progressSvc.SubmitAnswer(user.ID, q1.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, result.SectionCorrect)
	assert.Equal(t, 2, result.SectionTotal)
}

func TestMarkContentCompleteIdempotent(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "grace")
	module := env.createModule(t, 1)
	section := env.createSection(t, module.ID, 1)
	item := env.createContent(t, section.ID, 1)

	require.NoError(t, env.progressSvc.MarkContentComplete(user.ID, item.ID))
	require.NoError(t, env.progressSvc.MarkContentComplete(user.ID, item.ID))

	var count int64
	require.NoError(t, env.db.Model(&model.LearningProgress{}).
		Where("user_id = ? AND content_item_id = ?", user.ID, item.ID).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)

	assert.ErrorIs(t, env.progressSvc.MarkContentComplete(user.ID, 9999), util.ErrContentItemNotFound)
}

func TestMarkSectionContentComplete(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "heidi")
	module := env.createModule(t, 1)
	section := env.createSection(t, module.ID, 1)
	env.createContent(t, section.ID, 1)
	env.createContent(t, section.ID, 2)
	env.createContent(t, section.ID, 3)

	require.NoError(t, env.progressSvc.MarkSectionContentComplete(user.ID, section.ID))

	progress, err := env.progressSvc.GetSectionProgress(user.ID, section.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, progress.CompletedCount)
	assert.Equal(t, 3, progress.TotalCount)
	assert.Equal(t, 100, progress.Percentage)

	assert.ErrorIs(t, env.progressSvc.MarkSectionContentComplete(user.ID, 9999), util.ErrSectionNotFound)
}

func TestGetSectionProgressPercentage(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "ivan")
	module := env.createModule(t, 1)
	section := env.createSection(t, module.ID, 1)
	item := env.createContent(t, section.ID, 1)
	env.createContent(t, section.ID, 2)
	env.createContent(t, section.ID, 3)

	require.NoError(t, env.progressSvc.MarkContentComplete(user.ID, item.ID))

	progress, err := env.progressSvc.GetSectionProgress(user.ID, section.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, progress.CompletedCount)
	// 1/3 四舍五入为 33
	assert.Equal(t, 33, progress.Percentage)
	require.Len(t, progress.Items, 3)
	assert.True(t, progress.Items[0].Completed)
	assert.False(t, progress.Items[1].Completed)
}

func TestGetSectionProgressEmptySection(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "judy")
	module := env.createModule(t, 1)
	section := env.createSection(t, module.ID, 1)

	progress, err := env.progressSvc.GetSectionProgress(user.ID, section.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, progress.TotalCount)
	assert.Equal(t, 0, progress.Percentage)
}
