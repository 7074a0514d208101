package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListSectionsSequentialUnlock(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice")
	module := env.createModule(t, 1)

	s1 := env.createSection(t, module.ID, 1)
	item := env.createContent(t, s1.ID, 1)
	s2 := env.createSection(t, module.ID, 2)
	q1 := env.createQuestion(t, s2.ID, 1, 0)
	q2 := env.createQuestion(t, s2.ID, 2, 0)
	s3 := env.createSection(t, module.ID, 3)
	env.createContent(t, s3.ID, 1)

	// 初始只有第一节可进入
	overviews, err := env.moduleSvc.ListSections(user.ID, module.ID)
	require.NoError(t, err)
	require.Len(t, overviews, 3)
	assert.True(t, overviews[0].Available)
	assert.False(t, overviews[1].Available)
	assert.False(t, overviews[2].Available)

	// 完成第一节解锁第二节
	require.NoError(t, env.progressSvc.MarkContentComplete(user.ID, item.ID))
	overviews, err = env.moduleSvc.ListSections(user.ID, module.ID)
	require.NoError(t, err)
	assert.True(t, overviews[0].Completed)
	assert.True(t, overviews[1].Available)
	assert.False(t, overviews[2].Available)

	// 测验 1/2 = 50% 不达标，第三节仍锁定
	_, err = env.quizSvc.SubmitQuiz(user.ID, s2.ID, QuizSubmission{
		Answers: map[uint]int{q1.ID: 0, q2.ID: 1},
	})
	require.NoError(t, err)
	overviews, err = env.moduleSvc.ListSections(user.ID, module.ID)
	require.NoError(t, err)
	assert.False(t, overviews[1].Completed)
	assert.Equal(t, 50, overviews[1].ScorePercent)
	assert.False(t, overviews[2].Available)

	// 补齐答对后达标，第三节解锁
	_, err = env.quizSvc.SubmitQuiz(user.ID, s2.ID, QuizSubmission{
		Answers: map[uint]int{q2.ID: 0},
	})
	require.NoError(t, err)
	overviews, err = env.moduleSvc.ListSections(user.ID, module.ID)
	require.NoError(t, err)
	assert.True(t, overviews[1].Completed)
	assert.True(t, overviews[2].Available)
}

func TestListSectionsEmptySectionSkipped(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "bob")
	module := env.createModule(t, 1)

	s1 := env.createSection(t, module.ID, 1)
	item := env.createContent(t, s1.ID, 1)
	env.createSection(t, module.ID, 2) // 空节
	s3 := env.createSection(t, module.ID, 3)
	env.createContent(t, s3.ID, 1)

	require.NoError(t, env.progressSvc.MarkContentComplete(user.ID, item.ID))

	overviews, err := env.moduleSvc.ListSections(user.ID, module.ID)
	require.NoError(t, err)
	require.Len(t, overviews, 3)
	// 空节可进入但永不完成，且不阻塞第三节
	assert.True(t, overviews[1].Available)
	assert.False(t, overviews[1].Completed)
	assert.True(t, overviews[2].Available)
}

func TestListModulesGatedByPreviousModule(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "carol")

	m1 := env.createModule(t, 1)
	s1 := env.createSection(t, m1.ID, 1)
	i1 := env.createContent(t, s1.ID, 1)
	s2 := env.createSection(t, m1.ID, 2)
	i2 := env.createContent(t, s2.ID, 1)

	m2 := env.createModule(t, 2)
	s3 := env.createSection(t, m2.ID, 1)
	env.createContent(t, s3.ID, 1)

	overviews, err := env.moduleSvc.ListModules(user.ID)
	require.NoError(t, err)
	require.Len(t, overviews, 2)
	assert.True(t, overviews[0].Available)
	assert.False(t, overviews[1].Available)
	assert.Equal(t, 0, overviews[0].CompletionPercentage)

	// 完成一半
	require.NoError(t, env.progressSvc.MarkContentComplete(user.ID, i1.ID))
	overviews, err = env.moduleSvc.ListModules(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, overviews[0].CompletionPercentage)
	assert.False(t, overviews[0].Completed)
	assert.False(t, overviews[1].Available)

	// 全部完成后下一模块解锁
	require.NoError(t, env.progressSvc.MarkContentComplete(user.ID, i2.ID))
	overviews, err = env.moduleSvc.ListModules(user.ID)
	require.NoError(t, err)
	assert.True(t, overviews[0].Completed)
	assert.Equal(t, 100, overviews[0].CompletionPercentage)
	assert.True(t, overviews[1].Available)
}

func TestListModulesHasStarted(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "dave")
	module := env.createModule(t, 1)
	section := env.createSection(t, module.ID, 1)
	env.createContent(t, section.ID, 1)
	env.createContent(t, section.ID, 2)

	overviews, err := env.moduleSvc.ListModules(user.ID)
	require.NoError(t, err)
	assert.False(t, overviews[0].HasStarted)

	// 阅读位置前进即算开始
	require.NoError(t, env.quizSvc.SaveReadingPosition(user.ID, section.ID, 1))
	overviews, err = env.moduleSvc.ListModules(user.ID)
	require.NoError(t, err)
	assert.True(t, overviews[0].HasStarted)
}

func TestListModulesHasStartedByDraft(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "erin")
	module := env.createModule(t, 1)
	section := env.createSection(t, module.ID, 1)
	q := env.createQuestion(t, section.ID, 1, 0)

	require.NoError(t, env.quizSvc.SaveDraft(user.ID, section.ID, QuizDraftRequest{
		Answers: map[uint]int{q.ID: 1},
	}))

	overviews, err := env.moduleSvc.ListModules(user.ID)
	require.NoError(t, err)
	assert.True(t, overviews[0].HasStarted)
}

func TestGetSectionDetailSanitizesQuestions(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "frank")
	module := env.createModule(t, 1)
	section := env.createSection(t, module.ID, 1)
	item := env.createContent(t, section.ID, 1)
	q1 := env.createQuestion(t, section.ID, 1, 0)
	env.createQuestion(t, section.ID, 2, 1)

	require.NoError(t, env.progressSvc.MarkContentComplete(user.ID, item.ID))
	_, err := env.progressSvc.SubmitAnswer(user.ID, q1.ID, 0)
	require.NoError(t, err)

	detail, err := env.moduleSvc.GetSectionDetail(user.ID, section.ID)
	require.NoError(t, err)

	require.Len(t, detail.ContentItems, 1)
	assert.True(t, detail.ContentItems[0].Completed)

	require.Len(t, detail.Questions, 2)
	// 题目视图只带题干和选项，作答状态按记录回填
	assert.Len(t, detail.Questions[0].Options, 3)
	assert.True(t, detail.Questions[0].Answered)
	assert.True(t, detail.Questions[0].IsCorrect)
	assert.False(t, detail.Questions[1].Answered)
}

func TestGetSectionDetailIncludesDraftAndPosition(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "grace")
	module := env.createModule(t, 1)
	section := env.createSection(t, module.ID, 1)
	env.createContent(t, section.ID, 1)
	env.createContent(t, section.ID, 2)
	q := env.createQuestion(t, section.ID, 1, 0)

	require.NoError(t, env.quizSvc.SaveReadingPosition(user.ID, section.ID, 1))
	require.NoError(t, env.quizSvc.SaveDraft(user.ID, section.ID, QuizDraftRequest{
		CurrentQuestionIndex: 0,
		Answers:              map[uint]int{q.ID: 2},
	}))

	detail, err := env.moduleSvc.GetSectionDetail(user.ID, section.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, detail.ReadingPosition)
	require.NotNil(t, detail.Draft)
	assert.Equal(t, map[uint]int{q.ID: 2}, detail.Draft.Answers)
}
