package service

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"secaware_backend/internal/model"
	"secaware_backend/internal/repository"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type testEnv struct {
	db *gorm.DB

	users    *repository.UserRepository
	modules  *repository.ModuleRepository
	progress *repository.LearningProgressRepository
	attempts *repository.QuestionAttemptRepository
	drafts   *repository.DraftRepository

	moduleSvc   *ModuleService
	progressSvc *ProgressService
	quizSvc     *QuizService
	userSvc     *UserService
}

// newTestEnv 每个测试独立的内存库，全部服务共享一套仓储
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.TrainingModule{},
		&model.Section{},
		&model.LearningContentItem{},
		&model.LearningProgress{},
		&model.Question{},
		&model.QuestionAttempt{},
		&model.QuizDraft{},
		&model.ReadingPosition{},
	))

	env := &testEnv{
		db:       db,
		users:    repository.NewUserRepository(db),
		modules:  repository.NewModuleRepository(db),
		progress: repository.NewLearningProgressRepository(db),
		attempts: repository.NewQuestionAttemptRepository(db),
		drafts:   repository.NewDraftRepository(db),
	}
	env.moduleSvc = NewModuleService(env.modules, env.progress, env.attempts, env.drafts)
	env.progressSvc = NewProgressService(env.users, env.modules, env.progress, env.attempts, db, nil)
	env.quizSvc = NewQuizService(env.users, env.modules, env.attempts, env.drafts, db, nil)
	env.userSvc = NewUserService(env.users, env.modules, env.progress, env.attempts, env.moduleSvc, nil, nil)
	return env
}

func (e *testEnv) createUser(t *testing.T, name string) *model.User {
	t.Helper()
	user := &model.User{
		Name:     name,
		Email:    name + "@example.com",
		Password: "hashed",
		Role:     model.Learner,
	}
	require.NoError(t, e.db.Create(user).Error)
	return user
}

func (e *testEnv) createModule(t *testing.T, order int) *model.TrainingModule {
	t.Helper()
	module := &model.TrainingModule{
		Title:      fmt.Sprintf("模块%d", order),
		OrderIndex: order,
	}
	require.NoError(t, e.db.Create(module).Error)
	return module
}

func (e *testEnv) createSection(t *testing.T, moduleID uint, order int) *model.Section {
	t.Helper()
	section := &model.Section{
		ModuleID:   moduleID,
		Title:      fmt.Sprintf("小节%d", order),
		OrderIndex: order,
	}
	require.NoError(t, e.db.Create(section).Error)
	return section
}

func (e *testEnv) createContent(t *testing.T, sectionID uint, order int) *model.LearningContentItem {
	t.Helper()
	item := &model.LearningContentItem{
		SectionID:  sectionID,
		OrderIndex: order,
		Title:      fmt.Sprintf("内容%d", order),
		Body:       "正文",
	}
	require.NoError(t, e.db.Create(item).Error)
	return item
}

// createQuestion 三个选项，correctIdx 指定正确选项
func (e *testEnv) createQuestion(t *testing.T, sectionID uint, order, correctIdx int) *model.Question {
	t.Helper()
	options := []string{
		fmt.Sprintf("选项A-%d", order),
		fmt.Sprintf("选项B-%d", order),
		fmt.Sprintf("选项C-%d", order),
	}
	optionsJSON, err := json.Marshal(options)
	require.NoError(t, err)

	question := &model.Question{
		SectionID:     sectionID,
		OrderIndex:    order,
		Text:          fmt.Sprintf("题目%d", order),
		Options:       string(optionsJSON),
		CorrectAnswer: options[correctIdx],
		Explanation:   "解析",
	}
	require.NoError(t, e.db.Create(question).Error)
	return question
}

func (e *testEnv) totalXP(t *testing.T, userID uint) int {
	t.Helper()
	user, err := e.users.FindByID(userID)
	require.NoError(t, err)
	return user.TotalXP
}
