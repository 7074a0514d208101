package service

import (
	"context"
	"secaware_backend/internal/model"
	"secaware_backend/internal/repository"
	"secaware_backend/internal/util"
	"secaware_backend/pkg/monitoring"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// ProgressService 答题判定与阅读进度追踪
type ProgressService struct {
	UserRepo     *repository.UserRepository
	ModuleRepo   *repository.ModuleRepository
	ProgressRepo *repository.LearningProgressRepository
	AttemptRepo  *repository.QuestionAttemptRepository
	DB           *gorm.DB
	Redis        *redis.Client
}

func NewProgressService(
	userRepo *repository.UserRepository,
	moduleRepo *repository.ModuleRepository,
	progressRepo *repository.LearningProgressRepository,
	attemptRepo *repository.QuestionAttemptRepository,
	db *gorm.DB,
	rdb *redis.Client,
) *ProgressService {
	return &ProgressService{
		UserRepo:     userRepo,
		ModuleRepo:   moduleRepo,
		ProgressRepo: progressRepo,
		AttemptRepo:  attemptRepo,
		DB:           db,
		Redis:        rdb,
	}
}

type AnswerResult struct {
	IsCorrect      bool   `json:"isCorrect"`
	CorrectAnswer  string `json:"correctAnswer"`
	Explanation    string `json:"explanation"`
	XPAwarded      int    `json:"xpAwarded"`      // 本次调用实际发放的XP
	AlreadyAwarded bool   `json:"alreadyAwarded"` // 该题XP此前已发放
	TotalXP        int    `json:"totalXp"`
	Level          int    `json:"level"`
	SectionCorrect int    `json:"sectionCorrect"` // 所在节已答对题数（实时重算）
	SectionTotal   int    `json:"sectionTotal"`
}

// SubmitAnswer 单题作答
// 防刷分：XP 仅在「答对 且 此前无已答对/已发放记录」时发放一次。
// 防回退：已答对的记录不会被后续错误提交覆盖；被抑制的写入返回库中既有结果。
// 记录 upsert 与 XP 入账在同一事务内完成。
func (s *ProgressService) SubmitAnswer(userID, questionID uint, selectedIndex int) (*AnswerResult, error) {
	question, err := s.ModuleRepo.FindQuestionByID(questionID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrQuestionNotFound
		}
		return nil, err
	}

	options := question.OptionList()
	if selectedIndex < 0 || selectedIndex >= len(options) {
		return nil, util.ErrInvalidAnswerIndex
	}

	selectedAnswer := options[selectedIndex]
	isCorrect := selectedAnswer == question.CorrectAnswer

	result := &AnswerResult{
		CorrectAnswer: question.CorrectAnswer,
		Explanation:   question.Explanation,
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var prior model.QuestionAttempt
		priorErr := tx.Where("user_id = ? AND question_id = ?", userID, questionID).First(&prior).Error
		hasPrior := priorErr == nil
		if priorErr != nil && priorErr != gorm.ErrRecordNotFound {
			return priorErr
		}

		xpNow := 0
		if isCorrect && (!hasPrior || (!prior.IsCorrect && prior.XPAwarded == 0)) {
			xpNow = util.QuestionXPReward
		}

		// 写入条件：无既有记录，或本次答对
		shouldWrite := !hasPrior || isCorrect
		if !shouldWrite {
			result.IsCorrect = prior.IsCorrect
			result.AlreadyAwarded = prior.XPAwarded > 0
			return nil
		}

		now := time.Now()
		if !hasPrior {
			attempt := model.QuestionAttempt{
				UserID:         userID,
				QuestionID:     questionID,
				SelectedAnswer: selectedAnswer,
				IsCorrect:      isCorrect,
				XPAwarded:      xpNow,
				AnsweredAt:     now,
			}
			if createErr := tx.Create(&attempt).Error; createErr != nil {
				if !util.IsDuplicateKeyError(createErr) {
					return createErr
				}
				// 并发提交已抢先写入，吞掉冲突，按既有记录返回
				if reloadErr := tx.Where("user_id = ? AND question_id = ?", userID, questionID).First(&prior).Error; reloadErr != nil {
					return reloadErr
				}
				result.IsCorrect = prior.IsCorrect
				result.AlreadyAwarded = prior.XPAwarded > 0
				return nil
			}
		} else {
			// 条件更新以 XPAwarded 为乐观守卫，RowsAffected=0 说明被并发提交抢先
			res := tx.Model(&model.QuestionAttempt{}).
				Where("id = ? AND xp_awarded = ?", prior.ID, prior.XPAwarded).
				Updates(map[string]interface{}{
					"selected_answer": selectedAnswer,
					"is_correct":      isCorrect,
					"xp_awarded":      prior.XPAwarded + xpNow,
					"answered_at":     now,
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				if reloadErr := tx.Where("user_id = ? AND question_id = ?", userID, questionID).First(&prior).Error; reloadErr != nil {
					return reloadErr
				}
				result.IsCorrect = prior.IsCorrect
				result.AlreadyAwarded = prior.XPAwarded > 0
				return nil
			}
		}

		result.IsCorrect = isCorrect
		result.XPAwarded = xpNow
		result.AlreadyAwarded = hasPrior && prior.XPAwarded > 0

		if xpNow > 0 {
			if xpErr := repository.AddXPTx(tx, userID, xpNow); xpErr != nil {
				return xpErr
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.XPAwarded > 0 {
		monitoring.XPAwardedCounter.WithLabelValues("answer").Add(float64(result.XPAwarded))
		s.syncLeaderboard(userID, result.XPAwarded)
	}

	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}
	result.TotalXP = user.TotalXP
	result.Level = user.Level()

	correct, total, err := s.sectionQuestionProgress(userID, question.SectionID)
	if err != nil {
		return nil, err
	}
	result.SectionCorrect = correct
	result.SectionTotal = total

	return result, nil
}

func (s *ProgressService) sectionQuestionProgress(userID, sectionID uint) (int, int, error) {
	questions, err := s.ModuleRepo.ListQuestions(sectionID)
	if err != nil {
		return 0, 0, err
	}
	ids := make([]uint, len(questions))
	for i, q := range questions {
		ids[i] = q.ID
	}
	correct, err := s.AttemptRepo.CountCorrect(userID, ids)
	if err != nil {
		return 0, 0, err
	}
	return correct, len(questions), nil
}

// 排行榜 ZSET 尽力同步，失败只记日志不影响主流程
func (s *ProgressService) syncLeaderboard(userID uint, delta int) {
	if s.Redis == nil {
		return
	}
	ctx := context.Background()
	s.Redis.ZIncrBy(ctx, leaderboardKey, float64(delta), strconv.FormatUint(uint64(userID), 10))
}

// MarkContentComplete 标记单屏内容已读
func (s *ProgressService) MarkContentComplete(userID, itemID uint) error {
	if _, err := s.ModuleRepo.FindContentItemByID(itemID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return util.ErrContentItemNotFound
		}
		return err
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		return repository.MarkCompletedTx(tx, userID, itemID)
	})
}

// MarkSectionContentComplete 批量标记节内全部内容已读（乱序恢复场景）
// 整批一个事务，任何一条失败则全部回滚
func (s *ProgressService) MarkSectionContentComplete(userID, sectionID uint) error {
	items, err := s.ModuleRepo.ListContentItems(sectionID)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		if _, err := s.ModuleRepo.FindSectionByID(sectionID); err != nil {
			if err == gorm.ErrRecordNotFound {
				return util.ErrSectionNotFound
			}
			return err
		}
		return nil
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		for _, item := range items {
			if err := repository.MarkCompletedTx(tx, userID, item.ID); err != nil {
				return err
			}
		}
		return nil
	})
}

type ContentItemProgress struct {
	ID         uint   `json:"id"`
	OrderIndex int    `json:"orderIndex"`
	Title      string `json:"title"`
	Completed  bool   `json:"completed"`
}

type SectionContentProgress struct {
	SectionID      uint                  `json:"sectionId"`
	Items          []ContentItemProgress `json:"items"`
	CompletedCount int                   `json:"completedCount"`
	TotalCount     int                   `json:"totalCount"`
	Percentage     int                   `json:"percentage"`
}

// GetSectionProgress 节内阅读进度查询
func (s *ProgressService) GetSectionProgress(userID, sectionID uint) (*SectionContentProgress, error) {
	if _, err := s.ModuleRepo.FindSectionByID(sectionID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrSectionNotFound
		}
		return nil, err
	}

	items, err := s.ModuleRepo.ListContentItems(sectionID)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	completionMap, err := s.ProgressRepo.GetCompletionMap(userID, ids)
	if err != nil {
		return nil, err
	}

	progress := &SectionContentProgress{
		SectionID:  sectionID,
		Items:      make([]ContentItemProgress, len(items)),
		TotalCount: len(items),
	}
	for i, item := range items {
		completed := completionMap[item.ID]
		progress.Items[i] = ContentItemProgress{
			ID:         item.ID,
			OrderIndex: item.OrderIndex,
			Title:      item.Title,
			Completed:  completed,
		}
		if completed {
			progress.CompletedCount++
		}
	}
	progress.Percentage = util.RoundPercent(progress.CompletedCount, progress.TotalCount)

	return progress, nil
}
