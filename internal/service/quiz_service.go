package service

import (
	"context"
	"encoding/json"
	"secaware_backend/internal/model"
	"secaware_backend/internal/repository"
	"secaware_backend/internal/util"
	"secaware_backend/pkg/monitoring"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// QuizService 整卷提交、测验草稿与阅读位置
type QuizService struct {
	UserRepo    *repository.UserRepository
	ModuleRepo  *repository.ModuleRepository
	AttemptRepo *repository.QuestionAttemptRepository
	DraftRepo   *repository.DraftRepository
	DB          *gorm.DB
	Redis       *redis.Client
}

func NewQuizService(
	userRepo *repository.UserRepository,
	moduleRepo *repository.ModuleRepository,
	attemptRepo *repository.QuestionAttemptRepository,
	draftRepo *repository.DraftRepository,
	db *gorm.DB,
	rdb *redis.Client,
) *QuizService {
	return &QuizService{
		UserRepo:    userRepo,
		ModuleRepo:  moduleRepo,
		AttemptRepo: attemptRepo,
		DraftRepo:   draftRepo,
		DB:          db,
		Redis:       rdb,
	}
}

type QuizSubmission struct {
	Answers map[uint]int `json:"answers" binding:"required"` // 题目ID -> 选项下标
}

type QuizQuestionResult struct {
	QuestionID    uint   `json:"questionId"`
	IsCorrect     bool   `json:"isCorrect"`
	NewlyCorrect  bool   `json:"newlyCorrect"`
	CorrectAnswer string `json:"correctAnswer"`
	Explanation   string `json:"explanation"`
}

type QuizSubmitResult struct {
	SectionID         uint                 `json:"sectionId"`
	TotalQuestions    int                  `json:"totalQuestions"`
	CorrectAnswers    int                  `json:"correctAnswers"`    // 含历史已答对
	NewCorrectAnswers int                  `json:"newCorrectAnswers"` // 本次新答对
	ScorePercent      int                  `json:"scorePercent"`
	Passed            bool                 `json:"passed"`
	XPEarned          int                  `json:"xpEarned"`
	PerfectBonus      bool                 `json:"perfectBonus"`
	TotalXP           int                  `json:"totalXp"`
	Level             int                  `json:"level"`
	Results           []QuizQuestionResult `json:"results"`
}

// SubmitQuiz 整卷提交
// 每题套用与单题提交相同的粘性/幂等规则；XP = round(新答对/总题数*50)，
// 仅当全部题目在本次均为新答对时追加一次 25 满分奖励（防重交刷奖励）。
// 批量题目写入、XP 入账与草稿删除是同一事务。
func (s *QuizService) SubmitQuiz(userID, sectionID uint, submission QuizSubmission) (*QuizSubmitResult, error) {
	if _, err := s.ModuleRepo.FindSectionByID(sectionID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrSectionNotFound
		}
		return nil, err
	}

	questions, err := s.ModuleRepo.ListQuestions(sectionID)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, util.ErrNoQuizQuestions
	}

	// 先整体校验，任何一个越界下标都在写入前拒绝
	type graded struct {
		question  model.Question
		answered  bool
		selected  string
		isCorrect bool
	}
	gradedList := make([]graded, len(questions))
	for i, q := range questions {
		g := graded{question: q}
		if idx, ok := submission.Answers[q.ID]; ok {
			options := q.OptionList()
			if idx < 0 || idx >= len(options) {
				return nil, util.ErrInvalidAnswerIndex
			}
			g.answered = true
			g.selected = options[idx]
			g.isCorrect = g.selected == q.CorrectAnswer
		}
		gradedList[i] = g
	}

	result := &QuizSubmitResult{
		SectionID:      sectionID,
		TotalQuestions: len(questions),
		Results:        make([]QuizQuestionResult, 0, len(questions)),
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		now := time.Now()

		for _, g := range gradedList {
			qr := QuizQuestionResult{
				QuestionID:    g.question.ID,
				CorrectAnswer: g.question.CorrectAnswer,
				Explanation:   g.question.Explanation,
			}

			var prior model.QuestionAttempt
			priorErr := tx.Where("user_id = ? AND question_id = ?", userID, g.question.ID).First(&prior).Error
			hasPrior := priorErr == nil
			if priorErr != nil && priorErr != gorm.ErrRecordNotFound {
				return priorErr
			}

			if !g.answered {
				// 未作答的题按既有记录计分
				qr.IsCorrect = hasPrior && prior.IsCorrect
				result.Results = append(result.Results, qr)
				if qr.IsCorrect {
					result.CorrectAnswers++
				}
				continue
			}

			newlyCorrect := g.isCorrect && (!hasPrior || (!prior.IsCorrect && prior.XPAwarded == 0))

			shouldWrite := !hasPrior || g.isCorrect
			if shouldWrite {
				xpMark := 0
				if newlyCorrect {
					xpMark = util.QuestionXPReward
				}
				if !hasPrior {
					attempt := model.QuestionAttempt{
						UserID:         userID,
						QuestionID:     g.question.ID,
						SelectedAnswer: g.selected,
						IsCorrect:      g.isCorrect,
						XPAwarded:      xpMark,
						AnsweredAt:     now,
					}
					if createErr := tx.Create(&attempt).Error; createErr != nil {
						if !util.IsDuplicateKeyError(createErr) {
							return createErr
						}
						// 并发抢先，按对方结果计
						if reloadErr := tx.Where("user_id = ? AND question_id = ?", userID, g.question.ID).First(&prior).Error; reloadErr != nil {
							return reloadErr
						}
						newlyCorrect = false
						g.isCorrect = prior.IsCorrect
					}
				} else {
					res := tx.Model(&model.QuestionAttempt{}).
						Where("id = ? AND xp_awarded = ?", prior.ID, prior.XPAwarded).
						Updates(map[string]interface{}{
							"selected_answer": g.selected,
							"is_correct":      g.isCorrect,
							"xp_awarded":      prior.XPAwarded + xpMark,
							"answered_at":     now,
						})
					if res.Error != nil {
						return res.Error
					}
					if res.RowsAffected == 0 {
						if reloadErr := tx.Where("user_id = ? AND question_id = ?", userID, g.question.ID).First(&prior).Error; reloadErr != nil {
							return reloadErr
						}
						newlyCorrect = false
						g.isCorrect = prior.IsCorrect
					}
				}
			} else {
				// 写入被粘性规则抑制，结果以库中记录为准
				g.isCorrect = prior.IsCorrect
				newlyCorrect = false
			}

			qr.IsCorrect = g.isCorrect
			qr.NewlyCorrect = newlyCorrect
			result.Results = append(result.Results, qr)

			if g.isCorrect {
				result.CorrectAnswers++
			}
			if newlyCorrect {
				result.NewCorrectAnswers++
			}
		}

		xp := util.RoundShare(result.NewCorrectAnswers, result.TotalQuestions, util.QuizXPPool)
		if result.CorrectAnswers == result.TotalQuestions &&
			result.NewCorrectAnswers == result.TotalQuestions {
			xp += util.PerfectQuizBonus
			result.PerfectBonus = true
		}
		result.XPEarned = xp

		if xp > 0 {
			if xpErr := repository.AddXPTx(tx, userID, xp); xpErr != nil {
				return xpErr
			}
		}

		return repository.DeleteDraftTx(tx, userID, sectionID)
	})
	if err != nil {
		return nil, err
	}

	result.ScorePercent = util.RoundPercent(result.CorrectAnswers, result.TotalQuestions)
	result.Passed = result.ScorePercent >= util.PassThresholdUnlock

	if result.XPEarned > 0 {
		monitoring.XPAwardedCounter.WithLabelValues("quiz").Add(float64(result.XPEarned))
		s.syncLeaderboard(userID, result.XPEarned)
	}
	monitoring.QuizSubmissionCounter.WithLabelValues(strconv.FormatBool(result.Passed)).Inc()

	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}
	result.TotalXP = user.TotalXP
	result.Level = user.Level()

	return result, nil
}

func (s *QuizService) syncLeaderboard(userID uint, delta int) {
	if s.Redis == nil {
		return
	}
	ctx := context.Background()
	s.Redis.ZIncrBy(ctx, leaderboardKey, float64(delta), strconv.FormatUint(uint64(userID), 10))
}

type QuizDraftRequest struct {
	CurrentQuestionIndex int          `json:"currentQuestionIndex"`
	Answers              map[uint]int `json:"answers"`
}

type QuizDraftState struct {
	SectionID            uint         `json:"sectionId"`
	CurrentQuestionIndex int          `json:"currentQuestionIndex"`
	Answers              map[uint]int `json:"answers"`
	UpdatedAt            time.Time    `json:"updatedAt"`
}

// SaveDraft 保存测验草稿，草稿丢失可恢复，不影响完成度与XP
func (s *QuizService) SaveDraft(userID, sectionID uint, req QuizDraftRequest) error {
	if _, err := s.ModuleRepo.FindSectionByID(sectionID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return util.ErrSectionNotFound
		}
		return err
	}
	if req.CurrentQuestionIndex < 0 {
		return util.ErrInvalidDraft
	}
	if req.Answers == nil {
		req.Answers = map[uint]int{}
	}

	answersJSON, err := json.Marshal(req.Answers)
	if err != nil {
		return util.ErrInvalidDraft
	}
	return s.DraftRepo.SaveDraft(userID, sectionID, req.CurrentQuestionIndex, string(answersJSON))
}

// GetDraft 读取草稿，没有草稿时返回 nil
func (s *QuizService) GetDraft(userID, sectionID uint) (*QuizDraftState, error) {
	draft, err := s.DraftRepo.GetDraft(userID, sectionID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &QuizDraftState{
		SectionID:            sectionID,
		CurrentQuestionIndex: draft.CurrentQuestionIndex,
		Answers:              draft.AnswerMap(),
		UpdatedAt:            draft.UpdatedAt,
	}, nil
}

// SaveReadingPosition 记录阅读位置书签
func (s *QuizService) SaveReadingPosition(userID, sectionID uint, stepIndex int) error {
	if stepIndex < 0 {
		stepIndex = 0
	}
	if _, err := s.ModuleRepo.FindSectionByID(sectionID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return util.ErrSectionNotFound
		}
		return err
	}
	return s.DraftRepo.SaveReadingPosition(userID, sectionID, stepIndex)
}

// GetReadingPosition 读取阅读位置，越界时回到 0
func (s *QuizService) GetReadingPosition(userID, sectionID uint) (int, error) {
	pos, err := s.DraftRepo.GetReadingPosition(userID, sectionID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, nil
		}
		return 0, err
	}

	count, err := s.ModuleRepo.CountContentItems(sectionID)
	if err != nil {
		return 0, err
	}
	if pos.LastStepIndex < 0 || pos.LastStepIndex >= int(count) {
		return 0, nil
	}
	return pos.LastStepIndex, nil
}
