package repository

import (
	"secaware_backend/internal/model"

	"gorm.io/gorm"
)

type QuestionAttemptRepository struct {
	DB *gorm.DB
}

func NewQuestionAttemptRepository(db *gorm.DB) *QuestionAttemptRepository {
	return &QuestionAttemptRepository{DB: db}
}

func (r *QuestionAttemptRepository) FindByUserAndQuestion(userID, questionID uint) (*model.QuestionAttempt, error) {
	var attempt model.QuestionAttempt
	err := r.DB.Where("user_id = ? AND question_id = ?", userID, questionID).First(&attempt).Error
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

// GetAttemptMap 获取用户对一组题目的当前作答记录
func (r *QuestionAttemptRepository) GetAttemptMap(userID uint, questionIDs []uint) (map[uint]model.QuestionAttempt, error) {
	attemptMap := make(map[uint]model.QuestionAttempt)
	if len(questionIDs) == 0 {
		return attemptMap, nil
	}

	var attempts []model.QuestionAttempt
	err := r.DB.Where("user_id = ? AND question_id IN ?", userID, questionIDs).Find(&attempts).Error
	if err != nil {
		return nil, err
	}

	for _, attempt := range attempts {
		attemptMap[attempt.QuestionID] = attempt
	}
	return attemptMap, nil
}

// CountCorrect 统计用户在一组题目中已答对的数量
func (r *QuestionAttemptRepository) CountCorrect(userID uint, questionIDs []uint) (int, error) {
	if len(questionIDs) == 0 {
		return 0, nil
	}
	var count int64
	err := r.DB.Model(&model.QuestionAttempt{}).
		Where("user_id = ? AND question_id IN ? AND is_correct = ?", userID, questionIDs, true).
		Count(&count).Error
	return int(count), err
}
