package repository

import (
	"secaware_backend/internal/model"

	"gorm.io/gorm"
)

type DraftRepository struct {
	DB *gorm.DB
}

func NewDraftRepository(db *gorm.DB) *DraftRepository {
	return &DraftRepository{DB: db}
}

func (r *DraftRepository) GetDraft(userID, sectionID uint) (*model.QuizDraft, error) {
	var draft model.QuizDraft
	err := r.DB.Where("user_id = ? AND section_id = ?", userID, sectionID).First(&draft).Error
	if err != nil {
		return nil, err
	}
	return &draft, nil
}

// SaveDraft upsert 测验草稿，尽力而为，失败不影响账本
func (r *DraftRepository) SaveDraft(userID, sectionID uint, currentIndex int, answersJSON string) error {
	var existing model.QuizDraft
	err := r.DB.Where("user_id = ? AND section_id = ?", userID, sectionID).First(&existing).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			return err
		}
		draft := &model.QuizDraft{
			UserID:               userID,
			SectionID:            sectionID,
			CurrentQuestionIndex: currentIndex,
			Answers:              answersJSON,
		}
		return r.DB.Create(draft).Error
	}

	existing.CurrentQuestionIndex = currentIndex
	existing.Answers = answersJSON
	return r.DB.Save(&existing).Error
}

// DeleteDraftTx 提交测验时在事务内清理草稿
func DeleteDraftTx(tx *gorm.DB, userID, sectionID uint) error {
	return tx.Where("user_id = ? AND section_id = ?", userID, sectionID).
		Delete(&model.QuizDraft{}).Error
}

// AnyDraftForSections 用户在一组节上是否存在草稿
func (r *DraftRepository) AnyDraftForSections(userID uint, sectionIDs []uint) (bool, error) {
	if len(sectionIDs) == 0 {
		return false, nil
	}
	var count int64
	err := r.DB.Model(&model.QuizDraft{}).
		Where("user_id = ? AND section_id IN ?", userID, sectionIDs).
		Count(&count).Error
	return count > 0, err
}

func (r *DraftRepository) GetReadingPosition(userID, sectionID uint) (*model.ReadingPosition, error) {
	var pos model.ReadingPosition
	err := r.DB.Where("user_id = ? AND section_id = ?", userID, sectionID).First(&pos).Error
	if err != nil {
		return nil, err
	}
	return &pos, nil
}

// SaveReadingPosition upsert 阅读位置书签
func (r *DraftRepository) SaveReadingPosition(userID, sectionID uint, stepIndex int) error {
	var existing model.ReadingPosition
	err := r.DB.Where("user_id = ? AND section_id = ?", userID, sectionID).First(&existing).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			return err
		}
		pos := &model.ReadingPosition{
			UserID:        userID,
			SectionID:     sectionID,
			LastStepIndex: stepIndex,
		}
		return r.DB.Create(pos).Error
	}

	existing.LastStepIndex = stepIndex
	return r.DB.Save(&existing).Error
}

// AnyPositionForSections 用户在一组节上是否存在非零阅读位置
func (r *DraftRepository) AnyPositionForSections(userID uint, sectionIDs []uint) (bool, error) {
	if len(sectionIDs) == 0 {
		return false, nil
	}
	var count int64
	err := r.DB.Model(&model.ReadingPosition{}).
		Where("user_id = ? AND section_id IN ? AND last_step_index > 0", userID, sectionIDs).
		Count(&count).Error
	return count > 0, err
}
