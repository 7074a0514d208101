package repository

import (
	"secaware_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type LearningProgressRepository struct {
	DB *gorm.DB
}

func NewLearningProgressRepository(db *gorm.DB) *LearningProgressRepository {
	return &LearningProgressRepository{DB: db}
}

// GetCompletionMap 获取用户对一组内容项的完成状态
func (r *LearningProgressRepository) GetCompletionMap(userID uint, itemIDs []uint) (map[uint]bool, error) {
	statusMap := make(map[uint]bool)
	if len(itemIDs) == 0 {
		return statusMap, nil
	}

	var records []model.LearningProgress
	err := r.DB.Where("user_id = ? AND content_item_id IN ?", userID, itemIDs).Find(&records).Error
	if err != nil {
		return nil, err
	}

	for _, record := range records {
		statusMap[record.ContentItemID] = record.Completed
	}
	return statusMap, nil
}

// CountCompleted 统计用户在一组内容项中已完成的数量
func (r *LearningProgressRepository) CountCompleted(userID uint, itemIDs []uint) (int, error) {
	if len(itemIDs) == 0 {
		return 0, nil
	}
	var count int64
	err := r.DB.Model(&model.LearningProgress{}).
		Where("user_id = ? AND content_item_id IN ? AND completed = ?", userID, itemIDs, true).
		Count(&count).Error
	return int(count), err
}

// MarkCompletedTx 在事务内将一条内容进度置为已完成（upsert，只会 false→true）
func MarkCompletedTx(tx *gorm.DB, userID, itemID uint) error {
	var existing model.LearningProgress
	err := tx.Where("user_id = ? AND content_item_id = ?", userID, itemID).First(&existing).Error

	now := time.Now()
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			return err
		}
		record := &model.LearningProgress{
			UserID:        userID,
			ContentItemID: itemID,
			Completed:     true,
			CompletedAt:   &now,
		}
		return tx.Create(record).Error
	}

	if existing.Completed {
		return nil
	}
	existing.Completed = true
	existing.CompletedAt = &now
	return tx.Save(&existing).Error
}

// AnyForItems 用户在一组内容项上是否存在任何进度记录
func (r *LearningProgressRepository) AnyForItems(userID uint, itemIDs []uint) (bool, error) {
	if len(itemIDs) == 0 {
		return false, nil
	}
	var count int64
	err := r.DB.Model(&model.LearningProgress{}).
		Where("user_id = ? AND content_item_id IN ?", userID, itemIDs).
		Count(&count).Error
	return count > 0, err
}

// CountCompletedForUser 用户已完成的内容项总数（统计口径）
func (r *LearningProgressRepository) CountCompletedForUser(userID uint) (int, error) {
	var count int64
	err := r.DB.Model(&model.LearningProgress{}).
		Where("user_id = ? AND completed = ?", userID, true).
		Count(&count).Error
	return int(count), err
}
