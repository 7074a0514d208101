package model

import (
	"time"
)

// LearningContentItem 节内的一屏阅读内容
type LearningContentItem struct {
	BaseModel
	SectionID  uint   `gorm:"index:idx_section_content_order,unique" json:"sectionId"`
	OrderIndex int    `gorm:"index:idx_section_content_order,unique;not null" json:"orderIndex"`
	Title      string `gorm:"size:255" json:"title"`
	Body       string `gorm:"type:text" json:"body"`
}

func (LearningContentItem) TableName() string {
	return "learning_content_items"
}

// LearningProgress 记录用户对单屏内容的完成状态
// (user, content item) 唯一，正常流转只会 false→true
type LearningProgress struct {
	BaseModel
	UserID        uint       `gorm:"index:idx_user_content,unique" json:"userId"`
	ContentItemID uint       `gorm:"index:idx_user_content,unique" json:"contentItemId"`
	Completed     bool       `gorm:"default:false" json:"completed"`
	CompletedAt   *time.Time `json:"completedAt"`
}

func (LearningProgress) TableName() string {
	return "learning_progresses"
}
