package model

import (
	"encoding/json"
)

// QuizDraft 进行中的测验草稿，提交时删除，不参与完成度和XP
type QuizDraft struct {
	BaseModel
	UserID               uint   `gorm:"index:idx_user_section_draft,unique" json:"userId"`
	SectionID            uint   `gorm:"index:idx_user_section_draft,unique" json:"sectionId"`
	CurrentQuestionIndex int    `gorm:"default:0" json:"currentQuestionIndex"`
	Answers              string `gorm:"type:text" json:"-"` // JSON: 题目ID -> 选项下标
}

func (QuizDraft) TableName() string {
	return "quiz_drafts"
}

func (d *QuizDraft) AnswerMap() map[uint]int {
	answers := make(map[uint]int)
	if d.Answers == "" {
		return answers
	}
	if err := json.Unmarshal([]byte(d.Answers), &answers); err != nil {
		return map[uint]int{}
	}
	return answers
}

// ReadingPosition 阅读位置书签，丢失可恢复，不影响账本状态
type ReadingPosition struct {
	BaseModel
	UserID        uint `gorm:"index:idx_user_section_pos,unique" json:"userId"`
	SectionID     uint `gorm:"index:idx_user_section_pos,unique" json:"sectionId"`
	LastStepIndex int  `gorm:"default:0" json:"lastStepIndex"`
}

func (ReadingPosition) TableName() string {
	return "reading_positions"
}
