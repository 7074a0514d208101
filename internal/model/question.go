package model

import (
	"encoding/json"
	"time"
)

// Question 节内的单选测验题，Options 存 JSON 数组
type Question struct {
	BaseModel
	SectionID     uint   `gorm:"index:idx_section_question_order,unique" json:"sectionId"`
	OrderIndex    int    `gorm:"index:idx_section_question_order,unique;not null" json:"orderIndex"`
	Text          string `gorm:"type:text;not null" json:"text"`
	Options       string `gorm:"type:text;not null" json:"-"`
	CorrectAnswer string `gorm:"size:500;not null" json:"-"`
	Explanation   string `gorm:"type:text" json:"-"`
}

func (Question) TableName() string {
	return "questions"
}

// OptionList 解码选项数组
func (q *Question) OptionList() []string {
	var options []string
	if err := json.Unmarshal([]byte(q.Options), &options); err != nil {
		return nil
	}
	return options
}

// QuestionAttempt (user, question) 的当前最优状态，唯一索引兜底并发双写
// 不变式：IsCorrect=true 且 XPAwarded>0 的记录不会被后续错误答案覆盖
type QuestionAttempt struct {
	BaseModel
	UserID         uint      `gorm:"index:idx_user_question,unique" json:"userId"`
	QuestionID     uint      `gorm:"index:idx_user_question,unique" json:"questionId"`
	SelectedAnswer string    `gorm:"size:500" json:"selectedAnswer"`
	IsCorrect      bool      `gorm:"default:false" json:"isCorrect"`
	XPAwarded      int       `gorm:"default:0" json:"xpAwarded"`
	AnsweredAt     time.Time `json:"answeredAt"`
}

func (QuestionAttempt) TableName() string {
	return "question_attempts"
}
