package model

// TrainingModule 课程模块，按 OrderIndex 全局排序
type TrainingModule struct {
	BaseModel
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Icon        string    `gorm:"size:50" json:"icon"`
	OrderIndex  int       `gorm:"uniqueIndex;not null" json:"orderIndex"`
	Sections    []Section `gorm:"foreignKey:ModuleID" json:"sections,omitempty"`
}

func (TrainingModule) TableName() string {
	return "training_modules"
}

// Section 模块内的最小课程单元，可含阅读内容和/或测验题
type Section struct {
	BaseModel
	ModuleID     uint                  `gorm:"index:idx_module_section_order,unique" json:"moduleId"`
	Title        string                `gorm:"size:255;not null" json:"title"`
	Description  string                `gorm:"type:text" json:"description"`
	OrderIndex   int                   `gorm:"index:idx_module_section_order,unique;not null" json:"orderIndex"`
	ContentItems []LearningContentItem `gorm:"foreignKey:SectionID" json:"contentItems,omitempty"`
	Questions    []Question            `gorm:"foreignKey:SectionID" json:"questions,omitempty"`
}

func (Section) TableName() string {
	return "sections"
}
