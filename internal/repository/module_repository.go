package repository

import (
	"secaware_backend/internal/model"

	"gorm.io/gorm"
)

type ModuleRepository struct {
	DB *gorm.DB
}

func NewModuleRepository(db *gorm.DB) *ModuleRepository {
	return &ModuleRepository{DB: db}
}

// ListModules 按 OrderIndex 返回全部模块（不带子级）
func (r *ModuleRepository) ListModules() ([]model.TrainingModule, error) {
	var modules []model.TrainingModule
	err := r.DB.Order("order_index ASC").Find(&modules).Error
	return modules, err
}

func (r *ModuleRepository) FindModuleByID(id uint) (*model.TrainingModule, error) {
	var module model.TrainingModule
	err := r.DB.First(&module, id).Error
	return &module, err
}

// ListSections 按 OrderIndex 返回模块下的所有节
func (r *ModuleRepository) ListSections(moduleID uint) ([]model.Section, error) {
	var sections []model.Section
	err := r.DB.Where("module_id = ?", moduleID).
		Order("order_index ASC").
		Find(&sections).Error
	return sections, err
}

// FindSectionByID 返回节及其有序的内容项与题目
func (r *ModuleRepository) FindSectionByID(id uint) (*model.Section, error) {
	var section model.Section
	err := r.DB.
		Preload("ContentItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index ASC")
		}).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index ASC")
		}).
		First(&section, id).Error
	return &section, err
}

func (r *ModuleRepository) FindContentItemByID(id uint) (*model.LearningContentItem, error) {
	var item model.LearningContentItem
	err := r.DB.First(&item, id).Error
	return &item, err
}

func (r *ModuleRepository) FindQuestionByID(id uint) (*model.Question, error) {
	var question model.Question
	err := r.DB.First(&question, id).Error
	return &question, err
}

func (r *ModuleRepository) ListContentItems(sectionID uint) ([]model.LearningContentItem, error) {
	var items []model.LearningContentItem
	err := r.DB.Where("section_id = ?", sectionID).
		Order("order_index ASC").
		Find(&items).Error
	return items, err
}

func (r *ModuleRepository) ListQuestions(sectionID uint) ([]model.Question, error) {
	var questions []model.Question
	err := r.DB.Where("section_id = ?", sectionID).
		Order("order_index ASC").
		Find(&questions).Error
	return questions, err
}

func (r *ModuleRepository) CountContentItems(sectionID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.LearningContentItem{}).
		Where("section_id = ?", sectionID).
		Count(&count).Error
	return count, err
}

func (r *ModuleRepository) CountQuestions(sectionID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Question{}).
		Where("section_id = ?", sectionID).
		Count(&count).Error
	return count, err
}
