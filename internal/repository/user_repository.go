package repository

import (
	"secaware_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Create(user *model.User) error {
	return r.DB.Create(user).Error
}

func (r *UserRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	err := r.DB.First(&user, id).Error
	return &user, err
}

func (r *UserRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("email = ?", email).First(&user).Error
	return &user, err
}

func (r *UserRepository) Update(user *model.User) error {
	return r.DB.Save(user).Error
}

// AddXP 原子累加总XP，负增量直接拒绝为无操作
func (r *UserRepository) AddXP(userID uint, delta int) error {
	return AddXPTx(r.DB, userID, delta)
}

// AddXPTx 在指定事务内原子累加总XP
func AddXPTx(tx *gorm.DB, userID uint, delta int) error {
	if delta <= 0 {
		return nil
	}
	return tx.Model(&model.User{}).
		Where("id = ?", userID).
		Update("total_xp", gorm.Expr("total_xp + ?", delta)).
		Error
}

func (r *UserRepository) FindTopByXP(limit int) ([]model.User, error) {
	var users []model.User
	err := r.DB.Order("total_xp DESC").Limit(limit).Find(&users).Error
	return users, err
}

func (r *UserRepository) UpdateLastSeen(userID uint) error {
	return r.DB.Model(&model.User{}).
		Where("id = ?", userID).
		Update("last_seen", time.Now()).
		Error
}
