package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/Skotchmaster/shop_backend/internal/models"
)

func (r *GormRepo) CreateUser(ctx context.Context, user *models.User) error {
	return r.DB.WithContext(ctx).Create(user).Error
}

func (r *GormRepo) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) UserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) UserExists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormRepo) UpdatePassword(ctx context.Context, id uint, passwordHash string) error {
	res := r.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("password_hash", passwordHash)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) SetAdmin(ctx context.Context, id uint, isAdmin bool) (*models.User, error) {
	res := r.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("is_admin", isAdmin)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.UserByID(ctx, id)
}

func (r *GormRepo) ListUsers(ctx context.Context, offset, limit int) (int64, []models.User, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var users []models.User
	if err := r.DB.WithContext(ctx).Order("id ASC").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return 0, nil, err
	}
	return total, users, nil
}
