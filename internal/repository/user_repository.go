package repository

import (
	"context"
	"strings"

	"workflo/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return translate(r.db.WithContext(ctx).Create(user).Error, nil, ErrDuplicateUser)
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translate(err, ErrUserNotFound, nil)
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&user).Error
	if err != nil {
		return nil, translate(err, ErrUserNotFound, nil)
	}
	return &user, nil
}

// FindByLogin looks a user up by email when the login contains "@",
// by username otherwise. Usernames never contain "@".
func (r *UserRepository) FindByLogin(ctx context.Context, login string) (*model.User, error) {
	if strings.Contains(login, "@") {
		return r.FindByEmail(ctx, login)
	}
	var user model.User
	if err := r.db.WithContext(ctx).Where("username = ?", login).First(&user).Error; err != nil {
		return nil, translate(err, ErrUserNotFound, nil)
	}
	return &user, nil
}

// Update overwrites the profile columns of an existing user.
func (r *UserRepository) Update(ctx context.Context, user *model.User) error {
	result := r.db.WithContext(ctx).Model(user).
		Select("*").
		Omit("id", "created_at").
		Updates(user)
	if result.Error != nil {
		return translate(result.Error, nil, ErrDuplicateUser)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
