package services

import (
	"context"
	"errors"
	"strings"
	"yatube/internal/forms"
	"yatube/internal/models"
	"yatube/internal/utils"

	"gorm.io/gorm"
)

// ErrUsernameTaken is returned by CreateUser for a duplicate username.
var ErrUsernameTaken = errors.New("username taken")

// ErrBadCredentials covers both an unknown username and a wrong password.
var ErrBadCredentials = errors.New("bad credentials")

func GetUserByUsername(ctx context.Context, conn *gorm.DB, username string) (*models.User, error) {
	var user models.User
	if err := conn.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, models.WrapLookup(err, "user", username)
	}
	return &user, nil
}

// CreateUser registers the account described by a validated signup form.
func CreateUser(ctx context.Context, conn *gorm.DB, f *forms.SignupForm) (*models.User, error) {
	var n int64
	if err := conn.WithContext(ctx).Model(&models.User{}).Where("username = ?", f.Username).Count(&n).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if n > 0 {
		return nil, ErrUsernameTaken
	}

	hash, err := utils.HashPassword(f.Password1)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	user := models.User{
		Username:  f.Username,
		FirstName: strings.TrimSpace(f.FirstName),
		LastName:  strings.TrimSpace(f.LastName),
		Email:     f.Email,
		Password:  hash,
	}
	if err := conn.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsernameTaken
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func Authenticate(ctx context.Context, conn *gorm.DB, username, password string) (*models.User, error) {
	user, err := GetUserByUsername(ctx, conn, username)
	if err != nil {
		if models.IsNotFound(err) {
			return nil, ErrBadCredentials
		}
		return nil, err
	}
	if !utils.CheckPasswordHash(password, user.Password) {
		return nil, ErrBadCredentials
	}
	return user, nil
}
