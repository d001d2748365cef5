package services

import (
	"context"
	"yatube/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Follow creates the user→author edge. Following yourself is a no-op and
// a repeated follow leaves the single existing edge in place, including
// under concurrent requests. created reports whether a row was inserted.
func Follow(ctx context.Context, conn *gorm.DB, user, author *models.User) (created bool, err error) {
	if user.ID == author.ID {
		return false, nil
	}
	edge := models.Follow{UserID: user.ID, AuthorID: author.ID}
	res := conn.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "author_id"}},
			DoNothing: true,
		}).
		Omit("User", "Author").
		Create(&edge)
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Unfollow removes the edge if present.
func Unfollow(ctx context.Context, conn *gorm.DB, user, author *models.User) (removed bool, err error) {
	res := conn.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", user.ID, author.ID).
		Delete(&models.Follow{})
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

// IsFollowing is false for anonymous viewers and for authors looking at
// their own profile.
func IsFollowing(ctx context.Context, conn *gorm.DB, viewer, author *models.User) (bool, error) {
	if viewer == nil || viewer.ID == author.ID {
		return false, nil
	}
	var n int64
	err := conn.WithContext(ctx).Model(&models.Follow{}).
		Where("user_id = ? AND author_id = ?", viewer.ID, author.ID).
		Count(&n).Error
	return n > 0, err
}
