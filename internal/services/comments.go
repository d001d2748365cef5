package services

import (
	"context"
	"yatube/internal/forms"
	"yatube/internal/models"

	"gorm.io/gorm"
)

// Comments returns a post's comments oldest first.
func Comments(ctx context.Context, conn *gorm.DB, postID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := conn.WithContext(ctx).Preload("Author").
		Where("post_id = ?", postID).
		Order("created ASC, id ASC").
		Find(&comments).Error
	return comments, err
}

// AddComment persists a validated comment by author under post.
func AddComment(ctx context.Context, conn *gorm.DB, post *models.Post, author *models.User, f *forms.CommentForm) (*models.Comment, error) {
	comment := f.Build()
	comment.PostID = post.ID
	comment.AuthorID = author.ID
	if err := conn.WithContext(ctx).Omit("Post", "Author").Create(comment).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	comment.Author = *author
	return comment, nil
}
