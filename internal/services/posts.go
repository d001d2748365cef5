package services

import (
	"context"
	"yatube/internal/forms"
	"yatube/internal/models"
	"yatube/internal/storage"

	"gorm.io/gorm"
)

// PostOrder lists newest posts first; id breaks ties between posts
// published in the same instant.
const PostOrder = "pub_date DESC, id DESC"

// PostPreloads are the relations every post listing renders.
var PostPreloads = []string{"Author", "Group"}

func AllPosts(conn *gorm.DB) *gorm.DB {
	return conn.Model(&models.Post{}).Order(PostOrder)
}

func GroupPosts(conn *gorm.DB, groupID uint) *gorm.DB {
	return AllPosts(conn).Where("group_id = ?", groupID)
}

func AuthorPosts(conn *gorm.DB, authorID uint) *gorm.DB {
	return AllPosts(conn).Where("author_id = ?", authorID)
}

// FeedPosts selects posts written by authors userID follows.
func FeedPosts(conn *gorm.DB, userID uint) *gorm.DB {
	followed := conn.Model(&models.Follow{}).Select("author_id").Where("user_id = ?", userID)
	return AllPosts(conn).Where("author_id IN (?)", followed)
}

func CountAuthorPosts(ctx context.Context, conn *gorm.DB, authorID uint) (int64, error) {
	var n int64
	err := conn.WithContext(ctx).Model(&models.Post{}).Where("author_id = ?", authorID).Count(&n).Error
	return n, err
}

func GetPost(ctx context.Context, conn *gorm.DB, id uint) (*models.Post, error) {
	var post models.Post
	err := conn.WithContext(ctx).Preload("Author").Preload("Group").First(&post, id).Error
	if err != nil {
		return nil, models.WrapLookup(err, "post", id)
	}
	return &post, nil
}

func GetGroupBySlug(ctx context.Context, conn *gorm.DB, slug string) (*models.Group, error) {
	var group models.Group
	if err := conn.WithContext(ctx).Where("slug = ?", slug).First(&group).Error; err != nil {
		return nil, models.WrapLookup(err, "group", slug)
	}
	return &group, nil
}

func ListGroups(ctx context.Context, conn *gorm.DB) ([]models.Group, error) {
	var groups []models.Group
	err := conn.WithContext(ctx).Order("title ASC").Find(&groups).Error
	return groups, err
}

// CreatePost stores a validated form as a new post by author. An attached
// image is uploaded before the row is written.
func CreatePost(ctx context.Context, conn *gorm.DB, store storage.ImageStore, author *models.User, f *forms.PostForm) (*models.Post, error) {
	post := &models.Post{AuthorID: author.ID}
	f.Apply(post)

	if header := f.Image.Value; header != nil {
		key, err := UploadImage(ctx, store, header)
		if err != nil {
			return nil, err
		}
		post.Image = key
	}

	if err := conn.WithContext(ctx).Omit("Author", "Group").Create(post).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	post.Author = *author
	return post, nil
}

// UpdatePost applies a validated form to post on behalf of editor. Only the
// author may edit; anyone else gets ErrForbidden and nothing changes.
func UpdatePost(ctx context.Context, conn *gorm.DB, store storage.ImageStore, post *models.Post, editor *models.User, f *forms.PostForm) error {
	if editor == nil || post.AuthorID != editor.ID {
		return models.NewForbiddenError("only the author can edit a post")
	}

	f.Apply(post)
	switch {
	case f.Image.Value != nil:
		key, err := UploadImage(ctx, store, f.Image.Value)
		if err != nil {
			return err
		}
		post.Image = key
	case f.ClearImage:
		post.Image = ""
	}
	post.AuthorID = editor.ID

	err := conn.WithContext(ctx).Model(post).Select("Text", "GroupID", "Image", "AuthorID").Updates(post).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// FillImageURLs resolves stored image keys to public URLs for rendering.
func FillImageURLs(store storage.ImageStore, posts []models.Post) {
	for i := range posts {
		FillImageURL(store, &posts[i])
	}
}

func FillImageURL(store storage.ImageStore, post *models.Post) {
	if post.Image != "" && store != nil {
		post.ImageURL = store.URL(post.Image)
	}
}
