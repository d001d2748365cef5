package forms

import (
	"yatube/internal/models"

	"github.com/gin-gonic/gin"
)

type commentInput struct {
	Text string `form:"text" binding:"required"`
}

var commentFieldNames = map[string]string{
	"Text": "text",
}

type CommentForm struct {
	Text    Field[string]
	Errors  Errors
	RawText string

	bound bool
}

func NewCommentForm() *CommentForm {
	return &CommentForm{Errors: Errors{}}
}

func BindCommentForm(c *gin.Context) *CommentForm {
	var in commentInput
	bindErr := c.ShouldBind(&in)

	f := &CommentForm{
		Errors:  bindErrors(bindErr, commentFieldNames),
		RawText: in.Text,
		bound:   true,
	}
	f.Text = cleanText(in.Text)
	if !f.Errors.Has("text") {
		record(f.Errors, "text", f.Text)
	}
	return f
}

func (f *CommentForm) IsValid() bool {
	return f.bound && !f.Errors.Any()
}

// Build returns the comment ready to persist; author and post are set by
// the caller.
func (f *CommentForm) Build() *models.Comment {
	return &models.Comment{Text: f.Text.Value}
}
