package forms

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"yatube/internal/models"
	"yatube/internal/storage"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// MaxImageSize caps uploaded post images.
const MaxImageSize = 10 << 20

type postInput struct {
	Text       string `form:"text" binding:"required"`
	Group      string `form:"group" binding:"omitempty,numeric"`
	ClearImage string `form:"image-clear"`
}

var postFieldNames = map[string]string{
	"Text":  "text",
	"Group": "group",
}

// PostForm backs both the create and the edit page.
type PostForm struct {
	Text   Field[string]
	Group  Field[*models.Group]
	Image  Field[*multipart.FileHeader]
	Errors Errors

	// Echoed back into the template on re-render.
	RawText    string
	RawGroup   string
	ClearImage bool

	bound bool
}

// NewPostForm returns an unbound, empty form.
func NewPostForm() *PostForm {
	return &PostForm{Errors: Errors{}}
}

// PostFormFor returns an unbound form prefilled from an existing post.
func PostFormFor(post *models.Post) *PostForm {
	f := NewPostForm()
	f.RawText = post.Text
	if post.GroupID != nil {
		f.RawGroup = strconv.FormatUint(uint64(*post.GroupID), 10)
	}
	return f
}

// BindPostForm reads the submitted fields and validates them. The author is
// never taken from the request.
func BindPostForm(c *gin.Context, conn *gorm.DB) *PostForm {
	var in postInput
	bindErr := c.ShouldBind(&in)

	f := &PostForm{
		Errors:     bindErrors(bindErr, postFieldNames),
		RawText:    in.Text,
		RawGroup:   in.Group,
		ClearImage: in.ClearImage != "",
		bound:      true,
	}

	f.Text = cleanText(in.Text)
	if !f.Errors.Has("text") {
		record(f.Errors, "text", f.Text)
	}

	if f.Errors.Has("group") {
		f.Group = Invalid[*models.Group](f.Errors.First("group"))
	} else {
		f.Group = resolveGroup(c.Request.Context(), conn, in.Group)
		record(f.Errors, "group", f.Group)
	}

	f.Image = checkImage(c)
	record(f.Errors, "image", f.Image)

	return f
}

func (f *PostForm) IsBound() bool {
	return f.bound
}

// IsValid reports whether the form was submitted and every field passed.
func (f *PostForm) IsValid() bool {
	return f.bound && !f.Errors.Any()
}

// Apply copies the validated text and group onto post. The image is handled
// by the caller since it has to be uploaded first.
func (f *PostForm) Apply(post *models.Post) {
	post.Text = f.Text.Value
	if g := f.Group.Value; g != nil {
		post.GroupID = &g.ID
		post.Group = g
	} else {
		post.GroupID = nil
		post.Group = nil
	}
}

// SelectedGroup is the group id the template should mark as selected.
func (f *PostForm) SelectedGroup() string {
	return f.RawGroup
}

func cleanText(raw string) Field[string] {
	text := strings.TrimSpace(raw)
	if text == "" {
		return Invalid[string](msgRequired)
	}
	return Valid(text)
}

func resolveGroup(ctx context.Context, conn *gorm.DB, raw string) Field[*models.Group] {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Valid[*models.Group](nil)
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return Invalid[*models.Group](msgInvalidChoice)
	}

	var group models.Group
	if err := conn.WithContext(ctx).First(&group, id).Error; err != nil {
		return Invalid[*models.Group](msgInvalidChoice)
	}
	return Valid(&group)
}

func checkImage(c *gin.Context) Field[*multipart.FileHeader] {
	header, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return Valid[*multipart.FileHeader](nil)
		}
		return Invalid[*multipart.FileHeader](msgInvalidImage)
	}
	if header.Size > MaxImageSize {
		return Invalid[*multipart.FileHeader](msgImageTooLarge)
	}

	file, err := header.Open()
	if err != nil {
		return Invalid[*multipart.FileHeader](msgInvalidImage)
	}
	defer file.Close()

	mt, err := mimetype.DetectReader(file)
	if err != nil || !storage.AllowedImage(mt) {
		return Invalid[*multipart.FileHeader](msgInvalidImage)
	}
	return Valid(header)
}
