package forms

import (
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

const msgBadUsername = "Введите правильное имя пользователя. Оно может содержать только буквы, цифры и знаки @/./+/-/_."

type SignupForm struct {
	FirstName string `form:"first_name" binding:"max=150"`
	LastName  string `form:"last_name" binding:"max=150"`
	Username  string `form:"username" binding:"required,max=150"`
	Email     string `form:"email" binding:"max=254"`
	Password1 string `form:"password1" binding:"required,min=8"`
	Password2 string `form:"password2" binding:"required,eqfield=Password1"`

	Errors Errors `form:"-"`
}

var signupFieldNames = map[string]string{
	"FirstName": "first_name",
	"LastName":  "last_name",
	"Username":  "username",
	"Email":     "email",
	"Password1": "password1",
	"Password2": "password2",
}

func NewSignupForm() *SignupForm {
	return &SignupForm{Errors: Errors{}}
}

// BindSignupForm validates a registration request. Username uniqueness is
// checked by the caller against the store.
func BindSignupForm(c *gin.Context) *SignupForm {
	f := NewSignupForm()
	err := c.ShouldBind(f)
	f.Errors = bindErrors(err, signupFieldNames)

	f.Username = strings.TrimSpace(f.Username)
	f.Email = strings.TrimSpace(f.Email)
	if f.Email != "" && !f.Errors.Has("email") && !validEmail(f.Email) {
		f.Errors.Add("email", msgInvalidEmail)
	}
	if f.Username != "" && !f.Errors.Has("username") && !usernamePattern.MatchString(f.Username) {
		f.Errors.Add("username", msgBadUsername)
	}
	return f
}

// validEmail runs gin's validator on the trimmed address.
func validEmail(s string) bool {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	return ok && v.Var(s, "email") == nil
}

func (f *SignupForm) IsValid() bool {
	return !f.Errors.Any()
}

type LoginForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
	Next     string `form:"next"`

	Errors Errors `form:"-"`
}

var loginFieldNames = map[string]string{
	"Username": "username",
	"Password": "password",
}

func NewLoginForm(next string) *LoginForm {
	return &LoginForm{Next: next, Errors: Errors{}}
}

func BindLoginForm(c *gin.Context) *LoginForm {
	f := NewLoginForm("")
	err := c.ShouldBind(f)
	f.Errors = bindErrors(err, loginFieldNames)
	f.Username = strings.TrimSpace(f.Username)
	return f
}

func (f *LoginForm) IsValid() bool {
	return !f.Errors.Any()
}
