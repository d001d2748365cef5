// Package forms binds and validates user-submitted HTML forms.
package forms

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// NonFieldErrors collects messages that do not belong to a single input.
const NonFieldErrors = "__all__"

// Field is the outcome of validating one input: either a usable value or
// the reason it was rejected.
type Field[T any] struct {
	Value T
	Err   string
}

func Valid[T any](v T) Field[T] {
	return Field[T]{Value: v}
}

func Invalid[T any](reason string) Field[T] {
	return Field[T]{Err: reason}
}

func (f Field[T]) OK() bool {
	return f.Err == ""
}

// Errors maps an input name to its messages.
type Errors map[string][]string

func (e Errors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

func (e Errors) Has(field string) bool {
	return len(e[field]) > 0
}

// First returns the first message for field, or "".
func (e Errors) First(field string) string {
	if msgs := e[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

func (e Errors) Any() bool {
	for _, msgs := range e {
		if len(msgs) > 0 {
			return true
		}
	}
	return false
}

// record adds f's reason under name when f was rejected.
func record[T any](e Errors, name string, f Field[T]) {
	if !f.OK() {
		e.Add(name, f.Err)
	}
}

const (
	msgRequired      = "Обязательное поле."
	msgInvalidChoice = "Выберите корректный вариант. Вашего варианта нет среди допустимых значений."
	msgInvalidImage  = "Загрузите правильное изображение. Файл, который вы загрузили, поврежден или не является изображением."
	msgImageTooLarge = "Размер изображения не должен превышать 10 МБ."
	msgInvalidEmail  = "Введите правильный адрес электронной почты."
	msgTooLong       = "Значение слишком длинное."
	msgPasswordShort = "Введённый пароль слишком короткий. Он должен содержать как минимум 8 символов."
	msgPasswordMatch = "Введенные пароли не совпадают."
	msgInvalidInput  = "Некорректные данные формы."
)

// bindErrors translates validator failures into per-field messages. names
// maps struct field names to form input names.
func bindErrors(err error, names map[string]string) Errors {
	errs := Errors{}
	if err == nil {
		return errs
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs.Add(NonFieldErrors, msgInvalidInput)
		return errs
	}

	for _, fe := range verrs {
		name, ok := names[fe.Field()]
		if !ok {
			name = NonFieldErrors
		}
		errs.Add(name, messageFor(fe))
	}
	return errs
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return msgRequired
	case "numeric":
		return msgInvalidChoice
	case "email":
		return msgInvalidEmail
	case "max":
		return msgTooLong
	case "min":
		return msgPasswordShort
	case "eqfield":
		return msgPasswordMatch
	default:
		return msgInvalidInput
	}
}
