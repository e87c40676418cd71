// Валидация тел запросов сервиса постов через go-playground/validator.
//
// Основные возможности:
//   - Проверка обязательных полей запросов кодека.
//   - Валидатор postId: UUID поста.
//   - Валидатор notBlank: строка содержит непробельные символы.
package blogdoc

import (
	"strings"

	"github.com/go-playground/validator"
	"github.com/gofrs/uuid"
)

type RequestValidator struct {
	validator *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	v := validator.New()
	if err := v.RegisterValidation("postId", postIdValidator); err != nil {
		return nil
	}
	if err := v.RegisterValidation("notBlank", notBlankValidator); err != nil {
		return nil
	}
	return &RequestValidator{v}
}

func (rv *RequestValidator) Validate(i interface{}) error {
	if err := rv.validator.Struct(i); err != nil {
		_, ok := err.(validator.ValidationErrors)
		if !ok {
			return nil
		}
		return err
	}
	return nil
}

func postIdValidator(fl validator.FieldLevel) bool {
	_, err := uuid.FromString(fl.Field().String())
	return err == nil
}

func notBlankValidator(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// validationFields - имена полей, не прошедших проверку, для текста ошибки.
func validationFields(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return strings.Join(fields, ", ")
}
