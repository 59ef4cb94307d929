package service

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	checkoutValidatorOnce sync.Once
	checkoutValidator     *validator.Validate
)

// CheckoutForm 结账表单（收货与联系信息）
type CheckoutForm struct {
	FirstName string `json:"first_name" form:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" form:"last_name" validate:"required,max=100"`
	Email     string `json:"email" form:"email" validate:"required,email,max=254"`
	Phone     string `json:"phone" form:"phone" validate:"required,max=20"`
	Address   string `json:"address" form:"address" validate:"required,max=250"`
	City      string `json:"city" form:"city" validate:"required,max=100"`
	State     string `json:"state" form:"state" validate:"required,max=100"`
	ZipCode   string `json:"zip_code" form:"zip_code" validate:"required,max=20"`
}

// FieldError 单个字段的校验错误，Key 为 i18n 文案键
type FieldError struct {
	Key  string        `json:"key"`
	Args []interface{} `json:"args,omitempty"`
}

// FormError 表单校验失败，按字段汇总
type FormError struct {
	Fields map[string]FieldError
}

func (e *FormError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return "form invalid"
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	return "form invalid: " + strings.Join(names, ",")
}

// Is 使 errors.Is(err, ErrInvalidInput) 成立
func (e *FormError) Is(target error) bool {
	return target == ErrInvalidInput
}

// AsFormError 提取表单错误
func AsFormError(err error) (*FormError, bool) {
	var formErr *FormError
	if errors.As(err, &formErr) {
		return formErr, true
	}
	return nil, false
}

// Normalize 去除首尾空白
func (f *CheckoutForm) Normalize() {
	f.FirstName = strings.TrimSpace(f.FirstName)
	f.LastName = strings.TrimSpace(f.LastName)
	f.Email = strings.TrimSpace(f.Email)
	f.Phone = strings.TrimSpace(f.Phone)
	f.Address = strings.TrimSpace(f.Address)
	f.City = strings.TrimSpace(f.City)
	f.State = strings.TrimSpace(f.State)
	f.ZipCode = strings.TrimSpace(f.ZipCode)
}

// Validate 校验表单，全部通过返回 nil
func (f CheckoutForm) Validate() *FormError {
	err := getCheckoutValidator().Struct(f)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &FormError{Fields: map[string]FieldError{"__all__": {Key: "form.invalid"}}}
	}
	fields := make(map[string]FieldError, len(verrs))
	for _, fe := range verrs {
		if _, exists := fields[fe.Field()]; exists {
			continue
		}
		fields[fe.Field()] = toFieldError(fe)
	}
	return &FormError{Fields: fields}
}

func toFieldError(fe validator.FieldError) FieldError {
	switch fe.Tag() {
	case "required":
		return FieldError{Key: "form.required"}
	case "email":
		return FieldError{Key: "form.email"}
	case "max":
		value, _ := fe.Value().(string)
		return FieldError{Key: "form.max_length", Args: []interface{}{fe.Param(), len([]rune(value))}}
	default:
		return FieldError{Key: "form.invalid"}
	}
}

func getCheckoutValidator() *validator.Validate {
	checkoutValidatorOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "" || name == "-" {
				return field.Name
			}
			return name
		})
		checkoutValidator = v
	})
	return checkoutValidator
}
