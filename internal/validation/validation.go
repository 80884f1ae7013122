// Package validation содержит проверку входных данных API.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mmeshcher/piutang-system/internal/model"
)

// Validator проверяет структуры по тегам validate.
type Validator struct {
	validate *validator.Validate
}

// FieldError описывает ошибку в одном поле запроса.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error содержит все ошибки проверки одной структуры.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return strings.Join(parts, "; ")
}

// New создаёт валидатор с зарегистрированными правилами предметной области.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	// Ошибка регистрации возможна только при пустом имени тега.
	_ = v.RegisterValidation("payment_status", func(fl validator.FieldLevel) bool {
		_, ok := model.ParsePaymentStatus(fl.Field().String())
		return ok
	})

	return &Validator{validate: v}
}

// Struct проверяет структуру и возвращает *Error со списком нарушений.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{Field: fe.Field(), Message: message(fe)})
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].Field < fields[j].Field })

	return &Error{Fields: fields}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "wajib diisi"
	case "email":
		return "format email tidak valid"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("minimal %s karakter", fe.Param())
		}
		return fmt.Sprintf("tidak boleh kurang dari %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("maksimal %s karakter", fe.Param())
		}
		return fmt.Sprintf("tidak boleh lebih dari %s", fe.Param())
	case "eqfield":
		return "tidak sama dengan " + fe.Param()
	case "payment_status":
		return "status pembayaran tidak dikenal"
	default:
		return "tidak valid"
	}
}
