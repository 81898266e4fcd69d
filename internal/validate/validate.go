// Package validate локальная проверка форм до сетевого вызова.
// Ошибки возвращаются как карта поле → сообщение, ключи совпадают с json именами.
package validate

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldErrors ошибки полей формы
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	parts := make([]string, 0, len(fe))
	for field, msg := range fe {
		parts = append(parts, field+": "+msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Имена полей берем из json тегов
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	mustRegister(v, "phone10", func(fl validator.FieldLevel) bool {
		return IsPhone(fl.Field().String())
	})
	mustRegister(v, "cardnumber", func(fl validator.FieldLevel) bool {
		return IsCardNumber(fl.Field().String())
	})
	mustRegister(v, "cvv", func(fl validator.FieldLevel) bool {
		return IsCVV(fl.Field().String())
	})
	mustRegister(v, "notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validate: register %s: %v", tag, err))
	}
}

// Struct проверяет структуру по тегам validate. nil, если ошибок нет.
func Struct(s any) FieldErrors {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return FieldErrors{"_": err.Error()}
	}

	out := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		// Первая ошибка поля самая важная
		if _, exists := out[fe.Field()]; !exists {
			out[fe.Field()] = message(fe)
		}
	}
	return out
}

// Merge объединяет локальные и серверные ошибки.
// Для одного и того же поля побеждает сервер.
func Merge(local, server map[string]string) FieldErrors {
	if len(local) == 0 && len(server) == 0 {
		return nil
	}
	out := make(FieldErrors, len(local)+len(server))
	for k, v := range local {
		out[k] = v
	}
	for k, v := range server {
		out[k] = v
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "This field is required"
	case "email":
		return "Enter a valid email address"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("Must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("Must be at most %s", fe.Param())
	case "eqfield":
		return "Passwords do not match"
	case "oneof":
		return "Select one of: " + fe.Param()
	case "phone10":
		return "Phone number must contain exactly 10 digits"
	case "cardnumber":
		return "Card number must contain at least 13 digits"
	case "cvv":
		return "CVV must be 3 or 4 digits"
	default:
		return "Invalid value"
	}
}

// Digits оставляет в строке только цифры
func Digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// stripSeparators убирает пробелы, дефисы, точки и скобки форматирования
func stripSeparators(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '.', '(', ')':
			return -1
		}
		return r
	}, s)
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// IsPhone ровно 10 цифр после удаления разделителей
func IsPhone(s string) bool {
	p := stripSeparators(s)
	return len(p) == 10 && allDigits(p)
}

// IsCardNumber не меньше 13 цифр, без проверки Луна
func IsCardNumber(s string) bool {
	n := stripSeparators(s)
	return len(n) >= 13 && allDigits(n)
}

// IsCVV 3 или 4 цифры
func IsCVV(s string) bool {
	return (len(s) == 3 || len(s) == 4) && allDigits(s)
}
