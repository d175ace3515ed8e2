package helper

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator dipakai bersama semua controller
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		// pakai nama field json di pesan error
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// ✅ Khusus error validasi (validator.v10)
func ValidationError(c *fiber.Ctx, err error) error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return JsonError(c, fiber.StatusBadRequest, "Invalid input")
	}

	fields := make(map[string][]string, len(ve))
	for _, fe := range ve {
		name := fe.Field()
		fields[name] = append(fields[name], validationMessage(fe))
	}
	return JsonValidationError(c, fields)
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " wajib diisi"
	case "min":
		return fe.Field() + " minimal " + fe.Param()
	case "max":
		return fe.Field() + " maksimal " + fe.Param()
	case "gt":
		return fe.Field() + " harus lebih dari " + fe.Param()
	case "gte":
		return fe.Field() + " minimal " + fe.Param()
	case "oneof":
		return fe.Field() + " harus salah satu dari " + fe.Param()
	case "uuid", "uuid4":
		return fe.Field() + " harus UUID"
	default:
		return fe.Field() + " tidak valid (" + fe.Tag() + ")"
	}
}
