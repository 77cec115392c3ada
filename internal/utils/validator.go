// internal/utils/validator.go
package utils

import (
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/javajoker/uni402-backend/internal/models"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterCustomTypeFunc(flexibleFloatValue, FlexibleFloat(0))
	validate.RegisterValidation("content_type", validateContentType)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func flexibleFloatValue(field reflect.Value) interface{} {
	if value, ok := field.Interface().(FlexibleFloat); ok {
		return float64(value)
	}
	return nil
}

func validateContentType(fl validator.FieldLevel) bool {
	return models.ContentType(fl.Field().String()).IsValid()
}

// IsWalletAddress reports whether address could be a wallet address at all.
// Addresses are otherwise opaque to the server.
func IsWalletAddress(address string) bool {
	if len(address) == 0 || len(address) > 64 {
		return false
	}

	for _, char := range address {
		if unicode.IsSpace(char) || !unicode.IsPrint(char) {
			return false
		}
	}
	return true
}

// Validation tags for common fields
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func GetValidationErrors(err error) []ValidationError {
	var validationErrors []ValidationError

	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrs {
			validationErrors = append(validationErrors, ValidationError{
				Field:   strings.ToLower(e.Field()),
				Tag:     e.Tag(),
				Message: getValidationMessage(e),
			})
		}
	}

	return validationErrors
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "min":
		return e.Field() + " must be at least " + e.Param() + " characters"
	case "max":
		return e.Field() + " must be at most " + e.Param() + " characters"
	case "gte":
		return e.Field() + " must be at least " + e.Param()
	case "lte":
		return e.Field() + " must be at most " + e.Param()
	case "content_type":
		return "Content type must be one of text, video, pdf, external_url"
	default:
		return e.Field() + " is invalid"
	}
}
