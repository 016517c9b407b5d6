package validator

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	govalidator "github.com/go-playground/validator/v10"
)

var objectIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)

// IsObjectID reports whether s is a 24-hex-char document id.
func IsObjectID(s string) bool {
	return objectIDPattern.MatchString(s)
}

// Setup registers custom validation rules on Gin's binding engine.
// Safe to call more than once; later calls replace the same rules.
func Setup() {
	if v, ok := binding.Validator.Engine().(*govalidator.Validate); ok {
		v.RegisterValidation("objectid", func(fl govalidator.FieldLevel) bool {
			return IsObjectID(fl.Field().String())
		})
	}
}
