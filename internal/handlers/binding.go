package handlers

import (
	"errors"
	"net/http"

	"lms-service/internal/apperr"

	"github.com/gin-gonic/gin"
	govalidator "github.com/go-playground/validator/v10"
)

// idFields maps DTO fields carrying the objectid binding rule to the entity
// names used in error messages.
var idFields = map[string]string{
	"StageID":   "stage",
	"SubjectID": "subject",
	"CourseID":  "course",
}

// bindJSON binds the request body and translates binding-rule failures into
// the application error vocabulary. An objectid failure reports the same
// message the service layer uses for the field, so callers see one message
// regardless of which layer caught the malformed id.
func bindJSON(c *gin.Context, dest any) error {
	err := c.ShouldBindJSON(dest)
	if err == nil {
		return nil
	}

	var fieldErrs govalidator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		if fe.Tag() == "objectid" {
			if name, ok := idFields[fe.StructField()]; ok {
				return apperr.Validation("Invalid %s ID format", name)
			}
			return apperr.InvalidID("Invalid ID format")
		}
	}
	return apperr.New(http.StatusBadRequest, "Invalid request body")
}
