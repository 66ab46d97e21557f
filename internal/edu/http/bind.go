package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/edupredict/edupredict/pkg/edusdk"
	"github.com/go-playground/validator/v10"
)

// validate is shared across handlers. Field names in error messages come
// from the json tags so they match what the client actually sent.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// bindJSON decodes the request body into dst and runs struct validation.
// The returned error, if any, is a ready-to-write *edusdk.APIError.
func bindJSON(r *http.Request, dst any) *edusdk.APIError {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return edusdk.NewAPIError(http.StatusBadRequest,
			edusdk.ErrorCodeInvalidRequest, "request body is not valid JSON")
	}

	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return edusdk.NewAPIError(http.StatusBadRequest,
				edusdk.ErrorCodeValidation, describeFieldErrors(verrs))
		}
		return edusdk.NewAPIError(http.StatusBadRequest,
			edusdk.ErrorCodeValidation, "request validation failed")
	}
	return nil
}

// describeFieldErrors flattens validator output into one readable line per
// field, e.g. "email: must be a valid email; password: is required".
func describeFieldErrors(verrs validator.ValidationErrors) string {
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fe.Field()+": "+describeTag(fe))
	}
	return strings.Join(msgs, "; ")
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return "must be one of: " + fe.Param()
	case "gte":
		return fmt.Sprintf("must be %s or more", fe.Param())
	case "lte":
		return fmt.Sprintf("must be %s or less", fe.Param())
	case "datetime":
		return "must be a date in the form " + fe.Param()
	default:
		return "failed validation rule " + fe.Tag()
	}
}
