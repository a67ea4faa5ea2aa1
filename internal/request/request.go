// Package request decodes and validates incoming request data.
package request

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidBody is returned when the body is not the expected JSON.
var ErrInvalidBody = errors.New("invalid request body")

var validate = newValidator()

// newValidator reports fields by their JSON (or query) names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			if name, _, _ := strings.Cut(f.Tag.Get(tag), ","); name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
	return v
}

// DecodeJSON reads the body of r into dst.
func DecodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return ErrInvalidBody
	}
	return nil
}

// Validate checks v against its validate tags. The map is nil when v is
// valid and keyed by field name otherwise.
func Validate(v any) map[string]string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"_": err.Error()}
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "max":
			if fe.Kind() == reflect.String {
				fields[fe.Field()] = "must be at most " + fe.Param() + " characters"
			} else {
				fields[fe.Field()] = "must be at most " + fe.Param()
			}
		case "min":
			fields[fe.Field()] = "must be at least " + fe.Param()
		case "e164":
			fields[fe.Field()] = "must be an international phone number"
		case "uuid":
			fields[fe.Field()] = "must be a UUID"
		case "required":
			fields[fe.Field()] = "is required"
		default:
			fields[fe.Field()] = "is invalid"
		}
	}
	return fields
}

// QueryInt returns the integer query parameter key, or def when absent.
func QueryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	return n, nil
}
