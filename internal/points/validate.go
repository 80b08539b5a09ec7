package points

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/couchcryptid/delivery-point-map/internal/domain"
	"github.com/go-playground/validator/v10"
)

// ValidationError lists every rejected form field with a short reason.
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + ": " + e.Fields[name]
	}
	return "invalid point: " + strings.Join(parts, ", ")
}

// formInput is the normalized form the validator checks.
type formInput struct {
	ShopCode  string  `json:"shop_code" validate:"required,max=64"`
	Name      string  `json:"name" validate:"required,max=200"`
	City      string  `json:"city" validate:"required,max=120"`
	Address   string  `json:"address" validate:"required,max=300"`
	Latitude  float64 `json:"latitude" validate:"min=-90,max=90"`
	Longitude float64 `json:"longitude" validate:"min=-180,max=180"`
	IsActive  bool    `json:"is_active"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names so errors line up with the payload.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// normalizeForm trims text fields, normalizes both coordinates and validates
// the result. Coordinates must be present and parse cleanly: the lenient
// fallback used for rendering does not apply to writes.
func normalizeForm(v *validator.Validate, form domain.PointForm) (formInput, error) {
	in := formInput{
		ShopCode: strings.TrimSpace(form.ShopCode),
		Name:     strings.TrimSpace(form.Name),
		City:     strings.TrimSpace(form.City),
		Address:  strings.TrimSpace(form.Address),
		IsActive: form.IsActive == nil || *form.IsActive,
	}
	fields := make(map[string]string)

	in.Latitude = coordinateField(form.Latitude, "latitude", fields)
	in.Longitude = coordinateField(form.Longitude, "longitude", fields)

	if err := v.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return formInput{}, fmt.Errorf("validate point form: %w", err)
		}
		for _, fe := range verrs {
			if _, seen := fields[fe.Field()]; seen {
				continue
			}
			fields[fe.Field()] = describe(fe)
		}
	}

	if len(fields) > 0 {
		return formInput{}, &ValidationError{Fields: fields}
	}
	return in, nil
}

// coordinateField records a field error and returns 0 unless raw parses.
func coordinateField(raw domain.RawCoordinate, name string, fields map[string]string) float64 {
	v, outcome := domain.ParseCoordinate(raw)
	switch outcome {
	case domain.Parsed:
		return v
	case domain.Missing:
		fields[name] = "is required"
	default:
		fields[name] = "must be a number"
	}
	return 0
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		if fe.Kind() == reflect.String {
			return "must be at most " + fe.Param() + " characters"
		}
		return "must be at most " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	default:
		return "is invalid"
	}
}
