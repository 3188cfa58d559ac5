package variable

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Category groups variables for display. It plays no part in computation.
type Category string

const (
	Blood      Category = "blood"
	Diet       Category = "diet"
	Supplement Category = "supplement"
	Lifestyle  Category = "lifestyle"
	Sleep      Category = "sleep"
	Exercise   Category = "exercise"
)

// Categories lists every valid category in display order.
var Categories = []Category{Blood, Diet, Supplement, Lifestyle, Sleep, Exercise}

// ParseCategory matches s case-insensitively against the known categories.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Categories {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("invalid category %q (use one of %s)", s, joinCategories())
}

func joinCategories() string {
	parts := make([]string, len(Categories))
	for i, c := range Categories {
		parts[i] = string(c)
	}
	return strings.Join(parts, ", ")
}

// Range is an advisory normal range. Min <= Max is not enforced.
type Range struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

// Variable is a tracked quantity. Its Name must match a record field name to
// take part in correlation, and only active variables are compared.
type Variable struct {
	Name        string   `yaml:"name" json:"name" validate:"required,max=128"`
	Category    Category `yaml:"category" json:"category" validate:"required,oneof=blood diet supplement lifestyle sleep exercise"`
	Unit        string   `yaml:"unit" json:"unit" validate:"max=32"`
	NormalRange *Range   `yaml:"normal_range,omitempty" json:"normalRange,omitempty"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	Active      bool     `yaml:"active" json:"active"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report yaml field names, which is what users edit
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidationError lists every problem found on a single variable.
type ValidationError struct {
	Name     string
	Problems []string
}

func (e *ValidationError) Error() string {
	name := e.Name
	if name == "" {
		name = "(unnamed)"
	}
	return fmt.Sprintf("invalid variable %s: %s", name, strings.Join(e.Problems, "; "))
}

// Validate checks the struct-level constraints of v.
func (v Variable) Validate() error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate variable: %w", err)
	}
	ve := &ValidationError{Name: v.Name}
	for _, fe := range fieldErrs {
		ve.Problems = append(ve.Problems, formatFieldError(fe))
	}
	return ve
}

func formatFieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}

// ParseSpec builds an active variable from "name[:category[:unit]]".
// The category defaults to lifestyle.
func ParseSpec(spec string) (Variable, error) {
	parts := strings.SplitN(spec, ":", 3)
	v := Variable{Name: strings.TrimSpace(parts[0]), Category: Lifestyle, Active: true}
	if len(parts) > 1 && strings.TrimSpace(parts[1]) != "" {
		c, err := ParseCategory(parts[1])
		if err != nil {
			return Variable{}, err
		}
		v.Category = c
	}
	if len(parts) > 2 {
		v.Unit = strings.TrimSpace(parts[2])
	}
	if err := v.Validate(); err != nil {
		return Variable{}, err
	}
	return v, nil
}
