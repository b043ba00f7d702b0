package forms

import (
	"fmt"
	"net/http"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	TagHasUpper = "has_upper"
	TagHasLower = "has_lower"
	TagHasDigit = "has_digit"
)

var (
	reUpper = regexp.MustCompile(`[A-Z]`)
	reLower = regexp.MustCompile(`[a-z]`)
	reDigit = regexp.MustCompile(`[0-9]`)

	passwordRules = map[string]*regexp.Regexp{
		TagHasUpper: reUpper,
		TagHasLower: reLower,
		TagHasDigit: reDigit,
	}
)

// Errors maps a form field name to the first message for that field.
type Errors map[string]string

func (e Errors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

func (e Errors) Get(field string) string {
	return e[field]
}

func (e Errors) Any() bool {
	return len(e) > 0
}

// Validator wraps go-playground/validator with the password rules used by the auth forms.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() (*Validator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	if err := registerRules(validate, passwordRules); err != nil {
		return nil, err
	}

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{validate: validate}, nil
}

// MustNewValidator is NewValidator for package-level initialisation.
func MustNewValidator() *Validator {
	v, err := NewValidator()
	if err != nil {
		panic(err)
	}
	return v
}

func registerRules(validate *validator.Validate, rules map[string]*regexp.Regexp) error {
	for tag, re := range rules {
		if err := validate.RegisterValidation(tag, matches(re)); err != nil {
			return fmt.Errorf("failed to register %q validation: %w", tag, err)
		}
	}
	return nil
}

func matches(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

// Validate returns nil when the form is valid.
func (v *Validator) Validate(form any) Errors {
	err := v.validate.Struct(form)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return Errors{"_form": "Invalid form submission."}
	}

	errs := make(Errors, len(validationErrors))
	for _, fieldErr := range validationErrors {
		if errs.Has(fieldErr.Field()) {
			continue
		}
		errs[fieldErr.Field()] = message(fieldErr)
	}

	return errs
}

func message(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email address"
	case "min":
		if err.Field() == "name" {
			return "Name must be at least " + err.Param() + " characters"
		}
		return "Password must be at least " + err.Param() + " characters"
	case TagHasUpper:
		return "Password must contain at least one uppercase letter"
	case TagHasLower:
		return "Password must contain at least one lowercase letter"
	case TagHasDigit:
		return "Password must contain at least one number"
	case "eqfield":
		return "Passwords do not match"
	default:
		return "Invalid value"
	}
}

// Parse reads the posted form into one of the form structs in this package.
func Parse(r *http.Request, form Form) error {
	if err := r.ParseForm(); err != nil {
		return err
	}

	form.bind(r.PostForm)
	return nil
}
