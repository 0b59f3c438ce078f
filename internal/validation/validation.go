// Package validation holds the field rules shared by request binding and the
// service layer.
package validation

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const DateLayout = "2006-01-02"

var (
	phonePattern      = regexp.MustCompile(`^\+?[0-9]{8,15}$`)
	personNamePattern = regexp.MustCompile(`^\p{L}+(?:[ '\-]\p{L}+)*$`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := Register(v); err != nil {
		panic(err)
	}
	return v
}

// Register installs the custom tags on v.
func Register(v *validator.Validate) error {
	rules := map[string]validator.Func{
		"phone": func(fl validator.FieldLevel) bool {
			return phonePattern.MatchString(fl.Field().String())
		},
		"personname": func(fl validator.FieldLevel) bool {
			return personNamePattern.MatchString(strings.TrimSpace(fl.Field().String()))
		},
		"isodate": func(fl validator.FieldLevel) bool {
			_, ok := ParseDate(fl.Field().String())
			return ok
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

// RegisterGin installs the custom tags on gin's binding validator.
func RegisterGin() error {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		return Register(v)
	}
	return nil
}

func Check(value, tag string) bool {
	return validate.Var(value, tag) == nil
}

func IsEmail(s string) bool      { return Check(s, "email") }
func IsPhone(s string) bool      { return Check(s, "phone") }
func IsUsername(s string) bool   { return Check(s, "alphanum") }
func IsPersonName(s string) bool { return Check(s, "personname") }
func IsPassport(s string) bool   { return Check(s, "alphanum,min=6,max=20") }
func IsGender(s string) bool     { return Check(s, "oneof=Male Female Other") }
func IsCardType(s string) bool   { return Check(s, "oneof=Visa MasterCard JCB AmericanExpress") }
func IsDigits(s string) bool     { return Check(s, "number") }

// ParseDate parses an ISO calendar date in UTC.
func ParseDate(s string) (time.Time, bool) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ParsePositiveInt accepts only natural numbers written in decimal digits.
func ParsePositiveInt(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if !IsDigits(s) {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// StartOfDay truncates t to midnight UTC.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
