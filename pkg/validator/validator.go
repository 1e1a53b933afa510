package validator

import (
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/unicode/norm"
)

var (
	initOnce  sync.Once
	validate  *validator.Validate
	sanitizer *bluemonday.Policy

	slugPattern  = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
	routePattern = regexp.MustCompile(`^(/[a-z0-9][a-z0-9-]*)+$`)
	spacePattern = regexp.MustCompile(`\s+`)
)

// Init builds the shared validator. It is safe to call more than once.
func Init() {
	initOnce.Do(func() {
		validate = validator.New()
		sanitizer = bluemonday.StrictPolicy()

		registerCustomValidations(validate)
	})
}

func registerCustomValidations(v *validator.Validate) {
	v.RegisterValidation("slug", validateSlug)
	v.RegisterValidation("route", validateRoute)
	v.RegisterValidation("no_html", validateNoHTML)
}

func Validate(s interface{}) error {
	Init()
	return validate.Struct(s)
}

// Var validates a single value against a tag expression such as
// "oneof=a b" or "datetime=2006-01-02".
func Var(value interface{}, tag string) error {
	Init()
	return validate.Var(value, tag)
}

// SanitizeString strips all markup from s.
func SanitizeString(s string) string {
	Init()
	return sanitizer.Sanitize(s)
}

func NormalizeSpaces(s string) string {
	return strings.TrimSpace(spacePattern.ReplaceAllString(s, " "))
}

// NormalizeText composes s to NFC and collapses whitespace, so equivalent
// input typed on different keyboards compares equal.
func NormalizeText(s string) string {
	return NormalizeSpaces(norm.NFC.String(s))
}

func IsSlug(s string) bool {
	return slugPattern.MatchString(s)
}

func IsRoute(s string) bool {
	return routePattern.MatchString(s)
}

func validateSlug(fl validator.FieldLevel) bool {
	return IsSlug(fl.Field().String())
}

func validateRoute(fl validator.FieldLevel) bool {
	return IsRoute(fl.Field().String())
}

func validateNoHTML(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return !strings.Contains(value, "<") && !strings.Contains(value, ">")
}
