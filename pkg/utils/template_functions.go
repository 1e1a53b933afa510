package utils

import (
	"fmt"
	"html/template"
	"math"
	"net/url"
	"reflect"
	"strconv"
	"strings"
)

// IconFunc resolves a symbolic icon name to inline markup.
type IconFunc func(name string) template.HTML

func GetTemplateFuncs(icon IconFunc) template.FuncMap {
	return template.FuncMap{
		"sub": func(a, b int) int { return a - b },

		"default": func(defaultValue, value interface{}) interface{} {
			if isEmpty(value) {
				return defaultValue
			}
			return value
		},

		"icon": func(name interface{}) template.HTML {
			if icon == nil {
				return ""
			}
			return icon(fmt.Sprint(name))
		},
	}
}

// FormatNumber renders integers without decimals and other values with at
// most two, trimming trailing zeros.
func FormatNumber(value interface{}) string {
	var f float64
	switch v := value.(type) {
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		f = v
	case float32:
		f = float64(v)
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "-"
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(math.Round(f*100)/100, 'f', -1, 64)
}

func isEmpty(value interface{}) bool {
	if value == nil {
		return true
	}

	v := reflect.ValueOf(value)

	switch v.Kind() {
	case reflect.String:
		return strings.TrimSpace(v.String()) == ""
	case reflect.Bool:
		return false
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Slice, reflect.Array, reflect.Map:
		return v.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	}

	zero := reflect.Zero(v.Type())
	return reflect.DeepEqual(value, zero.Interface())
}

// NormalizePath cleans a request path: leading slash enforced, duplicate and
// trailing slashes removed, absolute URLs reduced to their path. Dot segments
// are kept as they are; the router does not resolve them either.
func NormalizePath(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "/"
	}

	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		if parsed, err := url.Parse(trimmed); err == nil {
			if parsed.Path != "" {
				trimmed = parsed.Path
			} else {
				trimmed = "/"
			}
		}
	}

	segments := strings.Split(trimmed, "/")
	kept := segments[:0]
	for _, segment := range segments {
		if segment != "" {
			kept = append(kept, segment)
		}
	}

	return "/" + strings.Join(kept, "/")
}

// IsLocalPath reports whether value is safe to redirect to: an absolute path
// on this host, not a scheme-relative or backslash-prefixed URL.
func IsLocalPath(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" || !strings.HasPrefix(value, "/") {
		return false
	}
	if strings.HasPrefix(value, "//") || strings.HasPrefix(value, "/\\") {
		return false
	}
	parsed, err := url.Parse(value)
	if err != nil {
		return false
	}
	return parsed.Scheme == "" && parsed.Host == ""
}
