package httpx

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	pincodeRe = regexp.MustCompile(`^[1-9][0-9]{5}$`)
	phoneRe   = regexp.MustCompile(`^[6-9]\d{9}$`)
	gstRe     = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][1-9A-Z]Z[0-9A-Z]$`)
	panRe     = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)

	registerOnce sync.Once
	registerErr  error
)

func matches(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

// RegisterValidators installs the marketplace tags (pincode, inphone, gst,
// pan) on gin's validator and reports field names by their json key.
func RegisterValidators() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		for tag, re := range map[string]*regexp.Regexp{
			"pincode": pincodeRe,
			"inphone": phoneRe,
			"gst":     gstRe,
			"pan":     panRe,
		} {
			if err := v.RegisterValidation(tag, matches(re)); err != nil {
				registerErr = err
				return
			}
		}
	})
	return registerErr
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "pincode":
		return field + " must be a valid 6-digit pincode"
	case "inphone":
		return field + " must be a valid 10-digit phone number"
	case "email":
		return field + " must be a valid email"
	case "gst":
		return field + " must be a valid GST number"
	case "pan":
		return field + " must be a valid PAN number"
	case "oneof":
		return field + " must be one of: " + fe.Param()
	case "min", "gte":
		if fe.Kind() == reflect.Slice {
			return field + " must contain at least " + fe.Param() + " item(s)"
		}
		return field + " must be at least " + fe.Param()
	case "max", "lte":
		return field + " must be at most " + fe.Param()
	default:
		return field + " is invalid"
	}
}
