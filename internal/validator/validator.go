package validator

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"regexp"
	"strings"

	"github.com/hamiddiallo/ecommerce/internal/usecase"

	playground "github.com/go-playground/validator/v10"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// RequestValidator はecho.Validatorの実装。
// エラーはフィールド名をjsonタグで返す
type RequestValidator struct {
	v *playground.Validate
}

func New() *RequestValidator {
	v := playground.New(playground.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("slug", func(fl playground.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})
	return &RequestValidator{v: v}
}

func (rv *RequestValidator) Validate(i interface{}) error {
	if err := rv.v.Struct(i); err != nil {
		return usecase.WrapHTTPError(http.StatusBadRequest, Message(err), err)
	}
	return nil
}

// Var は単一値の検証
func (rv *RequestValidator) Var(field interface{}, tag string) error {
	return rv.v.Var(field, tag)
}

// Message は最初のエラーを読みやすい1文にする
func Message(err error) string {
	var verrs playground.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid request"
	}
	fe := verrs[0]
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be >= %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be <= %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be >= %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be > %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "slug":
		return field + " must be lowercase words separated by hyphens"
	default:
		return field + " is invalid"
	}
}
