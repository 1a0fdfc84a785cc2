// Package validation runs the client-side form checks every screen performs
// before a request is sent to the remote API.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"backoffice/internal/domain"
	"backoffice/internal/domain/models"

	"github.com/go-playground/validator/v10"
)

const clockLayout = "15:04"

var (
	once     sync.Once
	instance *validator.Validate
)

// Engine returns the shared validator with the dashboard's custom rules registered.
func Engine() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
		_ = v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
			_, err := time.Parse(clockLayout, fl.Field().String())
			return err == nil
		})
		v.RegisterStructValidation(workingHoursRule, models.WorkingHours{})
		v.RegisterStructValidation(couponRule, models.CouponPayload{})
		instance = v
	})
	return instance
}

// Struct validates payload and maps failures to domain.ValidationErrors.
func Struct(payload any) error {
	err := Engine().Struct(payload)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return domain.ValidationError{Msg: "invalid payload", Err: err}
	}
	out := make(domain.ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, domain.ValidationError{
			Field: fieldPath(fe.Namespace()),
			Msg:   message(fe),
		})
	}
	return out
}

// workingHoursRule requires both clocks on open days and opening before closing.
func workingHoursRule(sl validator.StructLevel) {
	wh := sl.Current().Interface().(models.WorkingHours)
	if wh.Closed {
		return
	}
	if wh.Opening == "" {
		sl.ReportError(wh.Opening, "opening", "Opening", "required", "")
	}
	if wh.Closing == "" {
		sl.ReportError(wh.Closing, "closing", "Closing", "required", "")
	}
	if wh.Opening == "" || wh.Closing == "" {
		return
	}
	open, errOpen := time.Parse(clockLayout, wh.Opening)
	closeAt, errClose := time.Parse(clockLayout, wh.Closing)
	if errOpen != nil || errClose != nil {
		return
	}
	if !open.Before(closeAt) {
		sl.ReportError(wh.Closing, "closing", "Closing", "after_opening", wh.Opening)
	}
}

// couponRule caps percentage discounts at 100.
func couponRule(sl validator.StructLevel) {
	c := sl.Current().Interface().(models.CouponPayload)
	if c.Type == "percent" && c.Value > 100 {
		sl.ReportError(c.Value, "value", "Value", "lte", "100")
	}
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if", "required_unless":
		return "is required"
	case "email":
		return "must be a valid email"
	case "clock":
		return "must be a time in HH:MM format"
	case "after_opening":
		return fmt.Sprintf("must be later than opening time %s", fe.Param())
	case "gtfield":
		return fmt.Sprintf("must be after %s", strings.ToLower(fe.Param()))
	case "gtefield":
		return fmt.Sprintf("must not be before %s", strings.ToLower(fe.Param()))
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "excludes":
		return "must be an uploaded image name, not a URL"
	case "min", "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max", "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
