package invoice

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	mustRegister(v, "notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	mustRegister(v, "invoicedate", func(fl validator.FieldLevel) bool {
		_, ok := ParseDate(fl.Field().String())
		return ok
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validator: %v", tag, err))
	}
}

// fieldPath drops the root type from the namespace, e.g.
// "Invoice.products[0].productName" becomes "products[0].productName".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func sentinelFor(fe validator.FieldError) error {
	switch fe.Tag() {
	case "notblank", "required":
		return ErrRequired
	case "invoicedate":
		return ErrInvalidDate
	case "min":
		return ErrInvalidQty
	case "oneof":
		if fe.Field() == "paymentType" {
			return ErrInvalidPayment
		}
		return ErrInvalidStatus
	}
	return fmt.Errorf("failed %s check", fe.Tag())
}
