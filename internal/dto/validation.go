package dto

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var registerOnce sync.Once

// RegisterValidators teaches gin's validator about decimal amounts:
// "amount" requires a value above zero and "nonneg" one at or above zero.
func RegisterValidators() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
			return
		}
		v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
		if err = v.RegisterValidation("amount", decimalSign(func(d decimal.Decimal) bool { return d.IsPositive() })); err != nil {
			return
		}
		err = v.RegisterValidation("nonneg", decimalSign(func(d decimal.Decimal) bool { return !d.IsNegative() }))
	})
	return err
}

// decimalValue exposes decimals to validation tags as their string form.
func decimalValue(field reflect.Value) any {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		return d.String()
	}
	return nil
}

func decimalSign(ok func(decimal.Decimal) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		return err == nil && ok(d)
	}
}
