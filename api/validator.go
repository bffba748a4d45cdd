package api

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func validateStruct(payload any) map[string]string {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}

	fields := make(map[string]string)

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, fe := range validationErrors {
			name := strings.ToLower(fe.Field())
			switch fe.Tag() {
			case "required":
				fields[name] = fmt.Sprintf("The %s field is required.", fe.Field())
			case "max":
				if isNumeric(fe.Kind()) {
					fields[name] = fmt.Sprintf("The %s may not be greater than %s.", fe.Field(), fe.Param())
				} else {
					fields[name] = fmt.Sprintf("The %s may not be longer than %s characters.", fe.Field(), fe.Param())
				}
			case "min":
				if isNumeric(fe.Kind()) {
					fields[name] = fmt.Sprintf("The %s must be at least %s.", fe.Field(), fe.Param())
				} else {
					fields[name] = fmt.Sprintf("The %s must be at least %s characters.", fe.Field(), fe.Param())
				}
			default:
				fields[name] = fmt.Sprintf("The %s field is invalid.", fe.Field())
			}
		}
	}

	return fields
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
