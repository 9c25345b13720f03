// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/LerianStudio/rabbitmq-consumer-api/pkg"
	cn "github.com/LerianStudio/rabbitmq-consumer-api/pkg/constant"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en2 "github.com/go-playground/validator/v10/translations/en"
	"github.com/gofiber/fiber/v2"
)

// DecodeHandlerFunc is a handler which works with withBody decorator.
// It receives a struct which was decoded by withBody decorator before.
// Ex: json -> withBody -> DecodeHandlerFunc.
type DecodeHandlerFunc func(p any, c *fiber.Ctx) error

// decoderHandler decodes payload coming from requests.
type decoderHandler struct {
	handler      DecodeHandlerFunc
	structSource any
}

func newOfType(s any) any {
	t := reflect.TypeOf(s)
	v := reflect.New(t.Elem())

	return v.Interface()
}

// WithBody decodes the request body into a fresh value of s's type before calling h.
func WithBody(s any, h DecodeHandlerFunc) fiber.Handler {
	d := &decoderHandler{
		handler:      h,
		structSource: s,
	}

	return d.FiberHandlerFunc
}

// FiberHandlerFunc decodes the incoming request's body to a Go struct, rejects fields
// not defined in the struct, validates it and finally calls the wrapped handler function.
func (d *decoderHandler) FiberHandlerFunc(c *fiber.Ctx) error {
	s := newOfType(d.structSource)

	bodyBytes := c.Body()

	trimmedBody := strings.TrimSpace(string(bodyBytes))
	if len(trimmedBody) == 0 || trimmedBody == "null" {
		return WithError(c, pkg.ValidateBusinessError(cn.ErrMissingRequiredFields, ""))
	}

	if err := json.Unmarshal(bodyBytes, s); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			knownFields := pkg.FieldValidations{}
			if typeErr.Field != "" {
				knownFields[typeErr.Field] = fmt.Sprintf("%s expects %s but received %s", typeErr.Field, typeErr.Type.Kind(), typeErr.Value)
			}

			return BadRequest(c, pkg.ValidateBadRequestFieldsError(pkg.FieldValidations{}, knownFields, "", map[string]any{}))
		}

		return WithError(c, pkg.ValidateBusinessError(cn.ErrBadRequest, "", "body is not valid JSON"))
	}

	marshaled, err := json.Marshal(s)
	if err != nil {
		return err
	}

	var originalMap, marshaledMap map[string]any

	if err := json.Unmarshal(bodyBytes, &originalMap); err != nil {
		return WithError(c, pkg.ValidateBusinessError(cn.ErrBadRequest, "", "body must be a JSON object"))
	}

	if err := json.Unmarshal(marshaled, &marshaledMap); err != nil {
		return err
	}

	diffFields := findUnknownFields(originalMap, marshaledMap)

	if len(diffFields) > 0 {
		return BadRequest(c, pkg.ValidateBadRequestFieldsError(pkg.FieldValidations{}, pkg.FieldValidations{}, "", diffFields))
	}

	if err := ValidateStruct(s); err != nil {
		return BadRequest(c, err)
	}

	return d.handler(s, c)
}

// findUnknownFields finds fields that are present in the original map but not in the marshaled map.
func findUnknownFields(original, marshaled map[string]any) map[string]any {
	diffFields := make(map[string]any)

	for key, value := range original {
		marshaledValue, ok := marshaled[key]
		if !ok {
			diffFields[key] = value
			continue
		}

		switch originalValue := value.(type) {
		case map[string]any:
			if marshaledMap, ok := marshaledValue.(map[string]any); ok {
				nestedDiff := findUnknownFields(originalValue, marshaledMap)
				if len(nestedDiff) > 0 {
					diffFields[key] = nestedDiff
				}
			} else if !reflect.DeepEqual(originalValue, marshaledValue) {
				diffFields[key] = value
			}
		default:
			if !reflect.DeepEqual(value, marshaledValue) {
				diffFields[key] = value
			}
		}
	}

	return diffFields
}

// ValidateStruct validates a struct against defined validation rules, using the validator package.
func ValidateStruct(s any) error {
	v, trans := newValidator()

	k := reflect.ValueOf(s).Kind()
	if k == reflect.Ptr {
		k = reflect.ValueOf(s).Elem().Kind()
	}

	if k != reflect.Struct {
		return nil
	}

	err := v.Struct(s)
	if err != nil {
		var vErrs validator.ValidationErrors
		if !errors.As(err, &vErrs) {
			return err
		}

		return malformedRequestErr(vErrs, trans)
	}

	return nil
}

func fields(errs validator.ValidationErrors, trans ut.Translator) pkg.FieldValidations {
	l := len(errs)
	if l > 0 {
		fields := make(pkg.FieldValidations, l)
		for _, e := range errs {
			fields[e.Field()] = e.Translate(trans)
		}

		return fields
	}

	return nil
}

func fieldsRequired(myMap pkg.FieldValidations) pkg.FieldValidations {
	result := make(pkg.FieldValidations)

	for key, value := range myMap {
		if strings.Contains(value, "required") {
			result[key] = value
		}
	}

	return result
}

func malformedRequestErr(err validator.ValidationErrors, trans ut.Translator) pkg.ValidationKnownFieldsError {
	invalidFieldsMap := fields(err, trans)

	requiredFields := fieldsRequired(invalidFieldsMap)

	var vErr pkg.ValidationKnownFieldsError

	_ = errors.As(pkg.ValidateBadRequestFieldsError(requiredFields, invalidFieldsMap, "", make(map[string]any)), &vErr)

	return vErr
}

//nolint:ireturn
func newValidator() (*validator.Validate, ut.Translator) {
	locale := en.New()
	uni := ut.New(locale, locale)

	trans, _ := uni.GetTranslator("en")

	v := validator.New(validator.WithRequiredStructEnabled())

	if err := en2.RegisterDefaultTranslations(v, trans); err != nil {
		panic(err)
	}

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}

		return name
	})

	_ = v.RegisterTranslation("required", trans, func(ut ut.Translator) error {
		return ut.Add("required", "{0} is a required field", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("required", formatErrorFieldName(fe.Namespace()))

		return t
	})

	_ = v.RegisterTranslation("max", trans, func(ut ut.Translator) error {
		return ut.Add("max", "{0} must be at most {1} characters long", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("max", formatErrorFieldName(fe.Namespace()), fe.Param())

		return t
	})

	return v, trans
}

var fieldNamePattern = regexp.MustCompile(`\.(.+)$`)

// formatErrorFieldName strips the struct name from a validator namespace.
func formatErrorFieldName(text string) string {
	matches := fieldNamePattern.FindStringSubmatch(text)
	if len(matches) > 1 {
		return matches[1]
	}

	return text
}
