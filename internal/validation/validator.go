// Shutterfeed - Photo Sharing Feed and Social Graph Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shutterfeed

// Package validation provides struct validation using go-playground/validator v10.
// It provides a thread-safe singleton validator instance with the custom
// rules Shutterfeed request bodies need.
//
// Custom tags:
//   - handle: 3-30 characters, letters, digits, underscore or dot
//   - notblank: string is non-empty after trimming whitespace
//
// Field names in error messages use the struct's json tag, so a failed
// `json:"imageUrl" validate:"required"` reports "imageUrl is required".
//
// Example usage:
//
//	type CreatePostRequest struct {
//	    ImageURL string `json:"imageUrl" validate:"required,url"`
//	    Caption  string `json:"caption" validate:"max=2000"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    return social.FromValidation(verr)
//	}
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// singleton validator instance
var (
	validate     *validator.Validate
	validateOnce sync.Once
)

var handlePattern = regexp.MustCompile(`^[A-Za-z0-9_.]{3,30}$`)

// FieldError is one failed rule on one field.
type FieldError struct {
	Field   string // json name when the field has one
	Tag     string
	Param   string
	Message string
}

// RequestValidationError lists every failed rule of a request body, in
// struct field order.
type RequestValidationError struct {
	Fields []FieldError
}

func (ve *RequestValidationError) Error() string {
	return ve.Message()
}

// Message joins the per-field messages.
func (ve *RequestValidationError) Message() string {
	if len(ve.Fields) == 0 {
		return "Validation failed"
	}
	messages := make([]string, len(ve.Fields))
	for i, f := range ve.Fields {
		messages[i] = f.Message
	}
	return strings.Join(messages, "; ")
}

// Details is the envelope detail map: field and tag for a single failure,
// a "fields" list otherwise.
func (ve *RequestValidationError) Details() map[string]interface{} {
	switch len(ve.Fields) {
	case 0:
		return nil
	case 1:
		return map[string]interface{}{"field": ve.Fields[0].Field, "tag": ve.Fields[0].Tag}
	}
	fields := make([]map[string]interface{}, len(ve.Fields))
	for i, f := range ve.Fields {
		fields[i] = map[string]interface{}{"field": f.Field, "tag": f.Tag, "message": f.Message}
	}
	return map[string]interface{}{"fields": fields}
}

// GetValidator returns the shared validator, building it on first use.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		validate.RegisterTagNameFunc(jsonFieldName)

		// Registration only fails on an empty tag or nil func.
		_ = validate.RegisterValidation("handle", validateHandle)
		_ = validate.RegisterValidation("notblank", validateNotBlank)
	})

	return validate
}

// jsonFieldName reports fields by their json name.
func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return fld.Name
	}
	return name
}

func validateHandle(fl validator.FieldLevel) bool {
	return handlePattern.MatchString(fl.Field().String())
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// ValidHandle reports whether s is an acceptable account handle.
func ValidHandle(s string) bool {
	return handlePattern.MatchString(s)
}

// ValidateStruct checks s against its validate tags. The result is nil when
// every rule passes.
func ValidateStruct(s interface{}) *RequestValidationError {
	v := GetValidator()

	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return &RequestValidationError{Fields: []FieldError{{Field: "body", Tag: "invalid", Message: err.Error()}}}
	}

	fields := make([]FieldError, len(validationErrs))
	for i, fe := range validationErrs {
		fields[i] = FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Param:   fe.Param(),
			Message: translateError(fe),
		}
	}
	return &RequestValidationError{Fields: fields}
}

// errorMessageTemplates maps validation tags to message templates.
var errorMessageTemplates = map[string]string{
	"required": "%s is required",
	"notblank": "%s is required",
	"email":    "%s must be a valid email address",
	"url":      "%s must be a valid URL",
	"uuid":     "%s must be a valid ID",
	"handle":   "%s must be 3-30 characters of letters, numbers, underscores or dots",
}

// errorMessageWithParam maps validation tags to templates that include param.
var errorMessageWithParam = map[string]string{
	"oneof": "%s must be one of: %s",
	"gte":   "%s must be greater than or equal to %s",
	"lte":   "%s must be less than or equal to %s",
}

func translateError(fe validator.FieldError) string {
	field := fe.Field()
	tag := fe.Tag()
	param := fe.Param()

	if template, ok := errorMessageTemplates[tag]; ok {
		return fmt.Sprintf(template, field)
	}

	if template, ok := errorMessageWithParam[tag]; ok {
		return fmt.Sprintf(template, field, param)
	}

	return translateMinMax(fe, field, tag, param)
}

// translateMinMax handles min/max validation with type-specific messages.
func translateMinMax(fe validator.FieldError, field, tag, param string) string {
	isString := fe.Kind() == reflect.String

	switch tag {
	case "min":
		if isString {
			return fmt.Sprintf("%s must be at least %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		if isString {
			return fmt.Sprintf("%s must be at most %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at most %s", field, param)
	default:
		return fmt.Sprintf("%s failed %s validation", field, tag)
	}
}
