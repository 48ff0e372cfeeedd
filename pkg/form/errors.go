package form

import "errors"

// Construction errors returned by New.
var (
	ErrMissingModel            = errors.New("form: model or control setting is required")
	ErrMissingContainer        = errors.New("form: container is required")
	ErrAmbiguousContainer      = errors.New("form: container selector matched more than one element")
	ErrMissingDefaultInstance  = errors.New("form: config.default_instance is required")
	ErrMissingTemplateProvider = errors.New("form: template provider is required")
)

// Notification codes produced by the form itself.
const (
	CodeInvalidValue = "invalidValue"
)
