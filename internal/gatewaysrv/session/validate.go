package session

import "github.com/go-playground/validator/v10"

var requestValidator *validator.Validate

func v() *validator.Validate {
	if requestValidator == nil {
		requestValidator = validator.New(validator.WithRequiredStructEnabled())
	}
	return requestValidator
}
