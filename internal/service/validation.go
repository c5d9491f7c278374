package service

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const domainTLDTag = "domaintld"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation(domainTLDTag, domainTLDValidation)
	return v
}

// domainTLDValidation requires a dotted domain after the last '@', so
// addresses like "user@localhost" are rejected.
func domainTLDValidation(fl validator.FieldLevel) bool {
	email := fl.Field().String()
	at := strings.LastIndexByte(email, '@')
	if at < 0 {
		return false
	}
	domain := email[at+1:]
	dot := strings.LastIndexByte(domain, '.')
	return dot > 0 && dot < len(domain)-1
}

func parseUUID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errInvalidUUID
	}
	return id, nil
}

func validateName(name string) error {
	if err := validate.Var(name, "required"); err != nil {
		return errEmptyName
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return errEmptyEmail
	}
	if err := validate.Var(email, "email,"+domainTLDTag); err != nil {
		return errInvalidEmail
	}
	return nil
}
