package auth

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"eic-admin/internal/common/errs"
	"eic-admin/internal/config"
)

type PasswordPolicy struct {
	MinLength    int
	RequireMixed bool // upper case, lower case and a digit
}

var (
	BasicPasswordPolicy  = PasswordPolicy{MinLength: 6}
	StrongPasswordPolicy = PasswordPolicy{MinLength: 8, RequireMixed: true}
)

func NewPasswordPolicy(cfg *config.Config) PasswordPolicy {
	if cfg.PasswordPolicy == config.PasswordPolicyStrong {
		return StrongPasswordPolicy
	}
	return BasicPasswordPolicy
}

func (p PasswordPolicy) Check(password string) error {
	if password == "" {
		return errs.Validation("password", "required", "password is required")
	}
	if utf8.RuneCountInString(password) < p.MinLength {
		return errs.Validation("password", "min", fmt.Sprintf("password must be at least %d characters", p.MinLength))
	}
	if !p.RequireMixed {
		return nil
	}

	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !upper || !lower || !digit {
		return errs.Validation("password", "mixed", "password must contain upper case, lower case and digit characters")
	}
	return nil
}
