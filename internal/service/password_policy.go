package service

import (
	"unicode"
	"unicode/utf8"

	"github.com/storefront-next/internal/config"
)

// passwordPolicyError 携带 i18n key，errors.Is 匹配 ErrWeakPassword
type passwordPolicyError struct {
	key  string
	args []interface{}
}

func (e passwordPolicyError) Error() string        { return e.key }
func (e passwordPolicyError) Is(target error) bool { return target == ErrWeakPassword }
func (e passwordPolicyError) Key() string          { return e.key }
func (e passwordPolicyError) Args() []interface{}  { return e.args }

// bcrypt 只使用前 72 字节
const maxPasswordBytes = 72

type charClass struct {
	required bool
	match    func(rune) bool
	key      string
}

func isSpecial(r rune) bool {
	return !unicode.IsUpper(r) && !unicode.IsLower(r) && !unicode.IsDigit(r)
}

func validatePassword(policy config.PasswordPolicyConfig, password string) error {
	switch {
	case password == "":
		return passwordPolicyError{key: "error.password_required"}
	case len(password) > maxPasswordBytes:
		return passwordPolicyError{key: "error.password_too_long", args: []interface{}{maxPasswordBytes}}
	case policy.MinLength > 0 && utf8.RuneCountInString(password) < policy.MinLength:
		return passwordPolicyError{key: "error.password_min_length", args: []interface{}{policy.MinLength}}
	}

	classes := []charClass{
		{policy.RequireUpper, unicode.IsUpper, "error.password_require_upper"},
		{policy.RequireLower, unicode.IsLower, "error.password_require_lower"},
		{policy.RequireNumber, unicode.IsDigit, "error.password_require_number"},
		{policy.RequireSpecial, isSpecial, "error.password_require_special"},
	}
	for _, class := range classes {
		if !class.required {
			continue
		}
		if !containsRune(password, class.match) {
			return passwordPolicyError{key: class.key}
		}
	}
	return nil
}

func containsRune(s string, match func(rune) bool) bool {
	for _, r := range s {
		if match(r) {
			return true
		}
	}
	return false
}
