package services

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	maxNameLength     = 255
	maxEmailLength    = 255
	minPasswordLength = 6
	maxPasswordLength = 255
	maxTitleLength    = 255
)

var emailRegexp = regexp.MustCompile("^[a-zA-Z0-9.!#$%&'*+/=?^_`{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$")

// ValidationError maps each rejected field to the reason it was rejected.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Summary()
}

// Summary renders the rejected fields in a stable, human readable order.
func (e *ValidationError) Summary() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s %s", k, e.Fields[k])
	}
	return strings.Join(parts, ", ")
}

type validator struct {
	errors map[string]string
}

func newValidator() *validator {
	return &validator{errors: make(map[string]string)}
}

// check records msg for key unless cond holds. Only the first
// failure per key is kept.
func (v *validator) check(cond bool, key, msg string) {
	if cond {
		return
	}
	if _, ok := v.errors[key]; !ok {
		v.errors[key] = msg
	}
}

func (v *validator) checkName(name string) {
	v.check(name != "", "name", "must be provided")
	v.check(utf8.RuneCountInString(name) <= maxNameLength, "name", fmt.Sprintf("must be at most %d characters long", maxNameLength))
}

func (v *validator) checkEmail(email string) {
	v.check(email != "", "email", "must be provided")
	v.check(len(email) <= maxEmailLength, "email", fmt.Sprintf("must be at most %d characters long", maxEmailLength))
	v.check(emailRegexp.MatchString(email), "email", "must be a valid email address")
}

func (v *validator) checkPassword(password string) {
	v.check(password != "", "password", "must be provided")
	v.check(utf8.RuneCountInString(password) >= minPasswordLength, "password", fmt.Sprintf("must be at least %d characters long", minPasswordLength))
	v.check(utf8.RuneCountInString(password) <= maxPasswordLength, "password", fmt.Sprintf("must be at most %d characters long", maxPasswordLength))
}

func (v *validator) err() error {
	if len(v.errors) == 0 {
		return nil
	}
	return &ValidationError{Fields: v.errors}
}
