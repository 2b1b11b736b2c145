package errors

import (
	"fmt"
	"regexp"
	"strings"
)

// Code identifies a failure class as "package.name" (optionally with more
// dot-separated segments, e.g. "schema.table.empty_definition").
type Code struct {
	value string
}

// Common codes shared by every package.
var (
	CommonInternal      = MustNewCode("common.internal")
	CommonNotFound      = MustNewCode("common.not_found")
	CommonValidation    = MustNewCode("common.validation")
	CommonTimeout       = MustNewCode("common.timeout")
	CommonUnsupported   = MustNewCode("common.unsupported")
	CommonInvalidInput  = MustNewCode("common.invalid_input")
	CommonAlreadyExists = MustNewCode("common.already_exists")
	CommonUnavailable   = MustNewCode("common.unavailable")
)

var codeRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*(\.[a-z][a-z0-9_]*)+$`)

// NewCode validates s and returns it as a Code.
func NewCode(s string) (Code, error) {
	if !codeRegex.MatchString(s) {
		return Code{}, fmt.Errorf("invalid code format '%s': must be 'package.name' (lowercase, underscores, dots only)", s)
	}

	// "error"/"err" in a code is redundant noise and usually a typo for a real name
	for _, segment := range strings.Split(s, ".") {
		if segment == "error" || segment == "err" || strings.HasPrefix(segment, "error_") {
			return Code{}, fmt.Errorf("invalid code '%s': should not contain 'error' or 'err' segments", s)
		}
	}

	return Code{value: s}, nil
}

// MustNewCode is NewCode for package-level tables; it panics on bad input.
func MustNewCode(s string) Code {
	code, err := NewCode(s)
	if err != nil {
		panic(err)
	}
	return code
}

// PackageCode builds "<pkg>.<name>".
func PackageCode(pkg, name string) Code {
	return MustNewCode(pkg + "." + name)
}

func (c Code) String() string {
	return c.value
}

// Package returns the first segment.
func (c Code) Package() string {
	if idx := strings.Index(c.value, "."); idx != -1 {
		return c.value[:idx]
	}
	return ""
}

// Name returns everything after the first segment.
func (c Code) Name() string {
	if idx := strings.Index(c.value, "."); idx != -1 {
		return c.value[idx+1:]
	}
	return c.value
}

func (c Code) IsValid() bool {
	return codeRegex.MatchString(c.value)
}

func (c Code) Equals(other Code) bool {
	return c.value == other.value
}
