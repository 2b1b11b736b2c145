package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

var (
	testCode  = MustNewCode("test.code")
	otherCode = MustNewCode("test.other")
)

func TestNew(t *testing.T) {
	err := New(CommonInternal, "test failure", nil)

	if err.Message != "test failure" {
		t.Errorf("Expected message 'test failure', got '%s'", err.Message)
	}
	if err.Code.String() != "common.internal" {
		t.Errorf("Expected code 'common.internal', got '%s'", err.Code.String())
	}
	if err.Timestamp.IsZero() {
		t.Error("Expected timestamp to be set")
	}
	if len(err.Stack) == 0 {
		t.Error("Expected stack trace to be captured")
	}
}

func TestNewWithCause(t *testing.T) {
	cause := stderrors.New("disk full")
	err := New(testCode, "write failed", cause)

	if err.Error() != "write failed: disk full" {
		t.Errorf("Unexpected error string: %s", err.Error())
	}
	if !stderrors.Is(err, cause) {
		t.Error("Expected errors.Is to find the cause")
	}
}

func TestNewfAndWrapf(t *testing.T) {
	err := Newf(testCode, "table %s missing", "card")
	if err.Message != "table card missing" {
		t.Errorf("Unexpected message: %s", err.Message)
	}

	cause := fmt.Errorf("boom")
	wrapped := Wrapf(testCode, cause, "insert into %s", "card")
	if wrapped.Cause != cause {
		t.Error("Expected cause to be set")
	}
	if wrapped.Message != "insert into card" {
		t.Errorf("Unexpected message: %s", wrapped.Message)
	}
}

func TestAddContextAndFormat(t *testing.T) {
	err := New(testCode, "select failed", stderrors.New("locked")).
		AddContext("table", "card").
		AddContext("filters", "1")

	formatted := FormatError(err)
	for _, want := range []string{"Code: test.code", "Message: select failed", "  filters: 1", "  table: card", "Cause: locked"} {
		if !strings.Contains(formatted, want) {
			t.Errorf("Expected formatted error to contain %q, got:\n%s", want, formatted)
		}
	}

	if FormatError(stderrors.New("plain")) != "plain" {
		t.Error("Expected plain errors to format as their message")
	}
}

func TestIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(testCode, "inner", nil))

	if !stderrors.Is(err, New(testCode, "different message", nil)) {
		t.Error("Expected errors.Is to match on code")
	}
	if stderrors.Is(err, New(otherCode, "inner", nil)) {
		t.Error("Expected errors.Is not to match a different code")
	}
	if !HasCode(err, testCode) {
		t.Error("Expected HasCode to find the wrapped code")
	}
	if GetCode(err) != "test.code" {
		t.Errorf("Expected GetCode to unwrap, got %q", GetCode(err))
	}
}

type transformable struct{ msg string }

func (m *transformable) Error() string { return m.msg }

func (m *transformable) Transform() *Error {
	return New(CommonValidation, m.msg, nil).AddContext("transformed", "true")
}

func TestAsError(t *testing.T) {
	if AsError(nil) != nil {
		t.Error("AsError should return nil for nil input")
	}

	coded := New(testCode, "existing", nil)
	if AsError(coded) != coded {
		t.Error("AsError should pass *Error through")
	}

	transformed := AsError(&transformable{msg: "bad"})
	if GetContext(transformed)["transformed"] != "true" {
		t.Error("AsError should use Transform for InternalError values")
	}

	plain := AsError(stderrors.New("plain"))
	if !plain.Code.Equals(CommonInternal) || plain.Message != "plain" {
		t.Errorf("Unexpected conversion of plain error: %+v", plain)
	}
}
