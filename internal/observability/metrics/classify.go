package metrics

import (
	"context"
	"errors"
	"reflect"
	"strings"

	apperrors "github.com/target/profilegate/internal/errors"
)

// Classify returns a short error class suitable for a metric tag. Application
// errors report their code; other errors report the innermost concrete type
// in snake_case-ish form.
func Classify(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled):
		return string(apperrors.ErrCodeCanceled)
	case errors.Is(err, context.DeadlineExceeded):
		return string(apperrors.ErrCodeTimeout)
	}
	if code := apperrors.GetCode(err); code != "" {
		return string(code)
	}

	for {
		next := errors.Unwrap(err)
		if next == nil {
			break
		}
		err = next
	}

	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "unknown"
	}
	name := strings.ToLower(strings.ReplaceAll(t.String(), ".", "_"))
	if name == "" {
		return "unknown"
	}
	return name
}
