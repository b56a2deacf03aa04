package binder

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrBinderNotApplicable  = errors.New("binder.errors.not_applicable")
	ErrUnsupportedMediaType = errors.New("binder.errors.unsupported_media_type")
	ErrMissingContentType   = errors.New("binder.errors.missing_content_type")
	ErrFailedToParseJSON    = errors.New("binder.errors.invalid_json")
	ErrFailedToParsePath    = errors.New("binder.errors.invalid_path")
)

// ValidationError maps field names to their failed rules.
type ValidationError map[string][]string

func (e ValidationError) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if msgs := e[f]; len(msgs) > 0 {
			parts = append(parts, fmt.Sprintf("%s: %s", f, msgs[0]))
		}
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// Add records a message for field.
func (e ValidationError) Add(field, message string) {
	e[field] = append(e[field], message)
}
