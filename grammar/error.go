package grammar

import (
	"fmt"
	"strings"
)

// Error is a mistake in a grammar definition, reported against the item
// where it was found.
type Error struct {
	Item    string
	Message string
}

func (e *Error) Error() string {
	if e.Item == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Item, e.Message)
}

// ErrorList is returned by Compile when a grammar has mistakes. It lists
// all of them in the order they were found.
type ErrorList []*Error

func (l ErrorList) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d errors:", len(l))
	for _, e := range l {
		sb.WriteString("\n\t")
		sb.WriteString(e.Error())
	}
	return sb.String()
}

// Unwrap exposes the individual errors to errors.As.
func (l ErrorList) Unwrap() []error {
	errs := make([]error, len(l))
	for i, e := range l {
		errs[i] = e
	}
	return errs
}

func (l *ErrorList) add(item, format string, args ...any) {
	*l = append(*l, &Error{Item: item, Message: fmt.Sprintf(format, args...)})
}

func (l ErrorList) err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}
