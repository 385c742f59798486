package cli

import (
	"fmt"
	"strings"
)

type missingFlagError struct {
	flags []string
}

func (e missingFlagError) Error() string {
	return fmt.Sprintf("one of %s is required", strings.Join(e.flags, ", "))
}

func errOneOf(flags ...string) error {
	return missingFlagError{flags: flags}
}

type notFoundError struct {
	kind string
	id   string
}

func (e notFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.kind, e.id)
}

func errNotFound(kind, id string) error {
	return notFoundError{kind: kind, id: id}
}
