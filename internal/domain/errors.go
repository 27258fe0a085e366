package domain

import (
	"errors"
	"fmt"
)

type FetchErrorKind string

const (
	// FetchNetwork covers transport failures and non-success statuses.
	FetchNetwork FetchErrorKind = "network"
	// FetchParse covers malformed payloads and missing required fields.
	FetchParse FetchErrorKind = "parse"
)

// FetchError is the uniform failure signal a data source reports to its scheduler.
type FetchError struct {
	Source string
	Kind   FetchErrorKind
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s %s error: %v", e.Source, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func NetworkError(source string, err error) error {
	return &FetchError{Source: source, Kind: FetchNetwork, Err: err}
}

func ParseError(source string, err error) error {
	return &FetchError{Source: source, Kind: FetchParse, Err: err}
}

// IsFetchKind reports whether err is a FetchError of the given kind.
func IsFetchKind(err error, kind FetchErrorKind) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Kind == kind
}
