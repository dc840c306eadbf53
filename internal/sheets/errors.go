package sheets

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyBody is returned when a sheet export comes back blank.
	ErrEmptyBody = errors.New("sheet returned empty body")

	// ErrNoMappings is returned when the directory sheet yields no usable rows.
	ErrNoMappings = errors.New("no valid sheet mappings found")
)

// TransportError reports a failed sheet download.
type TransportError struct {
	URL    string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("GET %s: HTTP %d", e.URL, e.Status)
	}
	return fmt.Sprintf("GET %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// UnknownSheetError is returned when a sheet name is absent from the directory.
type UnknownSheetError struct {
	Name  string
	Known []string
}

func (e *UnknownSheetError) Error() string {
	return fmt.Sprintf("sheet %q not found in mappings (available: %s)", e.Name, strings.Join(e.Known, ", "))
}
