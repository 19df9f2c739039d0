package workspace

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidMetadata matches every validation failure returned by Parse.
var ErrInvalidMetadata = errors.New("invalid workspace metadata")

// MissingFieldError is returned when one of the raw metadata inputs is absent.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("can't find/parse %q in workspace metadata", e.Field)
}

// Is reports whether target is ErrInvalidMetadata.
func (*MissingFieldError) Is(target error) bool {
	return target == ErrInvalidMetadata
}

// UnsupportedCheckoutError is returned when the project URL scheme does not map
// to any supported CheckoutType.
type UnsupportedCheckoutError struct {
	Scheme    string
	Supported []CheckoutType
}

func (e *UnsupportedCheckoutError) Error() string {
	allowed := make([]string, 0, len(e.Supported))
	for _, t := range e.Supported {
		allowed = append(allowed, string(t))
	}
	if e.Scheme == schemeHTTPS {
		return fmt.Sprintf("https checkouts are not yet supported, the project must be checked out over one of: %s",
			strings.Join(allowed, ", "))
	}
	return fmt.Sprintf("disallowed checkout type %q, the project must be checked out over one of the supported schemes: %s",
		e.Scheme, strings.Join(allowed, ", "))
}

// Is reports whether target is ErrInvalidMetadata.
func (*UnsupportedCheckoutError) Is(target error) bool {
	return target == ErrInvalidMetadata
}

// MalformedURLError is returned when the (normalized) project URL cannot be parsed.
type MalformedURLError struct {
	URL string
	Err error
}

func (e *MalformedURLError) Error() string {
	return fmt.Sprintf("can't parse url %q: %v", e.URL, e.Err)
}

func (e *MalformedURLError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrInvalidMetadata.
func (*MalformedURLError) Is(target error) bool {
	return target == ErrInvalidMetadata
}
