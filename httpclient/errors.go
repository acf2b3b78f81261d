package httpclient

import (
	"errors"
	"fmt"
)

// ErrorType identifies the category of a client error
type ErrorType string

const (
	// HostFormatError indicates the host URL handed to New was not usable
	HostFormatError ErrorType = "host_format"
	// PathFormatError indicates a per-call path failed validation before any I/O
	PathFormatError ErrorType = "path_format"
	// RateLimitError indicates the server answered with HTTP 429
	RateLimitError ErrorType = "rate_limit"
)

// ClientError is the common interface for all errors raised by this package.
// Transport-level failures are not wrapped and pass through as-is.
type ClientError interface {
	error
	Type() ErrorType
}

// HostError is returned by New when the host URL contains a path or is not an
// absolute URL.
type HostError struct {
	Host   string
	Reason string
}

func (e *HostError) Error() string {
	return fmt.Sprintf("host format error: %s: %q", e.Reason, e.Host)
}

// Type returns the error category.
func (e *HostError) Type() ErrorType { return HostFormatError }

// PathError is returned by request operations when the path does not start
// with a forward slash. It is raised before any network access.
type PathError struct {
	Path string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("path format error: path must start with a forward-slash: %q", e.Path)
}

// Type returns the error category.
func (e *PathError) Type() ErrorType { return PathFormatError }

// TooManyRequestsError is returned when the final response of an exchange is
// HTTP 429. Message carries the server's own description when it sent one.
type TooManyRequestsError struct {
	Message string
}

func (e *TooManyRequestsError) Error() string { return e.Message }

// Type returns the error category.
func (e *TooManyRequestsError) Type() ErrorType { return RateLimitError }

// IsRateLimit reports whether err is (or wraps) a rate-limit error.
func IsRateLimit(err error) bool {
	var t *TooManyRequestsError
	return errors.As(err, &t)
}
