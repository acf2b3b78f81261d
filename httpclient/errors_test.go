package httpclient

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorTypeIdentification(t *testing.T) {
	tests := []struct {
		name     string
		err      ClientError
		expected ErrorType
	}{
		{
			name:     "host error type",
			err:      &HostError{Host: "http://x.com/a", Reason: "no path should be specified on the host"},
			expected: HostFormatError,
		},
		{
			name:     "path error type",
			err:      &PathError{Path: "users"},
			expected: PathFormatError,
		},
		{
			name:     "rate limit error type",
			err:      &TooManyRequestsError{Message: "External API rate limit: slow down"},
			expected: RateLimitError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Type())
		})
	}
}

func TestErrorFormatting(t *testing.T) {
	hostErr := &HostError{Host: "http://x.com/a", Reason: "no path should be specified on the host"}
	assert.Contains(t, hostErr.Error(), "host format error")
	assert.Contains(t, hostErr.Error(), "http://x.com/a")

	pathErr := &PathError{Path: "users"}
	assert.Contains(t, pathErr.Error(), "forward-slash")
	assert.Contains(t, pathErr.Error(), `"users"`)

	rlErr := &TooManyRequestsError{Message: "External API rate limit: 10 per second"}
	assert.Equal(t, "External API rate limit: 10 per second", rlErr.Error())
}

func TestIsRateLimit(t *testing.T) {
	rlErr := &TooManyRequestsError{Message: "External API rate limit: x"}

	assert.True(t, IsRateLimit(rlErr))
	assert.True(t, IsRateLimit(fmt.Errorf("wrapped: %w", rlErr)))
	assert.False(t, IsRateLimit(errors.New("something else")))
	assert.False(t, IsRateLimit(nil))
}

func TestErrorsAsMatching(t *testing.T) {
	var err error = &PathError{Path: "no-slash"}

	var pathErr *PathError
	assert.True(t, errors.As(err, &pathErr))
	assert.Equal(t, "no-slash", pathErr.Path)

	var clientErr ClientError
	assert.True(t, errors.As(err, &clientErr))
	assert.Equal(t, PathFormatError, clientErr.Type())
}
