package httpclient

import (
	"encoding/json"
	"fmt"
)

const unknownError = "Unknown error"

// Response is the normalized result of an exchange. Fields holds whatever
// JSON object the server returned (empty when the body was absent, malformed
// or not an object). For non-200 statuses ErrorMessage is always populated
// and mirrored into Fields under "error" so lookups see the same value.
type Response struct {
	StatusCode   int
	Raw          []byte
	Fields       map[string]any
	ErrorMessage string
}

// newResponse normalizes a raw status/reason/body triple.
func newResponse(statusCode int, reason string, body []byte) *Response {
	fields := map[string]any{}
	if len(body) > 0 {
		var decoded map[string]any
		if err := json.Unmarshal(body, &decoded); err == nil && decoded != nil {
			fields = decoded
		}
	}

	r := &Response{
		StatusCode: statusCode,
		Raw:        body,
		Fields:     fields,
	}

	if statusCode != 200 {
		errVal := firstNonEmpty(fields["error"], fields["message"], reason, unknownError)
		fields["error"] = errVal
		r.ErrorMessage = stringify(errVal)
	}

	return r
}

// Get returns the value stored under key, or nil when absent.
func (r *Response) Get(key string) any {
	return r.Fields[key]
}

// GetDefault returns the value stored under key, or def when absent.
func (r *Response) GetDefault(key string, def any) any {
	if v, ok := r.Fields[key]; ok {
		return v
	}
	return def
}

// String renders the response for diagnostics.
func (r *Response) String() string {
	return fmt.Sprintf("Response: %d, %v", r.StatusCode, r.Fields)
}

// firstNonEmpty picks the first candidate that is neither nil nor an empty
// string. The final candidate is expected to be a non-empty literal.
func firstNonEmpty(candidates ...any) any {
	for _, c := range candidates {
		if c == nil {
			continue
		}
		if s, ok := c.(string); ok && s == "" {
			continue
		}
		return c
	}
	return unknownError
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
