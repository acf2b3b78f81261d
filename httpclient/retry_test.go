package httpclient

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveRetryPolicy(t *testing.T) {
	def := RetryPolicy{
		Attempts:      2,
		BackoffFactor: 0.5,
		RetryOnStatus: []int{500, 502},
	}

	tests := []struct {
		name string
		opts []RequestOption
		want RetryPolicy
	}{
		{
			name: "no overrides keeps defaults",
			want: def,
		},
		{
			name: "attempts override only",
			opts: []RequestOption{WithRetryAttempts(5)},
			want: RetryPolicy{Attempts: 5, BackoffFactor: 0.5, RetryOnStatus: []int{500, 502}},
		},
		{
			name: "backoff override only",
			opts: []RequestOption{WithBackoffFactor(2.0)},
			want: RetryPolicy{Attempts: 2, BackoffFactor: 2.0, RetryOnStatus: []int{500, 502}},
		},
		{
			name: "status override only",
			opts: []RequestOption{WithRetryOnStatus(503)},
			want: RetryPolicy{Attempts: 2, BackoffFactor: 0.5, RetryOnStatus: []int{503}},
		},
		{
			name: "zero attempts override is honored",
			opts: []RequestOption{WithRetryAttempts(0)},
			want: RetryPolicy{Attempts: 0, BackoffFactor: 0.5, RetryOnStatus: []int{500, 502}},
		},
		{
			name: "all fields overridden",
			opts: []RequestOption{WithRetryAttempts(1), WithBackoffFactor(0.01), WithRetryOnStatus(429)},
			want: RetryPolicy{Attempts: 1, BackoffFactor: 0.01, RetryOnStatus: []int{429}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reqOpts := &requestOptions{}
			for _, o := range tt.opts {
				o(reqOpts)
			}
			assert.Equal(t, tt.want, reqOpts.resolve(def))
		})
	}
}

func TestDefaultRetryPolicyIsFreshPerClient(t *testing.T) {
	a, err := New("http://a.example.com", nil)
	require.NoError(t, err)
	b, err := New("http://b.example.com", nil)
	require.NoError(t, err)

	a.retry.RetryOnStatus[0] = 999
	assert.Equal(t, 429, b.retry.RetryOnStatus[0])
}

func TestExpBackoff(t *testing.T) {
	backoff := expBackoff(0.1)
	maxWait := 30 * time.Second

	assert.Equal(t, 100*time.Millisecond, backoff(0, maxWait, 0, nil))
	assert.Equal(t, 200*time.Millisecond, backoff(0, maxWait, 1, nil))
	assert.Equal(t, 400*time.Millisecond, backoff(0, maxWait, 2, nil))
}

func TestExpBackoffCap(t *testing.T) {
	backoff := expBackoff(10)
	assert.Equal(t, time.Second, backoff(0, time.Second, 4, nil))
}

func TestStatusRetryPolicy(t *testing.T) {
	check := statusRetryPolicy([]int{429, 500})
	ctx := context.Background()

	t.Run("retries listed status", func(t *testing.T) {
		retry, err := check(ctx, &http.Response{StatusCode: 500}, nil)
		assert.NoError(t, err)
		assert.True(t, retry)
	})

	t.Run("does not retry unlisted status", func(t *testing.T) {
		retry, err := check(ctx, &http.Response{StatusCode: 404}, nil)
		assert.NoError(t, err)
		assert.False(t, retry)
	})

	t.Run("retries connection failures", func(t *testing.T) {
		retry, err := check(ctx, nil, errors.New("connection refused"))
		assert.NoError(t, err)
		assert.True(t, retry)
	})

	t.Run("stops on cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(context.Background())
		cancel()
		retry, err := check(cancelled, &http.Response{StatusCode: 500}, nil)
		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, retry)
	})
}
