package luckperms

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAPIError(t *testing.T) {
	t.Run("Error message", func(t *testing.T) {
		err := newAPIError(404, nil)
		assert.Equal(t, "status 404: Not Found", err.Error())

		err = newAPIError(400, []byte("bad node"))
		assert.Equal(t, "status 400: Bad Request: bad node", err.Error())
	})

	t.Run("IsNotFound", func(t *testing.T) {
		err := &APIError{StatusCode: 404}
		assert.True(t, err.IsNotFound())

		err.StatusCode = 500
		assert.False(t, err.IsNotFound())
	})

	t.Run("IsUnauthorized", func(t *testing.T) {
		tests := []struct {
			code     int
			expected bool
		}{
			{401, true},
			{403, true},
			{404, false},
			{500, false},
		}

		for _, tt := range tests {
			err := &APIError{StatusCode: tt.code}
			assert.Equal(t, tt.expected, err.IsUnauthorized())
		}
	})
}

func TestRequestError(t *testing.T) {
	err := &RequestError{Kind: KindHTTP, Op: "GetUser", Err: &APIError{StatusCode: 403, Message: "Forbidden"}}
	assert.Equal(t, "luckperms GetUser: HTTP error: status 403: Forbidden", err.Error())

	wrapped := fmt.Errorf("resolve subject: %w", err)
	assert.True(t, IsUnauthorized(wrapped))
	assert.False(t, IsNotFound(wrapped))
	assert.Equal(t, KindHTTP, KindOf(wrapped))
}

func TestClientCreationError(t *testing.T) {
	err := &ClientCreationError{Kind: KindURL, Err: ErrInvalidBaseURL}
	assert.Equal(t, "luckperms client: URL error: base URL must be absolute", err.Error())
	assert.ErrorIs(t, err, ErrInvalidBaseURL)
	assert.Equal(t, KindURL, KindOf(err))
}

func TestErrorKind(t *testing.T) {
	assert.Equal(t, "HTTP", KindHTTP.String())
	assert.Equal(t, "JSON", KindJSON.String())
	assert.Equal(t, "URL", KindURL.String())
	assert.Equal(t, "unknown", ErrorKind(0).String())
	assert.Equal(t, ErrorKind(0), KindOf(errors.New("plain")))
	assert.Equal(t, ErrorKind(0), KindOf(nil))
}
