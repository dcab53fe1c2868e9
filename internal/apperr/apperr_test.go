package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		KindValidation:        http.StatusBadRequest,
		KindNotFound:          http.StatusNotFound,
		KindUnavailable:       http.StatusBadRequest,
		KindInsufficientStock: http.StatusBadRequest,
		KindForbidden:         http.StatusForbidden,
		KindUnauthenticated:   http.StatusUnauthorized,
		KindInvalidTransition: http.StatusBadRequest,
		KindConflict:          http.StatusConflict,
		KindInternal:          http.StatusInternalServerError,
	}
	for kind, want := range cases {
		assert.Equal(t, want, kind.HTTPStatus(), kind.String())
	}
}

func TestKindOfThroughWrapping(t *testing.T) {
	base := NotFound("Order not found")
	wrapped := fmt.Errorf("cancel: %w", base)

	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.True(t, Is(wrapped, KindNotFound))
	assert.False(t, Is(wrapped, KindForbidden))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(cause, KindConflict, "retry %s", "later")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "retry later", err.Msg)
	assert.Contains(t, err.Error(), "connection reset")
}
