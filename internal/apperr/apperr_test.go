package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMatchesKindThroughWrapping(t *testing.T) {
	err := fmt.Errorf("add item: %w", NotFound("playlist %d not found", 7))

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrConflict))
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, "add item: playlist 7 not found", err.Error())
}

func TestHTTPStatus(t *testing.T) {
	cases := map[error]int{
		Validation("bad"):          http.StatusBadRequest,
		Conflict("dup"):            http.StatusConflict,
		PermissionDenied("nope"):   http.StatusForbidden,
		NotFound("gone"):           http.StatusNotFound,
		Unauthorized("who"):        http.StatusUnauthorized,
		errors.New("disk on fire"): http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, HTTPStatus(err), err.Error())
	}
}

func TestWithDetailDoesNotMutate(t *testing.T) {
	base := Validation("invalid media type")
	withField := base.WithDetail("field", "media_type")

	assert.Nil(t, base.Details)
	assert.Equal(t, "media_type", withField.Details["field"])
	assert.True(t, errors.Is(withField, ErrValidation))
}
