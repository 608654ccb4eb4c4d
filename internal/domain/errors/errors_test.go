package errors

import (
	stderrors "errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Constructors(t *testing.T) {
	notFound := NotFound("missing")
	assert.Equal(t, http.StatusNotFound, notFound.Code)
	assert.Equal(t, ErrNotFound.Error(), notFound.Error())

	badReq := BadRequest("bad request")
	assert.Equal(t, http.StatusBadRequest, badReq.Code)
	assert.Equal(t, ErrInvalidInput.Error(), badReq.Error())

	unavailable := ServiceUnavailable("adapter down")
	assert.Equal(t, http.StatusServiceUnavailable, unavailable.Code)
	assert.Equal(t, ErrAdapterUnavailable.Error(), unavailable.Error())

	cause := stderrors.New("db down")
	internal := InternalError(cause)
	assert.Equal(t, http.StatusInternalServerError, internal.Code)
	assert.Equal(t, "db down", internal.Error())
	assert.ErrorIs(t, internal, cause)
}

func TestAppError_WithoutCause(t *testing.T) {
	err := NewAppError(http.StatusTeapot, "short and stout", nil)
	assert.Equal(t, "short and stout", err.Error())
	assert.Nil(t, stderrors.Unwrap(err))
}
