package response

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/corray333/backend-labs/cafeteria/internal/service/models/apperrors"
	"github.com/stretchr/testify/assert"
)

func TestStatusOf(t *testing.T) {
	wrap := func(err error) error { return fmt.Errorf("context: %w", err) }

	assert.Equal(t, http.StatusNotFound, StatusOf(wrap(apperrors.ErrNotFound)))
	assert.Equal(t, http.StatusConflict, StatusOf(wrap(apperrors.ErrDuplicateIdentity)))
	assert.Equal(t, http.StatusConflict, StatusOf(wrap(apperrors.ErrIllegalTransition)))
	assert.Equal(t, http.StatusPaymentRequired, StatusOf(wrap(apperrors.ErrPaymentDeclined)))
	assert.Equal(t, http.StatusBadRequest, StatusOf(wrap(apperrors.ErrInvalidArgument)))
	assert.Equal(t, http.StatusInternalServerError, StatusOf(errors.New("disk on fire")))
}

func TestFromError_HidesInternalErrors(t *testing.T) {
	rec := httptest.NewRecorder()

	FromError(rec, errors.New("disk on fire"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "disk")
}
