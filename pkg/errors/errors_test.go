package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCodes(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, NotFound("appointment", nil).StatusCode())
	assert.Equal(t, http.StatusBadRequest, BadRequest("bad date", nil).StatusCode())
	assert.Equal(t, http.StatusUnauthorized, Unauthorized(nil).StatusCode())
	assert.Equal(t, http.StatusForbidden, Forbidden("admins only").StatusCode())
	assert.Equal(t, http.StatusConflict, Conflict("slot already booked", nil).StatusCode())
	assert.Equal(t, http.StatusConflict, InvalidTransition("completed", "confirmed").StatusCode())
	assert.Equal(t, http.StatusInternalServerError, Internal(nil).StatusCode())
	assert.Equal(t, http.StatusInternalServerError, Dispatch("email", nil).StatusCode())
}

func TestMessages(t *testing.T) {
	assert.Equal(t, "appointment not found", NotFound("appointment", nil).Error())
	assert.Equal(t, "cannot transition appointment from completed to confirmed",
		InvalidTransition("completed", "confirmed").Error())
}

func TestPredicatesThroughWrapping(t *testing.T) {
	// Services wrap repository errors; the predicates must see through.
	wrapped := fmt.Errorf("failed to book: %w", Conflict("slot already booked", nil))

	assert.True(t, IsConflict(wrapped))
	assert.False(t, IsNotFound(wrapped))
	assert.False(t, IsConflict(fmt.Errorf("plain error")))
	assert.False(t, IsConflict(nil))
}

func TestUnwrap(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := Internal(cause)

	assert.Equal(t, cause, err.Unwrap())
	assert.Contains(t, err.Error(), "connection refused")
}
