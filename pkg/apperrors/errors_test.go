package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError(t *testing.T) {
	verr := &ValidationError{}
	assert.NoError(t, verr.OrNil())

	verr.Add("therapistId", "is required")
	verr.Add("startTime", "must be an ISO-8601 timestamp")

	err := verr.OrNil()
	assert.EqualError(t, err, "validation failed: therapistId: is required; startTime: must be an ISO-8601 timestamp")

	var target *ValidationError
	assert.True(t, errors.As(fmt.Errorf("create: %w", err), &target))
	assert.Len(t, target.Fields, 2)
}

func TestSentinelWrapping(t *testing.T) {
	err := fmt.Errorf("schedule abc: %w", ErrNotFound)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrConflict))
}
