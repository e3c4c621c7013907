package retry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDo_RetriesTransient(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), 5, func() error {
		attempts++
		if attempts < 3 {
			return Transient("put_object", errors.New("connection reset"))
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestDo_PermanentNotRetried(t *testing.T) {
	permanent := errors.New("schema disagreement")
	attempts := 0
	err := Do(context.Background(), 5, func() error {
		attempts++
		return permanent
	})

	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, attempts)
}

func TestDo_BoundedAttempts(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), 2, func() error {
		attempts++
		return Transient("get_object", errors.New("timeout"))
	})

	assert.Error(t, err)
	assert.True(t, IsTransient(err))
	// Initial attempt plus two retries.
	assert.Equal(t, 3, attempts)
}

func TestTransient_NilPassthrough(t *testing.T) {
	assert.NoError(t, Transient("noop", nil))
	assert.False(t, IsTransient(errors.New("plain")))
}
