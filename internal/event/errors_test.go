package event

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPanicError(t *testing.T) {
	t.Parallel()

	err := &PanicError{Key: "ping", ListenerID: "abc", Value: "boom"}

	assert.Equal(t, "listener abc panicked handling ping: boom", err.Error())
	assert.ErrorIs(t, err, ErrListenerPanic)
	assert.NotErrorIs(t, err, ErrNilListener)
	assert.Nil(t, err.Unwrap())
}

func TestPanicError_UnwrapsErrorValue(t *testing.T) {
	t.Parallel()

	cause := errors.New("cause")
	err := &PanicError{Key: "ping", ListenerID: "abc", Value: cause}

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrListenerPanic)
}
