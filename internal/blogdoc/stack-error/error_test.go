package stack_error

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBase = errors.New("bucket missing")

func storageGet() error {
	return Wrap("bolt get", errBase).AddContext("key", "post-1")
}

func serviceLoad() error {
	return TrackErrorStack(storageGet()).AddContext("key", "ignored")
}

func TestTrackErrorStack(t *testing.T) {
	err := serviceLoad()

	var te *TrackerError
	require.True(t, errors.As(err, &te))
	assert.ErrorIs(t, err, errBase)
	assert.Equal(t, "bolt get: bucket missing", err.Error())
	assert.Equal(t, "post-1", te.Context["key"])

	stack := te.Stack()
	require.Len(t, stack, 2)
	assert.True(t, strings.HasPrefix(stack[0], "error_test.go:"), stack[0])
	assert.True(t, strings.HasPrefix(stack[1], "error_test.go:"), stack[1])
}

func TestNilErrors(t *testing.T) {
	assert.Nil(t, TrackErrorStack(nil))
	assert.Nil(t, Wrap("op", nil))
	assert.NotPanics(t, func() { GetError(nil, nil) })
	assert.NotPanics(t, func() { GetError(nil, errBase) })
}
