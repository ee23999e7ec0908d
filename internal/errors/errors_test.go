package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategories(t *testing.T) {
	storage := Storage("insert packet", fmt.Errorf("connection reset"))
	assert.True(t, IsTransient(storage))
	assert.False(t, IsPermanent(storage))
	assert.Contains(t, storage.Error(), "connection reset")

	malformed := Malformed("payload has %d bytes", 1)
	assert.True(t, Is(malformed, ErrMalformedPayload))
	assert.True(t, IsPermanent(malformed))
	assert.False(t, IsTransient(malformed))

	assert.True(t, IsPolicy(Wrap(ErrForbidden, "admit")))
	assert.True(t, IsPolicy(ErrUnauthorized))
	assert.False(t, IsPolicy(ErrNotFound))
	assert.True(t, IsPermanent(Wrapf(ErrUnknownSubmitter, "identifier %s", "abc")))
}

func TestWrapNil(t *testing.T) {
	assert.NoError(t, Wrap(nil, "noop"))
	assert.NoError(t, Wrapf(nil, "noop %d", 1))
	assert.NoError(t, Storage("noop", nil))
}
