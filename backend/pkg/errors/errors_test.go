package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsErrorType_ThroughWrapping(t *testing.T) {
	base := NewPersistenceFailed("save relation", stderrors.New("disk full"))
	wrapped := fmt.Errorf("learn synonym: %w", base)

	assert.True(t, IsErrorType(base, ErrorTypePersistence))
	assert.True(t, IsErrorType(wrapped, ErrorTypePersistence))
	assert.False(t, IsErrorType(wrapped, ErrorTypeValidation))
	assert.Contains(t, wrapped.Error(), "disk full")
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(NewDefinitionNotFound("cat")))
	assert.False(t, IsNotFound(NewInvalidWord("1")))
	assert.False(t, IsNotFound(nil))
}
