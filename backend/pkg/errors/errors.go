package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeValidation covers rejected words, definitions and lengths
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypePersistence covers backend read/write failures
	ErrorTypePersistence ErrorType = "persistence"
	// ErrorTypeNotFound covers absent definitions or relations
	ErrorTypeNotFound ErrorType = "not_found"
	// ErrorTypeGeneration is returned when no synthesis strategy produced output
	ErrorTypeGeneration ErrorType = "generation"
	// ErrorTypeCache covers cache collaborator failures
	ErrorTypeCache ErrorType = "cache"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
)

// BaseError is the base error type with common fields
type BaseError struct {
	Type      ErrorType
	Message   string
	Timestamp time.Time
	Err       error // Wrapped error
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error for error unwrapping
func (e *BaseError) Unwrap() error {
	return e.Err
}

// NewBaseError creates a new base error
func NewBaseError(errType ErrorType, message string, err error) *BaseError {
	return &BaseError{
		Type:      errType,
		Message:   message,
		Timestamp: time.Now(),
		Err:       err,
	}
}

// Validation Errors

// ErrInvalidWord is returned when a word fails lexical validation
type ErrInvalidWord struct {
	*BaseError
	Word string
}

func NewInvalidWord(word string) *ErrInvalidWord {
	return &ErrInvalidWord{
		BaseError: NewBaseError(ErrorTypeValidation, fmt.Sprintf("invalid word: %q", word), nil),
		Word:      word,
	}
}

// ErrSelfRelation is returned when a relation would link a word to itself
type ErrSelfRelation struct {
	*BaseError
	Word string
}

func NewSelfRelation(word string) *ErrSelfRelation {
	return &ErrSelfRelation{
		BaseError: NewBaseError(ErrorTypeValidation, fmt.Sprintf("self relation rejected: %s", word), nil),
		Word:      word,
	}
}

// ErrInvalidDefinition is returned for empty or unusable definition text
type ErrInvalidDefinition struct {
	*BaseError
	Word string
}

func NewInvalidDefinition(word, reason string) *ErrInvalidDefinition {
	return &ErrInvalidDefinition{
		BaseError: NewBaseError(ErrorTypeValidation, fmt.Sprintf("invalid definition for %s: %s", word, reason), nil),
		Word:      word,
	}
}

// Persistence Errors

// ErrPersistenceFailed wraps a backend read or write failure
type ErrPersistenceFailed struct {
	*BaseError
	Operation string
}

func NewPersistenceFailed(operation string, err error) *ErrPersistenceFailed {
	return &ErrPersistenceFailed{
		BaseError: NewBaseError(ErrorTypePersistence, fmt.Sprintf("persistence failed: %s", operation), err),
		Operation: operation,
	}
}

// Not Found Errors

// ErrDefinitionNotFound is returned when a word has no stored definition
type ErrDefinitionNotFound struct {
	*BaseError
	Word string
}

func NewDefinitionNotFound(word string) *ErrDefinitionNotFound {
	return &ErrDefinitionNotFound{
		BaseError: NewBaseError(ErrorTypeNotFound, fmt.Sprintf("definition not found: %s", word), nil),
		Word:      word,
	}
}

// Generation Errors

// ErrGenerationExhausted is returned when every synthesis strategy came up empty
type ErrGenerationExhausted struct {
	*BaseError
	Seed string
}

func NewGenerationExhausted(seed string) *ErrGenerationExhausted {
	return &ErrGenerationExhausted{
		BaseError: NewBaseError(ErrorTypeGeneration, fmt.Sprintf("no strategy produced a sentence for %q", seed), nil),
		Seed:      seed,
	}
}

// Cache Errors

// ErrCacheFailed wraps a cache read or write failure
type ErrCacheFailed struct {
	*BaseError
	Key string
}

func NewCacheFailed(key string, err error) *ErrCacheFailed {
	return &ErrCacheFailed{
		BaseError: NewBaseError(ErrorTypeCache, fmt.Sprintf("cache operation failed: %s", key), err),
		Key:       key,
	}
}

// Config Errors

// ErrConfigValidationFailed is returned when configuration validation fails
type ErrConfigValidationFailed struct {
	*BaseError
	Field  string
	Reason string
}

func NewConfigValidationFailed(field, reason string) *ErrConfigValidationFailed {
	return &ErrConfigValidationFailed{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("config validation failed: %s - %s", field, reason), nil),
		Field:     field,
		Reason:    reason,
	}
}

// Helper functions

type typed interface {
	errorType() ErrorType
}

func (e *BaseError) errorType() ErrorType { return e.Type }

// IsErrorType reports whether any error in err's chain carries errType.
func IsErrorType(err error, errType ErrorType) bool {
	for err != nil {
		if t, ok := err.(typed); ok && t.errorType() == errType {
			return true
		}
		err = stderrors.Unwrap(err)
	}
	return false
}

// IsNotFound is shorthand for IsErrorType(err, ErrorTypeNotFound).
func IsNotFound(err error) bool {
	return IsErrorType(err, ErrorTypeNotFound)
}
