package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeUnsupported   = "UNSUPPORTED"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// Validation errors
var (
	ErrInvalidTenant        = NewDomainError(ErrCodeValidation, "invalid application specified")
	ErrInvalidRecordKind    = NewDomainError(ErrCodeValidation, "invalid record kind")
	ErrInvalidDocumentName  = NewDomainError(ErrCodeValidation, "invalid document filename")
	ErrMissingRequiredField = NewDomainError(ErrCodeValidation, "missing required field")
)

// Unsupported input errors
var (
	ErrUnsupportedDocument = NewDomainError(ErrCodeUnsupported, "only .txt files are supported")
)

// Not found errors
var (
	ErrDocumentNotFound = NewDomainError(ErrCodeNotFound, "document not found")
)

// Internal errors
var (
	ErrRecordPersistence    = NewDomainError(ErrCodeInternalError, "failed to save customer record")
	ErrStorageOperationFail = NewDomainError(ErrCodeInternalError, "storage operation failed")
)
