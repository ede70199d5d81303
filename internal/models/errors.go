package models

import "errors"

// Sentinel errors for the profile/backup domain. Callers wrap them with
// fmt.Errorf("...: %w", Err...) and the transport layer maps them to
// envelope error codes via CodeOf.
var (
	ErrInvalidName   = errors.New("invalid profile name")
	ErrDuplicateName = errors.New("duplicate profile name")
	ErrNotFound      = errors.New("not found")
	ErrIO            = errors.New("io failure")
	ErrBackup        = errors.New("backup failed")
	ErrBusy          = errors.New("operation in progress")
	ErrValidation    = errors.New("invalid document")
)

const (
	CodeInvalidName   = "INVALID_NAME"
	CodeDuplicateName = "DUPLICATE_NAME"
	CodeNotFound      = "NOT_FOUND"
	CodeIO            = "IO_ERROR"
	CodeBackup        = "BACKUP_ERROR"
	CodeBusy          = "BUSY"
	CodeValidation    = "VALIDATION_ERROR"
	CodeInternal      = "INTERNAL"
)

// CodeOf maps an error chain to its envelope error code.
func CodeOf(err error) string {
	switch {
	case errors.Is(err, ErrInvalidName):
		return CodeInvalidName
	case errors.Is(err, ErrDuplicateName):
		return CodeDuplicateName
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrBusy):
		return CodeBusy
	case errors.Is(err, ErrBackup):
		return CodeBackup
	case errors.Is(err, ErrValidation):
		return CodeValidation
	case errors.Is(err, ErrIO):
		return CodeIO
	default:
		return CodeInternal
	}
}
