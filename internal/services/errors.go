package services

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrUsernameRequired = errors.New("username required")
	ErrPostNotFound     = errors.New("post not found")
	ErrForbidden        = errors.New("forbidden")
	ErrAlreadyLiked     = errors.New("already liked")
	ErrTooManyFiles     = errors.New("too many files")
	ErrFileTooLarge     = errors.New("file too large")
	ErrNoObjectStore    = errors.New("object store not configured")
)

// UploadError reports a failed transfer of one file in a batch.
type UploadError struct {
	Filename string
	Err      error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload %q failed: %v", e.Filename, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}
