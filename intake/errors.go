package intake

import (
	"errors"
	"strings"

	"github.com/moyoez/claimdesk/types"
)

var (
	ErrEmptyBatch      = errors.New("empty batch")
	ErrTooManyFiles    = errors.New("too many files")
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrFileTooLarge    = errors.New("file too large")
	ErrMixedMedia      = errors.New("mixed media")
	ErrVideoBatch      = errors.New("video batch must contain a single file")
	ErrFileNotSelected = errors.New("file not selected")
)

// ValidationError is a rejected batch. Message is what the error banner shows.
type ValidationError struct {
	Slot    types.Slot
	Reason  error
	Files   []string
	Message string
}

func (e *ValidationError) Error() string {
	if len(e.Files) == 0 {
		return string(e.Slot) + ": " + e.Message
	}
	return string(e.Slot) + ": " + e.Message + " [" + strings.Join(e.Files, ", ") + "]"
}

func (e *ValidationError) Unwrap() error {
	return e.Reason
}

func reject(slot types.Slot, reason error, message string, files ...string) *ValidationError {
	return &ValidationError{Slot: slot, Reason: reason, Files: files, Message: message}
}
