package permission

import (
	"errors"
	"fmt"

	"github.com/GriffinCanCode/WebOS/internal/shared/types"
)

var (
	// ErrPermissionDenied marks operations refused by a cached denial
	ErrPermissionDenied = errors.New("permission denied")

	// ErrPromptNotFound is returned when resolving a prompt that is not pending
	ErrPromptNotFound = errors.New("permission prompt not found")

	// ErrUnknownChannel is returned for channels that were never registered
	ErrUnknownChannel = errors.New("unknown permission channel")

	// ErrInvalidDecision is returned when resolving with anything but granted or denied
	ErrInvalidDecision = errors.New("decision must be granted or denied")
)

// DeniedError reports which channel refused access
type DeniedError struct {
	Channel types.Channel
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("permission denied for %s", e.Channel)
}

// Is lets errors.Is match ErrPermissionDenied
func (e *DeniedError) Is(target error) bool {
	return target == ErrPermissionDenied
}
