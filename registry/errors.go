package registry

import (
	"fmt"
	"strings"
)

// ValidationError reports an update that was rejected before any state
// change. Fields lists the offending field names as they appear on the
// wire.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing or invalid fields: %s", strings.Join(e.Fields, ", "))
}

// NotFoundError reports a lookup for a device with no stored record.
// Known carries the currently tracked ids so callers can surface them
// as a recovery hint.
type NotFoundError struct {
	DeviceID string
	Known    []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("device %q not found", e.DeviceID)
}
