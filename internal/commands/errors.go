package commands

import (
	"errors"
	"fmt"
)

// ErrNoMatch reports that no registered pattern matched the input.
var ErrNoMatch = errors.New("commands: no pattern matched")

// DuplicateCommandError reports a pattern id registered twice.
type DuplicateCommandError struct {
	ID string
}

func (e *DuplicateCommandError) Error() string {
	return fmt.Sprintf("commands: pattern %q already registered", e.ID)
}
