package order

import (
	"fmt"
	"strings"

	"github.com/corray333/backend-labs/cafeteria/internal/service/models/apperrors"
)

// Status is the order state: Placed -> Preparing -> ReadyForPickup.
type Status string

const (
	StatusPlaced         Status = "PLACED"
	StatusPreparing      Status = "PREPARING"
	StatusReadyForPickup Status = "READY_FOR_PICKUP"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) Valid() bool {
	switch s {
	case StatusPlaced, StatusPreparing, StatusReadyForPickup:
		return true
	default:
		return false
	}
}

// Next returns the following state; false for the terminal state.
func (s Status) Next() (Status, bool) {
	switch s {
	case StatusPlaced:
		return StatusPreparing, true
	case StatusPreparing:
		return StatusReadyForPickup, true
	default:
		return "", false
	}
}

// Terminal reports whether the order may leave the active queue.
func (s Status) Terminal() bool {
	return s == StatusReadyForPickup
}

// ParseStatus accepts the stored names and their camel-case spellings.
func ParseStatus(s string) (Status, error) {
	norm := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "_", ""))
	switch norm {
	case "PLACED":
		return StatusPlaced, nil
	case "PREPARING":
		return StatusPreparing, nil
	case "READYFORPICKUP":
		return StatusReadyForPickup, nil
	default:
		return "", fmt.Errorf("%w: unknown status %q", apperrors.ErrInvalidArgument, s)
	}
}
