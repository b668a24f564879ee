package record

import (
	"fmt"
	"strings"

	"github.com/corray333/backend-labs/cafeteria/internal/service/models/apperrors"
)

// ReservedChars are the field and record separators of the table files.
// A stored field may not contain any of them.
const ReservedChars = ";|\r\n"

// CheckReserved fails with ErrInvalidArgument if value contains a reserved character.
func CheckReserved(field, value string) error {
	if strings.ContainsAny(value, ReservedChars) {
		return fmt.Errorf("%w: %s contains a reserved character", apperrors.ErrInvalidArgument, field)
	}

	return nil
}

// ValidateField requires a non-blank value without reserved characters.
func ValidateField(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: empty %s", apperrors.ErrInvalidArgument, field)
	}

	return CheckReserved(field, value)
}
