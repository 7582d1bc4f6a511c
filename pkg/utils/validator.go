package utils

import (
	"fmt"
	"regexp"

	"github.com/google/uuid"
)

// ValidateID checks that an identifier is a well-formed UUID. Session,
// message, and result ids are all uuids minted by this service.
func ValidateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("invalid identifier %q: %w", id, err)
	}
	return nil
}

// ValidateRole checks a chat message role
func ValidateRole(role string) error {
	if role != "user" && role != "assistant" {
		return fmt.Errorf("invalid message role: %s", role)
	}
	return nil
}

var controlChars = regexp.MustCompile(`[\x00-\x08\x0b\x0c\x0e-\x1f\x7f]`)

// SanitizeString strips control characters from user-supplied text before
// it is stored or echoed back. Newlines and tabs survive.
func SanitizeString(s string) string {
	return controlChars.ReplaceAllString(s, "")
}
