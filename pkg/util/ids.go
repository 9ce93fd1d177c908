package util

import "github.com/google/uuid"

// ValidID reports whether id is a well-formed UUID, the key type of every
// table. Ids that fail this check can never match a row.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
