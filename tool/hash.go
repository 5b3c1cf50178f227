package tool

import (
	"github.com/google/uuid"
)

func GenerateRandomUUID() string {
	return uuid.New().String()
}

// IsSessionID reports whether s looks like an id produced by GenerateRandomUUID.
func IsSessionID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
