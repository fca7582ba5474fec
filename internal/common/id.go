package common

import (
	"github.com/google/uuid"
)

// NewRunID generates a unique research run ID with the "run_" prefix.
// Format: run_<uuid>
func NewRunID() string {
	return "run_" + uuid.New().String()
}
