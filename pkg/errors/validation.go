package errors

import (
	"math"
	"unicode"
)

// maxNodeNameLength bounds node names read from graph files and HTTP requests.
const maxNodeNameLength = 256

// ValidateNodeName validates a node name from an external source.
//
// Names must be non-empty, at most 256 bytes long, and free of control
// characters so they can be printed in logs, DOT labels and terminal output.
func ValidateNodeName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidGraph, "node name cannot be empty")
	}

	if len(name) > maxNodeNameLength {
		return New(ErrCodeInvalidGraph, "node name too long (max %d characters)", maxNodeNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidGraph, "node name contains invalid control characters")
		}
	}

	return nil
}

// ValidateVersion rejects NaN and infinite versions. A NaN version never
// compares equal to itself, which would make infected nodes indistinguishable
// from untouched ones in reports.
func ValidateVersion(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidInput, "version must be a finite number, got %v", v)
	}
	return nil
}
