// Package id provides unique identifier generation for jobs.
package id

import "github.com/google/uuid"

const prefix = "job-"

// Generate creates a new unique job ID.
// Format: job-<uuid v4>
// Example: job-9b2f6c1e-3d4a-4f7e-8a51-0c6d2e9f1b37
func Generate() string {
	return prefix + uuid.NewString()
}

// Valid reports whether s looks like an ID produced by Generate.
func Valid(s string) bool {
	if len(s) <= len(prefix) || s[:len(prefix)] != prefix {
		return false
	}
	_, err := uuid.Parse(s[len(prefix):])
	return err == nil
}
