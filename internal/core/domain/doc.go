// Package domain contains the core business entities and domain errors.
// It has no dependencies on infrastructure or external services.
package domain
