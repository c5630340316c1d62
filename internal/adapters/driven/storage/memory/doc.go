// Package memory provides in-memory implementations of the driven storage
// ports. They back unit tests and local development without external
// services.
package memory
