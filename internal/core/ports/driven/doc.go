// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports). Core services depend only on these
// interfaces, never on concrete adapters.
package driven
