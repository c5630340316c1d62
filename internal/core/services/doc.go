// Package services implements the core application services: tiered
// content resolution, catalog listing, provider fallback routing, cost
// calculation, completion orchestration, and the analytics stream
// consumer. Services depend only on ports, never on concrete adapters.
package services
