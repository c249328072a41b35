// Package services implements the driving port interfaces.
// Services contain the ingestion and assessment pipeline logic and
// orchestrate calls to driven ports (adapters).
package services
