// Package model defines the domain types shared across the crateci CLI:
// the build tool selection, the pipeline step identifiers, the Invocation
// value object describing a single external command, and the error types
// used to carry process exit codes.
//
// All types are transient. The orchestrator holds no state beyond the
// current run, so nothing here is serialized to disk.
package model
