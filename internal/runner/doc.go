// Package runner executes pipeline invocations as external processes.
//
// The Runner interface has exactly two implementations: ExecRunner, which
// spawns real child processes with inherited output streams, and Recorder,
// a test double that captures the invocation sequence. The orchestrator
// depends only on the interface, so every sequencing property can be
// tested without a Rust toolchain installed.
package runner
