// Package pipeline is the build orchestrator: it resolves a configuration
// into a fixed invocation sequence (Plan) and executes that sequence
// strictly in order with fail-fast semantics (Orchestrator).
//
// The split between the pure Plan function and the effectful Orchestrator
// keeps the sequencing rules — deploy short-circuit, skip-tests truncation,
// tool selection, exact argv construction — testable without running a
// single external command.
package pipeline
