// Package orchestrator wires the template → dataset → tree → render → shell →
// output pipeline behind a single entry point, with every stage replaceable
// through options.
package orchestrator
