// Package commands defines the translated edit operation model and the
// executor that applies an operation list to a single clip accumulator.
package commands
