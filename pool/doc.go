// Package pool runs a function over a slice of inputs on a fixed set of
// goroutine workers. Results keep input order; a panicking task fails
// alone instead of crashing the process.
package pool
