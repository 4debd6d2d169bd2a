// Package arrow provides Apache Arrow IPC stream encoding for record
// batches exchanged with the conversion endpoints and the CLI.
package arrow
