// Package data converts Apache Arrow record batches into a row-oriented,
// dynamically-typed result model and renders it for humans.
//
// This package implements:
//   - The value model: Column, Row, TableValue, TimestampValue and DataFrame
//   - Arrow type to semantic column type mapping (ArrowToColumnType)
//   - Batch to DataFrame conversion (BatchToDataFrame)
//   - Text grid rendering (DataFrame.Print)
//
// The package performs no I/O and keeps no shared state, so independent
// conversions may run concurrently. A single DataFrame is not safe for
// concurrent mutation.
package data
