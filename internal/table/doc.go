// Package table is the in-memory tabular model shared by the cleaner, the
// analysis functions and the exporters.
//
// A Table is an ordered set of named columns of Values. A Value is a Number
// (held as a decimal), a Text or Absent. Readers infer column kinds the way
// the pandas CSV reader does: NA tokens are Absent, a column whose remaining
// cells all parse as numbers is numeric, anything else is text.
//
// Delimited text and .xlsx workbooks are supported; ReaderFor and WriterFor
// choose by file extension.
package table
