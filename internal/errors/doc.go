// Package errors defines error types for the muxproc module.
//
// This package provides structured error types that wrap different failure
// scenarios when launching the helper process and driving the framed
// channel. All error types support error unwrapping and can be checked
// using errors.Is, errors.As, and errors.AsType.
package errors
