// FILE: errors.go
// Package main – Error taxonomy shared by the pipeline.
//
//   • SchemaError           – missing date axis, or column layout that does not
//                              match the fitted scaler (fatal to the call)
//   • InsufficientDataError – fewer rows than a window needs
//   • DegenerateColumnError – only when the scaler is asked to reject flat columns
//
// Each type unwraps to a sentinel so callers can use errors.Is.
package main

import (
	"errors"
	"fmt"
)

var (
	ErrSchema           = errors.New("schema error")
	ErrInsufficientData = errors.New("insufficient data")
	ErrDegenerateColumn = errors.New("degenerate column")
)

// SchemaError reports a structural problem with a table.
type SchemaError struct {
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("schema: %s", e.Reason)
	}
	return fmt.Sprintf("schema: %s: %s", e.Field, e.Reason)
}

func (e *SchemaError) Unwrap() error { return ErrSchema }

// InsufficientDataError reports a table too short for the requested window.
type InsufficientDataError struct {
	Rows   int
	Window int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: %d rows for window length %d", e.Rows, e.Window)
}

func (e *InsufficientDataError) Unwrap() error { return ErrInsufficientData }

// DegenerateColumnError reports a column whose fitted max equals its min.
type DegenerateColumnError struct {
	Column string
	Value  float64
}

func (e *DegenerateColumnError) Error() string {
	return fmt.Sprintf("degenerate column %q: constant value %g", e.Column, e.Value)
}

func (e *DegenerateColumnError) Unwrap() error { return ErrDegenerateColumn }
