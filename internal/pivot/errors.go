package pivot

import (
	"errors"
	"fmt"
)

var (
	// ErrRowShape indicates a raw row whose length differs from the column count.
	ErrRowShape = errors.New("row length does not match column count")
	// ErrUnknownColumn indicates a column name missing from the metadata.
	ErrUnknownColumn = errors.New("unknown column")
	// ErrEmptyColumnOrder indicates a grouping order that resolved to no columns.
	ErrEmptyColumnOrder = errors.New("empty column order")
	// ErrNoMetadata indicates an operation that needs column metadata ran without it.
	ErrNoMetadata = errors.New("column metadata not set")
)

// RowShapeError reports the offending row of an IndexRows call.
type RowShapeError struct {
	Row      int
	Expected int
	Actual   int
}

func (e *RowShapeError) Error() string {
	return fmt.Sprintf("row %d: expected %d values, got %d: %v", e.Row, e.Expected, e.Actual, ErrRowShape)
}

func (e *RowShapeError) Unwrap() error { return ErrRowShape }

// ColumnError names the column behind a configuration error.
type ColumnError struct {
	Column string
	Err    error
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("column %q: %v", e.Column, e.Err)
}

func (e *ColumnError) Unwrap() error { return e.Err }
