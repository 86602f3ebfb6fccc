// FILE: sequence.go
// Package main – Sliding windows over the scaled table.
//
// A Window is L consecutive scaled rows; its label is the scaled sales value
// of the row right after it. The final L rows of a table never get a label
// and are only used for live inference via LastWindow.
package main

// DefaultWindowLength is the look-back used when config leaves it unset.
const DefaultWindowLength = 30

// Window is a (time steps × features) block of scaled rows.
type Window [][]float64

// Clone deep-copies the window.
func (w Window) Clone() Window {
	out := make(Window, len(w))
	for i, r := range w {
		out[i] = append([]float64(nil), r...)
	}
	return out
}

// Flatten lays the window out row-major.
func (w Window) Flatten() []float64 {
	if len(w) == 0 {
		return nil
	}
	out := make([]float64, 0, len(w)*len(w[0]))
	for _, r := range w {
		out = append(out, r...)
	}
	return out
}

// MakeSequences slides a stride-1 window across rows, returning N-L pairs.
func MakeSequences(rows [][]float64, windowLength int) ([]Window, []float64, error) {
	if windowLength <= 0 || len(rows) <= windowLength {
		return nil, nil, &InsufficientDataError{Rows: len(rows), Window: windowLength}
	}
	n := len(rows) - windowLength
	windows := make([]Window, n)
	labels := make([]float64, n)
	for i := 0; i < n; i++ {
		windows[i] = Window(rows[i : i+windowLength]).Clone()
		labels[i] = rows[i+windowLength][SalesIdx]
	}
	return windows, labels, nil
}

// LastWindow returns a copy of the final windowLength rows.
func LastWindow(rows [][]float64, windowLength int) (Window, error) {
	if windowLength <= 0 || len(rows) < windowLength {
		return nil, &InsufficientDataError{Rows: len(rows), Window: windowLength}
	}
	return Window(rows[len(rows)-windowLength:]).Clone(), nil
}
