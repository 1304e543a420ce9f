package model

import "fmt"

// Outcome tells a caller how a parsed value was obtained.
type Outcome int

const (
	// OutcomeParsed means the input parsed cleanly, including empty sentinels
	OutcomeParsed Outcome = iota
	// OutcomeRecovered means a fallback heuristic produced the value
	OutcomeRecovered
	// OutcomeDefaulted means nothing was recoverable and the documented default was returned
	OutcomeDefaulted
)

// String returns a string representation of the outcome
func (o Outcome) String() string {
	switch o {
	case OutcomeParsed:
		return "parsed"
	case OutcomeRecovered:
		return "recovered"
	case OutcomeDefaulted:
		return "defaulted"
	default:
		return fmt.Sprintf("Unknown(%d)", o)
	}
}

// Parsed carries a value together with the way it was obtained.
type Parsed[T any] struct {
	Value   T
	Outcome Outcome
	Reason  string // short machine-friendly reason, empty for clean parses
}

// Clean wraps a cleanly parsed value.
func Clean[T any](v T) Parsed[T] {
	return Parsed[T]{Value: v, Outcome: OutcomeParsed}
}

// Recovered wraps a value produced by a fallback heuristic.
func Recovered[T any](v T, reason string) Parsed[T] {
	return Parsed[T]{Value: v, Outcome: OutcomeRecovered, Reason: reason}
}

// Defaulted wraps a default value returned because nothing could be recovered.
func Defaulted[T any](v T, reason string) Parsed[T] {
	return Parsed[T]{Value: v, Outcome: OutcomeDefaulted, Reason: reason}
}

// IsClean reports whether the value came from a clean parse.
func (p Parsed[T]) IsClean() bool {
	return p.Outcome == OutcomeParsed
}
