package model

import "errors"

// Error taxonomy for the simulation engine.
//
// All three are fatal to the operation that raises them:
// - ErrInvalidParameter: a configured value violates a documented invariant.
//   Raised at setup time, before any trial runs.
// - ErrInsufficientData: summarization was requested with too few trial
//   results. The trials themselves remain valid.
// - ErrNumericOverflow: an intermediate computation produced a non-finite
//   value. The offending trial is aborted.
//
// Callers match with errors.Is; details travel in the wrapping message.
var (
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrInsufficientData = errors.New("insufficient data")
	ErrNumericOverflow  = errors.New("numeric overflow")
)
