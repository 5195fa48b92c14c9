package service

import "errors"

// Validation failures abort settlement before any mutation and are never
// retried. Everything else that escapes the transaction runner is a
// processing failure.
var (
	ErrMatchNotFound   = errors.New("match not found")
	ErrIncompleteTeams = errors.New("match requires four filled seats")
	ErrMalformedResult = errors.New("result must contain at least two valid set scores")
	ErrNoSetWinner     = errors.New("result has no clear set winner")
)

// IsValidationError reports whether an error belongs to the validation
// taxonomy, i.e. the caller sent something unprocessable.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrMatchNotFound) ||
		errors.Is(err, ErrIncompleteTeams) ||
		errors.Is(err, ErrMalformedResult) ||
		errors.Is(err, ErrNoSetWinner)
}
