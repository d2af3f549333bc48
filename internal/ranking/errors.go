// internal/ranking/errors.go
package ranking

import "errors"

var (
	// ErrInvalidWeightConfiguration is returned when the financial weights or
	// blend factors cannot produce a finite score.
	ErrInvalidWeightConfiguration = errors.New("INVALID_WEIGHT_CONFIGURATION")

	// ErrEmptyPreferenceSet is returned when the investor declared no preferences.
	ErrEmptyPreferenceSet = errors.New("EMPTY_PREFERENCE_SET")
)
