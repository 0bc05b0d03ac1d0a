package geometry

import "errors"

var (
	// ErrInvalidDimension is returned for zero, negative or NaN sizes and scales
	ErrInvalidDimension = errors.New("invalid dimension")

	// ErrSourceImageUnavailable is returned when the source pixels cannot be decoded
	ErrSourceImageUnavailable = errors.New("source image unavailable")

	// ErrOrientationNormalizationFailed is returned when the codec could not
	// produce an upright pixel buffer
	ErrOrientationNormalizationFailed = errors.New("orientation normalization failed")
)
