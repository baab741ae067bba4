package decoder

import "errors"

// Sentinel errors returned by Decoder.Advance. Use errors.Is to classify.
// Container errors (ivf.ErrMalformedHeader, ivf.ErrFrameTooLarge,
// ivf.ErrTruncatedStream) are returned unchanged.
var (
	// ErrNoSource indicates Advance was called before SetSource.
	ErrNoSource = errors.New("decoder: no data source")

	// ErrCodecInit indicates the engine for the stream could not be created.
	ErrCodecInit = errors.New("decoder: codec initialization failed")

	// ErrCodecSubmission indicates the engine rejected a compressed frame.
	// The frame is lost; decoding continues with the next one.
	ErrCodecSubmission = errors.New("decoder: codec rejected frame")

	// ErrInvalidImage indicates an engine image whose planes are smaller than
	// its geometry requires. The image is skipped.
	ErrInvalidImage = errors.New("decoder: invalid image")

	// ErrInvalidConfig indicates a configuration that failed validation.
	ErrInvalidConfig = errors.New("decoder: invalid configuration")
)
