package main

import (
	"errors"

	"github.com/hakobera/go-ivf-decoder/decoder"
	"github.com/hakobera/go-ivf-decoder/decoder/ivf"
)

// Status codes returned by ivfdec_run and the source functions.
const (
	statusOK                = 0
	statusMalformedHeader   = 1
	statusFrameTooLarge     = 2
	statusTruncatedStream   = 3
	statusCodecInit         = 4
	statusCodecSubmission   = 5
	statusNoSource          = 6
	statusOther             = 7
	statusInvalidHandle     = -1
	statusInvalidArgument   = -2
	statusWrongSourceKind   = -3
	statusSourceWriteFailed = -4
)

// statusOf maps a decoder error onto its C status code.
func statusOf(err error) int {
	switch {
	case err == nil:
		return statusOK
	case errors.Is(err, ivf.ErrMalformedHeader):
		return statusMalformedHeader
	case errors.Is(err, ivf.ErrFrameTooLarge):
		return statusFrameTooLarge
	case errors.Is(err, ivf.ErrTruncatedStream):
		return statusTruncatedStream
	case errors.Is(err, decoder.ErrCodecInit):
		return statusCodecInit
	case errors.Is(err, decoder.ErrCodecSubmission):
		return statusCodecSubmission
	case errors.Is(err, decoder.ErrNoSource):
		return statusNoSource
	default:
		return statusOther
	}
}
