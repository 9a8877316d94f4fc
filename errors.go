package iccprofile

import "github.com/pkg/errors"

// Package-level sentinels for the handful of failures callers might
// reasonably want to distinguish with errors.Is, mirroring
// pdfcpu/pkg/pdfcpu/color's ErrInvalidColor pattern. Every other
// failure is a one-off errors.Errorf/Wrap with no sentinel, exactly
// as the teacher's validate package does for most of its checks.
var (
	// ErrTruncated means the buffer was too short for the 132-byte
	// header. Truncated tags are reported without this sentinel.
	ErrTruncated = errors.New("iccprofile: buffer truncated")

	// ErrBadSignature means the 'acsp' header signature did not
	// match. Unsupported tag type signatures are reported without
	// this sentinel.
	ErrBadSignature = errors.New("iccprofile: signature mismatch")

	// ErrBadWhitePoint means the header illuminant deviates from D50
	// by more than the ±0.01 tolerance.
	ErrBadWhitePoint = errors.New("iccprofile: illuminant is not D50")
)
