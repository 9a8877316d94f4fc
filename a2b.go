package iccprofile

import "github.com/pkg/errors"

// A2B is the device-to-PCS pipeline assembled from a profile's LUT
// tag: optional input curves, an optional multi-dimensional lookup
// table (CLUT), an optional 3x4 affine matrix with its own matrix
// curves, then mandatory output curves.
type A2B struct {
	// InputChannels is 0..4; 0 means "no input stage" (pass-through,
	// only valid when the tag had no A-curve/CLUT stage).
	InputChannels int
	// OutputChannels is always 3.
	OutputChannels int
	// MatrixChannels is 0 or 3; 0 means "no M-stage".
	MatrixChannels int

	GridPoints [4]uint8

	InputCurves  []Curve
	MatrixCurves []Curve
	OutputCurves []Curve

	Matrix [3][4]float64

	// Exactly one of Grid8/Grid16 is set, matching the tag's sample
	// width. Both are nil when InputChannels == 0.
	Grid8  []byte
	Grid16 []byte
}

func identityMatrix3x4() [3][4]float64 {
	return [3][4]float64{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
	}
}

// parseA2B dispatches on the tag's own type signature to the mft1,
// mft2, or mAB reader. An unrecognized type signature is a failure,
// as is any malformed sub-structure the chosen reader finds.
func parseA2B(tag Tag) (A2B, error) {
	switch tag.Type {
	case sig("mft1"):
		return readMFT1(tag.buf)
	case sig("mft2"):
		return readMFT2(tag.buf)
	case sig("mAB "):
		return readMAB(tag.buf)
	default:
		return A2B{}, errors.Errorf("unsupported A2B tag type %08x", tag.Type)
	}
}
