package iccprofile

import "github.com/pkg/errors"

// Tag is a named, offset-addressed region of a profile's buffer. Type
// is the tag payload's own 4-byte type signature (buf[0:4]), which is
// not necessarily the directory signature used to look the tag up
// (e.g. a 'bTRC' tag's Type is 'curv' or 'para').
type Tag struct {
	Signature uint32
	Type      uint32
	Size      uint32
	buf       []byte // exactly Size bytes, borrowed from the profile buffer
}

func sig(s string) uint32 {
	return uint32(s[0])<<24 | uint32(s[1])<<16 | uint32(s[2])<<8 | uint32(s[3])
}

// readXYZTag parses an 'XYZ ' tag: type(4) reserved(4) X(4) Y(4) Z(4).
func readXYZTag(buf []byte) (x, y, z float64, err error) {
	if len(buf) < 20 {
		return 0, 0, 0, errors.Errorf("XYZ tag too small: %d bytes", len(buf))
	}
	return readFixed(buf[8:]), readFixed(buf[12:]), readFixed(buf[16:]), nil
}

// readCurv parses a 'curv' tag: type(4) reserved(4) value_count(u32)
// parameters[...]. Returns the curve and the number of bytes consumed
// (12 + value_count*2).
func readCurv(buf []byte) (Curve, int, error) {
	if len(buf) < 12 {
		return Curve{}, 0, errors.New("curv tag shorter than its fixed header")
	}
	count := int(readU32(buf[8:]))

	switch {
	case count == 0:
		return identityCurve(), 12, nil
	case count == 1:
		if len(buf) < 14 {
			return Curve{}, 0, errors.Errorf("curv tag declares 1 entry, needs 14 bytes, has %d", len(buf))
		}
		g := float64(readU16(buf[12:])) / 256.0
		return gammaCurve(g), 14, nil
	default:
		need := 12 + count*2
		if len(buf) < need {
			return Curve{}, 0, errors.Errorf("curv tag declares %d entries, needs %d bytes, has %d", count, need, len(buf))
		}
		return Curve{
			kind:         curveSampled16,
			tableEntries: count,
			table16:      buf[12:need],
		}, need, nil
	}
}

// paramCounts maps para function_type (0..4) to the number of s15.16
// parameters it reads, per ICC.1:2010 Table 65.
var paramCounts = [5]int{1, 3, 4, 5, 7}

// readPara parses a 'para' tag: type(4) reserved(4) function_type(u16)
// reserved(2) parameters[...]. Returns the curve and bytes consumed
// (12 + params*4).
func readPara(buf []byte) (Curve, int, error) {
	if len(buf) < 12 {
		return Curve{}, 0, errors.New("para tag shorter than its fixed header")
	}
	ft := readU16(buf[8:])
	if ft > 4 {
		return Curve{}, 0, errors.Errorf("para function_type %d out of range [0,4]", ft)
	}

	n := paramCounts[ft]
	need := 12 + n*4
	if len(buf) < need {
		return Curve{}, 0, errors.Errorf("para tag type %d needs %d bytes, has %d", ft, need, len(buf))
	}

	p := make([]float64, n)
	for i := 0; i < n; i++ {
		p[i] = readFixed(buf[12+4*i:])
	}

	c := Curve{kind: curveParametric, g: p[0]}

	switch ft {
	case 0:
		c.a, c.b, c.c, c.d, c.e, c.f = 1, 0, 0, 0, 0, 0
	case 1:
		c.a, c.b = p[1], p[2]
		if c.a == 0 {
			return Curve{}, 0, errors.New("para type 1: a must be non-zero")
		}
		c.d = -c.b / c.a
	case 2:
		c.a, c.b, c.e = p[1], p[2], p[3]
		if c.a == 0 {
			return Curve{}, 0, errors.New("para type 2: a must be non-zero")
		}
		c.d = -c.b / c.a
		c.f = c.e
	case 3:
		c.a, c.b, c.c, c.d = p[1], p[2], p[3], p[4]
	case 4:
		c.a, c.b, c.c, c.d, c.e, c.f = p[1], p[2], p[3], p[4], p[5], p[6]
	}

	return c, need, nil
}

// readCurve dispatches on the generic curve-tag type signature ('curv'
// or 'para') used both as a standalone tag and inside 'mAB ' curve
// slots.
func readCurve(buf []byte) (Curve, int, error) {
	if len(buf) < 4 {
		return Curve{}, 0, errors.New("curve tag shorter than a type signature")
	}
	switch readU32(buf) {
	case sig("curv"):
		return readCurv(buf)
	case sig("para"):
		return readPara(buf)
	default:
		return Curve{}, 0, errors.Errorf("unsupported curve type signature %08x", readU32(buf))
	}
}

// mftHeader holds the fields common to 'mft1' and 'mft2'.
type mftHeader struct {
	inputChannels, outputChannels, gridPoints int
}

func readMFTCommon(buf []byte) (mftHeader, error) {
	if len(buf) < 48 {
		return mftHeader{}, errors.New("mft tag shorter than its common header")
	}
	h := mftHeader{
		inputChannels:  int(buf[8]),
		outputChannels: int(buf[9]),
		gridPoints:     int(buf[10]),
	}
	if h.outputChannels != 3 {
		return mftHeader{}, errors.Errorf("mft output_channels must be 3, got %d", h.outputChannels)
	}
	if h.inputChannels < 1 || h.inputChannels > 4 {
		return mftHeader{}, errors.Errorf("mft input_channels %d out of range [1,4]", h.inputChannels)
	}
	if h.gridPoints < 2 {
		return mftHeader{}, errors.Errorf("mft grid_points %d must be >= 2", h.gridPoints)
	}
	return h, nil
}

// readTableCurves reads n curves, each of entries samples, width bytes
// per sample, from a contiguous run starting at buf[0].
func readTableCurves(buf []byte, n, entries, width int) ([]Curve, int, error) {
	curves := make([]Curve, n)
	off := 0
	for i := 0; i < n; i++ {
		need := off + entries*width
		if len(buf) < need {
			return nil, 0, errors.Errorf("mft table curve %d needs %d bytes, has %d", i, need, len(buf))
		}
		kind := curveSampled16
		if width == 1 {
			kind = curveSampled8
		}
		c := Curve{kind: kind, tableEntries: entries}
		if width == 1 {
			c.table8 = buf[off:need]
		} else {
			c.table16 = buf[off:need]
		}
		curves[i] = c
		off = need
	}
	return curves, off, nil
}

// readMFT1 parses a legacy 8-bit 'mft1' LUT tag.
func readMFT1(buf []byte) (A2B, error) {
	return readMFTLegacy(buf, 1, 256, 256)
}

// readMFT2 parses a legacy 16-bit 'mft2' LUT tag, whose entry counts
// are explicit u16 fields instead of the fixed 256 of 'mft1'.
func readMFT2(buf []byte) (A2B, error) {
	if len(buf) < 52 {
		return A2B{}, errors.New("mft2 tag shorter than its header")
	}
	inEntries := int(readU16(buf[48:]))
	outEntries := int(readU16(buf[50:]))
	if inEntries < 2 || inEntries > 4096 {
		return A2B{}, errors.Errorf("mft2 input_table_entries %d out of range [2,4096]", inEntries)
	}
	if outEntries < 2 || outEntries > 4096 {
		return A2B{}, errors.Errorf("mft2 output_table_entries %d out of range [2,4096]", outEntries)
	}
	return readMFTLegacy(buf, 2, inEntries, outEntries)
}

// readMFTLegacy implements the shared mft1/mft2 body: common header,
// matrix (ignored — PCS-XYZ input is an explicit non-goal), input
// curves, CLUT, output curves.
func readMFTLegacy(buf []byte, width, inEntries, outEntries int) (A2B, error) {
	h, err := readMFTCommon(buf)
	if err != nil {
		return A2B{}, err
	}

	headerLen := 48
	if width == 2 {
		headerLen = 52
	}
	if len(buf) < headerLen {
		return A2B{}, errors.Errorf("mft tag shorter than %d-byte header", headerLen)
	}

	rest := buf[headerLen:]

	inCurves, consumed, err := readTableCurves(rest, h.inputChannels, inEntries, width)
	if err != nil {
		return A2B{}, errors.Wrap(err, "mft input curves")
	}
	rest = rest[consumed:]

	gridSize := uint64(1)
	for i := 0; i < h.inputChannels; i++ {
		gridSize *= uint64(h.gridPoints)
	}
	clutLen := gridSize * uint64(h.outputChannels) * uint64(width)
	if clutLen > uint64(len(rest)) {
		return A2B{}, errors.Errorf("mft CLUT needs %d bytes, has %d", clutLen, len(rest))
	}
	clut := rest[:clutLen]
	rest = rest[clutLen:]

	outCurves, consumed, err := readTableCurves(rest, h.outputChannels, outEntries, width)
	if err != nil {
		return A2B{}, errors.Wrap(err, "mft output curves")
	}
	_ = consumed

	a2b := A2B{
		InputChannels:  h.inputChannels,
		OutputChannels: h.outputChannels,
		MatrixChannels: 0,
		InputCurves:    inCurves,
		OutputCurves:   outCurves,
		Matrix:         identityMatrix3x4(),
	}
	for i := 0; i < h.inputChannels; i++ {
		a2b.GridPoints[i] = uint8(h.gridPoints)
	}
	if width == 1 {
		a2b.Grid8 = clut
	} else {
		a2b.Grid16 = clut
	}

	return a2b, nil
}

// readMAB parses a modern 'mAB ' A-to-B LUT tag.
func readMAB(buf []byte) (A2B, error) {
	if len(buf) < 32 {
		return A2B{}, errors.New("mAB tag shorter than its header")
	}
	inputChannels := int(buf[8])
	outputChannels := int(buf[9])
	if outputChannels != 3 {
		return A2B{}, errors.Errorf("mAB output_channels must be 3, got %d", outputChannels)
	}
	if inputChannels < 1 || inputChannels > 4 {
		return A2B{}, errors.Errorf("mAB input_channels %d out of range [1,4]", inputChannels)
	}

	bOff := int(readU32(buf[12:]))
	matrixOff := int(readU32(buf[16:]))
	mOff := int(readU32(buf[20:]))
	clutOff := int(readU32(buf[24:]))
	aOff := int(readU32(buf[28:]))

	if bOff == 0 {
		return A2B{}, errors.New("mAB: b_curve_offset must be non-zero")
	}
	if (matrixOff == 0) != (mOff == 0) {
		return A2B{}, errors.New("mAB: M curves and matrix must both be present or both absent")
	}
	if (clutOff == 0) != (aOff == 0) {
		return A2B{}, errors.New("mAB: A curves and CLUT must both be present or both absent")
	}
	if aOff == 0 && inputChannels != outputChannels {
		return A2B{}, errors.Errorf("mAB: no A/CLUT stage requires input_channels == output_channels, got %d != %d", inputChannels, outputChannels)
	}

	a2b := A2B{
		InputChannels:  inputChannels,
		OutputChannels: outputChannels,
		Matrix:         identityMatrix3x4(),
	}

	bCurves, err := readNCurvesAt(buf, bOff, outputChannels)
	if err != nil {
		return A2B{}, errors.Wrap(err, "mAB B curves")
	}
	a2b.OutputCurves = bCurves

	if matrixOff != 0 {
		mCurves, err := readNCurvesAt(buf, mOff, outputChannels)
		if err != nil {
			return A2B{}, errors.Wrap(err, "mAB M curves")
		}
		a2b.MatrixCurves = mCurves
		a2b.MatrixChannels = 3

		if matrixOff+48 > len(buf) {
			return A2B{}, errors.New("mAB: matrix offset out of range")
		}
		var m [12]float64
		for i := range m {
			m[i] = readFixed(buf[matrixOff+4*i:])
		}
		// Stored row-major as a 3x3 followed by a 3-element
		// translation column; assembled into a 3x4 with the
		// translation in column 3.
		a2b.Matrix = [3][4]float64{
			{m[0], m[1], m[2], m[9]},
			{m[3], m[4], m[5], m[10]},
			{m[6], m[7], m[8], m[11]},
		}
	}

	if aOff != 0 {
		aCurves, err := readNCurvesAt(buf, aOff, inputChannels)
		if err != nil {
			return A2B{}, errors.Wrap(err, "mAB A curves")
		}
		a2b.InputCurves = aCurves

		clut, gridPoints, width, err := readCLUT(buf, clutOff, inputChannels, outputChannels)
		if err != nil {
			return A2B{}, errors.Wrap(err, "mAB CLUT")
		}
		a2b.GridPoints = gridPoints
		if width == 1 {
			a2b.Grid8 = clut
		} else {
			a2b.Grid16 = clut
		}
	} else {
		// Pass-through: no input stage. Sentinel per spec: zero
		// InputChannels to signal "skip input stage" to consumers.
		a2b.InputChannels = 0
	}

	return a2b, nil
}

// readNCurvesAt reads n curves starting at byte offset off in buf,
// each curve's own advancing offset rounded up to the next multiple
// of 4 before the next curve begins.
func readNCurvesAt(buf []byte, off, n int) ([]Curve, error) {
	curves := make([]Curve, n)
	for i := 0; i < n; i++ {
		if off >= len(buf) {
			return nil, errors.Errorf("curve %d offset %d beyond buffer of length %d", i, off, len(buf))
		}
		c, consumed, err := readCurve(buf[off:])
		if err != nil {
			return nil, errors.Wrapf(err, "curve %d", i)
		}
		off += consumed
		if rem := off % 4; rem != 0 {
			off += 4 - rem
		}
		curves[i] = c
	}
	return curves, nil
}

// readCLUT parses an mAB CLUT sub-structure at byte offset off:
// grid_points(16 bytes) grid_byte_width(1) reserved(3) data[].
func readCLUT(buf []byte, off, inputChannels, outputChannels int) (data []byte, gridPoints [4]uint8, width int, err error) {
	if off+20 > len(buf) {
		return nil, gridPoints, 0, errors.New("CLUT header out of range")
	}
	for i := 0; i < inputChannels; i++ {
		gp := buf[off+i]
		if gp < 2 {
			return nil, gridPoints, 0, errors.Errorf("CLUT grid_points[%d] = %d, must be >= 2", i, gp)
		}
		gridPoints[i] = gp
	}
	width = int(buf[off+16])
	if width != 1 && width != 2 {
		return nil, gridPoints, 0, errors.Errorf("CLUT grid_byte_width %d not in {1,2}", width)
	}

	gridSize := uint64(1)
	for i := 0; i < inputChannels; i++ {
		gridSize *= uint64(gridPoints[i])
	}
	dataLen := gridSize * uint64(outputChannels) * uint64(width)

	dataOff := off + 20
	need := uint64(dataOff) + dataLen
	if need > uint64(len(buf)) {
		return nil, gridPoints, 0, errors.Errorf("CLUT data needs %d bytes total, buffer has %d", need, len(buf))
	}

	return buf[dataOff : uint64(dataOff)+dataLen], gridPoints, width, nil
}
