package iccprofile

import "encoding/binary"

// Test-only ICC buffer builder. Real ICC files are built by an
// encoder this package deliberately doesn't have (parsing only); for
// tests we assemble the handful of bytes each scenario needs by hand.

type tagSpec struct {
	sig  string
	data []byte
}

// profileBuilder assembles a minimal-but-valid 132-byte header plus a
// tag directory and the given tag payloads (4-byte aligned, as ICC
// requires). The illuminant defaults to exact D50; callers may
// override via withIlluminant.
type profileBuilder struct {
	tags                   []tagSpec
	illumX, illumY, illumZ float64
	version                uint32
}

func newProfileBuilder() *profileBuilder {
	return &profileBuilder{
		illumX:  0.9642,
		illumY:  1.0000,
		illumZ:  0.8249,
		version: 0x04300000,
	}
}

func (pb *profileBuilder) withTag(sig string, data []byte) *profileBuilder {
	pb.tags = append(pb.tags, tagSpec{sig: sig, data: data})
	return pb
}

func (pb *profileBuilder) withIlluminant(x, y, z float64) *profileBuilder {
	pb.illumX, pb.illumY, pb.illumZ = x, y, z
	return pb
}

func putFixed(b []byte, v float64) {
	binary.BigEndian.PutUint32(b, uint32(int32(v*65536)))
}

func (pb *profileBuilder) build() []byte {
	tagCount := len(pb.tags)
	dirEnd := headerSize + tagCount*tagEntrySize

	// Lay out tag payloads back to back, 4-byte aligned, after the
	// directory.
	offsets := make([]int, tagCount)
	cursor := dirEnd
	for i, t := range pb.tags {
		offsets[i] = cursor
		cursor += len(t.data)
		if rem := cursor % 4; rem != 0 {
			cursor += 4 - rem
		}
	}
	total := cursor

	buf := make([]byte, total)

	binary.BigEndian.PutUint32(buf[0:], uint32(total))
	binary.BigEndian.PutUint32(buf[8:], pb.version)
	copy(buf[36:40], "acsp")
	putFixed(buf[68:], pb.illumX)
	putFixed(buf[72:], pb.illumY)
	putFixed(buf[76:], pb.illumZ)
	binary.BigEndian.PutUint32(buf[128:], uint32(tagCount))

	for i, t := range pb.tags {
		j := headerSize + i*tagEntrySize
		copy(buf[j:j+4], t.sig)
		binary.BigEndian.PutUint32(buf[j+4:], uint32(offsets[i]))
		binary.BigEndian.PutUint32(buf[j+8:], uint32(len(t.data)))
		copy(buf[offsets[i]:], t.data)
	}

	return buf
}

// curvTag builds a 'curv' tag payload with the given 16-bit samples.
func curvTag(samples ...uint16) []byte {
	b := make([]byte, 12+len(samples)*2)
	copy(b[0:4], "curv")
	binary.BigEndian.PutUint32(b[8:], uint32(len(samples)))
	for i, s := range samples {
		binary.BigEndian.PutUint16(b[12+2*i:], s)
	}
	return b
}

// curvIdentityTag builds a value_count=0 'curv' tag (identity).
func curvIdentityTag() []byte {
	b := make([]byte, 12)
	copy(b[0:4], "curv")
	return b
}

// curvGammaTag builds a value_count=1 'curv' tag with an 8.8 fixed
// gamma value.
func curvGammaTag(gamma88 uint16) []byte {
	b := make([]byte, 14)
	copy(b[0:4], "curv")
	binary.BigEndian.PutUint32(b[8:], 1)
	binary.BigEndian.PutUint16(b[12:], gamma88)
	return b
}

// paraTag builds a 'para' tag of the given function_type with params
// encoded as s15.16 fixed values.
func paraTag(functionType uint16, params ...float64) []byte {
	b := make([]byte, 12+len(params)*4)
	copy(b[0:4], "para")
	binary.BigEndian.PutUint16(b[8:], functionType)
	for i, p := range params {
		putFixed(b[12+4*i:], p)
	}
	return b
}

// xyzTag builds an 'XYZ ' tag payload for the given triple.
func xyzTag(x, y, z float64) []byte {
	b := make([]byte, 20)
	copy(b[0:4], "XYZ ")
	putFixed(b[8:], x)
	putFixed(b[12:], y)
	putFixed(b[16:], z)
	return b
}
