package iccprofile

import (
	"encoding/binary"
	"fmt"
)

// Decoders for the big-endian primitives an ICC profile is built from.
// None of these bounds-check; every call site is expected to have
// validated offset+width against the enclosing buffer or tag size first.

func readU16(b []byte) uint16 {
	return binary.BigEndian.Uint16(b)
}

func readU32(b []byte) uint32 {
	return binary.BigEndian.Uint32(b)
}

func readI32(b []byte) int32 {
	return int32(binary.BigEndian.Uint32(b))
}

func readU64(b []byte) uint64 {
	return binary.BigEndian.Uint64(b)
}

// readFixed decodes a 4-byte s15.16 fixed-point value: a signed
// big-endian i32 divided by 65536. No saturation, default float
// rounding.
func readFixed(b []byte) float64 {
	return float64(readI32(b)) / 65536.0
}

// DateTime is the 12-byte dateTimeNumber record (ICC.1:2010 §5.1.1).
type DateTime struct {
	Year, Month, Day, Hour, Minute, Second uint16
}

// String renders the date-time record the way pdfcpu's iccProfile.go
// renders creationTS.
func (d DateTime) String() string {
	return fmt.Sprintf("%4d-%02d-%02d %02d:%02d:%02d", d.Year, d.Month, d.Day, d.Hour, d.Minute, d.Second)
}

func readDateTime(b []byte) DateTime {
	return DateTime{
		Year:   readU16(b[0:]),
		Month:  readU16(b[2:]),
		Day:    readU16(b[4:]),
		Hour:   readU16(b[6:]),
		Minute: readU16(b[8:]),
		Second: readU16(b[10:]),
	}
}
