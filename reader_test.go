package iccprofile

import "testing"

func TestReadFixed(t *testing.T) {
	tests := []struct {
		name string
		b    []byte
		want float64
	}{
		{"one", []byte{0x00, 0x01, 0x00, 0x00}, 1.0},
		{"half", []byte{0x00, 0x00, 0x80, 0x00}, 0.5},
		{"negative one", []byte{0xFF, 0xFF, 0x00, 0x00}, -1.0},
		{"zero", []byte{0x00, 0x00, 0x00, 0x00}, 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := readFixed(tt.b); got != tt.want {
				t.Errorf("readFixed(% X) = %v, want %v", tt.b, got, tt.want)
			}
		})
	}
}

func TestReadU32BigEndian(t *testing.T) {
	b := []byte{0x01, 0x02, 0x03, 0x04}
	if got, want := readU32(b), uint32(0x01020304); got != want {
		t.Errorf("readU32 = %#x, want %#x", got, want)
	}
}

func TestReadI32Signed(t *testing.T) {
	b := []byte{0xFF, 0xFF, 0xFF, 0xFF}
	if got, want := readI32(b), int32(-1); got != want {
		t.Errorf("readI32 = %d, want %d", got, want)
	}
}

func TestReadU64BigEndian(t *testing.T) {
	b := []byte{0, 0, 0, 1, 0, 0, 0, 0}
	if got, want := readU64(b), uint64(1)<<32; got != want {
		t.Errorf("readU64 = %#x, want %#x", got, want)
	}
}

func TestReadDateTime(t *testing.T) {
	b := make([]byte, 12)
	vals := []uint16{2024, 3, 15, 9, 30, 0}
	for i, v := range vals {
		b[2*i] = byte(v >> 8)
		b[2*i+1] = byte(v)
	}
	dt := readDateTime(b)
	if dt.Year != 2024 || dt.Month != 3 || dt.Day != 15 || dt.Hour != 9 || dt.Minute != 30 || dt.Second != 0 {
		t.Errorf("readDateTime = %+v, want {2024 3 15 9 30 0}", dt)
	}
	if got, want := dt.String(), "2024-03-15 09:30:00"; got != want {
		t.Errorf("DateTime.String() = %q, want %q", got, want)
	}
}
