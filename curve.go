package iccprofile

import "math"

// curveKind discriminates the one live variant of Curve. Exactly one
// of parametric-ness / table8 / table16 is meaningful at a time; every
// write site must preserve that.
type curveKind int

const (
	curveParametric curveKind = iota
	curveSampled8
	curveSampled16
)

// Curve is a 1-D tone curve: either a parametric function (up to seven
// s15.16-derived coefficients) or a sampled lookup table of 8-bit or
// 16-bit big-endian samples borrowed from the profile's input buffer.
//
// A Curve never copies sample data; Table8/Table16 alias the buffer
// that produced the enclosing Profile and are only valid while that
// buffer is live and unmodified.
type Curve struct {
	kind curveKind

	// Parametric coefficients, valid when kind == curveParametric.
	g, a, b, c, d, e, f float64

	// Sampled table, valid when kind == curveSampled8/curveSampled16.
	tableEntries int
	table8       []byte
	table16      []byte // big-endian uint16 pairs, len == 2*tableEntries
}

// IsParametric reports whether c is a parametric curve.
func (c Curve) IsParametric() bool { return c.kind == curveParametric }

// IsSampled reports whether c is a sampled lookup-table curve.
func (c Curve) IsSampled() bool { return c.kind != curveParametric }

// TableEntries returns the number of samples in a sampled curve, or 0
// for a parametric curve.
func (c Curve) TableEntries() int { return c.tableEntries }

// identityCurve returns the parametric identity curve: g=1, a=1, all
// other coefficients zero, so Eval(x) == x.
func identityCurve() Curve {
	return Curve{kind: curveParametric, g: 1, a: 1}
}

// gammaCurve returns a pure-gamma parametric curve y = x^g.
func gammaCurve(g float64) Curve {
	return Curve{kind: curveParametric, g: g, a: 1}
}

// sample returns the i'th table entry normalized to [0,1].
func (c Curve) sample(i int) float64 {
	if c.kind == curveSampled8 {
		return float64(c.table8[i]) / 255.0
	}
	return float64(readU16(c.table16[2*i:])) / 65535.0
}

// Eval maps x (clamped to [0,1]) through the curve to an output in
// roughly [0,1]. Eval is total: it never fails.
func (c Curve) Eval(x float64) float64 {
	if x < 0 {
		x = 0
	} else if x > 1 {
		x = 1
	}

	if c.kind == curveParametric {
		if x < c.d {
			return c.c*x + c.f
		}
		return math.Pow(c.a*x+c.b, c.g) + c.e
	}

	n := c.tableEntries
	ix := x * float64(n-1)
	lo := int(ix)
	hi := int(minus1ULP(float32(ix + 1.0)))
	t := ix - float64(lo)

	l, h := c.sample(lo), c.sample(hi)
	return l + t*(h-l)
}

// minus1ULP returns the float32 immediately below x in bit order, i.e.
// x minus one unit in the last place. Used so that, at x == integer,
// hi collapses to lo (the top of the table range) without a branch —
// it matches skcms's reference bit-for-bit.
func minus1ULP(x float32) float32 {
	bits := math.Float32bits(x)
	bits--
	return math.Float32frombits(bits)
}

// AreApproximateInverses reports whether sampled curve a and
// parametric curve b are approximate inverses of one another: for
// N = max(a.TableEntries(), 256) evenly spaced points x in [0,1],
// |x - b.Eval(a.Eval(x))| must be within 1/512 at every point.
func AreApproximateInverses(a, b Curve) bool {
	n := a.tableEntries
	if n < 256 {
		n = 256
	}

	dx := 1.0 / float64(n-1)
	for i := 0; i < n; i++ {
		x := float64(i) * dx
		y := a.Eval(x)
		if math.Abs(x-b.Eval(y)) > 1.0/512.0 {
			return false
		}
	}
	return true
}
