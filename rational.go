package buddymem

// Rational ...
type Rational struct {
	Nominator   uint64
	Denominator uint64
}

// NewRational ...
func NewRational(nominator uint64, denominator uint64) Rational {
	return Rational{
		Nominator:   nominator,
		Denominator: denominator,
	}
}

// MulUint32 ...
func (r Rational) MulUint32(v uint32) uint32 {
	if r.Denominator == 0 {
		return 0
	}
	return uint32(uint64(v) * r.Nominator / r.Denominator)
}

// Percent returns the ratio scaled to 0..100, rounded down.
func (r Rational) Percent() uint32 {
	return r.MulUint32(100)
}
