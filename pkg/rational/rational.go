// Package rational implements the exact-rational price arithmetic the
// matching engine's consensus path depends on: arbitrary-precision
// ratios, directional rounding to a bounded integer range, and range
// checks against the signed 64-bit amount domain.
//
// This is the direct analogue of the original C++ engine's
// boost::rational<boost::multiprecision::cpp_int>: both are
// arbitrary-precision exact rationals, normalized to lowest terms with
// a positive denominator. math/big.Rat is used rather than a
// third-party decimal library because the prices compared here
// (amount_desired/amount_forsale) are arbitrary integer ratios that
// generally do not terminate in base 10 (e.g. 22/7); a fixed-point
// decimal type would either lose precision or silently reintroduce
// rounding the spec forbids. See DESIGN.md for the full justification.
package rational

import (
	"errors"
	"math/big"
)

// ErrRange is returned when converting a rational to a bounded integer
// would overflow that integer's range. This corresponds to a
// consensus-level invariant failure in the matching engine: callers on
// the hot path should treat it as fatal, not retry.
var ErrRange = errors.New("rational: value out of range")

var (
	maxInt64 = big.NewInt(int64(^uint64(0) >> 1))
	minInt64 = new(big.Int).Neg(new(big.Int).Add(maxInt64, big.NewInt(1)))

	// 128-bit signed bounds, used as the intermediate range for
	// products of two 64-bit amounts before they are narrowed back
	// down to int64.
	maxInt128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	minInt128 = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
)

// Rat is an exact rational number, reduced to lowest terms with a
// positive denominator, as returned by New and the arithmetic below.
type Rat struct {
	r *big.Rat
}

// New builds a normalized rational n/d. d must not be zero.
func New(n, d int64) Rat {
	return Rat{r: big.NewRat(n, d)}
}

// FromInt64 builds the rational n/1.
func FromInt64(n int64) Rat {
	return Rat{r: new(big.Rat).SetInt64(n)}
}

// FromBigInts builds a normalized rational num/denom, used by the
// snapshot/transfer codec to reconstruct a Rat from its serialized
// numerator and denominator.
func FromBigInts(num, denom *big.Int) Rat {
	return Rat{r: new(big.Rat).SetFrac(num, denom)}
}

// Num returns the normalized numerator. The caller must not mutate the
// returned value.
func (r Rat) Num() *big.Int { return r.r.Num() }

// Denom returns the normalized (always positive) denominator. The
// caller must not mutate the returned value.
func (r Rat) Denom() *big.Int { return r.r.Denom() }

// Zero is the rational 0/1.
var Zero = FromInt64(0)

// Sign returns -1, 0 or 1 according to the sign of r.
func (r Rat) Sign() int {
	return r.r.Sign()
}

// Mul returns r * other, exact, unreduced range.
func (r Rat) Mul(other Rat) Rat {
	return Rat{r: new(big.Rat).Mul(r.r, other.r)}
}

// MulInt64 returns r * n, exact.
func (r Rat) MulInt64(n int64) Rat {
	return r.Mul(FromInt64(n))
}

// Cmp compares r to other: -1 if r<other, 0 if equal, 1 if r>other.
func (r Rat) Cmp(other Rat) int {
	return r.r.Cmp(other.r)
}

// Less reports whether r < other.
func (r Rat) Less(other Rat) bool { return r.Cmp(other) < 0 }

// LessOrEqual reports whether r <= other.
func (r Rat) LessOrEqual(other Rat) bool { return r.Cmp(other) <= 0 }

// Equal reports whether r == other.
func (r Rat) Equal(other Rat) bool { return r.Cmp(other) == 0 }

// ToInt128 converts r to the nearest representable 128-bit signed
// integer, rounding toward zero (truncated division) when
// roundUp is false, or using the "1 + (num-1)/den" rule on positive
// rationals when roundUp is true, matching xToInt128 in the original
// engine. Returns ErrRange if the value does not fit in [-2^127,
// 2^127-1].
func (r Rat) ToInt128(roundUp bool) (*big.Int, error) {
	num := r.r.Num()
	den := r.r.Denom()

	var result *big.Int
	if !roundUp {
		result = new(big.Int).Quo(num, den)
	} else {
		// 1 + (num - 1) / den, using truncated (toward zero) division,
		// exactly as in the reference implementation.
		numMinusOne := new(big.Int).Sub(num, big.NewInt(1))
		result = new(big.Int).Quo(numMinusOne, den)
		result.Add(result, big.NewInt(1))
	}

	if result.Cmp(minInt128) < 0 || result.Cmp(maxInt128) > 0 {
		return nil, ErrRange
	}

	return result, nil
}

// ToInt64 converts r to a signed 64-bit integer using the same
// directional rounding as ToInt128, additionally requiring that the
// result fit in [math.MinInt64, math.MaxInt64]. A value that needs the
// full 128-bit intermediate range but does not fit in 64 bits signals
// ErrRange, mirroring xToInt64's assert.
func (r Rat) ToInt64(roundUp bool) (int64, error) {
	v, err := r.ToInt128(roundUp)
	if err != nil {
		return 0, err
	}

	if v.Cmp(minInt64) < 0 || v.Cmp(maxInt64) > 0 {
		return 0, ErrRange
	}

	return v.Int64(), nil
}

// String renders the exact fraction, e.g. "22/7". Never used on a
// consensus path; display formatting lives in pkg/rpcserver's
// formatUnitPrice.
func (r Rat) String() string {
	return r.r.RatString()
}
