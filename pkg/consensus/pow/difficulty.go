package pow

import (
	"math/big"
)

// BitsToTarget decodes the Bitcoin-style compact target encoding: the
// high byte is the exponent E, the low 24 bits are the coefficient C
// (required to be < 2^23); target = C * 2^(8*(E-3)).
//
// Grounded on the worked example in the EXCCoin/btcd-derived
// standalone.CompactToBig: bits 453115903 decodes to the well-known
// block-1 mainnet target.
func BitsToTarget(bits uint32) *big.Int {
	exponent := bits >> 24
	coefficient := new(big.Int).SetUint64(uint64(bits & 0x007fffff))

	if bits&0x00800000 != 0 {
		// Negative targets are not representable; treat as zero, as
		// btcd-family codecs do.
		return new(big.Int)
	}

	if exponent <= 3 {
		shift := uint(8 * (3 - exponent))
		return coefficient.Rsh(coefficient, shift)
	}
	shift := uint(8 * (exponent - 3))
	return coefficient.Lsh(coefficient, shift)
}

// TargetToBits encodes target into the compact form. N is the
// big-endian byte length of target, and the mantissa is target's N
// most-significant bytes, left-aligned into a 3-byte field: for N <= 3
// that is target itself shifted up to the top of the field, otherwise
// it is target right-shifted by 8*(N-3) bits. Either way, if the
// mantissa's own top bit would land on the sign bit of the 24-bit
// field, the mantissa is shifted one further byte right and N
// incremented, keeping the encoding unambiguously positive.
func TargetToBits(target *big.Int) uint32 {
	if target.Sign() <= 0 {
		return 0
	}

	raw := target.Bytes()
	n := uint32(len(raw))

	var coefficient uint32
	switch {
	case n <= 3:
		var buf [3]byte
		copy(buf[:n], raw)
		coefficient = uint32(buf[0])<<16 | uint32(buf[1])<<8 | uint32(buf[2])
	default:
		shift := uint(8 * (n - 3))
		shifted := new(big.Int).Rsh(target, shift)
		coefficient = uint32(shifted.Uint64())
	}

	if coefficient&0x00800000 != 0 {
		coefficient >>= 8
		n++
	}

	return n<<24 | coefficient
}
