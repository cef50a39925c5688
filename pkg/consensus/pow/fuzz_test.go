package pow

import (
	"math/big"
	"testing"
)

// FuzzBitsTargetRoundTrip checks that decoding any 32-bit compact
// value and re-encoding the resulting target never produces a *larger*
// target (a lower difficulty) than bits implied
// (TargetToBits(BitsToTarget(bits)) must describe the same or a
// tighter, never looser, target).
func FuzzBitsTargetRoundTrip(f *testing.F) {
	f.Add(uint32(0x1f00ffff))
	f.Add(uint32(0x1d00ffff))
	f.Add(uint32(0x03000000))
	f.Add(uint32(0x00000000))
	f.Add(uint32(0x04123456))
	f.Add(uint32(0xff923456)) // negative-target bit set

	f.Fuzz(func(t *testing.T, bits uint32) {
		target := BitsToTarget(bits)
		if target.Sign() < 0 {
			t.Fatalf("BitsToTarget(%#08x) returned a negative target", bits)
		}

		reencoded := TargetToBits(target)
		roundTripped := BitsToTarget(reencoded)

		if target.Sign() == 0 {
			if roundTripped.Sign() != 0 {
				t.Fatalf("bits %#08x: zero target did not round-trip to zero", bits)
			}
			return
		}

		// TargetToBits is lossy above 23 significant bits, so the
		// round-tripped target must never exceed the original.
		if roundTripped.Cmp(target) > 0 {
			t.Fatalf("bits %#08x: round-tripped target %s exceeds original %s", bits, roundTripped, target)
		}
	})
}

// FuzzTargetToBitsStaysInRange checks that TargetToBits never produces a
// compact value whose decoded target is negative or exceeds the
// maximum representable 32-byte target.
func FuzzTargetToBitsStaysInRange(f *testing.F) {
	f.Add([]byte{0x00, 0xff, 0xff})
	f.Add([]byte{0x7f, 0xff, 0xff, 0xff})
	f.Add([]byte{0x01})

	max := new(big.Int).Lsh(big.NewInt(1), 256)

	f.Fuzz(func(t *testing.T, raw []byte) {
		if len(raw) > 32 {
			raw = raw[:32]
		}
		target := new(big.Int).SetBytes(raw)
		if target.Cmp(max) >= 0 {
			return
		}

		bits := TargetToBits(target)
		decoded := BitsToTarget(bits)
		if decoded.Sign() < 0 {
			t.Fatalf("target %s encoded to bits %#08x decoding negative", target, bits)
		}
		if decoded.Cmp(max) >= 0 {
			t.Fatalf("target %s encoded to bits %#08x decoding past the 32-byte maximum", target, bits)
		}
	})
}
