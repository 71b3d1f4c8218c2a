package tag

import "math/big"

// Int128Bytes and Uint128Bytes hold the 16-byte big-endian two's-complement
// (resp. unsigned) payload carried by the Int128/Uint128 type tags. Go has
// no native 128-bit integer kind; these wrapper types keep the wire tags
// reserved and round-trippable (SPEC_FULL.md OPEN QUESTIONS #1) via
// conversion through math/big for any arithmetic a caller needs.
type Int128Bytes [16]byte

type Uint128Bytes [16]byte

// BigInt returns the signed value of v.
func (v Int128Bytes) BigInt() *big.Int {
	n := new(big.Int).SetBytes(v[:])
	if v[0]&0x80 != 0 {
		n.Sub(n, new(big.Int).Lsh(big.NewInt(1), 128))
	}

	return n
}

// Int128FromBigInt encodes n as a two's-complement Int128, panicking if n
// does not fit in 128 bits (the same "unsupported value" failure class as
// any other out-of-range literal on this wire format).
func Int128FromBigInt(n *big.Int) Int128Bytes {
	var out Int128Bytes
	limit := new(big.Int).Lsh(big.NewInt(1), 127)
	if n.Cmp(new(big.Int).Neg(limit)) < 0 || n.Cmp(limit) >= 0 {
		panic("tag: value does not fit in a signed 128-bit integer")
	}
	m := new(big.Int).Set(n)
	if m.Sign() < 0 {
		m.Add(m, new(big.Int).Lsh(big.NewInt(1), 128))
	}
	b := m.Bytes()
	copy(out[16-len(b):], b)

	return out
}

// BigInt returns the unsigned value of v.
func (v Uint128Bytes) BigInt() *big.Int {
	return new(big.Int).SetBytes(v[:])
}

// Uint128FromBigInt encodes n (must be non-negative and fit in 128 bits).
func Uint128FromBigInt(n *big.Int) Uint128Bytes {
	var out Uint128Bytes
	b := n.Bytes()
	copy(out[16-len(b):], b)

	return out
}
