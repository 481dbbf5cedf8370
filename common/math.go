package common

func Min[T IT](a, b T) T {
	if a < b {
		return a
	}
	return b
}

func NextPow2(v uint32) uint32 {
	v--
	v |= v >> 1
	v |= v >> 2
	v |= v >> 4
	v |= v >> 8
	v |= v >> 16
	v++
	return v
}

func Ilog2(v uint32) uint32 {
	b := func(ok bool) uint32 {
		if ok {
			return 1
		}
		return 0
	}
	r := b(v > 0xffff) << 4
	v >>= r
	shift := b(v > 0xff) << 3
	v >>= shift
	r |= shift
	shift = b(v > 0xf) << 2
	v >>= shift
	r |= shift
	shift = b(v > 0x3) << 1
	v >>= shift
	r |= shift
	r |= v >> 1
	return r
}

// ComputeTileHash maps a tile grid position to a bucket of the position lookup.
func ComputeTileHash(x, y, mask int32) int32 {
	h1 := uint32(0x8da6b343) // Large multiplicative constants;
	h2 := uint32(0xd8163841) // here arbitrarily chosen primes
	n := h1*uint32(x) + h2*uint32(y)
	return int32(n & uint32(mask))
}
