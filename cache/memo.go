// SPDX-License-Identifier: MIT

package cache

// Floats returns the cached payload for key, computing and storing it on a miss.
// A nil cache computes every time.
func Floats(c Cache, key Key, compute func() []float64) []float64 {
	if c == nil {
		return compute()
	}
	if v, ok := c.Get(key); ok {
		return v
	}
	v := compute()
	c.Put(key, v)
	return v
}

// Complex memoises a complex-valued producer; values are stored interleaved.
func Complex(c Cache, key Key, compute func() []complex128) []complex128 {
	if c == nil {
		return compute()
	}
	if v, ok := c.Get(key); ok && len(v)%2 == 0 {
		return Unpack(v)
	}
	v := compute()
	c.Put(key, Pack(v))
	return v
}

// Pack interleaves real and imaginary parts.
func Pack(v []complex128) []float64 {
	out := make([]float64, 2*len(v))
	for i, z := range v {
		out[2*i] = real(z)
		out[2*i+1] = imag(z)
	}
	return out
}

// Unpack reverses Pack. A trailing odd element is ignored.
func Unpack(v []float64) []complex128 {
	out := make([]complex128, len(v)/2)
	for i := range out {
		out[i] = complex(v[2*i], v[2*i+1])
	}
	return out
}
