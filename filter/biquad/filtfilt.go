package biquad

// FiltFilt applies the cascade forward then backward over buf in place,
// canceling phase distortion. The signal is extended at both ends by an
// odd-symmetric reflection before filtering to suppress edge transients,
// then trimmed back to its original length.
//
// The chain state is reset before each pass, so repeated calls on identical
// input produce identical output.
func FiltFilt(c *Chain, buf []float64) {
	n := len(buf)
	if n == 0 {
		return
	}

	pad := 3 * (c.Order() + 1)
	if pad >= n {
		pad = n - 1
	}

	ext := make([]float64, n+2*pad)
	// Odd reflection about the first and last samples.
	for i := 0; i < pad; i++ {
		ext[i] = 2*buf[0] - buf[pad-i]
		ext[len(ext)-1-i] = 2*buf[n-1] - buf[n-2-(pad-1-i)]
	}
	copy(ext[pad:], buf)

	c.Reset()
	c.ProcessBlock(ext)

	reverse(ext)
	c.Reset()
	c.ProcessBlock(ext)
	reverse(ext)

	copy(buf, ext[pad:pad+n])
	c.Reset()
}

func reverse(buf []float64) {
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
}
